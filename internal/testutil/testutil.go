// Package testutil provides small helpers shared by package tests: env
// gating plus a ready-to-run Engine wired with the in-process test
// driver and plugin host, so a test can build a patch and step blocks
// without a real audio backend.
package testutil

import (
	"os"
	"testing"

	"github.com/ingen-audio/ingen/driver"
	"github.com/ingen-audio/ingen/event"
	"github.com/ingen-audio/ingen/graph"
	"github.com/ingen-audio/ingen/ingen"
	"github.com/ingen-audio/ingen/pluginhost"
)

// SkipUnlessEnv skips the test unless the given env var equals the wanted value.
func SkipUnlessEnv(t *testing.T, key, want string) {
	t.Helper()
	if os.Getenv(key) != want {
		t.Skipf("skipped: set %s=%s to run", key, want)
	}
}

// IsCI reports whether running under common CI environments.
func IsCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// SmallEngineConfig is an ingen.Config tuned for fast, deterministic
// tests: a short block at a round sample rate, a fresh TestDriver and
// TestHost with the builtin plugins registered.
func SmallEngineConfig() (ingen.Config, *driver.TestDriver, *pluginhost.TestHost) {
	d := driver.NewTestDriver(48000, 64)
	h := pluginhost.NewTestHost()
	pluginhost.RegisterBuiltins(h)
	cfg := ingen.Config{
		SampleRate: 48000,
		BlockSize:  64,
		Driver:     d,
		Plugins:    h,
	}
	return cfg, d, h
}

// NewTestEngine builds and starts an Engine using SmallEngineConfig,
// registering t.Cleanup to close it. If construction or activation
// fails the test is stopped immediately with t.Fatalf.
func NewTestEngine(t *testing.T) (*ingen.Engine, *driver.TestDriver) {
	t.Helper()
	cfg, d, _ := SmallEngineConfig()
	eng, err := ingen.NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return eng, d
}

// MustSubmit submits ev synchronously and fails the test if it did not
// complete successfully.
func MustSubmit(t *testing.T, eng *ingen.Engine, ev event.Event) {
	t.Helper()
	ev.Info().Blocking = true
	if !eng.Submit(ev) {
		t.Fatalf("submit %T: queue rejected event", ev)
	}
	if res := ev.Info().Result; res.Status != graph.Success {
		t.Fatalf("submit %T: %s: %s", ev, res.Status, res.Message)
	}
}

// BuildGainChain creates an input audio port, a builtin gain node, and
// an output audio port under parent, connecting input -> gain -> output,
// and returns their paths. Convenient scaffolding for tests exercising
// Run against a small, real signal path.
func BuildGainChain(t *testing.T, eng *ingen.Engine, parent graph.Path) (in, gain, out graph.Path) {
	t.Helper()
	in = parent + "/in"
	gain = parent + "/gain"
	out = parent + "/out"

	MustSubmit(t, eng, &event.CreatePort{Path: in, Type: graph.TypeAudio, Dir: graph.Output})
	MustSubmit(t, eng, &event.CreateNode{Path: gain, PluginURI: "ingen:builtin:gain"})
	MustSubmit(t, eng, &event.CreatePort{Path: out, Type: graph.TypeAudio, Dir: graph.Input})

	MustSubmit(t, eng, &event.Connect{Src: in, Dst: gain + "/in"})
	MustSubmit(t, eng, &event.Connect{Src: gain + "/out", Dst: out})
	return in, gain, out
}
