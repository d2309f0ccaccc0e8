package event

import "testing"
import (
	"github.com/ingen-audio/ingen/client"
	"github.com/ingen-audio/ingen/graph"
)

type fakeResponseIDs struct{ next int }

func (f *fakeResponseIDs) SetNextResponseID(next int) { f.next = next }

type fakeQuitSignal struct{ requested bool }

func (f *fakeQuitSignal) RequestQuit() { f.requested = true }

func TestActivateActivatesEveryStoredNode(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	for _, p := range []graph.Path{"/a", "/b"} {
		ev := &CreateNode{Path: p, PluginURI: "ingen:builtin:gain"}
		ev.PreProcess(d)
		ev.Execute(ctx, maid)
	}
	for _, p := range []graph.Path{"/a", "/b"} {
		d.Store.Find(p).(*graph.Node).Deactivate()
	}

	act := &Activate{}
	act.PreProcess(d)
	if act.Result.Status != graph.Success {
		t.Fatalf("Activate: %s", act.Result.Message)
	}
	for _, p := range []graph.Path{"/a", "/b"} {
		if !d.Store.Find(p).(*graph.Node).Active() {
			t.Fatalf("%s not active after Activate", p)
		}
	}
}

func TestDeactivateDeactivatesEveryStoredNode(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	node := &CreateNode{Path: "/gain", PluginURI: "ingen:builtin:gain"}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	deact := &Deactivate{}
	deact.PreProcess(d)
	if deact.Result.Status != graph.Success {
		t.Fatalf("Deactivate: %s", deact.Result.Message)
	}
	if d.Store.Find("/gain").(*graph.Node).Active() {
		t.Fatal("node still active after Deactivate")
	}
}

func TestLoadPluginsRescansSupportedHost(t *testing.T) {
	d := newTestDeps()
	lp := &LoadPlugins{}
	lp.PreProcess(d)
	if lp.Result.Status != graph.Success {
		t.Fatalf("LoadPlugins: %s", lp.Result.Message)
	}
}

func TestSetNextResponseIDForwardsToResponseCounter(t *testing.T) {
	d := newTestDeps()
	ids := &fakeResponseIDs{}
	d.Responses = ids

	sid := &SetNextResponseID{Next: 42}
	sid.PreProcess(d)
	if sid.Result.Status != graph.Success {
		t.Fatalf("PreProcess: %s", sid.Result.Message)
	}
	if ids.next != 42 {
		t.Fatalf("next = %d, want 42", ids.next)
	}
}

func TestSetNextResponseIDRejectsNonPositive(t *testing.T) {
	d := newTestDeps()
	sid := &SetNextResponseID{Next: 0}
	sid.PreProcess(d)
	if sid.Result.Status != graph.Internal {
		t.Fatalf("status = %v, want Internal", sid.Result.Status)
	}
}

func TestDisableResponsesSilencesFutureResponses(t *testing.T) {
	d := newTestDeps()
	rec := client.NewRecorder()
	broadcast := graph.NewBroadcaster()

	dr := &DisableResponses{}
	dr.Client = rec
	dr.PreProcess(d)
	if dr.Result.Status != graph.Success {
		t.Fatalf("PreProcess: %s", dr.Result.Message)
	}
	dr.PostProcess(broadcast)

	broadcast.Respond(7, graph.Success, "", rec)
	for _, c := range rec.Calls() {
		if c.Method == "Response" {
			t.Fatal("client received a Response after DisableResponses")
		}
	}
}

func TestQuitSignalsQuitCh(t *testing.T) {
	d := newTestDeps()
	sig := &fakeQuitSignal{}
	d.Quit = sig

	q := &Quit{}
	q.PreProcess(d)
	if q.Result.Status != graph.Success {
		t.Fatalf("PreProcess: %s", q.Result.Message)
	}
	if !sig.requested {
		t.Fatal("RequestQuit was not called")
	}
}

func TestAllNotesOffInjectsIntoEveryEventInputPort(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()

	port := &CreatePort{Path: "/midi-in", Type: graph.TypeEvent, Dir: graph.Input}
	port.PreProcess(d)
	if port.Result.Status != graph.Success {
		t.Fatalf("CreatePort: %s", port.Result.Message)
	}
	port.Execute(ctx, maid)

	ano := &AllNotesOff{}
	ano.PreProcess(d)
	if ano.Result.Status != graph.Success {
		t.Fatalf("AllNotesOff PreProcess: %s", ano.Result.Message)
	}
	if len(ano.targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(ano.targets))
	}
	ano.Execute(ctx, maid)

	p := d.Store.Find("/midi-in").(*graph.Port)
	eb, ok := p.VoiceBuffer(0).(*graph.EventBuffer)
	if !ok {
		t.Fatalf("voice buffer is %T, want *EventBuffer", p.VoiceBuffer(0))
	}
	events := eb.Events()
	if len(events) != 1 || events[0].TypeURI != "midi:Controller" {
		t.Fatalf("events = %+v, want one Controller event", events)
	}
}
