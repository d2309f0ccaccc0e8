package event

import "testing"
import "github.com/ingen-audio/ingen/graph"

func buildTwoGains(t *testing.T, d *Deps, ctx *graph.ProcessContext, maid *graph.Maid) {
	t.Helper()
	for _, ev := range []Event{
		&CreatePort{Path: "/in", Type: graph.TypeAudio, Dir: graph.Output},
		&CreateNode{Path: "/a", PluginURI: "ingen:builtin:gain"},
		&CreateNode{Path: "/b", PluginURI: "ingen:builtin:gain"},
		&CreatePort{Path: "/out", Type: graph.TypeAudio, Dir: graph.Input},
	} {
		ev.PreProcess(d)
		if ev.Info().Result.Status != graph.Success {
			t.Fatalf("setup %T: %s", ev, ev.Info().Result.Message)
		}
		ev.Execute(ctx, maid)
	}
}

func TestConnectLinksOutputToInput(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	conn := &Connect{Src: "/in", Dst: "/a/in"}
	conn.PreProcess(d)
	if conn.Result.Status != graph.Success {
		t.Fatalf("Connect: %s", conn.Result.Message)
	}
	conn.Execute(ctx, maid)

	dst := d.Store.Find("/a/in").(*graph.Port)
	if dst.NumConnections() != 1 {
		t.Fatalf("NumConnections = %d, want 1", dst.NumConnections())
	}
}

func TestConnectRejectsDirectionMismatch(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	conn := &Connect{Src: "/a/in", Dst: "/in"}
	conn.PreProcess(d)
	if conn.Result.Status != graph.DirectionMismatch {
		t.Fatalf("status = %v, want DirectionMismatch", conn.Result.Status)
	}
}

func TestConnectRejectsDuplicate(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	first := &Connect{Src: "/in", Dst: "/a/in"}
	first.PreProcess(d)
	first.Execute(ctx, maid)

	second := &Connect{Src: "/in", Dst: "/a/in"}
	second.PreProcess(d)
	if second.Result.Status != graph.AlreadyConnected {
		t.Fatalf("status = %v, want AlreadyConnected", second.Result.Status)
	}
}

func TestConnectAcquiresMixBufferOnFanIn(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	first := &Connect{Src: "/in", Dst: "/a/in"}
	first.PreProcess(d)
	first.Execute(ctx, maid)

	second := &Connect{Src: "/a/out", Dst: "/a/in"}
	second.PreProcess(d)
	if second.Result.Status != graph.Success {
		t.Fatalf("second Connect: %s", second.Result.Message)
	}
	if second.mix == nil {
		t.Fatal("expected a mix buffer to be acquired on second connection to the same input")
	}
	second.Execute(ctx, maid)

	dst := d.Store.Find("/a/in").(*graph.Port)
	if dst.NumConnections() != 2 {
		t.Fatalf("NumConnections = %d, want 2", dst.NumConnections())
	}
}

func TestDisconnectRemovesConnection(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	conn := &Connect{Src: "/in", Dst: "/a/in"}
	conn.PreProcess(d)
	conn.Execute(ctx, maid)

	disc := &Disconnect{Src: "/in", Dst: "/a/in"}
	disc.PreProcess(d)
	if disc.Result.Status != graph.Success {
		t.Fatalf("Disconnect: %s", disc.Result.Message)
	}
	disc.Execute(ctx, maid)

	dst := d.Store.Find("/a/in").(*graph.Port)
	if dst.NumConnections() != 0 {
		t.Fatalf("NumConnections = %d, want 0", dst.NumConnections())
	}
}

func TestDisconnectRejectsWhenNotConnected(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	disc := &Disconnect{Src: "/in", Dst: "/a/in"}
	disc.PreProcess(d)
	if disc.Result.Status != graph.NotFound {
		t.Fatalf("status = %v, want NotFound", disc.Result.Status)
	}
}

func TestDisconnectAllTearsDownEveryConnectionOnObject(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	for _, ev := range []*Connect{
		{Src: "/in", Dst: "/a/in"},
		{Src: "/a/out", Dst: "/b/in"},
		{Src: "/b/out", Dst: "/out"},
	} {
		ev.PreProcess(d)
		if ev.Result.Status != graph.Success {
			t.Fatalf("Connect %s->%s: %s", ev.Src, ev.Dst, ev.Result.Message)
		}
		ev.Execute(ctx, maid)
	}

	da := &DisconnectAll{Parent: "/", Object: "/a"}
	da.PreProcess(d)
	if da.Result.Status != graph.Success {
		t.Fatalf("DisconnectAll: %s", da.Result.Message)
	}
	da.Execute(ctx, maid)

	in := d.Store.Find("/in").(*graph.Port)
	aIn := d.Store.Find("/a/in").(*graph.Port)
	bIn := d.Store.Find("/b/in").(*graph.Port)
	if in.NumConnections() != 0 || aIn.NumConnections() != 0 {
		t.Fatal("connections touching /a were not removed")
	}
	if bIn.NumConnections() != 0 {
		t.Fatal("connection from /a/out to /b/in should have been removed as touching /a")
	}
}
