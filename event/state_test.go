package event

import "testing"
import "github.com/ingen-audio/ingen/graph"

func TestSetPortValueBroadcastsAcrossVoices(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()

	node := &CreateNode{Path: "/gain", PluginURI: "ingen:builtin:gain"}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	sv := &SetPortValue{Path: "/gain/gain", Value: graph.FloatValue(2.5)}
	sv.PreProcess(d)
	if sv.Result.Status != graph.Success {
		t.Fatalf("PreProcess: %s", sv.Result.Message)
	}
	sv.Execute(ctx, maid)

	port := d.Store.Find("/gain/gain").(*graph.Port)
	buf, ok := port.VoiceBuffer(0).(*graph.AudioBuffer)
	if !ok {
		t.Fatalf("control port voice buffer is %T, want *AudioBuffer", port.VoiceBuffer(0))
	}
	if buf.Samples[0] != 2.5 {
		t.Fatalf("sample[0] = %v, want 2.5", buf.Samples[0])
	}
}

func TestSetPortValueRejectsConnectedPort(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	buildTwoGains(t, d, ctx, maid)

	conn := &Connect{Src: "/in", Dst: "/a/in"}
	conn.PreProcess(d)
	conn.Execute(ctx, maid)

	sv := &SetPortValue{Path: "/a/in", Value: graph.FloatValue(1)}
	sv.PreProcess(d)
	if sv.Result.Status != graph.AlreadyConnected {
		t.Fatalf("status = %v, want AlreadyConnected", sv.Result.Status)
	}
}

func TestSetPortValueRejectsNonNumeric(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	node := &CreateNode{Path: "/gain", PluginURI: "ingen:builtin:gain"}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	sv := &SetPortValue{Path: "/gain/gain", Value: graph.StringValue("nope")}
	sv.PreProcess(d)
	if sv.Result.Status != graph.BadValueType {
		t.Fatalf("status = %v, want BadValueType", sv.Result.Status)
	}
}

func TestSetMetadataAppliesRemoveThenAdd(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	node := &CreateNode{Path: "/gain", PluginURI: "ingen:builtin:gain"}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	put := &Put{Path: "/gain", Properties: graph.Properties{"label": graph.StringValue("old"), "keep": graph.StringValue("yes")}}
	put.PreProcess(d)

	sm := &SetMetadata{
		Path:   "/gain",
		Remove: []string{"label"},
		Add:    graph.Properties{"color": graph.StringValue("red")},
	}
	sm.PreProcess(d)
	if sm.Result.Status != graph.Success {
		t.Fatalf("SetMetadata: %s", sm.Result.Message)
	}

	props := d.Store.Find("/gain").(*graph.Node).Properties()
	if _, has := props["label"]; has {
		t.Fatal("label should have been removed")
	}
	if props["keep"].String != "yes" {
		t.Fatal("unrelated property keep was dropped")
	}
	if props["color"].String != "red" {
		t.Fatal("color property was not added")
	}
}

func TestSetMetadataTogglesPatchEnabled(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	sub := &CreatePatch{Path: "/sub"}
	sub.PreProcess(d)
	sub.Execute(ctx, maid)

	sm := &SetMetadata{Path: "/sub", Add: graph.Properties{graph.PropEnabled: graph.BoolValue(false)}}
	sm.PreProcess(d)
	if sm.Result.Status != graph.Success {
		t.Fatalf("SetMetadata: %s", sm.Result.Message)
	}

	patch := d.Store.Find("/sub").(*graph.Patch)
	if patch.Enabled {
		t.Fatal("patch.Enabled was not cleared by the enabled=false delta")
	}
}

func TestSetMetadataChangesPolyphonyAndReallocatesVoicedPorts(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()

	sub := &CreatePatch{Path: "/sub", Poly: 2}
	sub.PreProcess(d)
	sub.Execute(ctx, maid)

	boundary := &CreatePort{Path: "/sub/in", Type: graph.TypeAudio, Dir: graph.Output, Polyphonic: true}
	boundary.PreProcess(d)
	boundary.Execute(ctx, maid)

	node := &CreateNode{Path: "/sub/gain", PluginURI: "ingen:builtin:gain", Polyphonic: true}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	in := d.Store.Find("/sub/in").(*graph.Port)
	gainIn := d.Store.Find("/sub/gain/in").(*graph.Port)
	if in.NumVoices() != 2 || gainIn.NumVoices() != 2 {
		t.Fatalf("NumVoices = %d/%d before the change, want 2/2", in.NumVoices(), gainIn.NumVoices())
	}
	oldInVoice := in.VoiceBuffer(0)
	oldGainInVoice := gainIn.VoiceBuffer(0)

	sm := &SetMetadata{Path: "/sub", Add: graph.Properties{graph.PropPolyphony: graph.IntValue(4)}}
	sm.PreProcess(d)
	if sm.Result.Status != graph.Success {
		t.Fatalf("PreProcess: %s", sm.Result.Message)
	}

	// Until Execute runs, the RT thread must still see the old voice
	// count: the new buffers are only prepared, not yet installed.
	if in.NumVoices() != 2 {
		t.Fatalf("NumVoices = %d after PreProcess, want unchanged 2", in.NumVoices())
	}

	sm.Execute(ctx, maid)

	if in.NumVoices() != 4 {
		t.Fatalf("NumVoices = %d after Execute, want 4", in.NumVoices())
	}
	if gainIn.NumVoices() != 4 {
		t.Fatalf("gain input NumVoices = %d after Execute, want 4", gainIn.NumVoices())
	}
	if in.VoiceBuffer(0) == oldInVoice {
		t.Fatal("boundary port's voice 0 buffer was not replaced")
	}
	if gainIn.VoiceBuffer(0) == oldGainInVoice {
		t.Fatal("gain node's voice 0 buffer was not replaced")
	}

	patch := d.Store.Find("/sub").(*graph.Patch)
	if patch.InternalPoly != 4 {
		t.Fatalf("InternalPoly = %d, want 4", patch.InternalPoly)
	}
	if maid.Pending() == 0 {
		t.Fatal("old voice buffers were not handed to the Maid")
	}
}

func TestSetMetadataRejectsNonIntegerPolyphony(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	sub := &CreatePatch{Path: "/sub"}
	sub.PreProcess(d)
	sub.Execute(ctx, maid)

	sm := &SetMetadata{Path: "/sub", Add: graph.Properties{graph.PropPolyphony: graph.FloatValue(2)}}
	sm.PreProcess(d)
	if sm.Result.Status != graph.InvalidPoly {
		t.Fatalf("status = %v, want InvalidPoly", sm.Result.Status)
	}
}

func TestSetMetadataRejectsMissingObject(t *testing.T) {
	d := newTestDeps()
	sm := &SetMetadata{Path: "/nope", Add: graph.Properties{}}
	sm.PreProcess(d)
	if sm.Result.Status != graph.NotFound {
		t.Fatalf("status = %v, want NotFound", sm.Result.Status)
	}
}

func TestLearnFailsWithoutControlTable(t *testing.T) {
	d := newTestDeps()
	ctx, maid := testCtx()
	node := &CreateNode{Path: "/gain", PluginURI: "ingen:builtin:gain"}
	node.PreProcess(d)
	node.Execute(ctx, maid)

	learn := &Learn{Port: "/gain/gain"}
	learn.PreProcess(d)
	if learn.Result.Status != graph.Internal {
		t.Fatalf("status = %v, want Internal", learn.Result.Status)
	}
}

func TestLearnRejectsMissingPort(t *testing.T) {
	d := newTestDeps()
	learn := &Learn{Port: "/nope"}
	learn.PreProcess(d)
	if learn.Result.Status != graph.NotFound {
		t.Fatalf("status = %v, want NotFound", learn.Result.Status)
	}
}
