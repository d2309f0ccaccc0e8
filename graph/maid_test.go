package graph

import "testing"

func TestMaidDrainRunsDisposeInOrder(t *testing.T) {
	m := NewMaid()
	var order []int
	m.Push(DisposeFunc(func() { order = append(order, 1) }))
	m.Push(DisposeFunc(func() { order = append(order, 2) }))

	if got := m.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}
	m.Drain()
	if got := m.Pending(); got != 0 {
		t.Fatalf("Pending() after Drain = %d, want 0", got)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("dispose order = %v, want [1 2]", order)
	}
}

func TestMaidDrainOnlyAffectsAccumulatedBatch(t *testing.T) {
	m := NewMaid()
	disposed := 0
	m.Push(DisposeFunc(func() { disposed++ }))
	m.Drain()

	m.Push(DisposeFunc(func() { disposed++ }))
	if disposed != 1 {
		t.Fatalf("disposed = %d after first Drain, want 1", disposed)
	}
	m.Drain()
	if disposed != 2 {
		t.Fatalf("disposed = %d after second Drain, want 2", disposed)
	}
}

func TestMaidPushNilIsNoop(t *testing.T) {
	m := NewMaid()
	m.Push(nil)
	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d after pushing nil, want 0", m.Pending())
	}
}

func TestMaidPushBuffersReleasesAllOnDispose(t *testing.T) {
	f := NewBufferFactory()
	h1 := f.Acquire(TypeAudio, 4)
	h2 := f.Acquire(TypeAudio, 4)

	m := NewMaid()
	m.PushBuffers([]*BufferHandle{h1, h2})
	if f.Size(TypeAudio, 4) != 0 {
		t.Fatalf("pool size before Drain = %d, want 0", f.Size(TypeAudio, 4))
	}
	m.Drain()
	if f.Size(TypeAudio, 4) != 2 {
		t.Fatalf("pool size after Drain = %d, want 2", f.Size(TypeAudio, 4))
	}
}
