// mixer_buffer_pool_test.go - pool depth/rotation and input ring round-trip

package mixer

import "testing"

func TestNewBufferPool_RejectsBelowMinimums(t *testing.T) {
	if _, err := NewBufferPool(1, DefaultFramesPerPeriod, StereoLayout); err == nil {
		t.Fatal("expected error for pool depth below minimum")
	}
	if _, err := NewBufferPool(DefaultPoolDepth, 8, StereoLayout); err == nil {
		t.Fatal("expected error for frames per period below minimum")
	}
}

func TestBufferPool_ReadWriteNeverAlias(t *testing.T) {
	bp, err := NewBufferPool(DefaultPoolDepth, DefaultFramesPerPeriod, StereoLayout)
	if err != nil {
		t.Fatalf("NewBufferPool failed: %v", err)
	}
	defer bp.Release()

	for i := 0; i < bp.Depth()*3; i++ {
		bp.Rotate()
		if bp.ReadBuffer() == bp.WriteBuffer() {
			t.Fatalf("read_buffer == write_buffer at rotation %d", i)
		}
	}
}

func TestInputRing_RoundTripPreservesOrder(t *testing.T) {
	ring := NewInputRing(4)
	a := []Frame2{{0.1, 0.1}, {0.2, 0.2}}
	b := []Frame2{{0.3, 0.3}}

	ring.PushFrames(a)
	ring.PushFrames(b)
	ring.Swap()

	got := ring.ReadFrames()
	want := append(append([]Frame2{}, a...), b...)
	if len(got) != len(want) {
		t.Fatalf("read %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInputRing_GrowsOnOverflow(t *testing.T) {
	ring := NewInputRing(2)
	frames := make([]Frame2, 10)
	for i := range frames {
		frames[i] = Frame2{float32(i), float32(i)}
	}
	ring.PushFrames(frames)
	ring.Swap()

	got := ring.ReadFrames()
	if len(got) != len(frames) {
		t.Fatalf("read %d frames after overflow growth, want %d", len(got), len(frames))
	}
}
