package buffer

import (
	"testing"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/indexrange"
)

func TestNewBuffer_StartsInvalid(t *testing.T) {
	b := New(2, 44100, 16)
	if b.IsValid() {
		t.Error("new buffer should be invalid")
	}
	if got := b.FirstFrame(); got != constants.InvalidFrameIndex {
		t.Errorf("FirstFrame() = %d, want InvalidFrameIndex", got)
	}
}

func TestReset_TransitionsToKnownEmpty(t *testing.T) {
	b := New(1, 44100, 4)
	b.Reset()
	if !b.IsValid() || b.IsReady() {
		t.Error("Reset should leave buffer valid but not ready")
	}
	if b.FirstFrame() != constants.UnknownFrameIndex {
		t.Errorf("FirstFrame() after Reset = %d, want UnknownFrameIndex", b.FirstFrame())
	}
}

func TestBufferFrames_FirstAppendEstablishesPosition(t *testing.T) {
	b := New(1, 44100, 4)
	b.Reset()
	rest := b.BufferFrames(FillGapWithSilence, Readable{
		Range: indexrange.ForwardRange(10, 3),
		Data:  []float32{1, 2, 3},
	})
	if !rest.Empty() {
		t.Errorf("BufferFrames returned non-empty remainder %v", rest)
	}
	if !b.IsReady() {
		t.Error("expected buffer to be ready after appending")
	}
	if b.FirstFrame() != 10 {
		t.Errorf("FirstFrame() = %d, want 10", b.FirstFrame())
	}
	if got := b.BufferedRange(); got != indexrange.ForwardRange(10, 3) {
		t.Errorf("BufferedRange() = %v, want [10,13)", got)
	}
}

func TestBufferFrames_GapIsZeroFilled(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(5, 2), Data: []float32{9, 9}})
	br := b.BufferedRange()
	if br != indexrange.ForwardRange(0, 7) {
		t.Errorf("BufferedRange() = %v, want [0,7)", br)
	}
}

func TestConsumeBufferedFrames(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 4), Data: []float32{1, 2, 3, 4}})

	out := make([]float32, 4)
	writable := b.ConsumeBufferedFrames(Writable{Range: indexrange.ForwardRange(0, 4), Data: out})
	if !writable.Range.Empty() {
		t.Errorf("expected fully satisfied writable, got %v", writable.Range)
	}
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if b.IsReady() {
		t.Error("expected buffer to be empty (reset-known) after full drain")
	}
}

func TestConsumeBufferedFrames_PartialDrainLeavesRemainder(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 2), Data: []float32{1, 2}})

	out := make([]float32, 4)
	writable := b.ConsumeBufferedFrames(Writable{Range: indexrange.ForwardRange(0, 4), Data: out})
	if writable.Range != indexrange.ForwardRange(2, 2) {
		t.Errorf("remainder = %v, want [2,4)", writable.Range)
	}
}

func TestConsumeBufferedFrames_MismatchedStartIsNoop(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 2), Data: []float32{1, 2}})

	out := make([]float32, 2)
	writable := b.ConsumeBufferedFrames(Writable{Range: indexrange.ForwardRange(5, 2), Data: out})
	if writable.Range != indexrange.ForwardRange(5, 2) {
		t.Errorf("expected no consumption for mismatched start, got %v", writable.Range)
	}
}

func TestTrySeekToFirstFrame(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 10), Data: make([]float32, 10)})

	if !b.TrySeekToFirstFrame(5) {
		t.Fatal("expected short seek to succeed for an index within the buffered range")
	}
	if b.FirstFrame() != 5 {
		t.Errorf("FirstFrame() after short seek = %d, want 5", b.FirstFrame())
	}
	if got := b.BufferedRange(); got != indexrange.ForwardRange(5, 5) {
		t.Errorf("BufferedRange() after short seek = %v, want [5,10)", got)
	}
}

func TestTrySeekToFirstFrame_OutOfRangeFails(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 4), Data: make([]float32, 4)})

	if b.TrySeekToFirstFrame(100) {
		t.Error("expected short seek outside buffered range to fail")
	}
}

func TestDiscardLastBufferedFrames(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 4), Data: []float32{1, 2, 3, 4}})

	discarded := b.DiscardLastBufferedFrames(2)
	if discarded != 2 {
		t.Errorf("discarded = %d, want 2", discarded)
	}
	if got := b.BufferedRange(); got != indexrange.ForwardRange(0, 2) {
		t.Errorf("BufferedRange() = %v, want [0,2)", got)
	}
}

func TestInvalidate(t *testing.T) {
	b := New(1, 44100, 8)
	b.ResetAt(0)
	b.BufferFrames(FillGapWithSilence, Readable{Range: indexrange.ForwardRange(0, 4), Data: []float32{1, 2, 3, 4}})
	b.Invalidate()
	if b.IsValid() || b.IsReady() {
		t.Error("expected buffer to be invalid after Invalidate")
	}
	if b.TrySeekToFirstFrame(0) {
		t.Error("TrySeekToFirstFrame should fail on an invalid buffer")
	}
}
