// Package buffer implements the read-ahead frame buffer (§4.D): a FIFO of
// contiguous decoded PCM frames aligned to a known frame index, generalized
// from the teacher's opusBuffer (internal/player/buffer.go) from a
// fixed-slot packet ring into a growable, frame-index-addressed sample
// ring. The generalization is required because this buffer's job is short
// seek elision (TrySeekToFirstFrame), which needs a stable absolute
// origin rather than a modulo read/write cursor pair.
package buffer

import (
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/indexrange"
)

// state is the buffer's tri-state position tracker (§3 "Read-ahead frame
// buffer invariants").
type state int

const (
	stateInvalid state = iota
	stateResetKnown
	stateReady
)

// Mode selects the fill behaviour of Buffer.
type Mode int

const (
	// FillGapWithSilence pads a gap between the buffered range and the
	// incoming readable range with zeroed samples before appending.
	FillGapWithSilence Mode = iota
)

// Buffer is the read-ahead FIFO. It is not safe for concurrent use; the
// owning session provides external synchronization per §5.
type Buffer struct {
	channels   int
	sampleRate int

	st         state
	firstFrame int64
	// samples holds interleaved float32 PCM, channels samples per frame.
	samples []float32
}

// New creates a Buffer for the given signal shape with an initial
// capacity hint of capacityFrames frames (§4.G step 9,
// constants.MaxDecodedFramesPerPacket × a typical decoded frame size).
func New(channels, sampleRate int, capacityFrames int64) *Buffer {
	if capacityFrames < 0 {
		capacityFrames = 0
	}
	return &Buffer{
		channels:   channels,
		sampleRate: sampleRate,
		st:         stateInvalid,
		samples:    make([]float32, 0, capacityFrames*int64(channels)),
	}
}

// IsReady reports whether the buffer has a concrete position and >=0
// buffered frames ready to consume.
func (b *Buffer) IsReady() bool {
	return b.st == stateReady
}

// IsValid reports whether the buffer's position is known (ready or
// reset-but-empty).
func (b *Buffer) IsValid() bool {
	return b.st != stateInvalid
}

// IsEmpty reports whether there are no buffered frames.
func (b *Buffer) IsEmpty() bool {
	return len(b.samples) == 0
}

// FirstFrame returns the absolute frame index of the buffer head, or
// constants.InvalidFrameIndex if the buffer is invalid.
func (b *Buffer) FirstFrame() int64 {
	if b.st == stateInvalid {
		return constants.InvalidFrameIndex
	}
	return b.firstFrame
}

// bufferedCount returns the number of buffered frames.
func (b *Buffer) bufferedCount() int64 {
	if b.channels == 0 {
		return 0
	}
	return int64(len(b.samples)) / int64(b.channels)
}

// BufferedRange returns [firstFrame, firstFrame+bufferedCount).
func (b *Buffer) BufferedRange() indexrange.Range {
	if b.st == stateInvalid {
		return indexrange.Range{}
	}
	return indexrange.ForwardRange(b.firstFrame, b.bufferedCount())
}

// Reset transitions to valid-but-empty with the position unknown.
func (b *Buffer) Reset() {
	b.st = stateResetKnown
	b.firstFrame = constants.UnknownFrameIndex
	b.samples = b.samples[:0]
}

// ResetAt transitions to valid-but-empty at a known index.
func (b *Buffer) ResetAt(idx int64) {
	b.st = stateResetKnown
	b.firstFrame = idx
	b.samples = b.samples[:0]
}

// Invalidate marks the buffer as unrecoverable; every subsequent read must
// re-establish position via a seek before producing output.
func (b *Buffer) Invalidate() {
	b.st = stateInvalid
	b.firstFrame = constants.InvalidFrameIndex
	b.samples = b.samples[:0]
}

// DiscardAllBufferedFrames empties the buffer without changing its
// validity or known first-frame index.
func (b *Buffer) DiscardAllBufferedFrames() {
	b.samples = b.samples[:0]
	if b.st == stateReady {
		b.st = stateResetKnown
	}
}

// TrySeekToFirstFrame discards the prefix [firstFrame, idx) if idx lies
// within the buffered range, avoiding a backend re-seek for small jumps.
func (b *Buffer) TrySeekToFirstFrame(idx int64) bool {
	if b.st != stateReady {
		return false
	}
	br := b.BufferedRange()
	if !br.Contains(idx) {
		return false
	}
	skip := idx - b.firstFrame
	b.samples = b.samples[skip*int64(b.channels):]
	b.firstFrame = idx
	if len(b.samples) == 0 {
		b.st = stateResetKnown
	}
	return true
}

// ConsumeBufferedFrames drains the buffer head into writable.Data starting
// at writable.Range.Start, advances the buffer's first-frame index past
// what was consumed, and returns the still-unsatisfied tail of writable.
func (b *Buffer) ConsumeBufferedFrames(writable Writable) Writable {
	if writable.Range.Empty() || b.st != stateReady {
		return writable
	}
	if writable.Range.Start != b.firstFrame {
		// The caller wants frames the buffer doesn't currently front;
		// nothing to consume from here.
		return writable
	}
	avail := b.bufferedCount()
	want := writable.Range.Length()
	n := want
	if n > avail {
		n = avail
	}
	if n > 0 {
		copy(writable.Data[:n*int64(b.channels)], b.samples[:n*int64(b.channels)])
		b.samples = b.samples[n*int64(b.channels):]
		b.firstFrame += n
		if len(b.samples) == 0 {
			b.st = stateResetKnown
		}
	}
	return Writable{
		Range: writable.Range.ShrinkFront(n),
		Data:  writable.Data[n*int64(b.channels):],
	}
}

// BufferFrames appends readable's samples to the tail of the buffer. In
// FillGapWithSilence mode, if readable.Range.Start is ahead of the current
// buffered end, the gap is zero-filled first. It returns the sub-range
// that could not be appended (non-empty only as an assertion signal — the
// normal read/seek flow never produces overlap here).
func (b *Buffer) BufferFrames(mode Mode, readable Readable) indexrange.Range {
	if readable.Range.Empty() {
		return indexrange.Range{}
	}

	if b.st == stateInvalid {
		return readable.Range
	}

	if b.st == stateResetKnown && b.firstFrame == constants.UnknownFrameIndex {
		b.firstFrame = readable.Range.Start
	}

	current := b.BufferedRange()
	if b.IsEmpty() {
		current = indexrange.ForwardRange(b.firstFrame, 0)
	}

	if readable.Range.Start < current.End {
		// Overlap with what's already buffered: not representable by a
		// simple append; report the whole range as unconsumed.
		return readable.Range
	}

	if readable.Range.Start > current.End {
		if mode == FillGapWithSilence {
			gap := readable.Range.Start - current.End
			b.samples = append(b.samples, make([]float32, gap*int64(b.channels))...)
		} else {
			return readable.Range
		}
	}

	b.samples = append(b.samples, readable.Data...)
	b.st = stateReady
	return indexrange.Range{}
}

// DiscardLastBufferedFrames removes up to n frames from the buffer tail
// and returns the number actually discarded.
func (b *Buffer) DiscardLastBufferedFrames(n int64) int64 {
	if n <= 0 {
		return 0
	}
	avail := b.bufferedCount()
	if n > avail {
		n = avail
	}
	newLen := int64(len(b.samples)) - n*int64(b.channels)
	b.samples = b.samples[:newLen]
	if b.st == stateReady && len(b.samples) == 0 {
		b.st = stateResetKnown
	}
	return n
}

// Writable is a mutable output range: the caller-supplied write window and
// interleaved sample storage to fill.
type Writable struct {
	Range indexrange.Range
	Data  []float32
}

// Readable is an immutable input range: decoded samples covering Range.
type Readable struct {
	Range indexrange.Range
	Data  []float32
}
