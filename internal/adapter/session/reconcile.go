package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/adaptererr"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/backend"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/buffer"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/indexrange"
)

// Read implements the Read API (§6): it fills as much of writable as the
// stream can provide and returns the readable sub-range actually
// written. readable.Range.Start always equals writable.Range.Start;
// readable.Range.End is less than writable.Range.End only on EOF or an
// unrecoverable mid-stream error, both reported via a non-nil error
// alongside the short range.
func (s *Session) Read(writable buffer.Writable) (buffer.Readable, error) {
	if writable.Range.Empty() {
		return buffer.Readable{Range: writable.Range, Data: writable.Data[:0]}, nil
	}

	readableStart := writable.Range.Start
	fullData := writable.Data

	// Drain whatever the previous call buffered ahead of the caller.
	writable = s.buf.ConsumeBufferedFrames(writable)
	if writable.Range.Empty() {
		return s.readableResult(readableStart, writable.Range.Start, fullData), nil
	}

	if err := s.adjustCurrentPosition(writable.Range.Start); err != nil {
		return s.readableResult(readableStart, readableStart, fullData), err
	}

	// A successful short seek (adjustCurrentPosition's
	// try_seek_to_first_frame path) repositions the buffer to front
	// writable.Range.Start without copying anything to output yet;
	// drain it now so that data isn't stranded for the rest of this call.
	writable = s.buf.ConsumeBufferedFrames(writable)
	if writable.Range.Empty() {
		return s.readableResult(readableStart, writable.Range.Start, fullData), nil
	}

	origStart := writable.Range.Start
	cur := writable.Range
	curData := func() []float32 {
		return writable.Data[(cur.Start-origStart)*int64(s.channels):]
	}

	readFrameIndex := s.buf.FirstFrame()
	var loopErr error

feedLoop:
	for s.buf.IsValid() && (s.pmp.HasPendingPacket() || !cur.Empty()) {
		if _, err := s.pmp.FeedOnePacket(); err != nil {
			s.buf.Invalidate()
			loopErr = err
			break feedLoop
		}

		for {
			frame, ferr := s.decoder.ReceiveFrame()
			if ferr != nil {
				if errors.Is(ferr, backend.ErrAgain) {
					break
				}
				if errors.Is(ferr, io.EOF) {
					shortfall := !cur.Empty()
					if shortfall {
						n := cur.Length()
						zeroFill(curData(), n, s.channels)
						cur = cur.ShrinkFront(n)
					}
					if s.logger != nil {
						s.logger.Debug("decoder drained, stream ended", "stream_index", s.streamIndex)
					}
					s.buf.Invalidate()
					if shortfall {
						loopErr = adaptererr.ErrShortfall
					}
					break feedLoop
				}
				s.buf.Invalidate()
				loopErr = ferr
				break feedLoop
			}

			readFrameIndex = s.reconcileFrame(frame, &cur, origStart, readFrameIndex, curData)
			frame.Release()
		}
	}

	result := s.readableResult(readableStart, cur.Start, fullData)
	switch {
	case loopErr == nil:
		return result, nil
	case errors.Is(loopErr, adaptererr.ErrShortfall):
		return result, loopErr
	default:
		return result, fmt.Errorf("%w: %v", adaptererr.ErrInvalidated, loopErr)
	}
}

func (s *Session) readableResult(readableStart, readableEnd int64, fullData []float32) buffer.Readable {
	n := readableEnd - readableStart
	if n < 0 {
		n = 0
	}
	return buffer.Readable{
		Range: indexrange.Between(readableStart, readableStart+n),
		Data:  fullData[:n*int64(s.channels)],
	}
}

// reconcileFrame runs one decoded frame through the reconciliation steps
// of §4.F's inner receive loop against cur (what's still wanted) and
// readFrameIndex (the logical next index the caller expects), returning
// the updated readFrameIndex.
func (s *Session) reconcileFrame(frame backend.Frame, cur *indexrange.Range, origStart, readFrameIndex int64, curData func() []float32) int64 {
	decodedRange := indexrange.ForwardRange(s.mapper.PTSToFrameIndex(frame.PTS()), frame.NbSamples())
	decodedData := frame.Samples()
	decodedOffset := int64(0)

	if readFrameIndex == constants.UnknownFrameIndex {
		readFrameIndex = decodedRange.Start
	}

	if s.verboseTrace && s.logger != nil {
		s.logger.Debug("decoded frame",
			"stream_index", s.streamIndex, "pts", frame.PTS(),
			"nb_samples", frame.NbSamples(), "decoded_start", decodedRange.Start)
	}

	// Overlap-behind: the decoder emitted earlier samples than expected.
	if decodedRange.Start < readFrameIndex {
		overlap := indexrange.Between(decodedRange.Start, readFrameIndex)
		if readFrameIndex > constants.MinFrameIndex && s.logger != nil {
			s.logger.Warn("overlapping sample frames", "range", overlap.String())
		}
		consumed := indexrange.Between(origStart, maxInt64(readFrameIndex, origStart))
		rewind := indexrange.Intersect(overlap, consumed)
		if !rewind.Empty() {
			discarded := s.buf.DiscardLastBufferedFrames(rewind.Length())
			rewind = rewind.ShrinkBack(discarded)
			*cur = indexrange.Between(rewind.Start, cur.End)
		}
		readFrameIndex = decodedRange.Start
	}

	// Gap-ahead fill: the caller wants frames earlier than anything
	// decoded so far.
	if cur.Start < readFrameIndex {
		missing := indexrange.Between(cur.Start, minInt64(readFrameIndex, cur.End))
		if !missing.Empty() {
			if s.logger != nil {
				s.logger.Warn("generating silence for missing sample data", "range", missing.String())
			}
			n := missing.Length()
			zeroFill(curData(), n, s.channels)
			*cur = cur.ShrinkFront(n)
		}
	}

	// Skipped-frame note: the decoder jumped ahead of where the caller
	// left off; the gap is filled with silence below.
	if skipped := indexrange.Between(readFrameIndex, decodedRange.Start); !skipped.Empty() {
		if s.logger != nil {
			if readFrameIndex <= s.frameRange.Start {
				s.logger.Debug("silence for skipped sample data at stream head", "range", skipped.String())
			} else {
				s.logger.Warn("silence for skipped sample data", "range", skipped.String())
			}
		}
	}

	// Discard-pre: the caller has already moved past part of this frame
	// (e.g. after a preroll seek). Shrink decodedRange from the front to
	// match.
	if cur.Start > readFrameIndex {
		excessive := indexrange.Between(decodedRange.Start, minInt64(cur.Start, decodedRange.End))
		if excessive.Orientation() == indexrange.Forward {
			n := excessive.Length()
			decodedOffset += n
			decodedRange = decodedRange.ShrinkFront(n)
			readFrameIndex = excessive.End
		}
		if decodedRange.Empty() {
			s.buf.ResetAt(readFrameIndex)
			return readFrameIndex
		}
	}

	// Silence fill of skipped: whatever gap remains between the caller's
	// position and the (possibly trimmed) decoded data.
	if !cur.Empty() {
		skippable := indexrange.Between(cur.Start, minInt64(decodedRange.Start, cur.End))
		if skippable.Orientation() == indexrange.Forward {
			n := skippable.Length()
			zeroFill(curData(), n, s.channels)
			*cur = cur.ShrinkFront(n)
			readFrameIndex += n
		}
	}

	// Copy: the caller's position and the decoded data now agree.
	if !cur.Empty() {
		copyable := indexrange.Between(readFrameIndex, minInt64(decodedRange.End, cur.End))
		if copyable.Orientation() == indexrange.Forward {
			n := copyable.Length()
			dst := curData()
			src := decodedData[decodedOffset*int64(s.channels) : (decodedOffset+n)*int64(s.channels)]
			copy(dst[:n*int64(s.channels)], src)
			decodedOffset += n
			decodedRange = decodedRange.ShrinkFront(n)
			*cur = cur.ShrinkFront(n)
			readFrameIndex += n
		}
	}

	s.buf.ResetAt(readFrameIndex)

	remainder := buffer.Readable{
		Range: decodedRange,
		Data:  decodedData[decodedOffset*int64(s.channels) : (decodedOffset+decodedRange.Length())*int64(s.channels)],
	}
	s.buf.BufferFrames(buffer.FillGapWithSilence, remainder)

	// Trailing overflow: some encoders (notably MP3 VBR, certain AAC)
	// emit a few trailing samples beyond duration.
	if bufEnd := s.buf.BufferedRange().End; bufEnd > s.frameRange.End {
		overflow := bufEnd - s.frameRange.End
		if s.logger != nil {
			s.logger.Info("discarding trailing overflow", "frames", overflow)
		}
		s.buf.DiscardLastBufferedFrames(overflow)
	}

	return readFrameIndex
}

func zeroFill(data []float32, frames int64, channels int) {
	n := frames * int64(channels)
	if n <= 0 {
		return
	}
	clear(data[:n])
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
