// Package index implements the bijection between backend stream
// timestamps and the caller-facing, zero-based frame index (§4.A).
package index

import (
	"log/slog"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/indexrange"
)

// NoPTS is the sentinel presentation timestamp meaning "unknown", mirroring
// the backend's AV_NOPTS_VALUE.
const NoPTS int64 = -1 << 63

// Rational is a small num/den pair, decoupled from the backend's own
// rational type so this package has no cgo dependency.
type Rational struct {
	Num, Den int
}

// Float64 returns num/den as a float64; used only for logging.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// StreamInfo is the minimal view of a demuxed audio stream the mapper
// needs. The session package adapts a real *astiav.Stream to this
// interface.
type StreamInfo interface {
	TimeBase() Rational
	StartTime() int64 // NoPTS if undefined
	Duration() int64  // NoPTS if undefined
	SampleRate() int
	CodecID() constants.CodecID
}

// rescaleQ mirrors av_rescale_q: converts a value expressed in time base
// `from` into the equivalent value in time base `to`, rounding to nearest.
func rescaleQ(value int64, from, to Rational) int64 {
	if from.Den == 0 || to.Den == 0 || to.Num == 0 {
		return 0
	}
	// value * (from.Num/from.Den) / (to.Num/to.Den)
	// = value * from.Num * to.Den / (from.Den * to.Num)
	num := value * int64(from.Num) * int64(to.Den)
	den := int64(from.Den) * int64(to.Num)
	if den == 0 {
		return 0
	}
	// round-half-away-from-zero, matching av_rescale_q's default rounding.
	if (num < 0) != (den < 0) {
		return -((-num + den/2) / den)
	}
	return (num + den/2) / den
}

// EffectiveStartTime returns stream.StartTime() if defined, otherwise 0,
// except for AAC variants where it returns the documented 2112-sample
// decoder delay.
func EffectiveStartTime(stream StreamInfo, logger *slog.Logger) int64 {
	startTime := stream.StartTime()
	if startTime != NoPTS {
		return startTime
	}
	var substitute int64
	switch stream.CodecID() {
	case constants.CodecIDAAC, constants.CodecIDAACLATM:
		substitute = constants.AACDecoderDelayFrames
		if substitute < 0 {
			substitute = 0
		}
	default:
		substitute = 0
	}
	if logger != nil {
		logger.Debug("unknown stream start time, using default",
			"substitute", substitute, "codec", stream.CodecID())
	}
	return substitute
}

// EffectiveEndTime returns stream.Duration() if it is at or after
// startTime, otherwise startTime (treating the stream as empty).
func EffectiveEndTime(stream StreamInfo, startTime int64) int64 {
	duration := stream.Duration()
	if duration == NoPTS || duration < startTime {
		return startTime
	}
	return duration
}

// Mapper converts between backend PTS and caller-facing frame indices for
// one opened stream.
type Mapper struct {
	timeBase   Rational
	sampleRate int
	startTime  int64
	endTime    int64
}

// NewMapper builds a Mapper bound to stream's time base and sample rate,
// resolving the effective start/end time up front.
func NewMapper(stream StreamInfo, logger *slog.Logger) *Mapper {
	startTime := EffectiveStartTime(stream, logger)
	return &Mapper{
		timeBase:   stream.TimeBase(),
		sampleRate: stream.SampleRate(),
		startTime:  startTime,
		endTime:    EffectiveEndTime(stream, startTime),
	}
}

// PTSToFrameIndex converts a backend timestamp to a frame index.
func (m *Mapper) PTSToFrameIndex(pts int64) int64 {
	return constants.MinFrameIndex + rescaleQ(pts-m.startTime, m.timeBase, Rational{1, m.sampleRate})
}

// FrameIndexToPTS is the inverse of PTSToFrameIndex.
func (m *Mapper) FrameIndexToPTS(idx int64) int64 {
	return m.startTime + rescaleQ(idx-constants.MinFrameIndex, Rational{1, m.sampleRate}, m.timeBase)
}

// FrameIndexRange returns the exposed stream range [MinFrameIndex,
// MinFrameIndex+length), hiding the backend's own start time so every
// supported file presents the same origin.
func (m *Mapper) FrameIndexRange() indexrange.Range {
	length := m.PTSToFrameIndex(m.endTime) - m.PTSToFrameIndex(m.startTime)
	return indexrange.ForwardRange(constants.MinFrameIndex, length)
}

// StreamChannelLayoutDefined reports whether stream reports an explicit
// channel layout (as opposed to needing the default-layout-for-count
// workaround applied at the session boundary, e.g. mono WAV).
func StreamChannelLayoutDefined(layoutDefined bool, channelCount int, logger *slog.Logger) bool {
	if !layoutDefined && logger != nil {
		logger.Debug("undefined channel layout, using default for channel count",
			"channel_count", channelCount)
	}
	return layoutDefined
}
