// Package resample wraps astiav.SoftwareResampleContext as a lazily
// constructed channel-layout + sample-format converter (§4.C). It never
// changes the sample rate; only format/layout normalization is offered,
// and channel count is deliberately left equal to the stream's own count
// even when a resample is otherwise required (per §4.C and the original
// implementation's note that resampling to a different channel count
// breaks downstream position bookkeeping).
package resample

import (
	"fmt"
	"log/slog"

	"github.com/asticode/go-astiav"
)

// NeedsResampling reports whether any of {channel layout, sample format}
// differ between the decoded stream and the target output shape. The
// sample rate is intentionally excluded: it is never converted.
func NeedsResampling(streamLayout, targetLayout astiav.ChannelLayout, streamFormat, targetFormat astiav.SampleFormat) bool {
	if streamFormat != targetFormat {
		return true
	}
	if streamLayout.Channels() != targetLayout.Channels() {
		return true
	}
	if streamLayout.String() != targetLayout.String() {
		return true
	}
	return false
}

// Resampler converts decoded frames into the session's target sample
// format/layout. A nil *Resampler is a valid pass-through: Convert simply
// returns src itself.
type Resampler struct {
	swr *astiav.SoftwareResampleContext

	streamLayout astiav.ChannelLayout
	targetLayout astiav.ChannelLayout
	targetFormat astiav.SampleFormat
	sampleRate   int

	dstFrame *astiav.Frame
	logger   *slog.Logger
}

// New allocates and initializes a resampler converting from
// (streamLayout, streamFormat, sampleRate) to (streamLayout's channel
// count kept, targetFormat) at the same sampleRate.
func New(streamLayout astiav.ChannelLayout, streamFormat astiav.SampleFormat, sampleRate int, targetFormat astiav.SampleFormat, logger *slog.Logger) (*Resampler, error) {
	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		return nil, fmt.Errorf("resample: allocate software resample context")
	}
	dstFrame := astiav.AllocFrame()
	if dstFrame == nil {
		swr.Free()
		return nil, fmt.Errorf("resample: allocate destination frame")
	}
	r := &Resampler{
		swr:          swr,
		streamLayout: streamLayout,
		targetLayout: streamLayout, // channel count/layout is kept, only format changes
		targetFormat: targetFormat,
		sampleRate:   sampleRate,
		dstFrame:     dstFrame,
		logger:       logger,
	}
	return r, nil
}

// Close releases the resampler's native resources.
func (r *Resampler) Close() {
	if r == nil {
		return
	}
	if r.dstFrame != nil {
		r.dstFrame.Free()
		r.dstFrame = nil
	}
	if r.swr != nil {
		r.swr.Free()
		r.swr = nil
	}
}

// Convert runs src through the resampler, returning the resampler's
// destination frame. If r is nil (pass-through), src itself is returned
// unmodified.
//
// The destination frame's channel layout, sample rate and sample format
// are re-established immediately before every conversion, after any
// Unref() and before the ConvertFrame call — Unref() clears frame
// metadata, and ConvertFrame requires the destination frame's shape to be
// pre-set (§9 open question on swr_convert_frame vs swr_convert).
func (r *Resampler) Convert(src *astiav.Frame) (*astiav.Frame, error) {
	if r == nil {
		return src, nil
	}

	if !src.ChannelLayout().Valid() {
		// Some decoders leave the channel layout undefined; patch it to
		// the cached stream layout before conversion.
		src.SetChannelLayout(r.streamLayout)
	}

	r.dstFrame.Unref()
	r.dstFrame.SetChannelLayout(r.targetLayout)
	r.dstFrame.SetSampleRate(r.sampleRate)
	r.dstFrame.SetSampleFormat(r.targetFormat)

	if err := r.swr.ConvertFrame(src, r.dstFrame); err != nil {
		return nil, fmt.Errorf("resample: convert frame: %w", err)
	}

	// The source's DEBUG_ASSERT here used `=` instead of `==`; this is
	// the intended equality check, downgraded to a warning log rather
	// than a panic (§7 "no exceptions/aborts escape").
	if src.Pts() != r.dstFrame.Pts() && r.logger != nil {
		r.logger.Warn("resampled frame pts mismatch", "src_pts", src.Pts(), "dst_pts", r.dstFrame.Pts())
	}
	if src.NbSamples() != r.dstFrame.NbSamples() && r.logger != nil {
		r.logger.Warn("resampled frame sample-count mismatch", "src_nb_samples", src.NbSamples(), "dst_nb_samples", r.dstFrame.NbSamples())
	}
	return r.dstFrame, nil
}
