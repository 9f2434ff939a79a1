// Package adaptererr defines the adapter's error vocabulary (§7).
package adaptererr

import (
	"errors"

	"github.com/asticode/go-astiav"
)

// OpenResult mirrors the three-way open outcome from §6/§7.
type OpenResult int

const (
	// Succeeded means the session is ready for reads.
	Succeeded OpenResult = iota
	// Failed means the backend refused the input outright (bad path,
	// unknown format, decoder init failure, unknown/unlimited duration,
	// invalid frame-index range).
	Failed
	// Aborted means the file is well-formed but unsupported (no audio
	// stream, no decoder, parameter copy failed).
	Aborted
)

func (r OpenResult) String() string {
	switch r {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Sentinel errors observable through a read's short readable range or an
// Open failure (§7 "Propagation").
var (
	// ErrInvalidated indicates a decode/demux operation failed mid-stream;
	// the session's buffer is now invalid and the next read must re-seek.
	ErrInvalidated = errors.New("sampleadapter: read-ahead buffer invalidated")
	// ErrShortfall indicates the stream ended before the caller's writable
	// range was filled; the remainder was zero-filled.
	ErrShortfall = errors.New("sampleadapter: stream ended before writable range was filled")
	// ErrSeekFailed indicates the backend refused a seek request.
	ErrSeekFailed = errors.New("sampleadapter: backend seek failed")
	// ErrNoAudioStream indicates no audio stream/decoder was found.
	ErrNoAudioStream = errors.New("sampleadapter: no usable audio stream found")
	// ErrUnknownDuration indicates the stream reports no finite duration.
	ErrUnknownDuration = errors.New("sampleadapter: stream duration is unknown or unbounded")
	// ErrInvalidFrameRange indicates the derived frame index range is
	// backward or otherwise unusable.
	ErrInvalidFrameRange = errors.New("sampleadapter: invalid frame index range")
)

// FormatAVError renders a backend error code as a message. Unlike the
// source's formatErrorMessage (which passed a broken
// `sizeof(buf)/sizeof(buf[0]) == 0` expression as the buffer size and so
// almost always reported "no description available"), this simply defers
// to astiav.Error's own Error() rendering.
func FormatAVError(err error) string {
	if err == nil {
		return ""
	}
	var avErr astiav.Error
	if errors.As(err, &avErr) {
		return avErr.Error()
	}
	return err.Error()
}
