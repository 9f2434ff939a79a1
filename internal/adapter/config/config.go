// Package config defines the adapter's Open-time options. It mirrors the
// shape of the teacher's environment-driven internal/config/config.go (a
// typed struct behind a validating constructor, a sentinel error) but
// reads no environment variables: the interface contract explicitly rules
// out env vars and persisted state, so every field is instead an explicit
// caller-supplied option.
package config

import (
	"errors"
	"log/slog"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
)

// ErrConfig reports an invalid combination of Options.
var ErrConfig = errors.New("sampleadapter/config: invalid options")

// Options carries the Open API's "open_params" (advisory requested
// channel count) plus session-wide tuning that has no per-file source.
type Options struct {
	// RequestedChannelCount, if non-zero, requests the default channel
	// layout for that count instead of the stream's own layout.
	RequestedChannelCount int
	// ReadAheadCapacityFrames sizes the read-ahead buffer's initial
	// capacity hint. Zero selects the default (max decoded frames per
	// packet times a typical decoded frame length).
	ReadAheadCapacityFrames int64
	// Logger receives all session diagnostics. Nil selects slog.Default().
	Logger *slog.Logger
	// VerboseTrace enables per-frame trace logging; the packet pump's
	// per-packet Debug record is emitted regardless.
	VerboseTrace bool
}

// defaultTypicalFrameLength is used only to size the read-ahead buffer's
// initial capacity hint; the buffer itself grows as needed.
const defaultTypicalFrameLength = 4096

// Load validates opts and fills in defaults.
func Load(opts Options) (Options, error) {
	if opts.RequestedChannelCount < 0 {
		return Options{}, errors.Join(ErrConfig, errors.New("negative requested channel count"))
	}
	if opts.ReadAheadCapacityFrames < 0 {
		return Options{}, errors.Join(ErrConfig, errors.New("negative read-ahead capacity"))
	}
	if opts.ReadAheadCapacityFrames == 0 {
		opts.ReadAheadCapacityFrames = constants.MaxDecodedFramesPerPacket * defaultTypicalFrameLength
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts, nil
}
