// Package constants collects the codec-specific magic numbers used across
// the adapter so they live in one place instead of being scattered through
// the preroll, index and session packages.
package constants

// MinFrameIndex is the frame index the adapter presents for the first
// audible sample frame of every stream, regardless of the backend's own
// start time.
const MinFrameIndex int64 = 0

// AACDecoderDelayFrames is the Apple-documented AAC encoder delay: absent
// an explicit start time, playback systems trim this many samples from the
// decoder output before the stream is considered to start.
//
// https://developer.apple.com/library/archive/documentation/QuickTime/QTFF/QTFFAppenG/QTFFAppenG.html
const AACDecoderDelayFrames int64 = 2112

// SamplesPerMP3Frame is the fixed number of PCM samples produced by one
// decoded MPEG-1/2 Layer III frame.
const SamplesPerMP3Frame int64 = 1152

// MP3SeekPrerollFrameCount is how many MP3 frames are decoded ahead of a
// seek target to drain the bit reservoir. 29 frames would be the
// theoretical worst case; 9 has been sufficient in practice and keeps
// re-seeks from decoding an excessive number of frames.
const MP3SeekPrerollFrameCount int64 = 9

// MaxDecodedFramesPerPacket bounds the read-ahead buffer's expected
// occupancy: a single compressed packet may expand into more than one
// decoded stream frame, but rarely more than a handful.
const MaxDecodedFramesPerPacket int64 = 4

// InvalidFrameIndex is the sentinel returned when a read or seek operation
// fails unrecoverably.
const InvalidFrameIndex int64 = -1

// UnknownFrameIndex is the sentinel used for a packet or frame whose
// presentation timestamp is not (yet) known.
const UnknownFrameIndex int64 = -2
