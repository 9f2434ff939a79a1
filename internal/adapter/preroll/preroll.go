// Package preroll implements the codec-specific seek-preroll policy
// (§4.B): the minimum number of frames to decode ahead of a seek target to
// guarantee sample-accurate output.
package preroll

import "github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"

// Frames returns max(backendDefault, codec-specific) preroll frame count
// for codecID decoding channels audio channels.
func Frames(codecID constants.CodecID, channels int, backendDefault int64) int64 {
	var codecSpecific int64
	switch codecID {
	case constants.CodecIDMP3, constants.CodecIDMP3ON4:
		// The channel-count divisor only applies for mono/stereo; wider
		// layouts fall back to the stereo divisor rather than dividing by
		// a channel count MP3 never actually has.
		divisor := channels
		if divisor <= 0 || divisor > 2 {
			divisor = 2
		}
		codecSpecific = constants.MP3SeekPrerollFrameCount * (constants.SamplesPerMP3Frame / int64(divisor))
	case constants.CodecIDAAC, constants.CodecIDAACLATM:
		codecSpecific = constants.AACDecoderDelayFrames
	default:
		codecSpecific = 0
	}
	if backendDefault > codecSpecific {
		return backendDefault
	}
	return codecSpecific
}
