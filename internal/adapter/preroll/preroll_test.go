package preroll

import (
	"testing"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
)

func TestFrames_MP3Stereo(t *testing.T) {
	got := Frames(constants.CodecIDMP3, 2, 0)
	want := constants.MP3SeekPrerollFrameCount * (constants.SamplesPerMP3Frame / 2)
	if got != want {
		t.Errorf("Frames(MP3, stereo) = %d, want %d", got, want)
	}
}

func TestFrames_MP3Mono(t *testing.T) {
	got := Frames(constants.CodecIDMP3, 1, 0)
	want := constants.MP3SeekPrerollFrameCount * constants.SamplesPerMP3Frame
	if got != want {
		t.Errorf("Frames(MP3, mono) = %d, want %d", got, want)
	}
}

func TestFrames_MP3WideLayoutFallsBackToStereoDivisor(t *testing.T) {
	got := Frames(constants.CodecIDMP3, 6, 0)
	want := constants.MP3SeekPrerollFrameCount * (constants.SamplesPerMP3Frame / 2)
	if got != want {
		t.Errorf("Frames(MP3, 6ch) = %d, want %d", got, want)
	}
}

func TestFrames_AAC(t *testing.T) {
	if got := Frames(constants.CodecIDAAC, 2, 0); got != constants.AACDecoderDelayFrames {
		t.Errorf("Frames(AAC) = %d, want %d", got, constants.AACDecoderDelayFrames)
	}
	if got := Frames(constants.CodecIDAACLATM, 2, 0); got != constants.AACDecoderDelayFrames {
		t.Errorf("Frames(AACLATM) = %d, want %d", got, constants.AACDecoderDelayFrames)
	}
}

func TestFrames_OtherCodecHasNoCodecSpecificPreroll(t *testing.T) {
	if got := Frames(constants.CodecIDOther, 2, 0); got != 0 {
		t.Errorf("Frames(Other) = %d, want 0", got)
	}
}

func TestFrames_BackendDefaultWinsWhenLarger(t *testing.T) {
	if got := Frames(constants.CodecIDOther, 2, 10000); got != 10000 {
		t.Errorf("Frames() = %d, want backendDefault 10000", got)
	}
	// Backend default smaller than the codec-specific minimum must not win.
	if got := Frames(constants.CodecIDAAC, 2, 10); got != constants.AACDecoderDelayFrames {
		t.Errorf("Frames() = %d, want codec-specific %d", got, constants.AACDecoderDelayFrames)
	}
}
