// Package backend defines the narrow interfaces the frame pump and packet
// pump depend on, decoupling the read/seek state machine (the sole scope
// of this design, §1) from the concrete go-astiav bindings. The session
// package supplies the real astiav-backed implementation; tests supply a
// fake satisfying the same interfaces (§8 property 5, the "test double for
// the codec backend").
package backend

import "errors"

// ErrAgain mirrors the backend's EAGAIN: the normal cue to switch pump
// direction (send<->receive), never an error condition by itself (§9).
var ErrAgain = errors.New("sampleadapter/backend: EAGAIN")

// Packet is one demuxed compressed data unit for the selected stream, or
// the drain-mode sentinel when Flush is set.
type Packet struct {
	StreamIndex int
	PTS         int64 // index.NoPTS if unknown
	Flush       bool  // true: the zero-sized EOF sentinel packet (§4.E)
}

// Demuxer reads raw demuxed packets and performs backend seeks.
type Demuxer interface {
	// ReadPacket returns the next packet from any stream. io.EOF signals
	// end of input; any other error is unrecoverable.
	ReadPacket() (Packet, error)
	// SeekBackward seeks to the nearest safe position at or before
	// ptsTarget (backend time base), matching AVSEEK_FLAG_BACKWARD.
	SeekBackward(ptsTarget int64) error
}

// Frame is a decoded, already-normalized (resampled if needed) sample
// frame ready for reconciliation and copy into the caller's buffer.
type Frame interface {
	// PTS is the frame's presentation timestamp in the stream's time
	// base, or index.NoPTS if unknown (should not occur for real decoded
	// frames).
	PTS() int64
	// NbSamples is the number of sample frames this Frame carries.
	NbSamples() int64
	// Samples returns the interleaved PCM data, NbSamples()*channels
	// float32 values.
	Samples() []float32
	// Release returns scratch frame storage for reuse; must be called
	// exactly once per frame obtained from Decoder.ReceiveFrame.
	Release()
}

// Decoder feeds packets to and drains frames from the codec.
type Decoder interface {
	// SendPacket feeds pkt to the decoder. It returns ErrAgain if the
	// packet must be retained and resent, or a non-nil error on
	// unrecoverable failure. pkt.Flush requests drain mode.
	SendPacket(pkt Packet) error
	// ReceiveFrame drains one decoded frame. It returns ErrAgain when no
	// frame is currently available, io.EOF once the decoder is fully
	// drained, or a non-nil error on unrecoverable failure.
	ReceiveFrame() (Frame, error)
	// FlushBuffers discards internal decoder state, used before a
	// backend seek.
	FlushBuffers()
}
