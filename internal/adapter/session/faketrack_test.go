package session

import (
	"errors"
	"io"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/backend"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/index"
)

// fakeFrame implements backend.Frame over a plain sample slice.
type fakeFrame struct {
	pts       int64
	nbSamples int64
	data      []float32
}

func (f *fakeFrame) PTS() int64         { return f.pts }
func (f *fakeFrame) NbSamples() int64   { return f.nbSamples }
func (f *fakeFrame) Samples() []float32 { return f.data }
func (f *fakeFrame) Release()           {}

// fakeTrack is the "test double for the codec backend" (§8 property 5):
// a one-packet-per-decoded-frame demuxer/decoder pair driven entirely by
// data baked in ahead of time via addFrame, with no real compressed
// bitstream involved.
type fakeTrack struct {
	channels int

	packets []backend.Packet
	frames  map[int64]*fakeFrame
	readIdx int

	pending  *fakeFrame
	draining bool

	seeks      []int64
	flushCount int

	failAtPTS int64 // -1 disables the injected failure
	failed    bool
}

func newFakeTrack(channels int) *fakeTrack {
	return &fakeTrack{channels: channels, frames: make(map[int64]*fakeFrame), failAtPTS: -1}
}

// addFrame registers one decoded frame at the given PTS. Tests build a
// mapper whose time base and start time make PTS equal to frame index, so
// callers pass frame indices directly.
func (t *fakeTrack) addFrame(pts int64, samples []float32) {
	t.addFrameAt(pts, pts, samples)
}

// addFrameAt registers a packet at packetPTS whose decoded frame reports
// framePTS, letting tests construct a decoder that emits samples starting
// at a different position than the packet that produced them — the
// overlapping/reordered-frame scenario §4.F's overlap-behind branch
// exists to reconcile.
func (t *fakeTrack) addFrameAt(packetPTS, framePTS int64, samples []float32) {
	nb := int64(len(samples)) / int64(t.channels)
	t.packets = append(t.packets, backend.Packet{StreamIndex: 0, PTS: packetPTS})
	t.frames[packetPTS] = &fakeFrame{pts: framePTS, nbSamples: nb, data: samples}
}

func (t *fakeTrack) ReadPacket() (backend.Packet, error) {
	if t.readIdx >= len(t.packets) {
		return backend.Packet{}, io.EOF
	}
	pkt := t.packets[t.readIdx]
	t.readIdx++
	return pkt, nil
}

func (t *fakeTrack) SeekBackward(ptsTarget int64) error {
	t.seeks = append(t.seeks, ptsTarget)
	idx := 0
	for i, pkt := range t.packets {
		if pkt.PTS <= ptsTarget {
			idx = i
		} else {
			break
		}
	}
	t.readIdx = idx
	return nil
}

func (t *fakeTrack) SendPacket(pkt backend.Packet) error {
	if pkt.Flush {
		t.draining = true
		return nil
	}
	f, ok := t.frames[pkt.PTS]
	if !ok {
		return nil
	}
	t.pending = f
	return nil
}

func (t *fakeTrack) ReceiveFrame() (backend.Frame, error) {
	if t.pending != nil {
		f := t.pending
		if t.failAtPTS >= 0 && f.pts == t.failAtPTS && !t.failed {
			t.failed = true
			t.pending = nil
			return nil, errors.New("fake decode failure")
		}
		t.pending = nil
		return f, nil
	}
	if t.draining {
		return nil, io.EOF
	}
	return nil, backend.ErrAgain
}

func (t *fakeTrack) FlushBuffers() {
	t.flushCount++
	t.pending = nil
	t.draining = false
}

// fakeStreamInfo implements index.StreamInfo with a 1/sampleRate time base
// and zero start time, so PTS and frame index coincide directly.
type fakeStreamInfo struct {
	sampleRate int
	duration   int64
	codecID    constants.CodecID
}

func (f fakeStreamInfo) TimeBase() index.Rational   { return index.Rational{Num: 1, Den: f.sampleRate} }
func (f fakeStreamInfo) StartTime() int64           { return 0 }
func (f fakeStreamInfo) Duration() int64            { return f.duration }
func (f fakeStreamInfo) SampleRate() int            { return f.sampleRate }
func (f fakeStreamInfo) CodecID() constants.CodecID { return f.codecID }
