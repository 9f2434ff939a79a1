package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/asticode/go-astiav"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/adaptererr"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/backend"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/config"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/index"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/resample"
)

// astiavBackend is the production backend.Demuxer + backend.Decoder,
// wrapping one opened go-astiav format/codec context pair. The demuxer
// and decoder halves share the same reusable *astiav.Packet, since the
// packet pump only ever sends the packet it most recently read (§5
// "packet ownership").
type astiavBackend struct {
	fc          *astiav.FormatContext
	decCtx      *astiav.CodecContext
	resampler   *resample.Resampler
	pkt         *astiav.Packet
	srcFrame    *astiav.Frame
	streamIndex int
}

func (b *astiavBackend) ReadPacket() (backend.Packet, error) {
	b.pkt.Unref()
	if err := b.fc.ReadFrame(b.pkt); err != nil {
		var avErr astiav.Error
		if errors.As(err, &avErr) && avErr.Is(io.EOF) {
			return backend.Packet{}, io.EOF
		}
		return backend.Packet{}, err
	}
	return backend.Packet{StreamIndex: b.pkt.StreamIndex(), PTS: b.pkt.Pts()}, nil
}

func (b *astiavBackend) SeekBackward(ptsTarget int64) error {
	flags := astiav.NewSeekFlags(astiav.SeekFlagBackward)
	if err := b.fc.SeekFrame(b.streamIndex, ptsTarget, flags); err != nil {
		return err
	}
	return b.fc.Flush()
}

func (b *astiavBackend) SendPacket(pkt backend.Packet) error {
	var err error
	if pkt.Flush {
		err = b.decCtx.SendPacket(nil)
	} else {
		err = b.decCtx.SendPacket(b.pkt)
	}
	if err == nil {
		return nil
	}
	var avErr astiav.Error
	if errors.As(err, &avErr) && avErr.Is(astiav.ErrEagain) {
		return backend.ErrAgain
	}
	return err
}

func (b *astiavBackend) ReceiveFrame() (backend.Frame, error) {
	b.srcFrame.Unref()
	if err := b.decCtx.ReceiveFrame(b.srcFrame); err != nil {
		var avErr astiav.Error
		if errors.As(err, &avErr) {
			if avErr.Is(astiav.ErrEagain) {
				return nil, backend.ErrAgain
			}
			if avErr.Is(astiav.ErrEof) || avErr.Is(io.EOF) {
				return nil, io.EOF
			}
		}
		return nil, err
	}

	dst, err := b.resampler.Convert(b.srcFrame)
	if err != nil {
		return nil, err
	}
	raw, err := dst.Data().Bytes(0)
	if err != nil {
		return nil, fmt.Errorf("read decoded frame data: %w", err)
	}
	return &astiavFrame{
		pts:       dst.Pts(),
		nbSamples: int64(dst.NbSamples()),
		samples:   bytesToFloat32(raw),
	}, nil
}

func (b *astiavBackend) FlushBuffers() {
	b.decCtx.FlushBuffers()
}

// astiavFrame is a snapshot of one decoded frame. ReceiveFrame copies the
// samples out of the reusable scratch frame (bytesToFloat32), so the
// Samples() slice stays valid after the backend's next ReceiveFrame call.
type astiavFrame struct {
	pts       int64
	nbSamples int64
	samples   []float32
}

func (f *astiavFrame) PTS() int64         { return f.pts }
func (f *astiavFrame) NbSamples() int64   { return f.nbSamples }
func (f *astiavFrame) Samples() []float32 { return f.samples }
func (f *astiavFrame) Release()           {}

func bytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// astiavStreamInfo adapts an *astiav.Stream to index.StreamInfo, keeping
// the index package free of any cgo dependency.
type astiavStreamInfo struct {
	st      *astiav.Stream
	codecID constants.CodecID
}

func (s astiavStreamInfo) TimeBase() index.Rational {
	tb := s.st.TimeBase()
	return index.Rational{Num: tb.Num, Den: tb.Den}
}
func (s astiavStreamInfo) StartTime() int64            { return s.st.StartTime() }
func (s astiavStreamInfo) Duration() int64             { return s.st.Duration() }
func (s astiavStreamInfo) SampleRate() int             { return s.st.CodecParameters().SampleRate() }
func (s astiavStreamInfo) CodecID() constants.CodecID { return s.codecID }

func mapCodecID(name string) constants.CodecID {
	switch name {
	case "aac":
		return constants.CodecIDAAC
	case "aac_latm":
		return constants.CodecIDAACLATM
	case "mp3", "mp3float", "mp3adu", "mp3adufloat":
		return constants.CodecIDMP3
	case "mp3on4", "mp3on4float":
		return constants.CodecIDMP3ON4
	default:
		return constants.CodecIDOther
	}
}

func defaultLayoutForChannelCount(channels int) astiav.ChannelLayout {
	switch channels {
	case 1:
		return astiav.ChannelLayoutMono
	case 2:
		return astiav.ChannelLayoutStereo
	default:
		return astiav.ChannelLayoutStereo
	}
}

// Open implements §4.G's Open sequence against a real go-astiav codec
// backend: demux open, stream info, best-audio-stream selection, decoder
// configuration and open, resampler init, duration assertion, signal-info
// publication and read-ahead buffer sizing.
func Open(fileURI string, opts config.Options) (*Session, adaptererr.OpenResult, error) {
	opts, err := config.Load(opts)
	if err != nil {
		return nil, adaptererr.Failed, err
	}

	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, adaptererr.Failed, fmt.Errorf("sampleadapter: allocate format context")
	}
	if err := fc.OpenInput(fileURI, nil, nil); err != nil {
		fc.Free()
		return nil, adaptererr.Failed, fmt.Errorf("open input: %w", err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Failed, fmt.Errorf("find stream info: %w", err)
	}

	st, codec, err := fc.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil || st == nil || codec == nil {
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Aborted, adaptererr.ErrNoAudioStream
	}

	decCtx := astiav.AllocCodecContext(codec)
	if decCtx == nil {
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Aborted, fmt.Errorf("sampleadapter: allocate codec context")
	}
	if err := decCtx.FromCodecParameters(st.CodecParameters()); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Aborted, fmt.Errorf("copy codec parameters: %w", err)
	}
	decCtx.SetTimeBase(st.TimeBase())

	streamLayout := decCtx.ChannelLayout()
	channels := streamLayout.Channels()
	if channels <= 0 {
		channels = st.CodecParameters().ChannelLayout().Channels()
	}
	layoutDefined := streamLayout.Valid() && streamLayout.Channels() > 0
	if !index.StreamChannelLayoutDefined(layoutDefined, channels, opts.Logger) {
		streamLayout = defaultLayoutForChannelCount(channels)
		decCtx.SetChannelLayout(streamLayout)
	}
	if opts.RequestedChannelCount > 0 {
		channels = opts.RequestedChannelCount
		streamLayout = defaultLayoutForChannelCount(channels)
		decCtx.SetChannelLayout(streamLayout)
	}

	decCtx.SetRequestSampleFormat(astiav.SampleFormatFlt)

	if err := decCtx.Open(codec, nil); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Failed, fmt.Errorf("open decoder: %w", err)
	}

	streamFormat := decCtx.SampleFormat()
	targetFormat := astiav.SampleFormatFlt
	var resampler *resample.Resampler
	if resample.NeedsResampling(streamLayout, streamLayout, streamFormat, targetFormat) {
		resampler, err = resample.New(streamLayout, streamFormat, decCtx.SampleRate(), targetFormat, opts.Logger)
		if err != nil {
			decCtx.Free()
			fc.CloseInput()
			fc.Free()
			return nil, adaptererr.Failed, fmt.Errorf("init resampler: %w", err)
		}
	}

	codecID := mapCodecID(codec.Name())
	mapper := index.NewMapper(astiavStreamInfo{st: st, codecID: codecID}, opts.Logger)
	frameRange := mapper.FrameIndexRange()
	if frameRange.Empty() {
		resampler.Close()
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, adaptererr.Failed, adaptererr.ErrUnknownDuration
	}

	var frameSize int64
	if decCtx.FrameSize() > 0 {
		frameSize = int64(decCtx.FrameSize())
	}

	backendImpl := &astiavBackend{
		fc:          fc,
		decCtx:      decCtx,
		resampler:   resampler,
		pkt:         astiav.AllocPacket(),
		srcFrame:    astiav.AllocFrame(),
		streamIndex: st.Index(),
	}

	closeFn := func() {
		if backendImpl.srcFrame != nil {
			backendImpl.srcFrame.Free()
		}
		if backendImpl.pkt != nil {
			backendImpl.pkt.Free()
		}
		resampler.Close()
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
	}

	params := openParams{
		demuxer:                 backendImpl,
		decoder:                 backendImpl,
		streamIndex:             st.Index(),
		mapper:                  mapper,
		codecID:                 codecID,
		channels:                channels,
		sampleRate:              decCtx.SampleRate(),
		bitrateKbps:             int(st.CodecParameters().BitRate() / 1000),
		frameSize:               frameSize,
		backendDefaultPreroll:   int64(st.CodecParameters().SeekPreroll()),
		readAheadCapacityFrames: opts.ReadAheadCapacityFrames,
		closeFn:                 closeFn,
	}

	sessionOpts := []Option{WithLogger(opts.Logger)}
	if opts.VerboseTrace {
		sessionOpts = append(sessionOpts, WithVerboseTrace())
	}

	sess := newSession(params, sessionOpts...)
	return sess, adaptererr.Succeeded, nil
}
