// Package pump implements the packet pump (§4.E): reading demuxed packets
// for the selected stream and feeding them to the decoder with EAGAIN
// retry handling, entering drain mode on EOF.
package pump

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/backend"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/constants"
	"github.com/sonroyaalmerol/sampleadapter/internal/adapter/index"
)

// FrameIndexMapper is the subset of index.Mapper the pump needs to log a
// packet's frame index.
type FrameIndexMapper interface {
	PTSToFrameIndex(pts int64) int64
}

// Pump reads packets for one selected stream and feeds the decoder,
// retaining a packet across EAGAIN retries per the send policy in §4.E.
type Pump struct {
	demuxer     backend.Demuxer
	decoder     backend.Decoder
	streamIndex int
	mapper      FrameIndexMapper
	logger      *slog.Logger

	pending *backend.Packet
}

// New creates a Pump bound to the selected stream index.
func New(demuxer backend.Demuxer, decoder backend.Decoder, streamIndex int, mapper FrameIndexMapper, logger *slog.Logger) *Pump {
	return &Pump{
		demuxer:     demuxer,
		decoder:     decoder,
		streamIndex: streamIndex,
		mapper:      mapper,
		logger:      logger,
	}
}

// HasPendingPacket reports whether a packet is retained in flight (was
// sent to the decoder but the decoder returned EAGAIN).
func (p *Pump) HasPendingPacket() bool {
	return p.pending != nil
}

// readNextRelevantPacket returns the next packet belonging to the
// selected stream, skipping and releasing packets from other streams.
// On EOF it returns the drain-mode sentinel packet instead of an error.
func (p *Pump) readNextRelevantPacket() (backend.Packet, error) {
	for {
		pkt, err := p.demuxer.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if p.logger != nil {
					p.logger.Debug("EOF reading packets, entering drain mode", "stream_index", p.streamIndex)
				}
				return backend.Packet{StreamIndex: p.streamIndex, Flush: true}, nil
			}
			return backend.Packet{}, err
		}
		if pkt.StreamIndex != p.streamIndex {
			continue
		}
		return pkt, nil
	}
}

// frameIndexOf returns the packet's frame index via the mapper, or
// constants.UnknownFrameIndex if its PTS is unknown.
func (p *Pump) frameIndexOf(pkt backend.Packet) int64 {
	if pkt.PTS == index.NoPTS {
		return constants.UnknownFrameIndex
	}
	return p.mapper.PTSToFrameIndex(pkt.PTS)
}

// FeedOnePacket implements the frame pump's "feed one packet" step. It
// obtains a packet (reusing one retained from a prior EAGAIN if present),
// sends it to the decoder, and reports whether a packet remains in
// flight for the next call. A non-nil error means an unrecoverable
// demux/send failure occurred; the caller must invalidate the buffer and
// abort the current read.
func (p *Pump) FeedOnePacket() (inFlight bool, err error) {
	if p.pending == nil {
		pkt, err := p.readNextRelevantPacket()
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("read packet failed", "stream_index", p.streamIndex, "err", err)
			}
			return false, err
		}
		if p.logger != nil {
			p.logger.Debug("packet read", "stream_index", p.streamIndex, "pts", pkt.PTS, "frame_index", p.frameIndexOf(pkt))
		}
		p.pending = &pkt
	}

	sendErr := p.decoder.SendPacket(*p.pending)
	if sendErr == nil {
		p.pending = nil
		return false, nil
	}
	if errors.Is(sendErr, backend.ErrAgain) {
		// Retain and resend next iteration; never dropped.
		return true, nil
	}
	if p.logger != nil {
		p.logger.Warn("send packet failed", "stream_index", p.streamIndex, "err", sendErr)
	}
	p.pending = nil
	return false, sendErr
}
