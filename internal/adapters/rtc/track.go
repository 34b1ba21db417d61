package rtc

import (
	"errors"
	"sync/atomic"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

var ErrTrackReleased = errors.New("track released")

type TrackState int32

const (
	TrackEnabled TrackState = iota
	TrackDisabled
	TrackReleased
)

// Track is a locally captured stream backed by a pion static RTP track.
// Disabled tracks drop packets; released tracks reject them.
type Track struct {
	Local *webrtc.TrackLocalStaticRTP
	kind  core.MediaKind
	state atomic.Int32 // Zero by default (TrackEnabled)
	sent  atomic.Uint64
	stop  chan struct{}
}

func newTrack(local *webrtc.TrackLocalStaticRTP, kind core.MediaKind) *Track {
	return &Track{Local: local, kind: kind, stop: make(chan struct{})}
}

var _ core.MediaHandle = (*Track)(nil)

func (t *Track) ID() string { return t.Local.ID() }

func (t *Track) Kind() core.MediaKind { return t.kind }

func (t *Track) State() TrackState { return TrackState(t.state.Load()) }

func (t *Track) Enabled() bool { return t.State() == TrackEnabled }

func (t *Track) SetEnabled(on bool) {
	next := TrackDisabled
	if on {
		next = TrackEnabled
	}
	for {
		cur := t.state.Load()
		if TrackState(cur) == TrackReleased {
			return
		}
		if t.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

// markReleased reports whether this call released the track.
func (t *Track) markReleased() bool {
	if TrackState(t.state.Swap(int32(TrackReleased))) == TrackReleased {
		return false
	}
	close(t.stop)
	return true
}

// Sent is the number of packets handed to the local track.
func (t *Track) Sent() uint64 { return t.sent.Load() }

func (t *Track) WriteRTP(pkt *rtp.Packet) error {
	switch t.State() {
	case TrackReleased:
		return ErrTrackReleased
	case TrackDisabled:
		return nil
	}
	if err := t.Local.WriteRTP(pkt); err != nil {
		return err
	}
	t.sent.Add(1)
	return nil
}
