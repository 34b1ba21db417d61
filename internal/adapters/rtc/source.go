package rtc

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/pion/rtp"
	"github.com/rs/zerolog/log"
)

// pattern describes the placeholder frames a synthetic source emits.
type pattern struct {
	payloadType uint8
	clockRate   uint32
	interval    time.Duration
	payload     []byte
	marker      bool
}

var (
	// One 20ms opus frame of silence.
	silence = pattern{payloadType: 111, clockRate: 48000, interval: 20 * time.Millisecond, payload: []byte{0xf8, 0xff, 0xfe}}
	// VP8 payload descriptor with the start bit and no picture data.
	blank = pattern{payloadType: 96, clockRate: 90000, interval: time.Second / 15, payload: []byte{0x10}, marker: true}
)

func patternFor(kind core.MediaKind) pattern {
	if kind == core.MediaAudio {
		return silence
	}
	return blank
}

// feed writes placeholder packets into t until it is released.
func feed(t *Track, p pattern) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	step := uint32(p.interval.Seconds() * float64(p.clockRate))
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    p.payloadType,
			SequenceNumber: uint16(rand.Uint32()),
			Timestamp:      rand.Uint32(),
			SSRC:           rand.Uint32(),
			Marker:         p.marker,
		},
		Payload: p.payload,
	}

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if err := t.WriteRTP(pkt); err != nil {
				if errors.Is(err, ErrTrackReleased) {
					return
				}
				log.Warn().Err(err).Str("module", "rtc").Str("track_id", t.ID()).Msg("synthetic write failed")
			}
			pkt.SequenceNumber++
			pkt.Timestamp += step
		}
	}
}
