// Package rtc provides local media capture on pion/webrtc tracks.
package rtc

import (
	"fmt"
	"sync"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Permissions stands in for the platform capture prompts.
type Permissions struct {
	Camera     bool
	Microphone bool
	Screen     bool
}

var (
	opusCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	vp8Codec  = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
)

// Capturer implements core.MediaCapture and tracks every live handle.
type Capturer struct {
	perms    Permissions
	streamID string

	mu        sync.Mutex
	live      map[string]*Track
	synthetic bool
}

var _ core.MediaCapture = (*Capturer)(nil)

func NewCapturer(perms Permissions) *Capturer {
	return &Capturer{
		perms:    perms,
		streamID: uuid.NewString(),
		live:     make(map[string]*Track),
	}
}

// EnableSynthetic makes tracks acquired from now on carry placeholder
// frames: silence for audio, empty frames for video.
func (c *Capturer) EnableSynthetic() {
	c.mu.Lock()
	c.synthetic = true
	c.mu.Unlock()
}

func (c *Capturer) AcquireCamera() (core.MediaHandle, error) {
	if !c.perms.Camera {
		return nil, fmt.Errorf("camera: %w", core.ErrPermissionDenied)
	}
	return c.acquire(core.MediaVideo, vp8Codec)
}

func (c *Capturer) AcquireMicrophone() (core.MediaHandle, error) {
	if !c.perms.Microphone {
		return nil, fmt.Errorf("microphone: %w", core.ErrPermissionDenied)
	}
	return c.acquire(core.MediaAudio, opusCodec)
}

func (c *Capturer) AcquireScreen() (core.MediaHandle, error) {
	if !c.perms.Screen {
		return nil, fmt.Errorf("screen: %w", core.ErrPermissionDenied)
	}
	return c.acquire(core.MediaScreen, vp8Codec)
}

func (c *Capturer) acquire(kind core.MediaKind, codec webrtc.RTPCodecCapability) (*Track, error) {
	id := fmt.Sprintf("%s-%s", kind, uuid.NewString())
	local, err := webrtc.NewTrackLocalStaticRTP(codec, id, c.streamID)
	if err != nil {
		return nil, fmt.Errorf("new %s track: %w", kind, err)
	}
	t := newTrack(local, kind)

	c.mu.Lock()
	c.live[id] = t
	synthetic := c.synthetic
	c.mu.Unlock()

	if synthetic {
		go feed(t, patternFor(kind))
	}
	log.Info().Str("module", "rtc").Str("kind", string(kind)).Str("track_id", id).Bool("synthetic", synthetic).Msg("capture started")
	return t, nil
}

func (c *Capturer) Release(h core.MediaHandle) error {
	t, ok := h.(*Track)
	if !ok || t == nil {
		return fmt.Errorf("release: foreign media handle %T", h)
	}
	if !t.markReleased() {
		return nil
	}

	c.mu.Lock()
	delete(c.live, t.ID())
	c.mu.Unlock()

	log.Info().Str("module", "rtc").Str("kind", string(t.kind)).Str("track_id", t.ID()).Msg("capture stopped")
	return nil
}

// Live returns the number of handles not yet released.
func (c *Capturer) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}
