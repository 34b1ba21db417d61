package orch

import (
	"errors"
	"maps"

	"github.com/dkeye/meetsync/internal/core"
)

func (o *Orchestrator) acquireLocalMedia() {
	if o.Media == nil {
		return
	}
	_, _ = o.acquire(core.MediaVideo, o.Media.AcquireCamera)
	_, _ = o.acquire(core.MediaAudio, o.Media.AcquireMicrophone)
}

// acquire stores the handle for kind. A failure is reported as a warning
// and the room carries on without that device.
func (o *Orchestrator) acquire(kind core.MediaKind, fn func() (core.MediaHandle, error)) (core.MediaHandle, error) {
	h, err := fn()
	if err != nil {
		if errors.Is(err, core.ErrPermissionDenied) {
			o.logger.Warn().Str("kind", string(kind)).Msg("capture permission denied")
		} else {
			o.logger.Warn().Err(err).Str("kind", string(kind)).Msg("capture failed")
		}
		o.report(err)
		return nil, err
	}
	o.mu.Lock()
	o.media[kind] = h
	o.mu.Unlock()
	return h, nil
}

func (o *Orchestrator) releaseAllMedia() {
	o.mu.Lock()
	handles := maps.Clone(o.media)
	clear(o.media)
	o.mu.Unlock()

	for kind, h := range handles {
		o.release(kind, h)
	}
}

func (o *Orchestrator) release(kind core.MediaKind, h core.MediaHandle) {
	if o.Media == nil || h == nil {
		return
	}
	if err := o.Media.Release(h); err != nil {
		o.logger.Warn().Err(err).Str("kind", string(kind)).Str("track", h.ID()).Msg("release failed")
	}
}

// MediaEnabled reports whether a handle of kind is held and enabled.
func (o *Orchestrator) MediaEnabled(kind core.MediaKind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.media[kind]
	return ok && h.Enabled()
}

func (o *Orchestrator) ToggleAudio() (bool, error) { return o.toggle(core.MediaAudio) }

func (o *Orchestrator) ToggleVideo() (bool, error) { return o.toggle(core.MediaVideo) }

func (o *Orchestrator) toggle(kind core.MediaKind) (bool, error) {
	o.mu.Lock()
	h, ok := o.media[kind]
	o.mu.Unlock()
	if !ok {
		return false, ErrNoMedia
	}
	h.SetEnabled(!h.Enabled())
	on := h.Enabled()
	o.logger.Debug().Str("kind", string(kind)).Bool("enabled", on).Msg("media toggled")
	return on, nil
}

// ToggleScreenShare starts screen capture, or stops and releases it when
// already sharing. Reports whether the screen is now shared.
func (o *Orchestrator) ToggleScreenShare() (bool, error) {
	o.mu.Lock()
	if o.left {
		o.mu.Unlock()
		return false, core.ErrRoomLeft
	}
	h, sharing := o.media[core.MediaScreen]
	if sharing {
		delete(o.media, core.MediaScreen)
	}
	o.mu.Unlock()

	if sharing {
		o.release(core.MediaScreen, h)
		return false, nil
	}
	if o.Media == nil {
		return false, ErrNoMedia
	}
	if _, err := o.acquire(core.MediaScreen, o.Media.AcquireScreen); err != nil {
		return false, err
	}
	return true, nil
}
