package core

//go:generate mockgen -source=media_iface.go -destination=mocks/media_mock.go -package=mocks

import "errors"

var ErrPermissionDenied = errors.New("media capture permission denied")

type MediaKind string

const (
	MediaAudio  MediaKind = "audio"
	MediaVideo  MediaKind = "video"
	MediaScreen MediaKind = "screen"
)

// MediaHandle is a locally captured stream. Owned by whoever acquired it.
type MediaHandle interface {
	ID() string
	Kind() MediaKind
	Enabled() bool
	SetEnabled(bool)
}

// MediaCapture acquires local capture devices.
type MediaCapture interface {
	AcquireCamera() (MediaHandle, error)
	AcquireMicrophone() (MediaHandle, error)
	AcquireScreen() (MediaHandle, error)
	// Release stops capture. Releasing twice is not an error.
	Release(MediaHandle) error
}
