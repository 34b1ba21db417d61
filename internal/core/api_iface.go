package core

//go:generate mockgen -source=api_iface.go -destination=mocks/api_mock.go -package=mocks

import (
	"context"
	"errors"

	"github.com/dkeye/meetsync/internal/domain"
)

// Backend error classes. Adapters wrap their own errors so that errors.Is
// matches one of these.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// MeetingAPI is the request/response side of the backend.
type MeetingAPI interface {
	FetchMeetingByRoom(ctx context.Context, roomID domain.RoomID) (*domain.Meeting, error)
	RequestJoinMeeting(ctx context.Context, roomID domain.RoomID) error
	FetchUserProfile(ctx context.Context, userID domain.UserID) (domain.Profile, error)
}
