package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/core/mocks"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestBackfiller(t *testing.T, api core.MeetingAPI) (*Backfiller, *core.Directory, *Session, *atomic.Int32) {
	t.Helper()
	s := NewSession(context.Background(), "room-1", domain.Identity{UserID: "me"})
	t.Cleanup(s.End)
	dir := core.NewDirectory()
	var updates atomic.Int32
	b := NewBackfiller(s, api, dir, func() { updates.Add(1) })
	return b, dir, s, &updates
}

func TestBackfiller_FetchesMissingProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMeetingAPI(ctrl)
	b, dir, _, updates := newTestBackfiller(t, api)

	dir.Merge(domain.Candidate{ID: "known", Profile: domain.Profile{FirstName: "Kim"}})

	api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u1")).Return(domain.Profile{FirstName: "Ann"}, nil)
	api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u2")).Return(domain.Profile{Email: "bo@example.com"}, nil)

	n := b.Request("u1", "u2", "known", "")
	assert.Equal(t, 2, n)
	b.Wait()

	assert.Equal(t, "Ann", dir.DisplayName("u1"))
	assert.Equal(t, "bo@example.com", dir.DisplayName("u2"))
	assert.Equal(t, int32(2), updates.Load())
}

func TestBackfiller_NoDuplicateLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMeetingAPI(ctrl)
	b, _, _, _ := newTestBackfiller(t, api)

	release := make(chan struct{})
	api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u1")).
		DoAndReturn(func(context.Context, domain.UserID) (domain.Profile, error) {
			<-release
			return domain.Profile{}, nil
		}).Times(1)

	assert.Equal(t, 1, b.Request("u1"))
	assert.Equal(t, 0, b.Request("u1"), "in-flight lookup is not repeated")
	close(release)
	b.Wait()

	assert.True(t, b.Attempted("u1"), "success keeps the marker")
}

func TestBackfiller_FailureAllowsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMeetingAPI(ctrl)
	b, dir, s, _ := newTestBackfiller(t, api)

	gomock.InOrder(
		api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u1")).Return(domain.Profile{}, errors.New("boom")),
		api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u1")).Return(domain.Profile{FirstName: "Ann"}, nil),
	)

	b.Request("u1")
	b.wg.Wait()
	assert.False(t, b.Attempted("u1"), "failure clears the marker")

	assert.Equal(t, 1, b.Request("u1"))
	b.Wait()
	assert.Equal(t, "Ann", dir.DisplayName("u1"))
	assert.True(t, s.Active())
}

func TestBackfiller_DropsLateResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMeetingAPI(ctrl)
	b, dir, s, updates := newTestBackfiller(t, api)

	started := make(chan struct{})
	api.EXPECT().FetchUserProfile(gomock.Any(), domain.UserID("u1")).
		DoAndReturn(func(ctx context.Context, _ domain.UserID) (domain.Profile, error) {
			close(started)
			<-ctx.Done()
			return domain.Profile{FirstName: "Late"}, nil
		})

	b.Request("u1")
	<-started
	s.End()
	b.Wait()

	_, ok := dir.Lookup("u1")
	assert.False(t, ok, "result after session end must not be merged")
	assert.Equal(t, int32(0), updates.Load())
	assert.Equal(t, 0, b.Request("u2"), "no lookups after the session ended")
}
