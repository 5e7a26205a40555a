package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/core"
	dproto "github.com/riverlink/danmaku-go/internal/proto"
	"github.com/riverlink/danmaku-go/internal/restapi"
	"github.com/riverlink/danmaku-go/internal/webhook"
)

func testWatch(id string, roomUID int64) *Watch {
	return newWatch(id, roomUID, zap.NewNop().Sugar(), webhook.NewDispatcher(zap.NewNop().Sugar()))
}

func TestNewWatchStartsConnecting(t *testing.T) {
	w := testWatch("watch_1", 42)
	assert.Equal(t, StatusConnecting, w.Status())
	assert.Equal(t, int64(42), w.RoomUID)
}

func TestStopBeforeStartIsSafeAndIdempotent(t *testing.T) {
	w := testWatch("watch_1", 42)
	w.Stop(context.Background())
	assert.Equal(t, StatusStopped, w.Status())

	w.Stop(context.Background())
	assert.Equal(t, StatusStopped, w.Status())
}

func TestSnapshotReflectsCountersAndError(t *testing.T) {
	w := testWatch("watch_1", 42)
	w.actionsSeen = 3
	w.statesSeen = 1
	w.lastErr = assert.AnError

	snap := w.Snapshot()
	assert.Equal(t, "watch_1", snap.ID)
	assert.Equal(t, 3, snap.ActionsSeen)
	assert.Equal(t, 1, snap.StatesSeen)
	assert.Equal(t, assert.AnError.Error(), snap.Error)
}

func TestAnnotateGiftNamesNoopsWithoutBuilder(t *testing.T) {
	w := testWatch("watch_1", 42)
	gift := &dproto.CommonActionSignalGift{GiftID: 7}
	actions := []core.ActionSignal{{Gift: gift}}

	w.annotateGiftNames(actions)
	assert.Empty(t, gift.GiftName)
}

func TestAnnotateGiftNamesLeavesUncachedNamesBlank(t *testing.T) {
	w := testWatch("watch_1", 42)
	builder, err := restapi.NewClientBuilder(zap.NewNop().Sugar())
	require.NoError(t, err)
	w.builder = builder

	gift := &dproto.CommonActionSignalGift{GiftID: 7}
	actions := []core.ActionSignal{{Gift: gift}}
	w.annotateGiftNames(actions)
	assert.Empty(t, gift.GiftName, "gift catalog cache is empty until enrichGiftCatalog runs")
}

func TestAnnotateGiftNamesSkipsAlreadyNamedGifts(t *testing.T) {
	w := testWatch("watch_1", 42)
	gift := &dproto.CommonActionSignalGift{GiftID: 7, GiftName: "rose"}
	actions := []core.ActionSignal{{Gift: gift}}

	w.annotateGiftNames(actions)
	assert.Equal(t, "rose", gift.GiftName)
}

func TestCreateWatchFailsFastOnInvalidRoomAndDispatchesError(t *testing.T) {
	builder, err := restapi.NewClientBuilder(zap.NewNop().Sugar())
	require.NoError(t, err)
	hooks := webhook.NewDispatcher(zap.NewNop().Sugar())
	sm := NewSessionManager(zap.NewNop().Sugar(), builder, nil, hooks)

	w, err := sm.CreateWatch(context.Background(), 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return w.Status() == StatusErrored
	}, time.Second, 5*time.Millisecond)

	stats := sm.GetStats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Active)
}

func TestStopWatchRemovesItFromTheManager(t *testing.T) {
	builder, err := restapi.NewClientBuilder(zap.NewNop().Sugar())
	require.NoError(t, err)
	hooks := webhook.NewDispatcher(zap.NewNop().Sugar())
	sm := NewSessionManager(zap.NewNop().Sugar(), builder, nil, hooks)

	w, err := sm.CreateWatch(context.Background(), 0)
	require.NoError(t, err)

	require.NoError(t, sm.StopWatch(context.Background(), w.ID))
	_, exists := sm.GetWatch(w.ID)
	assert.False(t, exists)
	assert.Equal(t, StatusStopped, w.Status())

	err = sm.StopWatch(context.Background(), w.ID)
	assert.ErrorIs(t, err, ErrWatchNotFound)
}

func TestGetStatsCountsEachStatus(t *testing.T) {
	hooks := webhook.NewDispatcher(zap.NewNop().Sugar())
	sm := &SessionManager{
		watches: map[string]*Watch{},
		logger:  zap.NewNop().Sugar(),
		hooks:   hooks,
	}

	watching := newWatch("w1", 1, sm.logger, hooks)
	watching.status = StatusWatching
	connecting := newWatch("w2", 2, sm.logger, hooks)
	connecting.status = StatusConnecting
	stopped := newWatch("w3", 3, sm.logger, hooks)
	stopped.status = StatusStopped
	errored := newWatch("w4", 4, sm.logger, hooks)
	errored.status = StatusErrored

	sm.watches["w1"] = watching
	sm.watches["w2"] = connecting
	sm.watches["w3"] = stopped
	sm.watches["w4"] = errored

	stats := sm.GetStats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Watching)
	assert.Equal(t, 1, stats.Connecting)
	assert.Equal(t, 2, stats.Active)
}

func TestListWatchesReturnsEveryWatch(t *testing.T) {
	builder, err := restapi.NewClientBuilder(zap.NewNop().Sugar())
	require.NoError(t, err)
	hooks := webhook.NewDispatcher(zap.NewNop().Sugar())
	sm := NewSessionManager(zap.NewNop().Sugar(), builder, nil, hooks)

	_, err = sm.CreateWatch(context.Background(), 0)
	require.NoError(t, err)
	_, err = sm.CreateWatch(context.Background(), 0)
	require.NoError(t, err)

	assert.Len(t, sm.ListWatches(), 2)
}

func TestStopAllStopsAndClearsWatches(t *testing.T) {
	builder, err := restapi.NewClientBuilder(zap.NewNop().Sugar())
	require.NoError(t, err)
	hooks := webhook.NewDispatcher(zap.NewNop().Sugar())
	sm := NewSessionManager(zap.NewNop().Sugar(), builder, nil, hooks)

	w, err := sm.CreateWatch(context.Background(), 0)
	require.NoError(t, err)

	sm.StopAll(context.Background())
	assert.Empty(t, sm.ListWatches())
	assert.Equal(t, StatusStopped, w.Status())
}
