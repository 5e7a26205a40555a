package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/core"
	"github.com/riverlink/danmaku-go/internal/restapi"
	"github.com/riverlink/danmaku-go/internal/transport"
	"github.com/riverlink/danmaku-go/internal/webhook"
)

// Watch status constants
type WatchStatus string

const (
	StatusConnecting WatchStatus = "CONNECTING"
	StatusWatching   WatchStatus = "WATCHING"
	StatusStopped    WatchStatus = "STOPPED"
	StatusErrored    WatchStatus = "ERRORED"
)

// Common errors
var (
	ErrWatchExists   = errors.New("watch already exists")
	ErrWatchNotFound = errors.New("watch not found")
	ErrNotWatching   = errors.New("not watching")
)

// Watch is one watched live room: a core.Client driving its own
// single-threaded cooperative loop in a dedicated goroutine, forwarding
// decoded signal batches to the webhook dispatcher.
type Watch struct {
	ID        string
	RoomUID   int64
	status    WatchStatus
	startedAt time.Time
	lastErr   error

	actionsSeen  int
	statesSeen   int
	notifiesSeen int

	mu         sync.RWMutex
	logger     *zap.SugaredLogger
	dispatcher *webhook.Dispatcher
	builder    *restapi.ClientBuilder

	danmaku  *core.Client
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func newWatch(id string, roomUID int64, logger *zap.SugaredLogger, dispatcher *webhook.Dispatcher) *Watch {
	return &Watch{
		ID:         id,
		RoomUID:    roomUID,
		status:     StatusConnecting,
		startedAt:  time.Now(),
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// start builds a DanmakuToken via the REST collaborator, connects a
// core.Client, and pumps Next() in a background goroutine until the stream
// terminates or the caller stops it.
func (w *Watch) start(ctx context.Context, builder *restapi.ClientBuilder, dialer transport.Dialer) error {
	w.builder = builder

	token, err := builder.FetchToken(ctx, w.RoomUID)
	if err != nil {
		w.setStatus(StatusErrored, err)
		w.dispatcher.Dispatch(webhook.EventWatchError, w.snapshotLocked(err))
		return err
	}

	danmakuClient, err := core.NewClient(ctx, token, dialer, core.DanmakuServerURL, w.logger)
	if err != nil {
		w.setStatus(StatusErrored, err)
		w.dispatcher.Dispatch(webhook.EventWatchError, w.snapshotLocked(err))
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.danmaku = danmakuClient
	w.cancel = cancel
	w.status = StatusWatching
	w.mu.Unlock()

	w.dispatcher.Dispatch(webhook.EventWatchWatching, w.Snapshot())

	go w.pump(runCtx)
	return nil
}

// pump is the sole owner of w.danmaku once start() launches it: every call
// into the core.Client, including Close, happens from this goroutine, since
// core.Client is documented as not safe for concurrent use. Stop only
// cancels ctx to unblock the in-flight Next read; the close itself runs
// here, in the deferred cleanup, whatever caused the loop to end.
func (w *Watch) pump(ctx context.Context) {
	defer func() {
		_ = w.danmaku.Close(context.Background())
	}()

	for {
		batch, err := w.danmaku.Next(ctx)
		if err != nil {
			w.mu.Lock()
			if w.status != StatusStopped {
				w.status = StatusErrored
				w.lastErr = err
			}
			w.mu.Unlock()
			if !errors.Is(err, context.Canceled) {
				w.dispatcher.Dispatch(webhook.EventWatchError, w.Snapshot())
			} else {
				w.dispatcher.Dispatch(webhook.EventWatchStopped, w.Snapshot())
			}
			return
		}

		w.mu.Lock()
		w.actionsSeen += len(batch.Actions)
		w.statesSeen += len(batch.States)
		w.notifiesSeen += len(batch.Notifies)
		w.mu.Unlock()

		if len(batch.Actions) > 0 {
			w.annotateGiftNames(batch.Actions)
			w.dispatcher.Dispatch(webhook.EventSignalAction, batch.Actions)
		}
		if len(batch.States) > 0 {
			w.dispatcher.Dispatch(webhook.EventSignalState, batch.States)
		}
		if len(batch.Notifies) > 0 {
			w.dispatcher.Dispatch(webhook.EventSignalNotify, batch.Notifies)
		}
	}
}

// annotateGiftNames fills in any blank CommonActionSignalGift.GiftName from
// the builder's cached gift catalog; the upstream payload frequently omits
// it and relies on the client looking the id up out of band.
func (w *Watch) annotateGiftNames(actions []core.ActionSignal) {
	if w.builder == nil {
		return
	}
	for i := range actions {
		gift := actions[i].Gift
		if gift == nil || gift.GiftName != "" {
			continue
		}
		if name, ok := w.builder.GiftName(gift.GiftID); ok {
			gift.GiftName = name
		}
	}
}

// Stop marks the watch as stopped and unblocks pump's in-flight read by
// cancelling its context; pump's own goroutine performs the actual
// core.Client.Close once it observes the cancellation, so this never races
// with pump's concurrent use of the client. Safe to call multiple times.
func (w *Watch) Stop(ctx context.Context) {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.status = StatusStopped
		cancel := w.cancel
		w.mu.Unlock()

		if cancel != nil {
			cancel()
		}
	})
}

func (w *Watch) setStatus(status WatchStatus, err error) {
	w.mu.Lock()
	w.status = status
	w.lastErr = err
	w.mu.Unlock()
}

// Status reports the watch's status.
func (w *Watch) Status() WatchStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// WatchSnapshot holds point-in-time watch information for the API and
// webhook payloads.
type WatchSnapshot struct {
	ID           string      `json:"id"`
	RoomUID      int64       `json:"roomUid"`
	Status       WatchStatus `json:"status"`
	StartedAt    time.Time   `json:"startedAt"`
	ActionsSeen  int         `json:"actionsSeen"`
	StatesSeen   int         `json:"statesSeen"`
	NotifiesSeen int         `json:"notifiesSeen"`
	Error        string      `json:"error,omitempty"`
}

func (w *Watch) Snapshot() WatchSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshotLocked(w.lastErr)
}

func (w *Watch) snapshotLocked(err error) WatchSnapshot {
	s := WatchSnapshot{
		ID:           w.ID,
		RoomUID:      w.RoomUID,
		Status:       w.status,
		StartedAt:    w.startedAt,
		ActionsSeen:  w.actionsSeen,
		StatesSeen:   w.statesSeen,
		NotifiesSeen: w.notifiesSeen,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
