package client

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/riverlink/danmaku-go/internal/restapi"
	"github.com/riverlink/danmaku-go/internal/transport"
	"github.com/riverlink/danmaku-go/internal/webhook"
)

// SessionManager manages multiple watched live rooms, one core.Client per
// watch, each running its own cooperative loop in a dedicated goroutine.
type SessionManager struct {
	watches map[string]*Watch
	mu      sync.RWMutex
	logger  *zap.SugaredLogger

	builder *restapi.ClientBuilder
	dialer  transport.Dialer
	hooks   *webhook.Dispatcher
}

// NewSessionManager creates a new session manager. builder is consulted to
// turn a room UID into a DanmakuToken; dialer constructs the transport for
// each watch's core.Client.
func NewSessionManager(logger *zap.SugaredLogger, builder *restapi.ClientBuilder, dialer transport.Dialer, hooks *webhook.Dispatcher) *SessionManager {
	return &SessionManager{
		watches: make(map[string]*Watch),
		logger:  logger,
		builder: builder,
		dialer:  dialer,
		hooks:   hooks,
	}
}

// CreateWatch starts watching roomUID and returns the new Watch. The
// connect and handshake happen in a background goroutine; the returned
// Watch starts in CONNECTING status.
func (sm *SessionManager) CreateWatch(ctx context.Context, roomUID int64) (*Watch, error) {
	id := "watch_" + uuid.New().String()[:8]

	sm.mu.Lock()
	if _, exists := sm.watches[id]; exists {
		sm.mu.Unlock()
		return nil, ErrWatchExists
	}
	w := newWatch(id, roomUID, sm.logger, sm.hooks)
	sm.watches[id] = w
	sm.mu.Unlock()

	sm.hooks.Dispatch(webhook.EventWatchConnecting, w.Snapshot())

	go func() {
		if err := w.start(ctx, sm.builder, sm.dialer); err != nil {
			sm.logger.Errorf("failed to start watch %s for room %d: %v", id, roomUID, err)
		}
	}()

	return w, nil
}

// GetWatch returns a watch by ID.
func (sm *SessionManager) GetWatch(id string) (*Watch, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	w, exists := sm.watches[id]
	return w, exists
}

// StopWatch stops and removes a watch.
func (sm *SessionManager) StopWatch(ctx context.Context, id string) error {
	sm.mu.Lock()
	w, exists := sm.watches[id]
	if !exists {
		sm.mu.Unlock()
		return ErrWatchNotFound
	}
	delete(sm.watches, id)
	sm.mu.Unlock()

	w.Stop(ctx)
	return nil
}

// ListWatches returns every active watch.
func (sm *SessionManager) ListWatches() []*Watch {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	watches := make([]*Watch, 0, len(sm.watches))
	for _, w := range sm.watches {
		watches = append(watches, w)
	}
	return watches
}

// GetStats returns watch statistics.
func (sm *SessionManager) GetStats() WatchStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats := WatchStats{Total: len(sm.watches)}
	for _, w := range sm.watches {
		switch w.Status() {
		case StatusWatching:
			stats.Watching++
			stats.Active++
		case StatusConnecting:
			stats.Connecting++
			stats.Active++
		case StatusStopped, StatusErrored:
			// not counted as active
		}
	}
	return stats
}

// StopAll stops every active watch.
func (sm *SessionManager) StopAll(ctx context.Context) {
	sm.mu.Lock()
	watches := make([]*Watch, 0, len(sm.watches))
	for _, w := range sm.watches {
		watches = append(watches, w)
	}
	sm.watches = make(map[string]*Watch)
	sm.mu.Unlock()

	for _, w := range watches {
		w.Stop(ctx)
	}
}

// WatchStats holds aggregate watch statistics.
type WatchStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Watching   int `json:"watching"`
	Connecting int `json:"connecting"`
}
