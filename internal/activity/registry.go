// Package activity tracks live voice sessions in memory and flushes their
// accumulated duration to the user statistics on disconnect.
package activity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/services"
)

// Registry records which users are currently in a call. Sessions live only
// in memory: a crash loses at most the open sessions, never persisted time.
type Registry struct {
	users  *services.UserService
	clock  clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]int64 // userID -> session start, unix seconds
}

func NewRegistry(users *services.UserService, clk clock.Clock, logger *zap.Logger) *Registry {
	return &Registry{
		users:    users,
		clock:    clk,
		logger:   logger,
		sessions: map[string]int64{},
	}
}

// Connect opens a session for the user. Reconnecting while a session is open
// restarts it without crediting the earlier span.
func (r *Registry) Connect(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = r.clock.Now().Unix()
}

// Disconnect closes the user's session and credits its duration. Unknown
// users are ignored: a disconnect for a never-connected user carries no time.
func (r *Registry) Disconnect(ctx context.Context, userID string) {
	r.mu.Lock()
	start, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if !ok {
		return
	}

	seconds := int(r.clock.Now().Unix() - start)
	if seconds <= 0 {
		return
	}
	if err := r.users.AddCallSeconds(ctx, userID, seconds); err != nil {
		r.logger.Warn("failed to credit call time",
			zap.String("user", userID),
			zap.Int("seconds", seconds),
			zap.Error(err))
	}
}

// FlushAll closes every open session, crediting time up to now. Used on
// shutdown.
func (r *Registry) FlushAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Disconnect(ctx, id)
	}
}

// Active returns how many sessions are currently open.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
