package service

import (
	"context"
	"fmt"
	"time"

	"github.com/trifonnt/accountd/internal/config"
	"github.com/trifonnt/accountd/internal/domain"
	"github.com/trifonnt/accountd/internal/logger"
	"github.com/trifonnt/accountd/internal/metrics"
)

// TokenSweepStorage defines the store operations needed by the persistent
// token sweep.
type TokenSweepStorage interface {
	TokensLastUsedBefore(cutoff time.Time) ([]domain.PersistentToken, error)
	DeleteToken(token *domain.PersistentToken) error
}

// StaleAccountStorage defines the store operations needed by the
// stale-registration sweep.
type StaleAccountStorage interface {
	UnactivatedUsersCreatedBefore(cutoff time.Time) ([]domain.User, error)
	DeleteUser(user *domain.User) error
}

// SweepStats tracks metrics from the last run of one sweep.
type SweepStats struct {
	RunAt      time.Time
	Candidates int
	Deleted    int
	DurationMs int64
	Errors     []string
}

// Retention runs the two retention sweeps: expired persistent tokens and
// stale unactivated registrations. The sweeps are independent; each fires
// once a day at its configured clock time and never aborts on a single
// record's failure.
type Retention struct {
	tokens TokenSweepStorage
	users  StaleAccountStorage
	index  SearchIndex
	cfg    *config.Public

	lastTokenStats SweepStats
	lastStaleStats SweepStats
}

func NewRetention(tokens TokenSweepStorage, users StaleAccountStorage, index SearchIndex, cfg *config.Public) *Retention {
	return &Retention{
		tokens: tokens,
		users:  users,
		index:  index,
		cfg:    cfg,
	}
}

// Start launches both sweeps on their own timers. They run until ctx is
// cancelled and share no lock, so a long sweep never delays the other one
// or any in-flight account operation.
func (r *Retention) Start(ctx context.Context) {
	r.startDaily(ctx, "token_sweep", r.cfg.TokenSweepAt, r.RunTokenSweep)
	r.startDaily(ctx, "stale_sweep", r.cfg.StaleSweepAt, r.RunStaleAccountSweep)
}

func (r *Retention) startDaily(ctx context.Context, name, at string, run func() error) {
	logger.Log.Info("started retention sweep",
		"component", name,
		"at", at)

	go func() {
		timer := time.NewTimer(untilNext(at, time.Now()))
		defer timer.Stop()
		for {
			select {
			case <-timer.C:
				if err := run(); err != nil {
					logger.Log.Error("retention sweep failed",
						"component", name,
						"error", err)
				}
				timer.Reset(untilNext(at, time.Now()))
			case <-ctx.Done():
				logger.Log.Info("retention sweep shutting down gracefully",
					"component", name)
				return
			}
		}
	}()
}

// untilNext computes the wait until the next occurrence of the "HH:MM"
// clock time. A malformed value degrades to a 24h cadence.
func untilNext(at string, now time.Time) time.Duration {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunTokenSweep deletes persistent tokens whose last use is older than the
// retention window. Can be called directly for maintenance.
func (r *Retention) RunTokenSweep() error {
	startTime := time.Now()
	stats := SweepStats{RunAt: startTime, Errors: []string{}}

	cutoff := startTime.Add(-r.cfg.TokenRetention)
	tokens, err := r.tokens.TokensLastUsedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to query expired tokens: %w", err)
	}
	stats.Candidates = len(tokens)

	for i := range tokens {
		token := tokens[i]
		if err := r.tokens.DeleteToken(&token); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("token '%s': %v", token.Series, err))
			metrics.SweepErrorsTotal.WithLabelValues("token").Inc()
			continue
		}
		stats.Deleted++
		metrics.SweepDeletedTotal.WithLabelValues("token").Inc()
		logger.Log.Debug("deleted persistent token",
			"component", "token_sweep",
			"series", token.Series)
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	r.lastTokenStats = stats
	logger.Log.Info("token sweep completed",
		"component", "token_sweep",
		"candidates", stats.Candidates,
		"deleted", stats.Deleted,
		"duration_ms", stats.DurationMs,
		"errors", len(stats.Errors))
	return nil
}

// RunStaleAccountSweep deletes accounts that were never activated within
// the retention window, from both the store and the search index.
func (r *Retention) RunStaleAccountSweep() error {
	startTime := time.Now()
	stats := SweepStats{RunAt: startTime, Errors: []string{}}

	cutoff := startTime.Add(-r.cfg.UnactivatedRetention)
	users, err := r.users.UnactivatedUsersCreatedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to query stale registrations: %w", err)
	}
	stats.Candidates = len(users)

	for i := range users {
		user := users[i]
		if err := r.users.DeleteUser(&user); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("user '%s': %v", user.Login, err))
			metrics.SweepErrorsTotal.WithLabelValues("stale").Inc()
			continue
		}
		if err := r.index.Delete(&user); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("user '%s' index: %v", user.Login, err))
			metrics.SweepErrorsTotal.WithLabelValues("stale").Inc()
		}
		stats.Deleted++
		metrics.SweepDeletedTotal.WithLabelValues("stale").Inc()
		logger.Log.Debug("deleted stale registration",
			"component", "stale_sweep",
			"login", user.Login)
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	r.lastStaleStats = stats
	logger.Log.Info("stale registration sweep completed",
		"component", "stale_sweep",
		"candidates", stats.Candidates,
		"deleted", stats.Deleted,
		"duration_ms", stats.DurationMs,
		"errors", len(stats.Errors))
	return nil
}

// LastTokenSweepStats returns statistics from the last token sweep run.
func (r *Retention) LastTokenSweepStats() SweepStats {
	return r.lastTokenStats
}

// LastStaleSweepStats returns statistics from the last stale sweep run.
func (r *Retention) LastStaleSweepStats() SweepStats {
	return r.lastStaleStats
}
