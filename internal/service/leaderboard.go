package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 10
)

// LeaderboardEntry is a public ranking row. It never exposes user IDs.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Points    int       `json:"points"`
	IsPremium bool      `json:"isPremium"`
	Tier      game.Tier `json:"tier"`
}

// Leaderboard serves the top players from a small cache that every balance
// change invalidates. Concurrent misses for the same size share one query.
type Leaderboard struct {
	users  repository.UserRepository
	levels game.Levels
	cache  *lru.Cache
	group  singleflight.Group
	logger *slog.Logger

	// mu orders Invalidate against cache fills so a ranking read before
	// an invalidation is never stored after it.
	mu  sync.Mutex
	gen uint64
}

func NewLeaderboard(users repository.UserRepository, levels game.Levels, logger *slog.Logger) (*Leaderboard, error) {
	cache, err := lru.New(MaxLeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("service/leaderboard: creating cache: %w", err)
	}
	return &Leaderboard{users: users, levels: levels, cache: cache, logger: logger}, nil
}

// Invalidate drops every cached ranking. Implements BalanceListener.
func (l *Leaderboard) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.cache.Purge()
}

func (l *Leaderboard) generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// store caches entries only if no invalidation happened since gen was read.
func (l *Leaderboard) store(gen uint64, limit int, entries []LeaderboardEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == gen {
		l.cache.Add(limit, entries)
	}
}

// Top returns up to limit players ordered by points, then name. A limit
// outside 1..MaxLeaderboardSize falls back to the default.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxLeaderboardSize {
		limit = DefaultLeaderboardSize
	}
	if cached, ok := l.cache.Get(limit); ok {
		return cached.([]LeaderboardEntry), nil
	}

	// The query is shared by every caller waiting on this key, so one
	// caller going away must not fail the others. Keying on the generation
	// keeps callers that arrive after an Invalidate off an older query.
	queryCtx := context.WithoutCancel(ctx)
	gen := l.generation()
	key := strconv.Itoa(limit) + "@" + strconv.FormatUint(gen, 10)

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		users, err := l.users.TopByPoints(queryCtx, repository.ListOptions{Limit: limit})
		if err != nil {
			return nil, err
		}

		entries := make([]LeaderboardEntry, 0, len(users))
		for i, u := range users {
			entries = append(entries, LeaderboardEntry{
				Rank:      i + 1,
				Name:      u.Name,
				Avatar:    u.Avatar,
				Points:    u.Points,
				IsPremium: u.IsPremium,
				Tier:      l.levels.Classify(u.Points),
			})
		}
		l.store(gen, limit, entries)
		return entries, nil
	})
	if err != nil {
		l.logger.Error("leaderboard query failed", slog.Int("limit", limit), slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/leaderboard: %w", err)
	}
	return v.([]LeaderboardEntry), nil
}
