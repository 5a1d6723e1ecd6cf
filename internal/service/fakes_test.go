package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/model"
	"github.com/sakif/jagoan-puasa/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// A single mutex gives it the same per-call atomicity as the SQLite store.
type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*model.User
	completions map[string]model.MissionCompletion
	purchases   []model.Purchase
	nextID      int

	// failWith, when set, is returned by every call.
	failWith error
}

var (
	_ repository.UserRepository       = (*fakeStore)(nil)
	_ repository.LedgerRepository     = (*fakeStore)(nil)
	_ repository.CompletionRepository = (*fakeStore)(nil)
	_ repository.PurchaseRepository   = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*model.User),
		completions: make(map[string]model.MissionCompletion),
	}
}

func (f *fakeStore) addUser(name string, points int) string {
	u := &model.User{Name: name, Points: points, Avatar: game.DefaultAvatar}
	if err := f.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u.ID
}

func (f *fakeStore) points(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Points
}

func (f *fakeStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Name, user.Name) {
			return apperror.Conflict("user name", user.Name)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("u%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetByName(_ context.Context, name string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", name)
}

func (f *fakeStore) UpdateProfile(_ context.Context, id, name, avatar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	for _, other := range f.users {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return apperror.Conflict("user name", name)
		}
	}
	u.Name, u.Avatar = name, avatar
	return nil
}

func (f *fakeStore) SetPremium(_ context.Context, id string, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.IsPremium = premium
	return nil
}

func (f *fakeStore) TopByPoints(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	all := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Points != all[j].Points {
			return all[i].Points > all[j].Points
		}
		return all[i].Name < all[j].Name
	})
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakeStore) Balance(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	u, ok := f.users[userID]
	if !ok {
		return 0, apperror.NotFound("user", userID)
	}
	return u.Points, nil
}

func (f *fakeStore) Credit(_ context.Context, userID string, amount int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credit(userID, amount)
}

func (f *fakeStore) Debit(_ context.Context, userID string, amount int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debit(userID, amount)
}

func (f *fakeStore) credit(userID string, amount int) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	u, ok := f.users[userID]
	if !ok {
		return 0, apperror.NotFound("user", userID)
	}
	u.Points += amount
	return u.Points, nil
}

func (f *fakeStore) debit(userID string, amount int) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	u, ok := f.users[userID]
	if !ok {
		return 0, apperror.NotFound("user", userID)
	}
	if u.Points < amount {
		return 0, apperror.InsufficientPoints(u.Points, amount)
	}
	u.Points -= amount
	return u.Points, nil
}

func completionKey(userID, missionID, day string) string {
	return userID + "|" + missionID + "|" + day
}

func (f *fakeStore) IsCompleted(_ context.Context, userID, missionID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.completions[completionKey(userID, missionID, day)]
	return ok, nil
}

func (f *fakeStore) RecordCompletion(_ context.Context, c *model.MissionCompletion) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := completionKey(c.UserID, c.MissionID, c.Day)
	if _, ok := f.completions[key]; ok {
		return false, nil
	}
	f.completions[key] = *c
	return true, nil
}

func (f *fakeStore) CompleteMission(_ context.Context, c *model.MissionCompletion) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := completionKey(c.UserID, c.MissionID, c.Day)
	if _, ok := f.completions[key]; ok {
		return 0, apperror.AlreadyCompleted(c.MissionID, c.Day)
	}
	balance, err := f.credit(c.UserID, c.PointsAwarded)
	if err != nil {
		return 0, err
	}
	f.completions[key] = *c
	return balance, nil
}

func (f *fakeStore) CompletedMissionIDs(_ context.Context, userID, day string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var ids []string
	for _, c := range f.completions {
		if c.UserID == userID && c.Day == day {
			ids = append(ids, c.MissionID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) HasPurchased(_ context.Context, userID, rewardID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasPurchased(userID, rewardID), nil
}

func (f *fakeStore) hasPurchased(userID, rewardID string) bool {
	for _, p := range f.purchases {
		if p.UserID == userID && p.RewardID == rewardID {
			return true
		}
	}
	return false
}

func (f *fakeStore) PurchaseReward(_ context.Context, p *model.Purchase) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasPurchased(p.UserID, p.RewardID) {
		return 0, apperror.AlreadyPurchased(p.RewardID)
	}
	balance, err := f.debit(p.UserID, p.CostPaid)
	if err != nil {
		return 0, err
	}
	p.ID = "p-" + p.RewardID
	f.purchases = append(f.purchases, *p)
	return balance, nil
}

func (f *fakeStore) ListPurchases(_ context.Context, userID string) ([]model.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Purchase{}
	for i := len(f.purchases) - 1; i >= 0; i-- {
		if f.purchases[i].UserID == userID {
			out = append(out, f.purchases[i])
		}
	}
	return out, nil
}

// countingListener records Invalidate calls.
type countingListener struct {
	mu    sync.Mutex
	calls int
}

func (c *countingListener) Invalidate() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingListener) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var wib = time.FixedZone("WIB", 7*60*60)

func testCalendar() game.Calendar {
	return game.NewCalendar(time.Date(2026, time.February, 19, 0, 0, 0, 0, wib), 30, wib)
}

// at returns a clock reading on campaign day 1 at the given WIB hour.
func at(hour, minute int) time.Time {
	return time.Date(2026, time.February, 19, hour, minute, 0, 0, wib)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
