package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
)

func newTestMissions(t *testing.T) (*MissionService, *fakeStore, *countingListener) {
	t.Helper()
	store := newFakeStore()
	listener := &countingListener{}
	svc := NewMissionService(store, game.DefaultCatalog(), testCalendar(), listener, discardLogger())
	return svc, store, listener
}

func TestMissionService_CompleteMission(t *testing.T) {
	ctx := context.Background()
	svc, store, listener := newTestMissions(t)
	id := store.addUser("Aisyah", 250)

	res, err := svc.CompleteMission(ctx, id, "m1", at(4, 30))
	if err != nil {
		t.Fatalf("CompleteMission() error: %v", err)
	}
	if res.PointsAwarded != 50 || res.Balance != 300 {
		t.Errorf("result = %+v, want 50 awarded and balance 300", res)
	}
	if res.Day != "2026-02-19" {
		t.Errorf("Day = %q, want 2026-02-19", res.Day)
	}
	if listener.count() != 1 {
		t.Errorf("listener called %d times, want 1", listener.count())
	}

	_, err = svc.CompleteMission(ctx, id, "m1", at(20, 0))
	if !errors.Is(err, apperror.ErrAlreadyCompleted) {
		t.Fatalf("second CompleteMission() error = %v, want ErrAlreadyCompleted", err)
	}
	if got := store.points(id); got != 300 {
		t.Errorf("points after repeat = %d, want 300", got)
	}
}

func TestMissionService_NewDayResetsCompletion(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Umar", 0)

	if _, err := svc.CompleteMission(ctx, id, "m2", at(23, 59)); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	// One minute later in WIB is the next calendar day.
	if _, err := svc.CompleteMission(ctx, id, "m2", at(23, 59).Add(time.Minute)); err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if got := store.points(id); got != 200 {
		t.Errorf("points = %d, want 200", got)
	}
}

func TestMissionService_DayBoundaryFollowsCampaignTimezone(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Umar", 0)

	// 18:00 UTC is already 01:00 the next day in WIB.
	first := time.Date(2026, time.February, 19, 16, 0, 0, 0, time.UTC)
	second := time.Date(2026, time.February, 19, 18, 0, 0, 0, time.UTC)

	if _, err := svc.CompleteMission(ctx, id, "m3", first); err != nil {
		t.Fatalf("first: %v", err)
	}
	res, err := svc.CompleteMission(ctx, id, "m3", second)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if res.Day != "2026-02-20" {
		t.Errorf("Day = %q, want 2026-02-20", res.Day)
	}
}

func TestMissionService_UnknownMission(t *testing.T) {
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Ali", 10)

	_, err := svc.CompleteMission(context.Background(), id, "m99", at(10, 0))
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if got := store.points(id); got != 10 {
		t.Errorf("points = %d, want 10", got)
	}
}

func TestMissionService_IsCompletedToday(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Ali", 0)

	done, err := svc.IsCompletedToday(ctx, id, "m4", at(9, 0))
	if err != nil || done {
		t.Fatalf("IsCompletedToday() = %v, %v; want false, nil", done, err)
	}

	if err := svc.RecordCompletion(ctx, id, "m4", at(9, 0)); err != nil {
		t.Fatalf("RecordCompletion() error: %v", err)
	}
	// Recording twice is a no-op.
	if err := svc.RecordCompletion(ctx, id, "m4", at(9, 5)); err != nil {
		t.Fatalf("second RecordCompletion() error: %v", err)
	}

	done, err = svc.IsCompletedToday(ctx, id, "m4", at(21, 0))
	if err != nil || !done {
		t.Fatalf("IsCompletedToday() = %v, %v; want true, nil", done, err)
	}
	if got := store.points(id); got != 0 {
		t.Errorf("RecordCompletion credited points: %d", got)
	}
}

func TestMissionService_TodayMissions(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Fatimah", 0)

	if _, err := svc.CompleteMission(ctx, id, "m6", at(18, 0)); err != nil {
		t.Fatal(err)
	}

	board, err := svc.TodayMissions(ctx, id, at(19, 0))
	if err != nil {
		t.Fatalf("TodayMissions() error: %v", err)
	}
	if len(board) != 8 {
		t.Fatalf("len(board) = %d, want 8", len(board))
	}
	for _, m := range board {
		if want := m.ID == "m6"; m.Completed != want {
			t.Errorf("%s completed = %v, want %v", m.ID, m.Completed, want)
		}
	}

	tomorrow, err := svc.TodayMissions(ctx, id, at(19, 0).AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range tomorrow {
		if m.Completed {
			t.Errorf("%s still completed on the next day", m.ID)
		}
	}
}

func TestMissionService_ConcurrentCompletionsCreditOnce(t *testing.T) {
	svc, store, _ := newTestMissions(t)
	id := store.addUser("Hasan", 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.CompleteMission(context.Background(), id, "m6", at(12, 0))
		}()
	}
	wg.Wait()

	if got := store.points(id); got != 150 {
		t.Errorf("points = %d, want 150", got)
	}
}
