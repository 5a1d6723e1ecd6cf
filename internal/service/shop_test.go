package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/jagoan-puasa/internal/apperror"
	"github.com/sakif/jagoan-puasa/internal/game"
)

func newTestShop(t *testing.T) (*ShopService, *fakeStore, *countingListener) {
	t.Helper()
	store := newFakeStore()
	listener := &countingListener{}
	ledger := NewLedgerService(store, listener, discardLogger())
	return NewShopService(store, ledger, game.DefaultCatalog(), listener, discardLogger()), store, listener
}

func TestShopService_Purchase(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		rewardID    string
		wantErr     error
		wantBalance int
	}{
		{"affordable", 350, "r3", nil, 50},
		{"exact balance", 300, "r3", nil, 0},
		{"insufficient", 250, "r3", apperror.ErrInsufficientPoints, 250},
		{"unknown reward", 5000, "r99", apperror.ErrUnknownReward, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, listener := newTestShop(t)
			id := store.addUser("Aisyah", tt.start)

			res, err := svc.Purchase(context.Background(), id, tt.rewardID, at(12, 0))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Purchase() error = %v, want %v", err, tt.wantErr)
				}
				if listener.count() != 0 {
					t.Error("listener called after a rejected purchase")
				}
			} else {
				if err != nil {
					t.Fatalf("Purchase() unexpected error: %v", err)
				}
				if res.Balance != tt.wantBalance || res.Purchase.RewardID != tt.rewardID {
					t.Errorf("result = %+v", res)
				}
			}
			if got := store.points(id); got != tt.wantBalance {
				t.Errorf("points = %d, want %d", got, tt.wantBalance)
			}
		})
	}
}

func TestShopService_PurchaseIsOneTime(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestShop(t)
	id := store.addUser("Umar", 1000)

	if _, err := svc.Purchase(ctx, id, "r5", at(8, 0)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Purchase(ctx, id, "r5", at(9, 0).AddDate(0, 0, 3))
	if !errors.Is(err, apperror.ErrAlreadyPurchased) {
		t.Fatalf("repeat Purchase() error = %v, want ErrAlreadyPurchased", err)
	}
	if got := store.points(id); got != 900 {
		t.Errorf("points = %d, want 900", got)
	}
}

// A full day: earn with a mission, repeat it, spend it all, try again.
func TestShopService_EarnAndSpend(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	missions := NewMissionService(store, game.DefaultCatalog(), testCalendar(), nil, discardLogger())
	shop := NewShopService(store, NewLedgerService(store, nil, discardLogger()), game.DefaultCatalog(), nil, discardLogger())
	id := store.addUser("Zahra", 250)

	if _, err := missions.CompleteMission(ctx, id, "m1", at(4, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := missions.CompleteMission(ctx, id, "m1", at(4, 1)); !errors.Is(err, apperror.ErrAlreadyCompleted) {
		t.Fatalf("repeat mission error = %v", err)
	}
	if got := store.points(id); got != 300 {
		t.Fatalf("points = %d, want 300", got)
	}

	res, err := shop.Purchase(ctx, id, "r3", at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	if res.Balance != 0 {
		t.Errorf("balance = %d, want 0", res.Balance)
	}
	if _, err := shop.Purchase(ctx, id, "r3", at(12, 1)); !errors.Is(err, apperror.ErrAlreadyPurchased) {
		t.Fatalf("repeat purchase error = %v", err)
	}
}

func TestShopService_Rewards(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestShop(t)
	id := store.addUser("Fatimah", 450)

	if _, err := svc.Purchase(ctx, id, "r1", at(10, 0)); err != nil {
		t.Fatal(err)
	}

	shelf, err := svc.Rewards(ctx, id)
	if err != nil {
		t.Fatalf("Rewards() error: %v", err)
	}

	want := map[string]struct{ purchased, affordable bool }{
		"r1": {true, false},
		"r2": {false, false},
		"r3": {false, false},
		"r4": {false, false},
		"r5": {false, true},
	}
	if len(shelf) != len(want) {
		t.Fatalf("len(shelf) = %d, want %d", len(shelf), len(want))
	}
	for _, r := range shelf {
		w := want[r.ID]
		if r.Purchased != w.purchased || r.Affordable != w.affordable {
			t.Errorf("%s = purchased %v affordable %v, want %v %v", r.ID, r.Purchased, r.Affordable, w.purchased, w.affordable)
		}
	}
}

func TestShopService_Purchases(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestShop(t)
	id := store.addUser("Hasan", 1000)

	empty, err := svc.Purchases(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Purchases() = %v, want empty non-nil slice", empty)
	}

	for _, r := range []string{"r5", "r1"} {
		if _, err := svc.Purchase(ctx, id, r, at(10, 0)); err != nil {
			t.Fatal(err)
		}
	}
	list, err := svc.Purchases(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].RewardID != "r1" {
		t.Errorf("Purchases() = %+v, want r1 first", list)
	}
}
