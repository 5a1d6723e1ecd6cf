package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/jagoan-puasa/internal/apperror"
)

func newTestLedger(t *testing.T) (*LedgerService, *fakeStore, *countingListener) {
	t.Helper()
	store := newFakeStore()
	listener := &countingListener{}
	return NewLedgerService(store, listener, discardLogger()), store, listener
}

func TestLedgerService_Credit(t *testing.T) {
	ctx := context.Background()
	svc, store, listener := newTestLedger(t)
	id := store.addUser("Aisyah", 100)

	balance, err := svc.Credit(ctx, id, 50)
	if err != nil {
		t.Fatalf("Credit() error: %v", err)
	}
	if balance != 150 {
		t.Errorf("balance = %d, want 150", balance)
	}
	if listener.count() != 1 {
		t.Errorf("listener called %d times, want 1", listener.count())
	}
}

func TestLedgerService_RejectsNonPositiveAmounts(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestLedger(t)
	id := store.addUser("Aisyah", 100)

	for _, amount := range []int{0, -5} {
		if _, err := svc.Credit(ctx, id, amount); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Credit(%d) error = %v, want ErrValidation", amount, err)
		}
		if _, err := svc.Debit(ctx, id, amount); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Debit(%d) error = %v, want ErrValidation", amount, err)
		}
	}
	if got := store.points(id); got != 100 {
		t.Errorf("points = %d, want 100", got)
	}
}

func TestLedgerService_Debit(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		amount      int
		wantBalance int
		wantErr     error
	}{
		{"covered", 300, 200, 100, nil},
		{"exact balance", 300, 300, 0, nil},
		{"insufficient", 250, 300, 250, apperror.ErrInsufficientPoints},
		{"from zero", 0, 1, 0, apperror.ErrInsufficientPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, listener := newTestLedger(t)
			id := store.addUser("Umar", tt.start)

			_, err := svc.Debit(context.Background(), id, tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Debit() error = %v, want %v", err, tt.wantErr)
				}
				if listener.count() != 0 {
					t.Error("listener called after a rejected debit")
				}
			} else if err != nil {
				t.Fatalf("Debit() unexpected error: %v", err)
			}
			if got := store.points(id); got != tt.wantBalance {
				t.Errorf("points = %d, want %d", got, tt.wantBalance)
			}
		})
	}
}

func TestLedgerService_UnknownUser(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	if _, err := svc.Balance(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Balance() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Balance(context.Background(), "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Balance(blank) error = %v, want ErrValidation", err)
	}
}

func TestLedgerService_ConcurrentDebitsNeverOverspend(t *testing.T) {
	svc, store, _ := newTestLedger(t)
	id := store.addUser("Fatimah", 500)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Debit(context.Background(), id, 100); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 5 {
		t.Errorf("successful debits = %d, want 5", ok)
	}
	if got := store.points(id); got != 0 {
		t.Errorf("points = %d, want 0", got)
	}
}

func TestLedgerService_StoreFaultIsNotABusinessRule(t *testing.T) {
	svc, store, _ := newTestLedger(t)
	id := store.addUser("Ali", 100)
	store.failWith = errors.New("disk I/O error")

	_, err := svc.Credit(context.Background(), id, 10)
	if err == nil {
		t.Fatal("Credit() expected error")
	}
	if apperror.IsBusinessRule(err) {
		t.Errorf("store fault reported as business rule: %v", err)
	}
}
