package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

// PendingTable tracks mobile-money payments dispatched to a provider
// and still waiting for the confirmation webhook. Backed by a durable
// table so entries survive restarts.
type PendingTable struct {
	mu      sync.RWMutex
	entries map[string]*domain.PendingPayment
	repo    domain.PendingPaymentRepository
}

func NewPendingTable(repo domain.PendingPaymentRepository) *PendingTable {
	return &PendingTable{
		entries: make(map[string]*domain.PendingPayment),
		repo:    repo,
	}
}

func (t *PendingTable) WarmUp() error {
	entries, err := t.repo.ListPendingPayments()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range entries {
		t.entries[entry.TransactionID] = entry
	}

	slog.Info("pending payment table warmed up", "entries", len(entries))
	return nil
}

func (t *PendingTable) Register(entry *domain.PendingPayment) error {
	if err := t.repo.CreatePendingPayment(entry); err != nil {
		return err
	}

	t.mu.Lock()
	t.entries[entry.TransactionID] = entry
	t.mu.Unlock()
	return nil
}

func (t *PendingTable) Get(transactionID string) (*domain.PendingPayment, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[transactionID]
	return entry, ok
}

func (t *PendingTable) Remove(transactionID string) {
	t.mu.Lock()
	_, ok := t.entries[transactionID]
	delete(t.entries, transactionID)
	t.mu.Unlock()

	if !ok {
		return
	}
	if err := t.repo.DeletePendingPayment(transactionID); err != nil {
		slog.Error("failed to delete pending payment row", "transaction_id", transactionID, "error", err)
	}
}

// Expired lists entries dispatched longer ago than the timeout.
func (t *PendingTable) Expired(timeout time.Duration, now time.Time) []*domain.PendingPayment {
	t.mu.RLock()
	defer t.mu.RUnlock()

	expired := make([]*domain.PendingPayment, 0)
	for _, entry := range t.entries {
		if now.Sub(entry.DispatchedAt) >= timeout {
			expired = append(expired, entry)
		}
	}
	return expired
}
