package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

// EscrowLedger owns the funds-in-trust records. The in-memory table is
// a cache over the durable escrow_records table so a restart does not
// lose pending reconciliation state.
type EscrowLedger struct {
	mu         sync.RWMutex
	records    map[string]*domain.EscrowRecord
	repo       domain.EscrowRepository
	periodDays int
}

func NewEscrowLedger(repo domain.EscrowRepository, periodDays int) *EscrowLedger {
	return &EscrowLedger{
		records:    make(map[string]*domain.EscrowRecord),
		repo:       repo,
		periodDays: periodDays,
	}
}

// WarmUp reloads active records from the durable table on startup.
func (l *EscrowLedger) WarmUp() error {
	records, err := l.repo.ListActiveEscrows()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, record := range records {
		l.records[record.TransactionID] = record
	}

	slog.Info("escrow ledger warmed up", "active_records", len(records))
	return nil
}

// Hold creates the escrow record for an accepted provider outcome.
// A second hold for the same transaction id is refused.
func (l *EscrowLedger) Hold(transactionID, orderID, sellerID string, amount, commission float64) (*domain.EscrowRecord, error) {
	l.mu.RLock()
	_, exists := l.records[transactionID]
	l.mu.RUnlock()
	if exists {
		return nil, domain.NewPaymentError(domain.ErrEscrowAlreadyHeld, orderID, transactionID, "")
	}

	now := time.Now()
	record := &domain.EscrowRecord{
		TransactionID: transactionID,
		OrderID:       orderID,
		SellerID:      sellerID,
		Amount:        amount,
		Commission:    commission,
		Status:        domain.EscrowPending,
		EscrowDate:    now,
		ReleaseDate:   now.AddDate(0, 0, l.periodDays),
	}

	if err := l.repo.CreateEscrow(record); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.records[transactionID] = record
	l.mu.Unlock()

	slog.Info("transaction added to escrow",
		"transaction_id", transactionID,
		"order_id", orderID,
		"amount", amount,
		"commission", commission,
		"release_date", record.ReleaseDate)

	return record, nil
}

func (l *EscrowLedger) Get(transactionID string) (*domain.EscrowRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.records[transactionID]
	return record, ok
}

// Release marks the durable row released and then removes the record
// from the active set. The durable update comes first: if it fails the
// record stays held, so a restart cannot re-release a row whose cache
// entry was already gone. The seller/commission split is computed by
// the caller.
func (l *EscrowLedger) Release(transactionID string) (*domain.EscrowRecord, error) {
	return l.settle(transactionID, domain.EscrowReleased)
}

// Reverse settles a record whose payment failed or was refunded after
// a hold was created.
func (l *EscrowLedger) Reverse(transactionID string) (*domain.EscrowRecord, error) {
	return l.settle(transactionID, domain.EscrowReversed)
}

func (l *EscrowLedger) settle(transactionID string, status domain.EscrowStatus) (*domain.EscrowRecord, error) {
	l.mu.RLock()
	record, ok := l.records[transactionID]
	l.mu.RUnlock()
	if !ok {
		return nil, domain.ErrEscrowNotFound
	}

	if err := l.repo.UpdateEscrowStatus(transactionID, status); err != nil {
		return nil, err
	}

	l.mu.Lock()
	delete(l.records, transactionID)
	l.mu.Unlock()

	record.Status = status
	return record, nil
}

// DueForRelease lists active records whose release date has passed, for
// the periodic sweep and for external schedulers.
func (l *EscrowLedger) DueForRelease(now time.Time) []*domain.EscrowRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	due := make([]*domain.EscrowRecord, 0)
	for _, record := range l.records {
		if !record.ReleaseDate.After(now) {
			due = append(due, record)
		}
	}
	return due
}

func (l *EscrowLedger) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
