package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/domain"
	publisher "github.com/mozmarket/payment-service/internal/infrastructure/kafka"
)

type fakeTxRepo struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *fakeTxRepo) CreateTransaction(tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *tx
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	r.transactions[tx.ID] = &clone
	return nil
}

func (r *fakeTxRepo) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[transactionID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *tx
	return &clone, nil
}

func (r *fakeTxRepo) UpdateTransaction(transactionID string, update *domain.TransactionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if update.Status != nil {
		tx.Status = *update.Status
	}
	if update.ProviderResponse != nil {
		tx.ProviderResponse = update.ProviderResponse
	}
	if update.ConfirmedAt != nil {
		tx.ConfirmedAt = update.ConfirmedAt
	}
	if update.EscrowReleased != nil {
		tx.EscrowReleased = *update.EscrowReleased
	}
	if update.ReleaseReason != nil {
		tx.ReleaseReason = *update.ReleaseReason
	}
	if update.SellerAmount != nil {
		tx.SellerAmount = *update.SellerAmount
	}
	return nil
}

func (r *fakeTxRepo) SetProviderReference(transactionID, providerReference string, providerResponse []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	tx.ProviderReference = providerReference
	tx.ProviderResponse = providerResponse
	return nil
}

func (r *fakeTxRepo) FindNonTerminalByOrderID(orderID string) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.OrderID == orderID && !tx.Status.IsTerminal() {
			clone := *tx
			open = append(open, &clone)
		}
	}
	return open, nil
}

func (r *fakeTxRepo) ListStalePending(methods []domain.PaymentMethod, before time.Time) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.Status != domain.TransactionPending || !tx.CreatedAt.Before(before) {
			continue
		}
		for _, method := range methods {
			if tx.PaymentMethod == method {
				clone := *tx
				stale = append(stale, &clone)
				break
			}
		}
	}
	return stale, nil
}

// slowTxRepo widens the window between the duplicate check and the
// create so concurrent initiations actually overlap.
type slowTxRepo struct {
	*fakeTxRepo
	delay time.Duration
}

func (r *slowTxRepo) FindNonTerminalByOrderID(orderID string) ([]*domain.Transaction, error) {
	time.Sleep(r.delay)
	return r.fakeTxRepo.FindNonTerminalByOrderID(orderID)
}

// ageTransaction backdates a stored transaction for expiry scenarios.
func (r *fakeTxRepo) ageTransaction(transactionID string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx, ok := r.transactions[transactionID]; ok {
		tx.CreatedAt = createdAt
	}
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) GetOrderByID(orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) SetOrderPaid(orderID string, method domain.PaymentMethod, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = domain.OrderPaid
	order.PaymentMethod = string(method)
	order.PaidAt = &paidAt
	return nil
}

func (r *fakeOrderRepo) CountOrdersSince(buyerID string, since time.Time) (int, error) {
	return 0, nil
}

type fakeEscrowRepo struct {
	mu        sync.Mutex
	records   map[string]*domain.EscrowRecord
	updateErr error
}

func newFakeEscrowRepo() *fakeEscrowRepo {
	return &fakeEscrowRepo{records: make(map[string]*domain.EscrowRecord)}
}

func (r *fakeEscrowRepo) CreateEscrow(record *domain.EscrowRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.TransactionID] = &clone
	return nil
}

func (r *fakeEscrowRepo) UpdateEscrowStatus(transactionID string, newStatus domain.EscrowStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	record, ok := r.records[transactionID]
	if !ok {
		return domain.ErrEscrowNotFound
	}
	record.Status = newStatus
	return nil
}

func (r *fakeEscrowRepo) ListActiveEscrows() ([]*domain.EscrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*domain.EscrowRecord
	for _, record := range r.records {
		if record.Status == domain.EscrowPending {
			clone := *record
			active = append(active, &clone)
		}
	}
	return active, nil
}

type fakePendingRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingPayment
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{entries: make(map[string]*domain.PendingPayment)}
}

func (r *fakePendingRepo) CreatePendingPayment(entry *domain.PendingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.entries[entry.TransactionID] = &clone
	return nil
}

func (r *fakePendingRepo) DeletePendingPayment(transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, transactionID)
	return nil
}

func (r *fakePendingRepo) ListPendingPayments() ([]*domain.PendingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*domain.PendingPayment
	for _, entry := range r.entries {
		clone := *entry
		entries = append(entries, &clone)
	}
	return entries, nil
}

type fakeAdapter struct {
	method       domain.PaymentMethod
	outcome      *domain.ProviderOutcome
	processErr   error
	confirmation *domain.WebhookConfirmation
	parseErr     error
	processed    int
}

func (a *fakeAdapter) Method() domain.PaymentMethod { return a.method }

func (a *fakeAdapter) Process(ctx context.Context, order *domain.OrderRequest, tx *domain.Transaction) (*domain.ProviderOutcome, error) {
	a.processed++
	if a.processErr != nil {
		return nil, a.processErr
	}
	return a.outcome, nil
}

func (a *fakeAdapter) ParseWebhook(payload []byte) (*domain.WebhookConfirmation, error) {
	if a.parseErr != nil {
		return nil, a.parseErr
	}
	confirmation := *a.confirmation
	confirmation.RawPayload = payload
	return &confirmation, nil
}

type fakeScreener struct {
	assessment *domain.FraudAssessment
	err        error
}

func (s *fakeScreener) Assess(order *domain.OrderRequest) (*domain.FraudAssessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assessment, nil
}

// fakePublisher delivers events on a channel so tests can wait for the
// fire-and-forget goroutines.
type fakePublisher struct {
	events chan publisher.PaymentEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan publisher.PaymentEvent, 16)}
}

func (p *fakePublisher) Publish(topic string, msgs ...domain.Message) error {
	for _, msg := range msgs {
		var event publisher.PaymentEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		p.events <- event
	}
	return nil
}

func approvedScreener() *fakeScreener {
	return &fakeScreener{assessment: &domain.FraudAssessment{Decision: domain.FraudApproved}}
}

func testConfig() *config.PaymentConfig {
	return &config.PaymentConfig{
		KafkaService: config.KafkaService{Topic: "payment-events"},
		Commission: config.Commission{
			Standard:      0.05,
			Premium:       0.03,
			Service:       0.10,
			MinimumAmount: 50,
		},
		Escrow: config.Escrow{
			PeriodDays:            14,
			PendingTimeoutMinutes: 30,
			SweepIntervalSeconds:  60,
		},
		Providers: config.Providers{
			MPesa: config.ProviderBundle{Name: "M-Pesa", Icon: "mpesa.svg", Color: "#c00"},
			EMola: config.ProviderBundle{Name: "e-Mola", Icon: "emola.svg", Color: "#f60"},
			MKesh: config.ProviderBundle{Name: "mKesh", Icon: "mkesh.svg", Color: "#090"},
			Visa:  config.ProviderBundle{Name: "Visa"},
		},
	}
}
