package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
	publisher "github.com/mozmarket/payment-service/internal/infrastructure/kafka"
)

type testEnv struct {
	uc          *DefaultPaymentUsecase
	txRepo      *fakeTxRepo
	orderRepo   *fakeOrderRepo
	escrowRepo  *fakeEscrowRepo
	pendingRepo *fakePendingRepo
	pub         *fakePublisher
	adapter     *fakeAdapter
}

func newTestEnv(t *testing.T, adapter *fakeAdapter, screener FraudScreener) *testEnv {
	t.Helper()

	txRepo := newFakeTxRepo()
	orderRepo := newFakeOrderRepo()
	escrowRepo := newFakeEscrowRepo()
	pendingRepo := newFakePendingRepo()
	pub := newFakePublisher()

	cfg := testConfig()
	uc, err := NewDefaultPaymentUsecase(
		txRepo,
		orderRepo,
		NewEscrowLedger(escrowRepo, cfg.Escrow.PeriodDays),
		NewPendingTable(pendingRepo),
		[]domain.ProviderAdapter{adapter},
		screener,
		nil,
		pub,
		nil,
		nil,
		cfg,
	)
	if err != nil {
		t.Fatalf("failed to build usecase: %v", err)
	}

	return &testEnv{
		uc:          uc,
		txRepo:      txRepo,
		orderRepo:   orderRepo,
		escrowRepo:  escrowRepo,
		pendingRepo: pendingRepo,
		pub:         pub,
		adapter:     adapter,
	}
}

func acceptedMPesaAdapter() *fakeAdapter {
	return &fakeAdapter{
		method:  domain.MethodMPesa,
		outcome: &domain.ProviderOutcome{Accepted: true, ProviderReference: "REF-1", Message: "accepted"},
	}
}

func sampleOrder() *domain.OrderRequest {
	return &domain.OrderRequest{
		OrderID:     "ORD-1",
		Amount:      1000,
		Phone:       "841234567",
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		ProductName: "Capulana",
	}
}

func (e *testEnv) seedOrder(orderID string, disputeOpen bool) {
	e.orderRepo.orders[orderID] = &domain.Order{
		ID:          orderID,
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		Status:      domain.OrderPending,
		DisputeOpen: disputeOpen,
	}
}

func waitEvent(t *testing.T, pub *fakePublisher) publisher.PaymentEvent {
	t.Helper()
	select {
	case event := <-pub.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published event")
		return publisher.PaymentEvent{}
	}
}

func expectNoEvent(t *testing.T, pub *fakePublisher) {
	t.Helper()
	select {
	case event := <-pub.events:
		t.Fatalf("unexpected event published: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInitiatePayment_MobileMoneyAccepted(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got message %q", result.Message)
	}
	if result.TransactionID == "" {
		t.Fatal("expected a transaction id")
	}
	if result.ProviderReference != "REF-1" {
		t.Errorf("provider reference = %q, want REF-1", result.ProviderReference)
	}

	tx, err := env.txRepo.GetTransactionByID(result.TransactionID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if tx.Commission != 50 {
		t.Errorf("commission = %v, want 50 (minimum fee on 1000 at 5%%)", tx.Commission)
	}
	if tx.Status != domain.TransactionPending {
		t.Errorf("status = %v, want pending", tx.Status)
	}

	record, ok := env.uc.Escrow.Get(result.TransactionID)
	if !ok {
		t.Fatal("expected an escrow record")
	}
	wantRelease := time.Now().AddDate(0, 0, 14)
	if diff := record.ReleaseDate.Sub(wantRelease); diff < -time.Minute || diff > time.Minute {
		t.Errorf("release date = %v, want about %v", record.ReleaseDate, wantRelease)
	}

	if _, ok := env.uc.Pending.Get(result.TransactionID); !ok {
		t.Error("expected a pending payment entry for mobile money")
	}
	if result.Instructions == nil || result.Instructions.MethodName != "M-Pesa" {
		t.Errorf("instructions = %+v, want M-Pesa metadata", result.Instructions)
	}
}

func TestInitiatePayment_CardSkipsPendingTable(t *testing.T) {
	adapter := &fakeAdapter{
		method:  domain.MethodVisa,
		outcome: &domain.ProviderOutcome{Accepted: true, RequiresUserInput: true, Message: "awaiting card details"},
	}
	env := newTestEnv(t, adapter, approvedScreener())
	env.seedOrder("ORD-1", false)

	order := sampleOrder()
	order.Phone = ""
	result, err := env.uc.InitiatePayment(context.Background(), order, domain.MethodVisa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}
	if !result.RequiresUserInput {
		t.Error("expected RequiresUserInput for card payment")
	}
	if result.Instructions != nil {
		t.Error("card payments should not carry mobile money instructions")
	}
	if _, ok := env.uc.Pending.Get(result.TransactionID); ok {
		t.Error("card payments must not register a pending entry")
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); !ok {
		t.Error("card acceptance must still hold escrow")
	}
}

func TestInitiatePayment_UnknownMethodLeavesNoTransaction(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())

	_, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.PaymentMethod("bitcoin"))
	if !errors.Is(err, domain.ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}

	open, _ := env.txRepo.FindNonTerminalByOrderID("ORD-1")
	if len(open) != 0 {
		t.Errorf("found %d non-terminal transactions, want 0", len(open))
	}
}

func TestInitiatePayment_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	first, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("first initiation failed: %v", err)
	}

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if !errors.Is(err, domain.ErrDuplicateInitiation) {
		t.Fatalf("err = %v, want ErrDuplicateInitiation", err)
	}
	if result.Success {
		t.Error("duplicate initiation must not succeed")
	}
	if result.TransactionID != first.TransactionID {
		t.Errorf("duplicate result carries %q, want existing %q", result.TransactionID, first.TransactionID)
	}
	if env.adapter.processed != 1 {
		t.Errorf("provider called %d times, want 1", env.adapter.processed)
	}
}

func TestInitiatePayment_ConcurrentCheckoutsSingleTransaction(t *testing.T) {
	txRepo := &slowTxRepo{fakeTxRepo: newFakeTxRepo(), delay: 5 * time.Millisecond}
	orderRepo := newFakeOrderRepo()
	escrowRepo := newFakeEscrowRepo()
	pub := newFakePublisher()
	adapter := acceptedMPesaAdapter()

	cfg := testConfig()
	uc, err := NewDefaultPaymentUsecase(
		txRepo,
		orderRepo,
		NewEscrowLedger(escrowRepo, cfg.Escrow.PeriodDays),
		NewPendingTable(newFakePendingRepo()),
		[]domain.ProviderAdapter{adapter},
		approvedScreener(),
		nil,
		pub,
		nil,
		nil,
		cfg,
	)
	if err != nil {
		t.Fatalf("failed to build usecase: %v", err)
	}
	orderRepo.orders["ORD-1"] = &domain.Order{ID: "ORD-1", BuyerID: "buyer-1", SellerID: "seller-1", Status: domain.OrderPending}

	const checkouts = 4
	var wg sync.WaitGroup
	var mu sync.Mutex
	var accepted, duplicates int
	for i := 0; i < checkouts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrDuplicateInitiation):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 1 || duplicates != checkouts-1 {
		t.Errorf("accepted = %d, duplicates = %d, want 1 and %d", accepted, duplicates, checkouts-1)
	}
	open, _ := txRepo.fakeTxRepo.FindNonTerminalByOrderID("ORD-1")
	if len(open) != 1 {
		t.Errorf("found %d non-terminal transactions, want 1", len(open))
	}
	if adapter.processed != 1 {
		t.Errorf("provider called %d times, want 1", adapter.processed)
	}
	if uc.Escrow.ActiveCount() != 1 {
		t.Errorf("active escrow holds = %d, want 1", uc.Escrow.ActiveCount())
	}
}

func TestInitiatePayment_ProviderRejectedAllowsRetry(t *testing.T) {
	adapter := &fakeAdapter{
		method:  domain.MethodMPesa,
		outcome: &domain.ProviderOutcome{Accepted: false, Message: "insufficient funds"},
	}
	env := newTestEnv(t, adapter, approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("err = %v, want ErrProviderRejected", err)
	}
	if result.Success {
		t.Error("rejected dispatch must not succeed")
	}

	tx, err := env.txRepo.GetTransactionByID(result.TransactionID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if tx.Status != domain.TransactionFailed {
		t.Errorf("status = %v, want failed", tx.Status)
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); ok {
		t.Error("rejected dispatch must not hold escrow")
	}

	open, _ := env.txRepo.FindNonTerminalByOrderID("ORD-1")
	if len(open) != 0 {
		t.Errorf("found %d non-terminal transactions after rejection, want 0", len(open))
	}
}

func TestInitiatePayment_FraudRejected(t *testing.T) {
	screener := &fakeScreener{assessment: &domain.FraudAssessment{
		Decision:  domain.FraudRequiresReview,
		RiskScore: 90,
		Message:   "order flagged for manual review",
	}}
	env := newTestEnv(t, acceptedMPesaAdapter(), screener)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if !errors.Is(err, domain.ErrFraudRejected) {
		t.Fatalf("err = %v, want ErrFraudRejected", err)
	}
	if result.Success {
		t.Error("flagged order must not succeed")
	}
	if env.adapter.processed != 0 {
		t.Error("provider must not be called for a flagged order")
	}
}

func TestInitiatePayment_InvalidPhone(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())

	order := sampleOrder()
	order.Phone = "911234567"
	_, err := env.uc.InitiatePayment(context.Background(), order, domain.MethodMPesa)
	if !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("err = %v, want ErrInvalidOrder", err)
	}
}

func initiateConfirmed(t *testing.T, env *testEnv) string {
	t.Helper()
	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}
	env.adapter.confirmation = &domain.WebhookConfirmation{TransactionID: result.TransactionID, Completed: true}
	if err := env.uc.HandleWebhook(context.Background(), domain.MethodMPesa, []byte(`{"status":"ok"}`)); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}
	event := waitEvent(t, env.pub)
	if event.EventType != "payment_confirmed" {
		t.Fatalf("event type = %q, want payment_confirmed", event.EventType)
	}
	return result.TransactionID
}

func TestHandleWebhook_CompletedMarksOrderPaid(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	txID := initiateConfirmed(t, env)

	tx, _ := env.txRepo.GetTransactionByID(txID)
	if tx.Status != domain.TransactionCompleted {
		t.Errorf("status = %v, want completed", tx.Status)
	}
	if tx.ConfirmedAt == nil {
		t.Error("expected ConfirmedAt to be set")
	}

	order, _ := env.orderRepo.GetOrderByID("ORD-1")
	if order.Status != domain.OrderPaid {
		t.Errorf("order status = %v, want paid", order.Status)
	}
	if _, ok := env.uc.Pending.Get(txID); ok {
		t.Error("pending entry must be removed after confirmation")
	}

	record, ok := env.uc.Escrow.Get(txID)
	if !ok {
		t.Fatal("escrow must stay held until release")
	}
	if record.Status != domain.EscrowPending {
		t.Errorf("escrow status = %v, want pending", record.Status)
	}
}

func TestHandleWebhook_ReplayIsDiscarded(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	txID := initiateConfirmed(t, env)

	if err := env.uc.HandleWebhook(context.Background(), domain.MethodMPesa, []byte(`{"status":"ok"}`)); err != nil {
		t.Fatalf("replayed webhook returned error: %v", err)
	}
	expectNoEvent(t, env.pub)

	tx, _ := env.txRepo.GetTransactionByID(txID)
	if tx.Status != domain.TransactionCompleted {
		t.Errorf("replay changed status to %v", tx.Status)
	}
}

func TestHandleWebhook_FailureReversesEscrow(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}
	env.adapter.confirmation = &domain.WebhookConfirmation{TransactionID: result.TransactionID, Completed: false}
	if err := env.uc.HandleWebhook(context.Background(), domain.MethodMPesa, []byte(`{"status":"failed"}`)); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}

	tx, _ := env.txRepo.GetTransactionByID(result.TransactionID)
	if tx.Status != domain.TransactionFailed {
		t.Errorf("status = %v, want failed", tx.Status)
	}
	order, _ := env.orderRepo.GetOrderByID("ORD-1")
	if order.Status != domain.OrderPaymentFailed {
		t.Errorf("order status = %v, want payment_failed", order.Status)
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); ok {
		t.Error("escrow must be reversed on failure")
	}
}

func TestHandleWebhook_UnregisteredTransactionDiscarded(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.adapter.confirmation = &domain.WebhookConfirmation{TransactionID: "TXN-ghost", Completed: true}

	err := env.uc.HandleWebhook(context.Background(), domain.MethodMPesa, []byte(`{}`))
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("err = %v, want ErrTransactionNotFound", err)
	}
	expectNoEvent(t, env.pub)
}

func TestReleaseEscrow_PaysSellerShare(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	txID := initiateConfirmed(t, env)

	output, err := env.uc.ReleaseEscrow(context.Background(), txID, "order_delivered")
	if err != nil {
		t.Fatalf("ReleaseEscrow failed: %v", err)
	}
	if output.SellerAmount != 950 {
		t.Errorf("seller amount = %v, want 950", output.SellerAmount)
	}
	if output.Commission != 50 {
		t.Errorf("commission = %v, want 50", output.Commission)
	}

	if _, ok := env.uc.Escrow.Get(txID); ok {
		t.Error("released record must leave the active set")
	}
	tx, _ := env.txRepo.GetTransactionByID(txID)
	if !tx.EscrowReleased || tx.SellerAmount != 950 || tx.ReleaseReason != "order_delivered" {
		t.Errorf("transaction not updated with release details: %+v", tx)
	}
	order, _ := env.orderRepo.GetOrderByID("ORD-1")
	if order.Status != domain.OrderCompleted {
		t.Errorf("order status = %v, want completed", order.Status)
	}

	event := waitEvent(t, env.pub)
	if event.EventType != "escrow_released" || event.SellerAmount != 950 {
		t.Errorf("event = %+v, want escrow_released with seller amount 950", event)
	}
}

func TestReleaseEscrow_UnknownTransaction(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())

	_, err := env.uc.ReleaseEscrow(context.Background(), "TXN-missing", "order_delivered")
	if !errors.Is(err, domain.ErrEscrowNotFound) {
		t.Fatalf("err = %v, want ErrEscrowNotFound", err)
	}
	expectNoEvent(t, env.pub)
}

func TestReleaseEscrow_UnconfirmedTransaction(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}

	_, err = env.uc.ReleaseEscrow(context.Background(), result.TransactionID, "order_delivered")
	if !errors.Is(err, domain.ErrEscrowNotReleasable) {
		t.Fatalf("err = %v, want ErrEscrowNotReleasable", err)
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); !ok {
		t.Error("failed release must leave the record held")
	}
}

func TestRefundTransaction_ReversesHeldEscrow(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	txID := initiateConfirmed(t, env)

	if err := env.uc.RefundTransaction(context.Background(), txID, "buyer_complaint"); err != nil {
		t.Fatalf("RefundTransaction failed: %v", err)
	}

	tx, _ := env.txRepo.GetTransactionByID(txID)
	if tx.Status != domain.TransactionRefunded {
		t.Errorf("status = %v, want refunded", tx.Status)
	}
	if _, ok := env.uc.Escrow.Get(txID); ok {
		t.Error("refund must reverse the held escrow")
	}
	order, _ := env.orderRepo.GetOrderByID("ORD-1")
	if order.Status != domain.OrderRefunded {
		t.Errorf("order status = %v, want refunded", order.Status)
	}

	event := waitEvent(t, env.pub)
	if event.EventType != "payment_refunded" {
		t.Errorf("event type = %q, want payment_refunded", event.EventType)
	}
}

func TestReleaseDueEscrows_SkipsOpenDisputes(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", true)

	txID := initiateConfirmed(t, env)

	record, _ := env.uc.Escrow.Get(txID)
	record.ReleaseDate = time.Now().Add(-time.Hour)

	if err := env.uc.ReleaseDueEscrows(context.Background()); err != nil {
		t.Fatalf("ReleaseDueEscrows failed: %v", err)
	}
	if _, ok := env.uc.Escrow.Get(txID); !ok {
		t.Error("disputed escrow must stay held")
	}
	expectNoEvent(t, env.pub)
}

func TestReleaseDueEscrows_ReleasesElapsedRecords(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	txID := initiateConfirmed(t, env)

	record, _ := env.uc.Escrow.Get(txID)
	record.ReleaseDate = time.Now().Add(-time.Hour)

	if err := env.uc.ReleaseDueEscrows(context.Background()); err != nil {
		t.Fatalf("ReleaseDueEscrows failed: %v", err)
	}
	if _, ok := env.uc.Escrow.Get(txID); ok {
		t.Error("elapsed escrow must be released")
	}

	event := waitEvent(t, env.pub)
	if event.EventType != "escrow_released" || event.Message != releaseReasonPeriodElapsed {
		t.Errorf("event = %+v, want escrow_released with period elapsed reason", event)
	}
}

func TestExpireStalePayments_FailsUnconfirmed(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}

	entry, _ := env.uc.Pending.Get(result.TransactionID)
	entry.DispatchedAt = time.Now().Add(-time.Hour)

	if err := env.uc.ExpireStalePayments(context.Background()); err != nil {
		t.Fatalf("ExpireStalePayments failed: %v", err)
	}

	tx, _ := env.txRepo.GetTransactionByID(result.TransactionID)
	if tx.Status != domain.TransactionFailed {
		t.Errorf("status = %v, want failed", tx.Status)
	}
	if _, ok := env.uc.Pending.Get(result.TransactionID); ok {
		t.Error("expired entry must be removed")
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); ok {
		t.Error("expired payment must reverse its escrow")
	}
	order, _ := env.orderRepo.GetOrderByID("ORD-1")
	if order.Status != domain.OrderPaymentFailed {
		t.Errorf("order status = %v, want payment_failed", order.Status)
	}
}

func TestExpireStalePayments_KeepsFreshEntries(t *testing.T) {
	env := newTestEnv(t, acceptedMPesaAdapter(), approvedScreener())
	env.seedOrder("ORD-1", false)

	result, err := env.uc.InitiatePayment(context.Background(), sampleOrder(), domain.MethodMPesa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}

	if err := env.uc.ExpireStalePayments(context.Background()); err != nil {
		t.Fatalf("ExpireStalePayments failed: %v", err)
	}
	if _, ok := env.uc.Pending.Get(result.TransactionID); !ok {
		t.Error("fresh entry must survive the sweep")
	}
}

func TestExpireStalePayments_SweepsAbandonedCard(t *testing.T) {
	adapter := &fakeAdapter{
		method:  domain.MethodVisa,
		outcome: &domain.ProviderOutcome{Accepted: true, RequiresUserInput: true, Message: "awaiting card details"},
	}
	env := newTestEnv(t, adapter, approvedScreener())
	env.seedOrder("ORD-1", false)

	order := sampleOrder()
	order.Phone = ""
	result, err := env.uc.InitiatePayment(context.Background(), order, domain.MethodVisa)
	if err != nil {
		t.Fatalf("InitiatePayment failed: %v", err)
	}
	env.txRepo.ageTransaction(result.TransactionID, time.Now().Add(-time.Hour))

	if err := env.uc.ExpireStalePayments(context.Background()); err != nil {
		t.Fatalf("ExpireStalePayments failed: %v", err)
	}

	tx, _ := env.txRepo.GetTransactionByID(result.TransactionID)
	if tx.Status != domain.TransactionFailed {
		t.Errorf("status = %v, want failed", tx.Status)
	}
	if _, ok := env.uc.Escrow.Get(result.TransactionID); ok {
		t.Error("abandoned card payment must reverse its escrow")
	}
	orderRow, _ := env.orderRepo.GetOrderByID("ORD-1")
	if orderRow.Status != domain.OrderPaymentFailed {
		t.Errorf("order status = %v, want payment_failed", orderRow.Status)
	}

	retry, err := env.uc.InitiatePayment(context.Background(), order, domain.MethodVisa)
	if err != nil {
		t.Fatalf("retry after sweep failed: %v", err)
	}
	if !retry.Success {
		t.Errorf("retry rejected with %q, want a fresh attempt", retry.Message)
	}
}
