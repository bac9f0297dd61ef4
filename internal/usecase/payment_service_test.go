package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"norahair-backend/internal/domain"
	"norahair-backend/internal/infrastructure/paystack"
)

type fakeOrderRepo struct {
	mu    sync.Mutex
	m     map[string]*domain.Order
	byRef map[string]string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{m: map[string]*domain.Order{}, byRef: map[string]string{}}
}

func (r *fakeOrderRepo) Put(o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.m[o.ID] = &cp
	if o.PaystackReference != "" {
		r.byRef[o.PaystackReference] = o.ID
	}
	return nil
}

func (r *fakeOrderRepo) Get(id string) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (r *fakeOrderRepo) GetByReference(ref string) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, false
	}
	cp := *r.m[id]
	return &cp, true
}

func (r *fakeOrderRepo) List(page, pageSize int) ([]domain.Order, int) {
	return nil, 0
}

func (r *fakeOrderRepo) UpdateStatus(id string, status domain.OrderStatus) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	o.OrderStatus = status
	cp := *o
	return &cp, true
}

func (r *fakeOrderRepo) UpdatePayment(id string, status domain.PaymentStatus, paidAt *time.Time) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	o.PaymentStatus = status
	if paidAt != nil {
		t := *paidAt
		o.PaidAt = &t
	}
	if status == domain.PaymentPaid {
		o.FirstPaymentStatus = domain.SplitPaid
	}
	cp := *o
	return &cp, true
}

func (r *fakeOrderRepo) MarkPaid(id string, paidAt time.Time) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	if o.PaymentStatus != domain.PaymentUnpaid {
		cp := *o
		return &cp, false
	}
	o.PaymentStatus = domain.PaymentPaid
	o.FirstPaymentStatus = domain.SplitPaid
	t := paidAt
	o.PaidAt = &t
	if o.OrderStatus == domain.OrderPending {
		o.OrderStatus = domain.OrderProcessing
	}
	cp := *o
	return &cp, true
}

func (r *fakeOrderRepo) MarkFailed(id string) (*domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	if o.PaymentStatus != domain.PaymentUnpaid {
		cp := *o
		return &cp, false
	}
	o.PaymentStatus = domain.PaymentFailed
	cp := *o
	return &cp, true
}

// raceOrderRepo runs a hook after the first reference lookup, simulating a
// writer that sneaks in between a read and the following mutation.
type raceOrderRepo struct {
	*fakeOrderRepo
	afterLookup func()
}

func (r *raceOrderRepo) GetByReference(ref string) (*domain.Order, bool) {
	o, ok := r.fakeOrderRepo.GetByReference(ref)
	if hook := r.afterLookup; hook != nil {
		r.afterLookup = nil
		hook()
	}
	return o, ok
}

type fakeVerifier struct {
	data *paystack.TransactionData
	err  error
}

func (v *fakeVerifier) VerifyTransaction(ctx context.Context, ref string) (*paystack.TransactionData, error) {
	if v.err != nil {
		return nil, v.err
	}
	d := *v.data
	d.Reference = ref
	return &d, nil
}

type recordPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordPublisher) Publish(ctx context.Context, eventType, orderID, ref string, payload map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func naira(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func seedOrder(t *testing.T, repo *fakeOrderRepo, ref string, total int64) *domain.Order {
	t.Helper()
	o := &domain.Order{
		ID:                  "order-1",
		Items:               []domain.OrderItem{{ProductID: "p1", ProductName: "Bone Straight 18\"", Price: naira(total), Quantity: 1}},
		TotalAmount:         naira(total),
		PaymentPlan:         domain.PlanFull,
		FirstPayment:        naira(total),
		FirstPaymentStatus:  domain.SplitPending,
		SecondPaymentStatus: domain.SplitPending,
		PaymentStatus:       domain.PaymentUnpaid,
		PaystackReference:   ref,
		OrderStatus:         domain.OrderPending,
		OrderDate:           time.Now().UTC(),
	}
	if err := repo.Put(o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func newPaymentService(repo *fakeOrderRepo, v TransactionVerifier) *PaymentService {
	return &PaymentService{
		Orders:    repo,
		Verifier:  v,
		SecretKey: "sk_test_secret",
		PublicKey: "pk_test_public",
	}
}

func successData(amountKobo int64) *paystack.TransactionData {
	return &paystack.TransactionData{
		Status:   "success",
		Amount:   amountKobo,
		Currency: "NGN",
		PaidAt:   time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestVerify_MarksOrderPaid(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, &fakeVerifier{data: successData(12000000)})

	res, err := svc.Verify(context.Background(), "NORA-X")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success result")
	}
	if res.Amount != 12000000 {
		t.Fatalf("amount = %d, want 12000000", res.Amount)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("paymentStatus = %s, want paid", o.PaymentStatus)
	}
	if o.OrderStatus != domain.OrderProcessing {
		t.Fatalf("orderStatus = %s, want processing", o.OrderStatus)
	}
	if o.FirstPaymentStatus != domain.SplitPaid {
		t.Fatalf("firstPaymentStatus = %s, want paid", o.FirstPaymentStatus)
	}
	if o.PaidAt == nil {
		t.Fatalf("paidAt not set")
	}
}

func TestVerify_MissingReference(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), &fakeVerifier{data: successData(0)})
	_, err := svc.Verify(context.Background(), "")
	var bad ErrBadRequest
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestVerify_SecretNotConfigured(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), &fakeVerifier{data: successData(0)})
	svc.SecretKey = ""
	_, err := svc.Verify(context.Background(), "NORA-X")
	var nc ErrNotConfigured
	if !errors.As(err, &nc) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestVerify_ProviderUnavailable(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, &fakeVerifier{err: errors.New("dial tcp: timeout")})

	_, err := svc.Verify(context.Background(), "NORA-X")
	var un ErrUnavailable
	if !errors.As(err, &un) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("order mutated on upstream failure: %s", o.PaymentStatus)
	}
}

func TestVerify_DeclinedMarksFailed(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, &fakeVerifier{data: &paystack.TransactionData{
		Status:          "abandoned",
		Amount:          12000000,
		Currency:        "NGN",
		GatewayResponse: "The transaction was not completed",
	}})

	res, err := svc.Verify(context.Background(), "NORA-X")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure result")
	}
	if res.ProviderStatus != "abandoned" {
		t.Fatalf("providerStatus = %s", res.ProviderStatus)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentFailed {
		t.Fatalf("paymentStatus = %s, want failed", o.PaymentStatus)
	}
}

// A webhook confirmation landing between the declined verify's lookup and its
// failed write must keep the order paid.
func TestVerify_DeclinedDoesNotOverwriteConcurrentPaid(t *testing.T) {
	inner := newFakeOrderRepo()
	o := seedOrder(t, inner, "NORA-X", 120000)
	repo := &raceOrderRepo{fakeOrderRepo: inner}
	repo.afterLookup = func() {
		if _, applied := inner.MarkPaid(o.ID, time.Now().UTC()); !applied {
			t.Fatal("concurrent MarkPaid did not apply")
		}
	}
	svc := &PaymentService{
		Orders:    repo,
		Verifier:  &fakeVerifier{data: &paystack.TransactionData{Status: "abandoned", Currency: "NGN"}},
		SecretKey: "sk_test_secret",
		PublicKey: "pk_test_public",
	}

	if _, err := svc.Verify(context.Background(), "NORA-X"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	got, _ := inner.GetByReference("NORA-X")
	if got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("paymentStatus = %s, webhook confirmation was overwritten", got.PaymentStatus)
	}
	if got.FirstPaymentStatus != domain.SplitPaid {
		t.Fatalf("firstPaymentStatus = %s, want paid", got.FirstPaymentStatus)
	}
}

func TestVerify_DeclinedUnknownReference(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), &fakeVerifier{data: &paystack.TransactionData{
		Status:   "abandoned",
		Currency: "NGN",
	}})
	_, err := svc.Verify(context.Background(), "NORA-GHOST")
	var conflict ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestVerify_SuccessUnknownReference(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), &fakeVerifier{data: successData(12000000)})
	_, err := svc.Verify(context.Background(), "NORA-GHOST")
	var nf ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVerify_AmountMismatchLeavesOrderUnpaid(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, &fakeVerifier{data: successData(11000000)})

	_, err := svc.Verify(context.Background(), "NORA-X")
	var conflict ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("order mutated on amount mismatch: %s", o.PaymentStatus)
	}
}

func webhookEvent(ref string, amountKobo int64, currency string) paystack.WebhookEvent {
	return paystack.WebhookEvent{
		Event: paystack.EventChargeSuccess,
		Data: paystack.TransactionData{
			Status:    "success",
			Reference: ref,
			Amount:    amountKobo,
			Currency:  currency,
			PaidAt:    time.Date(2025, 6, 30, 12, 5, 0, 0, time.UTC),
		},
	}
}

func TestReconcile_AppliesPaidTransition(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	pub := &recordPublisher{}
	svc := newPaymentService(repo, nil)
	svc.Events = pub

	outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-X", 12000000, "NGN"))
	if outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", outcome)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentPaid || o.OrderStatus != domain.OrderProcessing {
		t.Fatalf("order not transitioned: %s/%s", o.PaymentStatus, o.OrderStatus)
	}
	if len(pub.events) != 1 || pub.events[0] != "payment.captured" {
		t.Fatalf("events = %v, want [payment.captured]", pub.events)
	}
}

// A verify confirmation followed by the webhook for the same transaction must
// leave exactly one effective mutation, keeping the first paidAt.
func TestReconcile_DuplicateAfterVerify(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	pub := &recordPublisher{}
	svc := newPaymentService(repo, &fakeVerifier{data: successData(12000000)})
	svc.Events = pub

	if _, err := svc.Verify(context.Background(), "NORA-X"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	first, _ := repo.GetByReference("NORA-X")

	outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-X", 12000000, "NGN"))
	if outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", outcome)
	}
	second, _ := repo.GetByReference("NORA-X")
	if !second.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("paidAt changed on duplicate: %v -> %v", first.PaidAt, second.PaidAt)
	}
	if len(pub.events) != 1 {
		t.Fatalf("captured event published twice: %v", pub.events)
	}
}

func TestVerify_DuplicateAfterWebhook(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, &fakeVerifier{data: successData(12000000)})

	if outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-X", 12000000, "NGN")); outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want applied", outcome)
	}
	first, _ := repo.GetByReference("NORA-X")

	res, err := svc.Verify(context.Background(), "NORA-X")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success on already-paid order")
	}
	if !res.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("paidAt changed: %v -> %v", first.PaidAt, res.PaidAt)
	}
}

func TestReconcile_AmountMismatch(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, nil)

	outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-X", 11000000, "NGN"))
	if outcome != OutcomeMismatch {
		t.Fatalf("outcome = %s, want mismatch", outcome)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("order mutated on mismatch: %s", o.PaymentStatus)
	}
}

func TestReconcile_CurrencyMismatch(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, nil)

	outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-X", 12000000, "USD"))
	if outcome != OutcomeMismatch {
		t.Fatalf("outcome = %s, want mismatch", outcome)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("order mutated on currency mismatch: %s", o.PaymentStatus)
	}
}

func TestReconcile_UnknownReference(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), nil)
	outcome := svc.Reconcile(context.Background(), webhookEvent("NORA-GHOST", 12000000, "NGN"))
	if outcome != OutcomeUnknownReference {
		t.Fatalf("outcome = %s, want unknown_reference", outcome)
	}
}

func TestReconcile_IgnoresOtherEventTypes(t *testing.T) {
	repo := newFakeOrderRepo()
	seedOrder(t, repo, "NORA-X", 120000)
	svc := newPaymentService(repo, nil)

	evt := webhookEvent("NORA-X", 12000000, "NGN")
	evt.Event = "transfer.success"
	if outcome := svc.Reconcile(context.Background(), evt); outcome != OutcomeIgnored {
		t.Fatalf("outcome = %s, want ignored", outcome)
	}
	o, _ := repo.GetByReference("NORA-X")
	if o.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("order mutated by ignored event: %s", o.PaymentStatus)
	}
}

func TestInitialize_CreatesUnpaidOrderWithReference(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newPaymentService(repo, nil)

	res, err := svc.Initialize(context.Background(), InitializeInput{
		Email:       "ada@example.com",
		Amount:      naira(120000),
		ProductID:   "p1",
		ProductName: "Bone Straight 18\"",
		Quantity:    1,
	})
	if err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if res.Reference == "" || res.OrderID == "" {
		t.Fatalf("missing reference or order id: %+v", res)
	}
	if res.Amount != 12000000 {
		t.Fatalf("kobo amount = %d, want 12000000", res.Amount)
	}
	if res.Currency != "NGN" {
		t.Fatalf("currency = %s", res.Currency)
	}
	o, ok := repo.GetByReference(res.Reference)
	if !ok {
		t.Fatalf("order not stored under reference")
	}
	if o.PaymentStatus != domain.PaymentUnpaid || o.OrderStatus != domain.OrderPending {
		t.Fatalf("fresh order in wrong state: %s/%s", o.PaymentStatus, o.OrderStatus)
	}
	if o.PaymentPlan != domain.PlanFull || !o.FirstPayment.Equal(o.TotalAmount) || !o.SecondPayment.IsZero() {
		t.Fatalf("full plan split wrong: %+v", o)
	}
}

// A stale catalog price must not desync the snapshot from the charged total.
func TestInitialize_SnapshotSumsToTotalDespiteCatalogDrift(t *testing.T) {
	products := newFakeProductRepo()
	products.products["p1"] = &domain.Product{
		ID:     "p1",
		Name:   "Bone Straight 18\"",
		Price:  naira(99999),
		Images: []string{"bone-straight.jpg"},
	}
	repo := newFakeOrderRepo()
	svc := newPaymentService(repo, nil)
	svc.Products = products

	res, err := svc.Initialize(context.Background(), InitializeInput{
		Email:     "ada@example.com",
		Amount:    naira(120000),
		ProductID: "p1",
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	o, _ := repo.GetByReference(res.Reference)
	if !o.TotalAmount.Equal(naira(120000)) {
		t.Fatalf("totalAmount = %s, want 120000", o.TotalAmount)
	}
	item := o.Items[0]
	if !item.Price.Mul(naira(int64(item.Quantity))).Equal(o.TotalAmount) {
		t.Fatalf("snapshot sum %s != total %s", item.Price.Mul(naira(int64(item.Quantity))), o.TotalAmount)
	}
	if item.ProductName != "Bone Straight 18\"" || item.Image != "bone-straight.jpg" {
		t.Fatalf("catalog display fields not applied: %+v", item)
	}
}

func TestInitialize_RequiresPublicKey(t *testing.T) {
	svc := newPaymentService(newFakeOrderRepo(), nil)
	svc.PublicKey = ""
	_, err := svc.Initialize(context.Background(), InitializeInput{Email: "a@b.c", Amount: naira(1000)})
	var nc ErrNotConfigured
	if !errors.As(err, &nc) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
