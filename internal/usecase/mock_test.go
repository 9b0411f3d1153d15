//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/adapter"
	"iris-payments/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// ---- Mock CartRepository ----

type MockCartRepo struct {
	mu     sync.Mutex
	Carts  map[int64]*model.Cart
	Totals map[int64]int64

	FindFunc       func(ctx context.Context, tx repository.Tx, id int64) (*model.Cart, error)
	OrderTotalFunc func(ctx context.Context, tx repository.Tx, id int64) (int64, error)

	FindCalls int
}

var _ repository.CartRepository = (*MockCartRepo)(nil)

func NewMockCartRepo() *MockCartRepo {
	return &MockCartRepo{Carts: map[int64]*model.Cart{}, Totals: map[int64]int64{}}
}

func (m *MockCartRepo) Find(ctx context.Context, tx repository.Tx, id int64) (*model.Cart, error) {
	m.mu.Lock()
	m.FindCalls++
	m.mu.Unlock()
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tx, id)
	}
	if c, ok := m.Carts[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockCartRepo) OrderTotal(ctx context.Context, tx repository.Tx, id int64) (int64, error) {
	if m.OrderTotalFunc != nil {
		return m.OrderTotalFunc(ctx, tx, id)
	}
	return m.Totals[id], nil
}

// ---- Mock CustomerRepository ----

type MockCustomerRepo struct {
	Customers map[int64]*model.Customer

	FindFunc  func(ctx context.Context, tx repository.Tx, id int64) (*model.Customer, error)
	FindCalls int
}

var _ repository.CustomerRepository = (*MockCustomerRepo)(nil)

func NewMockCustomerRepo() *MockCustomerRepo {
	return &MockCustomerRepo{Customers: map[int64]*model.Customer{}}
}

func (m *MockCustomerRepo) Find(ctx context.Context, tx repository.Tx, id int64) (*model.Customer, error) {
	m.FindCalls++
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tx, id)
	}
	if c, ok := m.Customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	Orders map[int64]*model.Order // keyed by cart id

	FindByCartIDFunc func(ctx context.Context, tx repository.Tx, cartID int64) (*model.Order, error)
	CreateFunc       func(ctx context.Context, tx repository.Tx, o *model.Order) (int64, error)

	CreateCalls int
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{nextID: 100, Orders: map[int64]*model.Order{}}
}

func (m *MockOrderRepo) FindByCartID(ctx context.Context, tx repository.Tx, cartID int64) (*model.Order, error) {
	if m.FindByCartIDFunc != nil {
		return m.FindByCartIDFunc(ctx, tx, cartID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.Orders[cartID]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) (int64, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Orders[o.CartID]; ok {
		return 0, domain.ErrAlreadyExists
	}
	m.nextID++
	stored := *o
	stored.ID = m.nextID
	m.Orders[o.CartID] = &stored
	return stored.ID, nil
}

// ---- Mock SettingsRepository ----

type MockSettingsRepo struct {
	Stored *model.GatewaySettings

	LoadFunc func(ctx context.Context) (model.GatewaySettings, error)
	SaveFunc func(ctx context.Context, s model.GatewaySettings) error
}

var _ repository.SettingsRepository = (*MockSettingsRepo)(nil)

func (m *MockSettingsRepo) Load(ctx context.Context) (model.GatewaySettings, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	if m.Stored == nil {
		return model.GatewaySettings{}, domain.ErrNotFound
	}
	return *m.Stored, nil
}

func (m *MockSettingsRepo) Save(ctx context.Context, s model.GatewaySettings) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	m.Stored = &s
	return nil
}

// ---- Mock AuditRepository ----

type MockAuditRepo struct {
	mu      sync.Mutex
	Entries []*model.AuditEntry

	RecordFunc func(ctx context.Context, e *model.AuditEntry) error
}

var _ repository.AuditRepository = (*MockAuditRepo)(nil)

func (m *MockAuditRepo) Record(ctx context.Context, e *model.AuditEntry) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MockAuditRepo) Last() *model.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// ---- Mock Locker ----

type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
	UnlockFunc  func(ctx context.Context, key, token string) error

	Held map[string]string
}

var _ repository.Locker = (*MockLocker)(nil)

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return "lock-token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, key, token)
	}
	return nil
}

// ---- Mock TransactionManager ----

// MockTxManager invokes the callback directly; repositories under test do
// not care about the tx handle.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	CreateSessionFunc func(ctx context.Context, settings model.GatewaySettings, req model.SessionRequest) (model.Session, error)
	SubmitPayformFunc func(ctx context.Context, req model.PayformRequest) (adapter.PayformResponse, error)

	LastSessionReq *model.SessionRequest
	LastPayformReq *model.PayformRequest
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateSession(ctx context.Context, settings model.GatewaySettings, req model.SessionRequest) (model.Session, error) {
	m.LastSessionReq = &req
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, settings, req)
	}
	return model.Session{Signature: "sig", UUID: "uuid"}, nil
}

func (m *MockPaymentGateway) BuildPayformRequest(settings model.GatewaySettings, sess model.Session, req model.SessionRequest, buyer model.Buyer, billing model.BillingAddress) model.PayformRequest {
	pf := model.PayformRequest{
		URL: "https://payform.test/api/payment-methods/iris",
		Body: model.PayformBody{
			Flow:       "direct",
			Token:      sess.Signature,
			Signature:  sess.Signature,
			PublicKey:  settings.PublicKey,
			Amount:     req.AmountMinor,
			Currency:   req.Currency,
			UUID:       sess.UUID,
			MD:         req.CartRef,
			Locale:     buyer.Locale,
			PayerEmail: buyer.Email,
		},
	}
	m.LastPayformReq = &pf
	return pf
}

func (m *MockPaymentGateway) SubmitPayform(ctx context.Context, req model.PayformRequest) (adapter.PayformResponse, error) {
	m.LastPayformReq = &req
	if m.SubmitPayformFunc != nil {
		return m.SubmitPayformFunc(ctx, req)
	}
	return adapter.PayformResponse{Body: []byte("<html>form</html>"), ContentType: "text/html"}, nil
}
