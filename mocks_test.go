package gate_test

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	gate "github.com/goliatone/go-billing-gate"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
)

// MockCheckoutResolver implements gate.CheckoutResolver
type MockCheckoutResolver struct {
	mock.Mock
}

func (m *MockCheckoutResolver) Resolve(ctx context.Context, reference string) (*gate.Checkout, error) {
	args := m.Called(ctx, reference)
	if checkout, ok := args.Get(0).(*gate.Checkout); ok {
		return checkout, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCheckoutStarter implements gate.CheckoutStarter
type MockCheckoutStarter struct {
	mock.Mock
}

func (m *MockCheckoutStarter) Start(ctx context.Context, input gate.StartCheckoutInput) (*gate.CheckoutIntent, error) {
	args := m.Called(ctx, input)
	if intent, ok := args.Get(0).(*gate.CheckoutIntent); ok {
		return intent, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSubscriptionVerifier implements gate.SubscriptionVerifier
type MockSubscriptionVerifier struct {
	mock.Mock
}

func (m *MockSubscriptionVerifier) Status(ctx context.Context, subscriptionID string) (gate.SubscriptionStatus, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(gate.SubscriptionStatus), args.Error(1)
}

// MockVerifier implements gate.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Resolve(ctx context.Context, reference string) (*gate.CheckoutOutcome, error) {
	args := m.Called(ctx, reference)
	if outcome, ok := args.Get(0).(*gate.CheckoutOutcome); ok {
		return outcome, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerifier) Verify(ctx context.Context, reference string) (*gate.CheckoutOutcome, error) {
	args := m.Called(ctx, reference)
	if outcome, ok := args.Get(0).(*gate.CheckoutOutcome); ok {
		return outcome, args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordingLogger renders every call the way the default printf logger would,
// so tests can assert the lines came out well formed.
type RecordingLogger struct {
	mu    sync.Mutex
	Lines []string
}

func (l *RecordingLogger) record(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, fmt.Sprintf(format, args...))
}

func (l *RecordingLogger) Error(format string, args ...any) { l.record(format, args...) }
func (l *RecordingLogger) Warn(format string, args ...any)  { l.record(format, args...) }
func (l *RecordingLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *RecordingLogger) Debug(format string, args ...any) { l.record(format, args...) }

// MemoryIdentityStore is an in-memory gate.IdentityStore with the merge
// semantics the real ledger has: updates touch only the keys they carry.
type MemoryIdentityStore struct {
	mu      sync.Mutex
	records map[string]*gate.IdentityRecord
}

func NewMemoryIdentityStore(records ...*gate.IdentityRecord) *MemoryIdentityStore {
	s := &MemoryIdentityStore{records: map[string]*gate.IdentityRecord{}}
	for _, record := range records {
		s.records[record.ID] = record
	}
	return s
}

func (s *MemoryIdentityStore) Get(ctx context.Context, id string) (*gate.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, errors.New("customer record not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
	}
	return cloneRecord(record), nil
}

func (s *MemoryIdentityStore) FindByEmail(ctx context.Context, email string) ([]*gate.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*gate.IdentityRecord
	for _, record := range s.records {
		if record.Email == email {
			matches = append(matches, cloneRecord(record))
		}
	}

	if len(matches) == 0 {
		return nil, errors.New("customer record not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
	}
	return matches, nil
}

func (s *MemoryIdentityStore) MergeUpdate(ctx context.Context, id string, fields map[string]string) (*gate.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, errors.New("customer record not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
	}

	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}
	for key, value := range fields {
		record.Metadata[key] = value
	}

	return cloneRecord(record), nil
}

func cloneRecord(record *gate.IdentityRecord) *gate.IdentityRecord {
	metadata := map[string]string{}
	for key, value := range record.Metadata {
		metadata[key] = value
	}
	return &gate.IdentityRecord{
		ID:       record.ID,
		Email:    record.Email,
		Metadata: metadata,
	}
}

// TestConfig implements gate.Config
type TestConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	CookieName      string
	SecureCookies   bool
	SignInRoute     string
}

func (c TestConfig) GetSigningKey() string   { return c.SigningKey }
func (c TestConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c TestConfig) GetIssuer() string       { return c.Issuer }
func (c TestConfig) GetAudience() []string   { return c.Audience }
func (c TestConfig) GetCookieName() string   { return c.CookieName }
func (c TestConfig) GetSecureCookies() bool  { return c.SecureCookies }
func (c TestConfig) GetSignInRoute() string  { return c.SignInRoute }

func newTestConfig() TestConfig {
	return TestConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 24,
		Issuer:          "test-issuer",
		Audience:        []string{"test:audience"},
		CookieName:      "arketype_session",
		SignInRoute:     "/login",
	}
}

func newTestTokens() gate.TokenService {
	cfg := newTestConfig()
	return gate.NewTokenService([]byte(cfg.SigningKey), cfg.TokenExpiration, cfg.Issuer, cfg.Audience, nil)
}

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryValues(key string) []string {
	args := m.Called(key)
	return args.Get(0).([]string)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	args := m.Called(key, value)
	return args.Get(0).(map[string]any)
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	header, _ := args.Get(0).(*multipart.FileHeader)
	return header, args.Error(1)
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) IP() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) SendStream(r io.Reader) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockContext) RouteName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) RouteParams() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
