package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "Valid#Pass123"

type tNop struct{}

func (tNop) Errorf(string, ...any) {}
func (tNop) Fatalf(string, ...any) {}
func (tNop) Helper()               {}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type pinDispatcherState struct {
	mu   sync.Mutex
	sent []PinNotification
	err  error
}

func (s *pinDispatcherState) record(_ context.Context, n PinNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *pinDispatcherState) last(t *testing.T) PinNotification {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatal("expected a dispatched pin")
	}
	return s.sent[len(s.sent)-1]
}

func (s *pinDispatcherState) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *pinDispatcherState) failWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// flakyTransactor fails the first n transactions with a persistence conflict.
type flakyTransactor struct {
	inner repository.Transactor
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyTransactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.fails > 0
	if fail {
		f.fails--
	}
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: simulated serialization failure", repository.ErrPersistenceConflict)
	}
	return f.inner.WithinTx(ctx, fn)
}

type credentialServiceFixture struct {
	cfg        *config.Config
	db         *gorm.DB
	repos      repository.Repositories
	clock      *testClock
	dispatcher *pinDispatcherState
	hasher     security.SecretHasher
	svc        *CredentialService
	accounts   *AccountService
}

func newServiceDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.User{}, &domain.Credential{}, &domain.PinSlot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestHasher() security.SecretHasher {
	params := security.DefaultArgon2idParams()
	params.Time = 1
	params.Memory = 8 * 1024
	return security.NewArgon2idHasher(params)
}

func newCredentialServiceFixture(t *testing.T) *credentialServiceFixture {
	return newCredentialServiceFixtureWithTx(t, nil)
}

func newCredentialServiceFixtureWithTx(t *testing.T, wrap func(repository.Transactor) repository.Transactor) *credentialServiceFixture {
	t.Helper()
	cfg := &config.Config{
		AuthEmailPinTTL:          15 * time.Minute,
		AuthPasswordResetPinTTL:  10 * time.Minute,
		AuthEmailVerifyBaseURL:   "https://reviews.example.com/verify",
		AuthPasswordResetBaseURL: "https://reviews.example.com/reset",
		NotifierDriver:           "log",
		NotifierTimeout:          time.Second,
	}
	db := newServiceDBForTest(t)
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	expiry, err := NewExpiryPolicy(map[domain.PinPurpose]time.Duration{
		domain.PinPurposeEmailVerification: cfg.AuthEmailPinTTL,
		domain.PinPurposePasswordReset:     cfg.AuthPasswordResetPinTTL,
	}, clock.Now)
	if err != nil {
		t.Fatalf("expiry policy: %v", err)
	}

	state := &pinDispatcherState{}
	ctrl := gomock.NewController(tNop{})
	dispatcher := NewMockPinDispatcher(ctrl)
	dispatcher.EXPECT().SendVerificationPin(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(state.record)
	dispatcher.EXPECT().SendPasswordResetPin(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(state.record)

	var tx repository.Transactor = repository.NewTransactor(db)
	if wrap != nil {
		tx = wrap(tx)
	}
	repos := repository.NewRepositories(db)
	hasher := newTestHasher()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewCredentialService(cfg, tx, repos, hasher, security.NewHexPinGenerator(security.DefaultPinBytes),
		expiry, dispatcher, NewMemoryIdentityLocker(2*time.Second), logger)

	return &credentialServiceFixture{
		cfg:        cfg,
		db:         db,
		repos:      repos,
		clock:      clock,
		dispatcher: state,
		hasher:     hasher,
		svc:        svc,
		accounts:   NewAccountService(repos, svc, hasher),
	}
}

// registerUser creates a user with a credential and returns its identity and
// the verification pin that was dispatched.
func (fx *credentialServiceFixture) registerUser(t *testing.T, email string) (string, string) {
	t.Helper()
	user := &domain.User{
		ID:        "id-" + strings.Split(email, "@")[0],
		Email:     email,
		UserName:  "reviewer",
		FirstName: "Ana",
		LastName:  "Lima",
		IsActive:  true,
	}
	if err := fx.svc.RegisterUser(t.Context(), user, testPassword); err != nil {
		t.Fatalf("register: %v", err)
	}
	return user.ID, fx.dispatcher.last(t).Pin
}

func (fx *credentialServiceFixture) slotCount(t *testing.T, identity string, purpose domain.PinPurpose) int64 {
	t.Helper()
	var n int64
	if err := fx.db.Model(&domain.PinSlot{}).Where("identity = ? AND purpose = ?", identity, purpose).Count(&n).Error; err != nil {
		t.Fatalf("count slots: %v", err)
	}
	return n
}

func (fx *credentialServiceFixture) slot(t *testing.T, identity string, purpose domain.PinPurpose) domain.PinSlot {
	t.Helper()
	var slot domain.PinSlot
	if err := fx.db.Where("identity = ? AND purpose = ?", identity, purpose).First(&slot).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	return slot
}

func (fx *credentialServiceFixture) credential(t *testing.T, identity string) domain.Credential {
	t.Helper()
	var c domain.Credential
	if err := fx.db.Where("identity = ?", identity).First(&c).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	return c
}
