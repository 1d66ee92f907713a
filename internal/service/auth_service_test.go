package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/repository"
	"github.com/cookwithlove/directory-api/internal/service"
	"github.com/cookwithlove/directory-api/internal/verification"
	"github.com/cookwithlove/directory-api/pkg/auth"
	"github.com/cookwithlove/directory-api/pkg/config"
	"github.com/cookwithlove/directory-api/pkg/events"
)

// ---------- Mocks ----------

type mockMailer struct {
	lastTo   string
	lastName string
	lastCode string
	sent     int
	sendErr  error
}

func (m *mockMailer) SendEmailVerification(toEmail, toName, code string) error {
	m.lastTo = toEmail
	m.lastName = toName
	m.lastCode = code
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent++
	return nil
}

func (m *mockMailer) SendPasswordReset(toEmail, toName, code string) error {
	m.lastTo = toEmail
	m.lastName = toName
	m.lastCode = code
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent++
	return nil
}

type fakeBus struct {
	published []string
}

func (b *fakeBus) Publish(_ context.Context, subject string, _ interface{}) error {
	b.published = append(b.published, subject)
	return nil
}

func (b *fakeBus) Subscribe(string, func(msg *events.Message)) error { return nil }

func (b *fakeBus) QueueSubscribe(string, string, func(msg *events.Message)) error { return nil }

func (b *fakeBus) Close() error { return nil }

var _ events.EventBus = (*fakeBus)(nil)

type mockUserRepo struct {
	nextID    int64
	byEmail   map[string]*domain.User
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, byEmail: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	key := strings.ToLower(u.Email)
	if _, exists := m.byEmail[key]; exists {
		return nil, domain.ErrConflict
	}
	created := *u
	created.ID = m.nextID
	m.nextID++
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	m.byEmail[key] = &created
	return &created, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	u, _ := m.FindByID(ctx, id)
	if u == nil {
		return nil, nil
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	return u, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	u, _ := m.FindByID(ctx, id)
	if u == nil {
		return nil, nil
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	return u, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, _ := m.FindByID(ctx, id)
	if u == nil {
		return fmt.Errorf("no rows")
	}
	u.PasswordHash = passwordHash
	u.ResetCodeHash = ""
	u.ResetExpires = nil
	return nil
}

func (m *mockUserRepo) SetResetCode(ctx context.Context, id int64, codeHash string, expires time.Time) error {
	u, _ := m.FindByID(ctx, id)
	if u == nil {
		return fmt.Errorf("no rows")
	}
	u.ResetCodeHash = codeHash
	u.ResetExpires = &expires
	return nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id int64) error {
	u, _ := m.FindByID(ctx, id)
	if u == nil {
		return fmt.Errorf("no rows")
	}
	now := time.Now()
	u.IsActive = false
	u.DeletedAt = &now
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	for key, u := range m.byEmail {
		if u.ID == id {
			delete(m.byEmail, key)
			return nil
		}
	}
	return fmt.Errorf("no rows")
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.byEmail {
		users = append(users, *u)
	}
	return users, nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// ---------- Helpers ----------

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
		},
	}
}

func registerRequest() *domain.RegisterRequest {
	return &domain.RegisterRequest{
		Email:     "Maria@Example.com",
		Password:  "secret123",
		FirstName: "Maria",
		LastName:  "Lopez",
		Role:      domain.RoleUser,
	}
}

// ---------- Tests ----------

func TestRegisterHoldsSignupAsPending(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	bus := &fakeBus{}

	svc := service.NewAuthService(repo, pending, mail, bus, testConfig())

	result, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !result.EmailSent {
		t.Error("expected EmailSent true")
	}
	if result.VerificationCode != "" {
		t.Error("code must not leak in the response when the email was sent")
	}

	// No user row yet
	if u, _ := repo.FindByEmail(context.Background(), "maria@example.com"); u != nil {
		t.Error("user must not exist before verification")
	}

	// Pending entry exists, keyed case insensitively
	if _, ok := pending.Get("MARIA@example.COM"); !ok {
		t.Error("expected pending signup for the email")
	}
	if mail.lastCode == "" {
		t.Error("expected a verification code in the email")
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	pending := verification.NewStore()
	defer pending.Close()
	svc := service.NewAuthService(newMockUserRepo(), pending, &mockMailer{}, &fakeBus{}, testConfig())

	cases := []struct {
		name string
		req  *domain.RegisterRequest
	}{
		{"bad email", &domain.RegisterRequest{Email: "not-an-email", Password: "secret123", FirstName: "Maria", LastName: "Lopez"}},
		{"short password", &domain.RegisterRequest{Email: "maria@example.com", Password: "abc", FirstName: "Maria", LastName: "Lopez"}},
		{"missing first name", &domain.RegisterRequest{Email: "maria@example.com", Password: "secret123", LastName: "Lopez"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	svc := service.NewAuthService(repo, pending, &mockMailer{}, &fakeBus{}, testConfig())

	if _, err := repo.Create(context.Background(), &domain.User{Email: "maria@example.com", Role: domain.RoleUser}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := svc.Register(context.Background(), registerRequest())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, ok := pending.Get("maria@example.com"); ok {
		t.Error("duplicate registration must not create a pending entry")
	}
}

func TestRegisterDegradedModeReturnsCode(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{sendErr: fmt.Errorf("smtp down")}
	bus := &fakeBus{}
	svc := service.NewAuthService(repo, pending, mail, bus, testConfig())

	result, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register must succeed even when mail fails: %v", err)
	}
	if result.EmailSent {
		t.Error("expected EmailSent false")
	}
	if result.VerificationCode == "" {
		t.Fatal("expected the code in the response when mail delivery fails")
	}

	// The failed delivery is flagged for the notify consumer
	var flagged bool
	for _, subject := range bus.published {
		if subject == events.NotifySend {
			flagged = true
		}
	}
	if !flagged {
		t.Errorf("expected a %s event, published %v", events.NotifySend, bus.published)
	}

	// The surfaced code must actually work
	user, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: result.VerificationCode,
	})
	if err != nil {
		t.Fatalf("VerifyEmail with surfaced code failed: %v", err)
	}
	if !user.EmailVerified {
		t.Error("expected verified user")
	}
}

func TestVerifyEmailPromotesPendingSignup(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	bus := &fakeBus{}
	svc := service.NewAuthService(repo, pending, mail, bus, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: strings.ToLower(mail.lastCode), // codes compare case insensitively
	})
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected a persisted user ID")
	}
	if !user.EmailVerified || !user.IsActive {
		t.Error("promoted user must be verified and active")
	}
	if user.PasswordHash == "secret123" {
		t.Error("password must be hashed")
	}
	match, err := argon2id.ComparePasswordAndHash("secret123", user.PasswordHash)
	if err != nil || !match {
		t.Error("stored hash must match the original password")
	}

	// Pending entry consumed
	if _, ok := pending.Get("maria@example.com"); ok {
		t.Error("pending entry must be removed after promotion")
	}

	// Second attempt with the same code
	_, err = svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	})
	if !errors.Is(err, verification.ErrNoPending) {
		t.Fatalf("expected ErrNoPending on replay, got %v", err)
	}
}

func TestVerifyEmailWrongCodeAllowsRetry(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	svc := service.NewAuthService(repo, pending, mail, &fakeBus{}, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: "000000",
	})
	if !errors.Is(err, verification.ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}

	// Correct code still works after a failed attempt
	if _, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	}); err != nil {
		t.Fatalf("retry with correct code failed: %v", err)
	}
}

func TestVerifyEmailRaceRemovesPending(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	svc := service.NewAuthService(repo, pending, mail, &fakeBus{}, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// A user appears between Register and VerifyEmail
	if _, err := repo.Create(context.Background(), &domain.User{Email: "maria@example.com", Role: domain.RoleUser}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, ok := pending.Get("maria@example.com"); ok {
		t.Error("stale pending entry must be cleaned up")
	}
}

func TestResendVerificationRotatesCode(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	svc := service.NewAuthService(repo, pending, mail, &fakeBus{}, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	firstCode := mail.lastCode

	if _, err := svc.ResendVerification(context.Background(), "maria@example.com"); err != nil {
		t.Fatalf("ResendVerification failed: %v", err)
	}
	if mail.lastCode == firstCode {
		t.Error("resend must issue a fresh code")
	}

	// The old code no longer verifies
	_, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: firstCode,
	})
	if !errors.Is(err, verification.ErrCodeInvalid) {
		t.Fatalf("expected old code to be invalid, got %v", err)
	}

	if _, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	}); err != nil {
		t.Fatalf("new code failed: %v", err)
	}
}

func TestResendVerificationNoPending(t *testing.T) {
	svcStore := verification.NewStore()
	defer svcStore.Close()
	svc := service.NewAuthService(newMockUserRepo(), svcStore, &mockMailer{}, &fakeBus{}, testConfig())

	_, err := svc.ResendVerification(context.Background(), "nobody@example.com")
	if !errors.Is(err, verification.ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	svc := service.NewAuthService(repo, pending, &mockMailer{}, &fakeBus{}, testConfig())

	if _, err := repo.Create(context.Background(), &domain.User{Email: "maria@example.com", EmailVerified: true}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := svc.ResendVerification(context.Background(), "maria@example.com")
	if !errors.Is(err, service.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	cfg := testConfig()
	svc := service.NewAuthService(repo, pending, mail, &fakeBus{}, cfg)

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	}); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := auth.Parse(resp.Token, cfg.Auth.JWTSecret)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Email != "maria@example.com" || claims.Role != domain.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// Wrong password
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Unknown user
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret123",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Disabled account
	u, _ := repo.FindByEmail(context.Background(), "maria@example.com")
	u.IsActive = false
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "secret123",
	}); !errors.Is(err, service.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	repo := newMockUserRepo()
	pending := verification.NewStore()
	defer pending.Close()
	mail := &mockMailer{}
	svc := service.NewAuthService(repo, pending, mail, &fakeBus{}, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.VerifyEmail(context.Background(), &domain.VerifyEmailRequest{
		Email:            "maria@example.com",
		VerificationCode: mail.lastCode,
	}); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), "maria@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	resetCode := mail.lastCode

	// Wrong code rejected
	if err := svc.ResetPassword(context.Background(), &domain.ResetPasswordRequest{
		Email:            "maria@example.com",
		VerificationCode: "000000",
		NewPassword:      "newsecret",
	}); !errors.Is(err, service.ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), &domain.ResetPasswordRequest{
		Email:            "maria@example.com",
		VerificationCode: resetCode,
		NewPassword:      "newsecret",
	}); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	// Reset code is single use
	if err := svc.ResetPassword(context.Background(), &domain.ResetPasswordRequest{
		Email:            "maria@example.com",
		VerificationCode: resetCode,
		NewPassword:      "another",
	}); !errors.Is(err, service.ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid after use, got %v", err)
	}

	// Old password no longer works, new one does
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "secret123",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "newsecret",
	}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// Unknown email gets the same silent answer
	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("ForgotPassword must not reveal missing accounts: %v", err)
	}
}
