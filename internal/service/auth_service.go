package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/mailer"
	"github.com/cookwithlove/directory-api/internal/repository"
	"github.com/cookwithlove/directory-api/internal/verification"
	"github.com/cookwithlove/directory-api/pkg/auth"
	"github.com/cookwithlove/directory-api/pkg/config"
	"github.com/cookwithlove/directory-api/pkg/events"
	"github.com/cookwithlove/directory-api/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrResetCodeInvalid   = errors.New("invalid or expired reset code")
)

const resetCodeTTL = 15 * time.Minute

// RegisterResult reports where the verification code went. When the mail
// provider is down the code comes back in the response so signup still works.
type RegisterResult struct {
	Email            string `json:"email"`
	EmailSent        bool   `json:"emailSent"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, req *domain.VerifyEmailRequest) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) (*RegisterResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, req *domain.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID int64) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error

	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	PendingStats() verification.Stats
}

type authService struct {
	userRepo repository.UserRepository
	pending  *verification.Store
	mailer   mailer.Service
	eventBus events.EventBus
	config   *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	pending *verification.Store,
	mailer mailer.Service,
	eventBus events.EventBus,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo: userRepo,
		pending:  pending,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
	}
}

// Register holds the signup in the pending store; no user row exists until
// the email is verified. Registering again replaces the previous pending
// entry and issues a fresh code.
func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*RegisterResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	code := s.pending.Put(req.Email, verification.Signup{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})

	result := &RegisterResult{Email: req.Email, EmailSent: true}
	if err := s.mailer.SendEmailVerification(req.Email, req.FirstName, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "email", req.Email)
		// Degraded mode: surface the code so signup is not blocked
		result.EmailSent = false
		result.VerificationCode = code

		// Flag the failed delivery for the notify consumer
		if pubErr := s.eventBus.Publish(ctx, events.NotifySend, events.NotifySendEvent{
			Channel:   "email",
			Template:  "email_verification",
			Recipient: req.Email,
			FailedAt:  time.Now(),
		}); pubErr != nil {
			logger.WarnContext(ctx, "Failed to publish notify.send", "error", pubErr)
		}
	}

	if err := s.eventBus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		Email:     req.Email,
		FirstName: req.FirstName,
		CreatedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.registered", "error", err)
	}

	return result, nil
}

// VerifyEmail promotes the pending signup to a persisted user. The pending
// entry is removed only after the row is created, so a failed insert leaves
// the code usable for retry. The unique index on users.email is the backstop
// against two concurrent verifications.
func (s *authService) VerifyEmail(ctx context.Context, req *domain.VerifyEmailRequest) (*domain.User, error) {
	signup, err := s.pending.Verify(req.Email, req.VerificationCode)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, signup.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.pending.Remove(signup.Email)
		return nil, domain.ErrConflict
	}

	passwordHash, err := argon2id.CreateHash(signup.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:         signup.Email,
		PasswordHash:  passwordHash,
		FirstName:     signup.FirstName,
		LastName:      signup.LastName,
		Phone:         signup.Phone,
		Role:          signup.Role,
		IsActive:      true,
		EmailVerified: true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another verification won the race
			s.pending.Remove(signup.Email)
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.pending.Remove(signup.Email)

	if err := s.eventBus.Publish(ctx, events.UserVerified, events.UserVerifiedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		VerifiedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.verified", "error", err)
	}

	return user, nil
}

// ResendVerification rotates the code on the pending entry. Unlike Register,
// a mail failure here is a hard error: the caller explicitly asked for the
// email.
func (s *authService) ResendVerification(ctx context.Context, email string) (*RegisterResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyVerified
	}

	signup, ok := s.pending.Get(email)
	if !ok {
		return nil, verification.ErrNoPending
	}

	code := s.pending.Put(email, signup)
	if err := s.mailer.SendEmailVerification(signup.Email, signup.FirstName, code); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return &RegisterResult{Email: signup.Email, EmailSent: true}, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.DeletedAt != nil {
		return nil, ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		Token: token,
		User:  user.ToUserInfo(),
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req *domain.ChangePasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	valid, err := argon2id.ComparePasswordAndHash(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset code for a verified account. The response is
// the same whether or not the email exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.DeletedAt != nil {
		// Don't reveal if the account exists
		return nil
	}

	code := verification.GenerateCode()
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash reset code: %w", err)
	}

	if err := s.userRepo.SetResetCode(ctx, user.ID, string(codeHash), time.Now().Add(resetCodeTTL)); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.mailer.SendPasswordReset(user.Email, user.FirstName, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send password reset email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return ErrResetCodeInvalid
	}
	if user.ResetCodeHash == "" || user.ResetExpires == nil || time.Now().After(*user.ResetExpires) {
		return ErrResetCodeInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ResetCodeHash), []byte(req.VerificationCode)) != nil {
		return ErrResetCodeInvalid
	}

	newHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// UpdatePassword clears the reset code so it is single use
	if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	user, err := s.userRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *authService) PendingStats() verification.Stats {
	return s.pending.Stats()
}
