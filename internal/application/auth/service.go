package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/unalone/unalone-api/internal/domain"
	"github.com/unalone/unalone-api/internal/infrastructure/otpstore"
	"github.com/unalone/unalone-api/internal/infrastructure/smtp"
	"github.com/unalone/unalone-api/internal/pkg/id"
	"github.com/unalone/unalone-api/internal/pkg/otp"
	pkgtoken "github.com/unalone/unalone-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult bundles everything a successful register or login produces:
// the user's public fields, the signed access token and the session row
// backing the refresh flow.
type AuthResult struct {
	User    *domain.User
	Bearer  string
	Session *domain.Session
}

type Service interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsWithEmailOrPhone(ctx context.Context, email string, phone *string) (bool, error)
}

type sessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
}

type jwtSigner interface {
	Sign(userID string) (string, error)
}

type service struct {
	otpStore    otpstore.Store
	userRepo    userStore
	sessionRepo sessionStore
	mailer      smtp.Mailer
	jwtProvider jwtSigner
	otpExpiry   time.Duration
	sessionDur  time.Duration
}

type ServiceDeps struct {
	OTPStore    otpstore.Store
	UserRepo    userStore
	SessionRepo sessionStore
	Mailer      smtp.Mailer
	JWTProvider jwtSigner
	OTPExpiry   time.Duration
	SessionDur  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpStore:    deps.OTPStore,
		userRepo:    deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
		otpExpiry:   deps.OTPExpiry,
		sessionDur:  deps.SessionDur,
	}
}

// SendOTP generates a fresh 6-digit code for email, overwriting any
// earlier unconsumed code, and dispatches it by mail. A mail transport
// failure surfaces as domain.ErrDelivery.
func (s *service) SendOTP(ctx context.Context, email string) error {
	code, err := otp.NewCode()
	if err != nil {
		return err
	}
	rec := domain.OTPRecord{
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpExpiry),
		Verified:  false,
	}
	if err := s.otpStore.Set(ctx, email, rec); err != nil {
		return err
	}
	return s.mailer.SendEmail(email, "Your verification code", "Your OTP is "+code)
}

// VerifyOTP checks the supplied code and marks the record verified.
// An expired record is deleted as a side effect of the failed lookup.
func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	rec, err := s.otpStore.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("OTP not found: %w", domain.ErrNotFound)
		}
		return err
	}
	if rec.Expired(time.Now()) {
		if err := s.otpStore.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired OTP record", "email", email, "err", err)
		}
		return fmt.Errorf("OTP expired: %w", domain.ErrBadRequest)
	}
	if rec.Code != code {
		return fmt.Errorf("invalid OTP: %w", domain.ErrBadRequest)
	}
	rec.Verified = true
	return s.otpStore.Set(ctx, email, *rec)
}

// Register creates a user whose email was proven by a verified OTP
// record, consumes that record and opens a first session.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error) {
	rec, err := s.otpStore.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("email not verified: %w", domain.ErrBadRequest)
		}
		return nil, err
	}
	if !rec.Verified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrBadRequest)
	}

	exists, err := s.userRepo.ExistsWithEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:             id.New(),
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		PasswordHash:       string(hash),
		VerificationStatus: domain.VerificationEmailVerified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	// The OTP record is single-use: consumed by the registration it gated.
	if err := s.otpStore.Delete(ctx, req.Email); err != nil {
		slog.Warn("failed to delete consumed OTP record", "email", req.Email, "err", err)
	}

	return s.issueSession(ctx, u)
}

// Login verifies credentials and opens a new session. Unknown email and
// wrong password produce the same error so the response never reveals
// which one failed.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Verified() {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}
	return s.issueSession(ctx, u)
}

// issueSession creates a session row with a fixed expiry and signs an
// access token. A new row is created on every call; concurrent sessions
// per user are expected and uncapped.
func (s *service) issueSession(ctx context.Context, u *domain.User) (*AuthResult, error) {
	sessionID, err := pkgtoken.NewSessionID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: sessionID,
		UserID:    u.UserID,
		ExpiresAt: now.Add(s.sessionDur),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &AuthResult{User: u, Bearer: bearer, Session: sess}, nil
}
