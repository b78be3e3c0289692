package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/token"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/pkg/errors"
)

const (
	twoFactorCodeTimeout = 5 * time.Minute
	trialPeriod          = 14 * 24 * time.Hour

	ForgotPasswordMessage = "If an account exists for that email, a reset link has been sent."
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users   users.UserRepo // Repository for user data
	Tenants tenants.Repo   // Repository for tenant data
}

type twoFactorChallenge struct {
	code      string
	tempToken string
	issuedAt  time.Time
}

var _ authapi.API = (*Service)(nil)

// Service is an in-process implementation of the Auth API.
type Service struct {
	repos     Repos
	tokens    *token.Manager
	sender    CodeSender
	validator *Validator
	nowTime   func() time.Time

	mu         sync.Mutex
	challenges map[string]twoFactorChallenge // email -> pending challenge
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithCodeSender replaces the default log based sender
func WithCodeSender(sender CodeSender) ServiceOption {
	return func(s *Service) {
		s.sender = sender
	}
}

func NewService(repos Repos, tokens *token.Manager, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewService] Tenants repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}

	s := &Service{
		repos:      repos,
		tokens:     tokens,
		sender:     LogSender{},
		validator:  NewValidator(),
		nowTime:    time.Now,
		challenges: make(map[string]twoFactorChallenge),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login checks the credentials and issues a two-factor challenge when the
// user has one configured and no code was supplied.
func (s *Service) Login(ctx context.Context, req authapi.LoginRequest) (*authapi.LoginResponse, error) {
	if err := s.validator.ValidateUserCredentials(req.Email, req.Password); err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	email := normaliseEmail(req.Email)

	user, err := s.repos.Users.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if err := s.validator.ValidateUserState(user); err != nil {
		return nil, errors.Wrap(ErrUserBlocked, err.Error())
	}

	if user.MFAAuth() {
		if strings.TrimSpace(req.TwoFactorCode) == "" {
			return s.startChallenge(ctx, user)
		}
		if err := s.completeChallenge(email, req.TwoFactorCode); err != nil {
			return nil, err
		}
	}

	tenant, err := s.repos.Tenants.Get(user.TenantID)
	if err != nil {
		return nil, errors.Wrap(ErrTenantNotFound, err.Error())
	}

	user.LastLogin = s.nowTime()
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] users.Upsert")
	}

	return s.authenticated(user, tenant)
}

// Register creates a tenant with the caller as its owner.
func (s *Service) Register(_ context.Context, req authapi.RegisterRequest) (*authapi.LoginResponse, error) {
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	email := normaliseEmail(req.Email)

	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] HashPassword")
	}

	now := s.nowTime()
	tenant := &tenants.Tenant{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.TenantName),
		Settings: tenants.DefaultSettings(),
		Subscription: tenants.Subscription{
			Plan:     "starter",
			Status:   tenants.SubscriptionTrial,
			RenewsAt: now.Add(trialPeriod),
		},
	}
	if err := s.repos.Tenants.Upsert(tenant); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] tenants.Upsert")
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         users.RoleOwner,
		TenantID:     tenant.ID,
		PasswordHash: hash,
		DateJoined:   now,
		LastLogin:    now,
		MFType:       users.MFNone,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] users.Upsert")
	}

	return s.authenticated(user, tenant)
}

// ForgotPassword always answers with the same message so account existence is not revealed.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.validator.ValidateEmail(email); err != nil {
		return "", errors.Wrap(ErrInvalidRequest, err.Error())
	}
	user, err := s.repos.Users.GetByEmail(normaliseEmail(email))
	if err == nil && !user.Blocked {
		if err := s.sender.Send(ctx, Notification{Kind: NotifyPasswordReset, Email: user.Email, Secret: uuid.New().String()}); err != nil {
			return "", errors.Wrap(err, "[Service.ForgotPassword] send")
		}
	}
	return ForgotPasswordMessage, nil
}

// GetTenant returns the tenant named by a valid session token
func (s *Service) GetTenant(_ context.Context, raw string) (*tenants.Tenant, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	tenant, err := s.repos.Tenants.Get(claims.TenantID)
	if err != nil {
		return nil, errors.Wrap(ErrTenantNotFound, err.Error())
	}
	return tenant, nil
}

func (s *Service) authenticated(user *users.User, tenant *tenants.Tenant) (*authapi.LoginResponse, error) {
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service] issue token")
	}
	return &authapi.LoginResponse{User: user, Tenant: tenant, Token: signed}, nil
}

func (s *Service) startChallenge(ctx context.Context, user *users.User) (*authapi.LoginResponse, error) {
	code, err := generateCode()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] generate code")
	}
	challenge := twoFactorChallenge{
		code:      code,
		tempToken: uuid.New().String(),
		issuedAt:  s.nowTime(),
	}

	s.mu.Lock()
	s.challenges[normaliseEmail(user.Email)] = challenge
	s.mu.Unlock()

	if err := s.sender.Send(ctx, Notification{Kind: NotifyTwoFactorCode, Email: user.Email, Secret: code}); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] send code")
	}
	return &authapi.LoginResponse{RequiresTwoFactor: true, TempToken: challenge.tempToken}, nil
}

func (s *Service) completeChallenge(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[email]
	if !ok {
		return ErrInvalidTwoFactorCode
	}
	if s.nowTime().Sub(challenge.issuedAt) > twoFactorCodeTimeout {
		delete(s.challenges, email)
		return ErrInvalidTwoFactorCode
	}
	if subtle.ConstantTimeCompare([]byte(challenge.code), []byte(strings.TrimSpace(code))) != 1 {
		return ErrInvalidTwoFactorCode
	}
	delete(s.challenges, email)
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
