// Package sessions holds the authenticated identity of one client and keeps it
// in a durable key-value store so it survives reloads.
package sessions

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-retail-auth/authapi"
	apperrors "github.com/jrsteele09/go-retail-auth/internal/errors"
	"github.com/jrsteele09/go-retail-auth/kvstore"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/token"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Durable keys. They are always written and cleared as a set.
const (
	KeyUser   = "user"
	KeyTenant = "tenant"
	KeyToken  = "token"
)

var durableKeys = []string{KeyUser, KeyTenant, KeyToken}

// errNoIdentity is a session that never signed in
var errNoIdentity = errors.New("no stored identity")

// Identity is a point-in-time copy of what the store holds.
type Identity struct {
	User    *users.User
	Tenant  *tenants.Tenant
	Token   string
	Loading bool
}

// Authenticated reports whether the identity is resolved and has a user
func (i Identity) Authenticated() bool {
	return !i.Loading && i.User != nil
}

// Store owns the identity for one client session.
type Store struct {
	api     authapi.API
	kv      kvstore.Store
	nowTime func() time.Time

	mu         sync.Mutex
	user       *users.User
	tenant     *tenants.Tenant
	token      string
	loading    bool
	inFlight   bool
	generation uint64 // bumped by every Logout

	// held across durable writes so a Logout's delete lands after them
	kvMu sync.Mutex

	onLogout        []func()
	onAuthenticated []func()
}

type StoreOption func(*Store)

// WithNowFunc sets the clock used to check stored token expiry
func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = now
	}
}

// NewStore creates a store in the loading state. Call Restore to resolve it.
func NewStore(api authapi.API, kv kvstore.Store, opts ...StoreOption) *Store {
	s := &Store{
		api:     api,
		kv:      kv,
		nowTime: time.Now,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnLogout registers fn to run after an authenticated session is cleared.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// OnAuthenticated registers fn to run whenever an identity is established
// by login, register or restore.
func (s *Store) OnAuthenticated(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthenticated = append(s.onAuthenticated, fn)
}

// Identity returns a snapshot of the current identity
func (s *Store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Identity{
		User:    s.user.Clone(),
		Tenant:  s.tenant.Clone(),
		Token:   s.token,
		Loading: s.loading,
	}
}

// Restore loads the identity from the durable store. Missing, partial,
// corrupt or expired data leaves the store unauthenticated with the durable
// keys cleared; only a session that never signed in is cleared quietly.
// It reports whether an identity was restored.
func (s *Store) Restore(ctx context.Context) bool {
	gen, err := s.begin()
	if err != nil {
		return s.Identity().Authenticated()
	}
	defer s.end()

	user, tenant, raw, err := s.load(ctx)
	if err != nil {
		if !errors.Is(err, errNoIdentity) {
			log.Warn().Err(err).Msg("session restore failed, clearing stored identity")
		}
		s.kvMu.Lock()
		if err := s.kv.Delete(ctx, durableKeys...); err != nil {
			log.Err(err).Msg("failed to clear stored identity")
		}
		s.kvMu.Unlock()
	}

	s.mu.Lock()
	s.loading = false
	restored := err == nil && s.generation == gen
	if restored {
		s.user, s.tenant, s.token = user, tenant, raw
	}
	hooks := s.onAuthenticated
	s.mu.Unlock()

	if !restored {
		return false
	}
	run(hooks)
	return true
}

// Login authenticates against the Auth API. An Authenticated result means the
// identity has been stored; any other result leaves the store as it was.
func (s *Store) Login(ctx context.Context, email, password, twoFactorCode string) LoginResult {
	gen, err := s.begin()
	if err != nil {
		return Failed{Err: err}
	}
	defer s.end()

	resp, err := s.api.Login(ctx, authapi.LoginRequest{
		Email:         strings.TrimSpace(email),
		Password:      password,
		TwoFactorCode: strings.TrimSpace(twoFactorCode),
	})
	if err != nil {
		return Failed{Err: err}
	}
	if resp.RequiresTwoFactor {
		return TwoFactorRequired{TempToken: resp.TempToken}
	}
	return s.establish(ctx, gen, resp)
}

// Register creates an account and tenant and signs the new owner in.
func (s *Store) Register(ctx context.Context, req authapi.RegisterRequest) LoginResult {
	gen, err := s.begin()
	if err != nil {
		return Failed{Err: err}
	}
	defer s.end()

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return Failed{Err: err}
	}
	if resp.RequiresTwoFactor {
		return Failed{Err: errors.New("[Store.Register] unexpected two-factor challenge")}
	}
	return s.establish(ctx, gen, resp)
}

// ForgotPassword asks the Auth API to send a reset link. No state changes.
func (s *Store) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.api.ForgotPassword(ctx, strings.TrimSpace(email))
}

// Logout clears the identity from memory and the durable store. It never
// waits for the Auth API: an operation still in flight is superseded and
// its result discarded. Logout hooks run only when an authenticated session
// was actually ended.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	wasAuthenticated := s.user != nil
	s.user, s.tenant, s.token = nil, nil, ""
	s.loading = false
	hooks := s.onLogout
	s.mu.Unlock()

	s.kvMu.Lock()
	err := s.kv.Delete(ctx, durableKeys...)
	s.kvMu.Unlock()

	if wasAuthenticated {
		run(hooks)
	}
	if err != nil {
		return errors.Wrap(err, "[Store.Logout] clear durable keys")
	}
	return nil
}

// ReplaceUser swaps the held user record for u and persists it.
func (s *Store) ReplaceUser(ctx context.Context, u *users.User) error {
	if u == nil {
		return apperrors.ErrInvalidRequest
	}
	if err := u.Validate(); err != nil {
		return errors.Wrap(apperrors.ErrInvalidRequest, err.Error())
	}
	gen, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	if !s.Identity().Authenticated() {
		return apperrors.ErrNotAuthenticated
	}
	return s.commit(ctx, gen, []record{{KeyUser, u}}, func() {
		s.user = u.Clone()
	})
}

// RefreshTenant re-fetches the tenant with the held token and persists it.
func (s *Store) RefreshTenant(ctx context.Context) (*tenants.Tenant, error) {
	gen, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.end()

	id := s.Identity()
	if !id.Authenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}

	tenant, err := s.api.GetTenant(ctx, id.Token)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.RefreshTenant] GetTenant")
	}
	if err := s.commit(ctx, gen, []record{{KeyTenant, tenant}}, func() {
		s.tenant = tenant.Clone()
	}); err != nil {
		return nil, err
	}
	return tenant.Clone(), nil
}

func (s *Store) establish(ctx context.Context, gen uint64, resp *authapi.LoginResponse) LoginResult {
	if resp.User == nil || resp.Tenant == nil || resp.Token == "" {
		return Failed{Err: errors.Wrap(apperrors.ErrUpstreamUnavailable, "incomplete auth response")}
	}
	if err := resp.User.Validate(); err != nil {
		return Failed{Err: errors.Wrap(apperrors.ErrUpstreamUnavailable, err.Error())}
	}

	var result Authenticated
	err := s.commit(ctx, gen, []record{{KeyUser, resp.User}, {KeyTenant, resp.Tenant}, {KeyToken, resp.Token}}, func() {
		s.user = resp.User.Clone()
		s.tenant = resp.Tenant.Clone()
		s.token = resp.Token
		s.loading = false
		result = Authenticated{User: s.user.Clone(), Tenant: s.tenant.Clone(), Token: s.token}
	})
	if err != nil {
		return Failed{Err: err}
	}

	s.mu.Lock()
	hooks := s.onAuthenticated
	s.mu.Unlock()

	log.Info().Str("user", result.User.ID).Str("tenant", result.Tenant.ID).Msg("session established")
	run(hooks)
	return result
}

type record struct {
	key   string
	value any
}

// commit writes records durably, then applies the matching memory change
// under the lock. Nothing is written once a Logout has ended the generation
// the operation began in. A failed write puts back what a reload would have
// found before, so memory and the durable store keep agreeing.
func (s *Store) commit(ctx context.Context, gen uint64, records []record, apply func()) error {
	s.kvMu.Lock()
	defer s.kvMu.Unlock()

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return errors.Wrap(apperrors.ErrNotAuthenticated, "[Store] session ended during operation")
	}
	prev := Identity{User: s.user.Clone(), Tenant: s.tenant.Clone(), Token: s.token}
	s.mu.Unlock()

	for _, r := range records {
		if err := s.put(ctx, r.key, r.value); err != nil {
			s.rollback(ctx, prev)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// the Logout waiting on kvMu deletes what was just written
		return errors.Wrap(apperrors.ErrNotAuthenticated, "[Store] session ended during operation")
	}
	apply()
	return nil
}

// rollback rewrites the previous identity, or clears the keys if there was none.
func (s *Store) rollback(ctx context.Context, prev Identity) {
	if prev.User == nil {
		if err := s.kv.Delete(ctx, durableKeys...); err != nil {
			log.Err(err).Msg("failed to clear partially stored identity")
		}
		return
	}
	for _, r := range []record{{KeyUser, prev.User}, {KeyTenant, prev.Tenant}, {KeyToken, prev.Token}} {
		if err := s.put(ctx, r.key, r.value); err != nil {
			log.Err(err).Str("key", r.key).Msg("failed to restore previous identity")
		}
	}
}

func (s *Store) load(ctx context.Context) (*users.User, *tenants.Tenant, string, error) {
	var (
		user   users.User
		tenant tenants.Tenant
		raw    string
	)
	for _, kv := range []struct {
		key string
		dst any
	}{{KeyUser, &user}, {KeyTenant, &tenant}, {KeyToken, &raw}} {
		data, ok, err := s.kv.Get(ctx, kv.key)
		if err != nil {
			return nil, nil, "", errors.Wrapf(err, "read %s", kv.key)
		}
		if !ok && kv.key == KeyUser {
			return nil, nil, "", errNoIdentity
		}
		if !ok {
			return nil, nil, "", errors.Wrapf(apperrors.ErrSessionStoreCorrupt, "missing %s", kv.key)
		}
		if err := json.Unmarshal(data, kv.dst); err != nil {
			return nil, nil, "", errors.Wrapf(apperrors.ErrSessionStoreCorrupt, "decode %s: %v", kv.key, err)
		}
	}

	if err := user.Validate(); err != nil {
		return nil, nil, "", errors.Wrap(apperrors.ErrSessionStoreCorrupt, err.Error())
	}
	if raw == "" {
		return nil, nil, "", errors.Wrap(apperrors.ErrSessionStoreCorrupt, "empty token")
	}
	if exp, ok := token.ExpiresAt(raw); ok && !s.nowTime().Before(exp) {
		return nil, nil, "", errors.Wrap(apperrors.ErrInvalidToken, "stored token expired")
	}
	return &user, &tenant, raw, nil
}

func (s *Store) put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "[Store] encode %s", key)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return errors.Wrapf(err, "[Store] write %s", key)
	}
	return nil
}

// begin claims the store for one operation and returns the generation it
// runs in.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, apperrors.ErrOperationInProgress
	}
	s.inFlight = true
	return s.generation, nil
}

func (s *Store) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func run(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}
