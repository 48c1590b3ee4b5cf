package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roomadmin/internal/config"
	"roomadmin/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrNoCredential      = errors.New("no access credential")
	ErrCredentialExpired = errors.New("access credential expired")
)

const (
	MsgLoginRequired  = "Please log in to continue."
	MsgSessionExpired = "Your session has expired. Please log in again."
)

// Navigator moves the user to another route (the login page after a 401).
type Navigator interface {
	Redirect(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Redirect(route string) { f(route) }

// Credential 存储的访问凭证
type Credential struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

func (c Credential) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Session 登录会话：保存、校验、清除凭证
type Session struct {
	kv            store.KV
	key           string
	loginRoute    string
	redirectDelay time.Duration
	nav           Navigator
	now           func() time.Time
	schedule      func(time.Duration, func())
	logger        *zap.Logger
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithScheduler replaces time.AfterFunc for the delayed login redirect.
func WithScheduler(schedule func(time.Duration, func())) Option {
	return func(s *Session) { s.schedule = schedule }
}

func NewSession(kv store.KV, cfg config.AuthConfig, nav Navigator, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		kv:            kv,
		key:           cfg.TokenKey,
		loginRoute:    cfg.LoginRoute,
		redirectDelay: time.Duration(cfg.RedirectDelayMS) * time.Millisecond,
		nav:           nav,
		now:           time.Now,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login stores token. A JWT's exp claim becomes the credential expiry and the
// KV TTL; opaque tokens never expire client-side.
func (s *Session) Login(ctx context.Context, token string) (Credential, error) {
	if token == "" {
		return Credential{}, ErrNoCredential
	}
	cred := Credential{AccessToken: token}
	if exp, ok := tokenExpiry(token); ok {
		cred.ExpiresAt = exp
	}
	now := s.now()
	if cred.expired(now) {
		return Credential{}, ErrCredentialExpired
	}

	raw, err := json.Marshal(cred)
	if err != nil {
		return Credential{}, err
	}
	var ttl time.Duration
	if !cred.ExpiresAt.IsZero() {
		ttl = cred.ExpiresAt.Sub(now)
	}
	if err := s.kv.Set(ctx, s.key, string(raw), ttl); err != nil {
		return Credential{}, fmt.Errorf("store credential: %w", err)
	}
	s.logger.Info("Credential stored", zap.Time("expires_at", cred.ExpiresAt))
	return cred, nil
}

// tokenExpiry reads exp without verifying the signature; only the backend can verify.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) Credential(ctx context.Context) (Credential, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return Credential{}, ErrNoCredential
		}
		return Credential{}, fmt.Errorf("load credential: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil || cred.AccessToken == "" {
		return Credential{}, ErrNoCredential
	}
	if cred.expired(s.now()) {
		return Credential{}, ErrCredentialExpired
	}
	return cred, nil
}

// Check gates mutating actions: nil only for a present, non-expired credential.
func (s *Session) Check(ctx context.Context) error {
	_, err := s.Credential(ctx)
	return err
}

// Token satisfies client.TokenSource.
func (s *Session) Token(ctx context.Context) (string, error) {
	cred, err := s.Credential(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

func (s *Session) Clear(ctx context.Context) error {
	return s.kv.Del(ctx, s.key)
}

// HandleUnauthorized runs the 401 flow: drop stored credentials, then send the
// user to the login route after the configured delay. It returns the message
// to show meanwhile.
func (s *Session) HandleUnauthorized(ctx context.Context) string {
	if err := s.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear credential after 401", zap.Error(err))
	}
	s.logger.Warn("Unauthorized response, redirecting to login",
		zap.String("route", s.loginRoute),
		zap.Duration("delay", s.redirectDelay),
	)
	if s.nav != nil {
		route := s.loginRoute
		s.schedule(s.redirectDelay, func() { s.nav.Redirect(route) })
	}
	return MsgSessionExpired
}

// Message maps a Check error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialExpired):
		return MsgSessionExpired
	case errors.Is(err, ErrNoCredential):
		return MsgLoginRequired
	}
	return err.Error()
}
