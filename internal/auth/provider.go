package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/config"
)

// ErrInvalidCredentials indicates a failed sign-in attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken indicates a missing, malformed, expired or revoked token.
var ErrInvalidToken = errors.New("invalid or expired token")

// User identifies the signed-in operator.
type User struct {
	Username string `json:"username"`
}

// Provider issues and validates session tokens and notifies listeners when
// the session state changes. The rest of the system only needs to know
// whether a session exists before subscribing to data.
type Provider struct {
	cfg    config.AuthConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(*User)
	nextID    int
	revoked   map[string]time.Time
}

// NewProvider builds an auth provider from the configured credentials.
func NewProvider(cfg config.AuthConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(*User)),
		revoked:   make(map[string]time.Time),
	}
}

// SignIn checks the credentials and issues a signed session token.
func (p *Provider) SignIn(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.cfg.Password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": username,
		"jti": uuid.NewString(),
		"exp": p.now().Add(p.cfg.TokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	p.logger.Info("operator signed in", zap.String("username", username))
	p.notify(&User{Username: username})
	return token, nil
}

// CurrentUser resolves the session token to its user, or reports
// ErrInvalidToken when no valid session backs it.
func (p *Provider) CurrentUser(token string) (*User, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}

	jti, _ := claims["jti"].(string)
	p.mu.RLock()
	_, isRevoked := p.revoked[jti]
	p.mu.RUnlock()
	if isRevoked {
		return nil, ErrInvalidToken
	}

	username, _ := claims["sub"].(string)
	if username == "" {
		return nil, ErrInvalidToken
	}
	return &User{Username: username}, nil
}

// SignOut revokes the session token and notifies listeners that no session
// remains.
func (p *Provider) SignOut(token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}

	jti, _ := claims["jti"].(string)
	expiry := p.now().Add(p.cfg.TokenTTL)
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}

	p.mu.Lock()
	p.pruneRevokedLocked()
	p.revoked[jti] = expiry
	p.mu.Unlock()

	p.logger.Info("operator signed out")
	p.notify(nil)
	return nil
}

// OnAuthChange registers a callback invoked with the user on sign-in and nil
// on sign-out. The returned function unsubscribes the callback.
func (p *Provider) OnAuthChange(fn func(*User)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) parse(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(p.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *Provider) notify(user *User) {
	p.mu.RLock()
	listeners := make([]func(*User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(user)
	}
}

// pruneRevokedLocked drops revocation entries for tokens that expired on
// their own. Callers must hold the write lock.
func (p *Provider) pruneRevokedLocked() {
	now := p.now()
	for jti, expiry := range p.revoked {
		if expiry.Before(now) {
			delete(p.revoked, jti)
		}
	}
}
