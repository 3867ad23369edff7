// Package auth is the single-user login gate.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/siteledger/internal/kv"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
)

// Session is the persisted login flag.
type Session struct {
	Username string `json:"username"`
}

// PasswordSource returns an admin password that replaces the configured
// one, if any.
type PasswordSource func() (string, bool)

// Option configures a Gate.
type Option func(*options)

type options struct {
	override PasswordSource
	cost     int
	log      *logger.Logger
}

// WithPasswordOverride consults src once at construction.
func WithPasswordOverride(src PasswordSource) Option {
	return func(o *options) { o.override = src }
}

// WithCost sets the bcrypt cost used to hash a plaintext password.
func WithCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Gate checks the admin credential pair and keeps the login flag in kv.
type Gate struct {
	username string
	hash     []byte
	kv       kv.Store
	log      *logger.Logger
}

// NewGate builds a Gate. The password comes from, in order: the override
// source, cfg.PasswordHash, cfg.Password.
func NewGate(cfg model.AuthConfig, store kv.Store, opts ...Option) (*Gate, error) {
	o := options{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Username == "" {
		return nil, errors.New("auth: username must not be empty")
	}

	g := &Gate{username: cfg.Username, kv: store, log: logger.OrNop(o.log)}

	plain := cfg.Password
	if o.override != nil {
		if pw, ok := o.override(); ok {
			plain = pw
			cfg.PasswordHash = ""
		}
	}

	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("auth: parsing password hash: %w", err)
		}
		g.hash = []byte(cfg.PasswordHash)
	case plain != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), o.cost)
		if err != nil {
			return nil, fmt.Errorf("auth: hashing password: %w", err)
		}
		g.hash = hash
	default:
		return nil, errors.New("auth: no password configured")
	}

	return g, nil
}

// HashPassword returns a bcrypt hash suitable for auth.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials and persists the login flag.
func (g *Gate) Login(ctx context.Context, username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(g.hash, []byte(password))
	if !userOK || passErr != nil {
		g.log.Warn("login rejected", "username", username)
		return Session{}, model.ErrInvalidCredentials
	}

	sess := Session{Username: username}
	if err := kv.SetJSON(ctx, g.kv, kv.KeyAuth, sess); err != nil {
		return Session{}, fmt.Errorf("saving login: %w", err)
	}
	g.log.Info("login", "username", username)
	return sess, nil
}

// Current returns the logged-in session, or model.ErrNotAuthenticated.
func (g *Gate) Current(ctx context.Context) (Session, error) {
	var sess Session
	ok, err := kv.GetJSON(ctx, g.kv, kv.KeyAuth, &sess)
	if err != nil {
		return Session{}, fmt.Errorf("reading login: %w", err)
	}
	if !ok || sess.Username == "" {
		return Session{}, model.ErrNotAuthenticated
	}
	return sess, nil
}

// Logout clears the login flag.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.kv.Delete(ctx, kv.KeyAuth); err != nil {
		return fmt.Errorf("clearing login: %w", err)
	}
	g.log.Info("logout")
	return nil
}
