package kakao

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/oauth2"

	"moodflix/models"
)

// ErrConfigMissing is returned when the Kakao app key is not configured.
// Login is disabled in that case; nothing crashes.
var ErrConfigMissing = errors.New("kakao app key not configured")

// TokenClient is the Kakao client surface the Exchanger uses.
type TokenClient interface {
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, accessToken string) (*models.UserInfo, error)
}

// Exchanger serializes authorization-code exchanges. Authorization codes are
// single-use on the provider side, so a code is marked processed before its
// exchange is dispatched and stays processed even when the exchange fails.
// At most one exchange is in flight process-wide.
type Exchanger struct {
	client TokenClient

	mu        sync.Mutex
	busy      bool
	processed map[string]struct{}
}

// NewExchanger creates an Exchanger with empty replay state. It lives for the
// whole process; the processed-code set is never pruned.
func NewExchanger(client TokenClient) *Exchanger {
	return &Exchanger{
		client:    client,
		processed: make(map[string]struct{}),
	}
}

// Exchange swaps an authorization code for a session. A nil, nil return means
// the code was already handled or another exchange is in flight; callers
// treat that as "nothing new to do", not a failure. On success the caller is
// responsible for persisting the session.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*models.Session, error) {
	if e.client == nil {
		return nil, ErrConfigMissing
	}

	e.mu.Lock()
	if _, done := e.processed[code]; done {
		e.mu.Unlock()
		log.Printf("[kakao] authorization code already processed, skipping")
		return nil, nil
	}
	if e.busy {
		e.mu.Unlock()
		log.Printf("[kakao] exchange already in flight, skipping duplicate callback")
		return nil, nil
	}
	e.busy = true
	e.processed[code] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	token, err := e.client.ExchangeCode(ctx, code)
	if err != nil {
		// The code stays marked processed: it is spent upstream either way.
		return nil, err
	}

	user, err := e.client.Profile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("kakao profile after exchange: %w", err)
	}

	return &models.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		User:         *user,
	}, nil
}

// Login builds a session from an already-issued Kakao access token (the SDK
// login path, no code exchange involved).
func (e *Exchanger) Login(ctx context.Context, accessToken string) (*models.Session, error) {
	if e.client == nil {
		return nil, ErrConfigMissing
	}

	user, err := e.client.Profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		AccessToken: accessToken,
		User:        *user,
	}, nil
}
