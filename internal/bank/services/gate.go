package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/auth"
	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/bank/metrics"
	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/bank/notify"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/dmitrijs2005/securebank/internal/cryptox"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
	"github.com/google/uuid"
)

// PasswordVerifier is the part of the credential store the gate depends on.
type PasswordVerifier interface {
	Verify(ctx context.Context, username, password string) (string, error)
}

// challenge is a pending second factor. Only the digest of the code is kept.
type challenge struct {
	username  string
	digest    []byte
	expiresAt time.Time
	failures  int
}

// Gate drives a login through
// Unauthenticated -> PasswordVerified -> Authenticated | Rejected.
//
// Pending challenges and live sessions are held in memory and reclaimed by
// Sweep once expired. All methods are safe for concurrent use.
type Gate struct {
	verifier PasswordVerifier
	notifier notify.Notifier
	tokens   *auth.TokenIssuer
	clock    timex.Clock
	log      logging.Logger
	metrics  *metrics.Metrics

	challengeTTL time.Duration
	sessionTTL   time.Duration
	digits       int
	maxAttempts  int

	mu       sync.Mutex
	pending  map[string]*challenge
	sessions map[string]*models.Session
}

func NewGate(verifier PasswordVerifier, notifier notify.Notifier, cfg *config.Config,
	clock timex.Clock, log logging.Logger, mtr *metrics.Metrics) *Gate {
	return &Gate{
		verifier:     verifier,
		notifier:     notifier,
		tokens:       auth.NewTokenIssuer([]byte(cfg.SecretKey), clock),
		clock:        clock,
		log:          log.With("component", "gate"),
		metrics:      mtr,
		challengeTTL: cfg.ChallengeTTL,
		sessionTTL:   cfg.SessionTTL,
		digits:       max(cfg.ChallengeDigits, cryptox.MinCodeDigits),
		maxAttempts:  max(cfg.ChallengeMaxAttempts, 1),
		pending:      make(map[string]*challenge),
		sessions:     make(map[string]*models.Session),
	}
}

// Begin verifies the password and, on success, sends a one-time code through
// the notifier. The returned attempt is in StatePasswordVerified. If the code
// cannot be delivered the attempt is discarded.
func (g *Gate) Begin(ctx context.Context, username, password string) (*models.Attempt, error) {
	name, err := g.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	code, err := cryptox.GenerateCode(g.digits)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	attempt := &models.Attempt{
		ID:        uuid.NewString(),
		Username:  name,
		State:     models.StatePasswordVerified,
		ExpiresAt: g.clock.Now().Add(g.challengeTTL),
	}

	g.mu.Lock()
	g.pending[attempt.ID] = &challenge{
		username:  name,
		digest:    cryptox.DigestCode(code),
		expiresAt: attempt.ExpiresAt,
	}
	g.observeLocked()
	g.mu.Unlock()

	err = g.notifier.Deliver(ctx, notify.Message{
		Username:  name,
		AttemptID: attempt.ID,
		Code:      code,
		ExpiresAt: attempt.ExpiresAt,
	})
	if err != nil {
		g.remove(attempt.ID)
		g.metrics.Auth("challenge_issue", outcome(err))
		g.log.Error(ctx, "code delivery failed", "username", name, "attempt", attempt.ID, "error", err)
		return nil, fmt.Errorf("deliver code: %w", err)
	}

	g.metrics.Auth("challenge_issue", outcome(nil))
	g.log.Info(ctx, "challenge issued", "username", name, "attempt", attempt.ID, "via", g.notifier.Describe())
	return attempt, nil
}

// Confirm checks code against the attempt's challenge. A match consumes the
// challenge and returns a signed session token. A mismatch counts against
// the attempt; the last allowed mismatch rejects it for good.
func (g *Gate) Confirm(ctx context.Context, attemptID, code string) (string, *models.Session, error) {
	now := g.clock.Now()

	g.mu.Lock()
	c, ok := g.pending[attemptID]
	if !ok {
		g.mu.Unlock()
		return g.rejectConfirm(ctx, attemptID, "", common.ErrChallengeExpired)
	}

	if !now.Before(c.expiresAt) {
		delete(g.pending, attemptID)
		g.observeLocked()
		g.mu.Unlock()
		return g.rejectConfirm(ctx, attemptID, c.username, common.ErrChallengeExpired)
	}

	if !cryptox.Equal(cryptox.DigestCode(code), c.digest) {
		c.failures++
		if c.failures >= g.maxAttempts {
			delete(g.pending, attemptID)
			g.observeLocked()
			g.mu.Unlock()
			return g.rejectConfirm(ctx, attemptID, c.username, common.ErrChallengeRetriesExhausted)
		}
		g.mu.Unlock()
		return g.rejectConfirm(ctx, attemptID, c.username, common.ErrChallengeMismatch)
	}

	delete(g.pending, attemptID)
	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  c.username,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.sessionTTL),
	}
	g.sessions[session.ID] = session
	g.observeLocked()
	g.mu.Unlock()

	token, err := g.tokens.Issue(session)
	if err != nil {
		g.revoke(session.ID)
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	g.metrics.Auth("challenge", outcome(nil))
	g.log.Info(ctx, "login completed", "username", session.Username, "attempt", attemptID, "session", session.ID)

	out := *session
	return token, &out, nil
}

func (g *Gate) rejectConfirm(ctx context.Context, attemptID, username string, err error) (string, *models.Session, error) {
	g.metrics.Auth("challenge", outcome(err))
	g.log.Info(ctx, "challenge rejected", "username", username, "attempt", attemptID, "reason", err.Error())
	return "", nil, err
}

// Abandon drops a pending attempt, e.g. when the user cancels the prompt.
func (g *Gate) Abandon(ctx context.Context, attemptID string) {
	if g.remove(attemptID) {
		g.metrics.Auth("challenge", "abandoned")
		g.log.Info(ctx, "challenge abandoned", "attempt", attemptID)
	}
}

// Resolve maps a session token to its live session. Tokens that fail
// validation, expired sessions and revoked sessions all yield
// ErrInvalidSession.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[claims.ID]
	if !ok || s.Username != claims.Username {
		return nil, common.ErrInvalidSession
	}
	if !now.Before(s.ExpiresAt) {
		delete(g.sessions, claims.ID)
		g.observeLocked()
		return nil, common.ErrInvalidSession
	}

	out := *s
	return &out, nil
}

// Logout revokes the session behind token.
func (g *Gate) Logout(ctx context.Context, token string) error {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return err
	}
	if !g.revoke(claims.ID) {
		return common.ErrInvalidSession
	}

	g.log.Info(ctx, "logged out", "username", claims.Username, "session", claims.ID)
	return nil
}

// Sweep reclaims expired challenges and sessions and reports how many of
// each were dropped.
func (g *Gate) Sweep() (challenges, sessions int) {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for id, c := range g.pending {
		if !now.Before(c.expiresAt) {
			delete(g.pending, id)
			challenges++
		}
	}
	for id, s := range g.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(g.sessions, id)
			sessions++
		}
	}
	g.observeLocked()

	return challenges, sessions
}

// Run calls Sweep every interval until ctx is done.
func (g *Gate) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c, s := g.Sweep(); c+s > 0 {
				g.log.Debug(ctx, "janitor reclaimed expired entries", "challenges", c, "sessions", s)
			}
		}
	}
}

// Pending reports the number of challenges awaiting confirmation.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Gate) remove(attemptID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.pending[attemptID]; !ok {
		return false
	}
	delete(g.pending, attemptID)
	g.observeLocked()
	return true
}

func (g *Gate) revoke(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.sessions[sessionID]; !ok {
		return false
	}
	delete(g.sessions, sessionID)
	g.observeLocked()
	return true
}

// observeLocked must be called with g.mu held.
func (g *Gate) observeLocked() {
	g.metrics.SetPending(len(g.pending))
	g.metrics.SetSessions(len(g.sessions))
}
