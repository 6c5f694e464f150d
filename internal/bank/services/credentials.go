// Package services contains the bank's business logic: the credential
// store, the MFA gate that turns verified credentials into sessions, and the
// ledger that sessions are allowed to touch.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/bank/metrics"
	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/repomanager"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/dmitrijs2005/securebank/internal/cryptox"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
)

// deriveKey is swapped out in tests.
var deriveKey = cryptox.DeriveKey

// MaxUsernameLength is counted in runes.
const MaxUsernameLength = 64

// CredentialService registers users and verifies their passwords.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	kdf         cryptox.KDF
	store       storePolicy
	clock       timex.Clock
	log         logging.Logger
	metrics     *metrics.Metrics
}

// NewCredentialService fails only when cfg names an unknown KDF.
func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	clock timex.Clock, log logging.Logger, mtr *metrics.Metrics) (*CredentialService, error) {
	kdf, err := cryptox.ParseKDF(cfg.KDF)
	if err != nil {
		return nil, err
	}

	return &CredentialService{
		db:          db,
		repomanager: m,
		kdf:         kdf,
		store:       newStorePolicy(cfg),
		clock:       clock,
		log:         log.With("component", "credentials"),
		metrics:     mtr,
	}, nil
}

func newStorePolicy(cfg *config.Config) storePolicy {
	return storePolicy{
		timeout:   cfg.StoreTimeout,
		retries:   uint64(max(cfg.StoreRetries, 0)),
		retryBase: cfg.StoreRetryBase,
	}
}

// Register creates a user with a fresh salt and a derived password hash.
// A taken username yields ErrAlreadyExists.
func (s *CredentialService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		s.metrics.Auth("register", outcome(err))
		return nil, err
	}
	if password == "" {
		s.metrics.Auth("register", outcome(common.ErrInvalidInput))
		return nil, fmt.Errorf("%w: password is empty", common.ErrInvalidInput)
	}

	salt := cryptox.NewSalt()
	hash, err := deriveKey(s.kdf, []byte(password), salt)
	if err != nil {
		s.metrics.Auth("register", outcome(err))
		s.log.Error(ctx, "key derivation failed", "username", username, "error", err)
		return nil, fmt.Errorf("derive key: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		KDF:          string(s.kdf),
		CreatedAt:    s.clock.Now().UTC(),
	}

	err = s.store.call(ctx, func(ctx context.Context) error {
		return s.repomanager.Users(s.db).Create(ctx, user)
	})
	s.metrics.Auth("register", outcome(err))
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			s.log.Info(ctx, "registration rejected, username taken", "username", username)
			return nil, err
		}
		s.log.Error(ctx, "registration failed", "username", username, "error", err)
		return nil, err
	}

	s.log.Info(ctx, "user registered", "username", username, "kdf", user.KDF)
	return user, nil
}

// Verify checks password against the stored hash and returns the username.
// Unknown users and wrong passwords are indistinguishable: both return
// ErrInvalidCredentials after a full key derivation.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (string, error) {
	var user *models.User
	err := s.store.read(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repomanager.Users(s.db).GetByUsername(ctx, username)
		return err
	})

	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.dummyDerive(password)
		s.metrics.Auth("password", outcome(common.ErrInvalidCredentials))
		s.log.Info(ctx, "password check failed", "username", username)
		return "", common.ErrInvalidCredentials
	case err != nil:
		s.metrics.Auth("password", outcome(err))
		s.log.Error(ctx, "password check failed", "username", username, "error", err)
		return "", err
	}

	kdf, err := cryptox.ParseKDF(user.KDF)
	if err != nil {
		s.log.Error(ctx, "stored credentials unusable", "username", username, "error", err)
		s.metrics.Auth("password", outcome(common.ErrInvalidCredentials))
		return "", common.ErrInvalidCredentials
	}

	candidate, err := deriveKey(kdf, []byte(password), user.Salt)
	if err != nil {
		s.metrics.Auth("password", outcome(err))
		s.log.Error(ctx, "key derivation failed", "username", username, "error", err)
		return "", fmt.Errorf("derive key: %w", err)
	}
	defer common.WipeByteArray(candidate)

	if !cryptox.Equal(candidate, user.PasswordHash) {
		s.metrics.Auth("password", outcome(common.ErrInvalidCredentials))
		s.log.Info(ctx, "password check failed", "username", username)
		return "", common.ErrInvalidCredentials
	}

	s.metrics.Auth("password", outcome(nil))
	return user.Username, nil
}

func (s *CredentialService) dummyDerive(password string) {
	key, _ := deriveKey(s.kdf, []byte(password), cryptox.NewSalt())
	common.WipeByteArray(key)
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is empty", common.ErrInvalidInput)
	case strings.TrimSpace(username) != username:
		return fmt.Errorf("%w: username has surrounding whitespace", common.ErrInvalidInput)
	case !utf8.ValidString(username):
		return fmt.Errorf("%w: username is not valid UTF-8", common.ErrInvalidInput)
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return fmt.Errorf("%w: username longer than %d characters", common.ErrInvalidInput, MaxUsernameLength)
	}
	return nil
}

// outcome maps an error to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, common.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrChallengeExpired):
		return "challenge_expired"
	case errors.Is(err, common.ErrChallengeMismatch):
		return "challenge_mismatch"
	case errors.Is(err, common.ErrChallengeRetriesExhausted):
		return "retries_exhausted"
	case errors.Is(err, common.ErrInvalidSession):
		return "invalid_session"
	case errors.Is(err, common.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, common.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, common.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
