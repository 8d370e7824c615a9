package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
	"github.com/aussiebroadwan/questboard/internal/questboard/store"
	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/idx"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// AuthService issues and rotates token pairs.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Hasher     cryptox.PasswordHasher
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a volunteer account and logs it in. The very first
// account becomes an organizer.
func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (*domain.TokenPair, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)

	if !usernamePattern.MatchString(username) {
		return nil, invalid("username", "must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, invalid("password", "must be at least 8 characters")
	}
	if displayName == "" {
		displayName = username
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var pair *domain.TokenPair

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}

		role := domain.RoleVolunteer
		if empty {
			role = domain.RoleOrganizer
		}

		u := domain.User{
			ID:           idx.New(),
			Username:     username,
			DisplayName:  displayName,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}

		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user registered", "username", username)
	return pair, nil
}

// Login checks a username and password and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login failed", "username", u.Username)
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, s.Store, u, s.now())
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction that stores its replacement, so a token
// can be redeemed once.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	if refreshOpaque == "" {
		return nil, ErrInvalidRefresh
	}

	now := s.now()
	fp := cryptox.FingerprintToken(refreshOpaque)
	var pair *domain.TokenPair

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if rt.Revoked || now.After(rt.ExpiresAt) {
			return ErrInvalidRefresh
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}

		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes one of userID's refresh tokens. Unknown tokens and tokens
// belonging to another user are ignored.
func (s *AuthService) Logout(ctx context.Context, userID, refreshOpaque string) error {
	if refreshOpaque == "" {
		return nil
	}
	fp := cryptox.FingerprintToken(refreshOpaque)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rt.UserID != userID {
		slogx.FromContext(ctx).Warn("logout with another user's refresh token ignored", "user_id", userID)
		return nil
	}

	err = s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// issue signs an access token for u and stores a new refresh token through
// st, which may be a transaction.
func (s *AuthService) issue(ctx context.Context, st store.Store, u domain.User, now time.Time) (*domain.TokenPair, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Role, u.Username, u.DisplayName, s.AccessTTL, s.Issuer, now)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	refreshOpaque, fingerprint, err := cryptox.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New(),
		UserID:    u.ID,
		TokenHash: fingerprint,
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}
