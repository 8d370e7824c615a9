package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and hand
// out sub-repositories; a Tx hands out the same repositories scoped to one
// transaction.
type Store interface {
	Users() Users
	Organizations() Organizations
	Quests() Quests
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Organizations interface {
	// CreateOrganization returns ErrAlreadyExists when the name is taken.
	CreateOrganization(ctx context.Context, o domain.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)

	// ListOrganizations returns all organizations ordered by name.
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
}

type Quests interface {
	// CreateQuest inserts the quest and all of its steps.
	CreateQuest(ctx context.Context, q domain.Quest) error

	// GetQuestByID returns the quest with its steps in position order.
	GetQuestByID(ctx context.Context, id string) (domain.Quest, error)

	// ListQuests returns quests newest first, narrowed to organizationID
	// when it is non-empty.
	ListQuests(ctx context.Context, organizationID string) ([]domain.Quest, error)

	GetStep(ctx context.Context, questID, stepID string) (domain.Step, error)

	// UpdateStepProgress stores a step's new value and progress and bumps
	// the quest's updated_at.
	UpdateStepProgress(ctx context.Context, s domain.Step) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash looks a token up by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked and returns ErrNotFound if no row
	// matched.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes tokens expired or revoked before
	// now and returns how many were deleted.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
