// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group, ledger and user storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	GroupStore
	LedgerStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// GroupStore persists groups and their rosters.
type GroupStore interface {
	// CreateGroup persists a new group with its members.
	// group.ID and group.CreatedAt are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its roster.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember returns every group whose roster contains memberID.
	ListGroupsForMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// RenameGroup changes a group's display name.
	RenameGroup(ctx context.Context, groupID, name string) error

	// AddGroupMembers appends members to a group; members already on the
	// roster are ignored.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error

	// DeleteGroup removes a group and, by cascade, its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error
}

// LedgerStore persists expenses and settlements.
type LedgerStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// GetLedger loads a group's roster, expenses and settlements within a
	// single read transaction.
	GetLedger(ctx context.Context, groupID string) (*models.Ledger, error)

	// ListActivity returns the most recent expenses and settlements of a
	// group, newest first.
	ListActivity(ctx context.Context, groupID string, limit int) ([]*models.Activity, error)
}

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns nil, nil when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}
