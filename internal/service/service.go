// Package service implements the settleup Connect services on top of the
// storage layer and the calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	errInvalidArgument = errors.New("invalid argument")
	errNotMember       = errors.New("caller is not a member of this group")
)

// toConnectError maps domain and storage errors onto Connect codes.
// Calculator input errors are the caller's fault; an unbalanced ledger can
// only come from corrupted data and is reported as internal.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, calculator.ErrUnbalancedInput):
		return connect.NewError(connect.CodeInternal, err)
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, calculator.ErrMalformedExpense),
		errors.Is(err, calculator.ErrUnknownMember),
		errors.Is(err, calculator.ErrInvalidSettlement),
		errors.Is(err, calculator.ErrInvalidSplit):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// callerID returns the authenticated user, or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads a group and checks that userID is on its roster.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", errInvalidArgument)
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: %s", errNotMember, groupID)
	}
	return group, nil
}

// resolveMembers turns requested members into roster entries. Members with
// an ID must be registered users and take their account's display name;
// members without an ID need a name and get a generated ID from the store.
func resolveMembers(ctx context.Context, users storage.UserStore, requested []models.Member) ([]models.Member, error) {
	var ids []string
	for _, m := range requested {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	accounts, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]models.Member, 0, len(requested))
	for _, m := range requested {
		if m.ID != "" {
			account, ok := accounts[m.ID]
			if !ok {
				return nil, fmt.Errorf("%w: no user with id %q", errInvalidArgument, m.ID)
			}
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, models.Member{ID: account.ID, Name: account.DisplayName})
			continue
		}
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: member needs an id or a name", errInvalidArgument)
		}
		out = append(out, models.Member{Name: name})
	}
	return out, nil
}

// defaultDescription labels an expense recorded without a description.
func defaultDescription(names []string) string {
	if len(names) == 0 {
		return "Expense"
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}

// settlementDescription labels a settlement recorded without a note.
func settlementDescription(payer, receiver string) string {
	return fmt.Sprintf("Settlement from %s to %s", payer, receiver)
}
