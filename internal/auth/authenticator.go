// Package auth handles user registration, password verification and the JWT
// session tokens that identify callers to the RPC services.
package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator admits people into settleup. A registered user's ID doubles
// as their member ID in every group they join, so Register is also where a
// person gets the identity their expenses and settlements are recorded under.
type Authenticator interface {
	// Register creates an account. The email is normalized before it is
	// checked for uniqueness; ErrEmailExists, ErrInvalidEmail and
	// ErrWeakPassword report rejected input.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential, or
	// ErrInvalidCredentials without saying which of the two was wrong.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether credential is acceptable for a new
	// account.
	ValidateCredential(credential string) error
}
