package ports

import (
	"context"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// AuthRepository defines the interface for user account persistence.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// AuthService handles account signup and login. The issued JWT carries the
// username as the participant identity used by every engine operation.
type AuthService interface {
	Signup(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
