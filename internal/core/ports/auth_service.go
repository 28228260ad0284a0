package ports

import (
	"context"

	"github.com/benesafe/registry/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	// BouquetID is the selected subscription tier. Empty selects the
	// cheapest active bouquet.
	BouquetID string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error
}
