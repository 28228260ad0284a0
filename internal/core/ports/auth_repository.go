package ports

import (
	"context"

	"github.com/benesafe/registry/internal/core/domain"
)

// AuthRepository defines the interface for user identity persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// SearchIDs returns the IDs of users whose username, email or name
	// contains query (case-insensitive).
	SearchIDs(ctx context.Context, query string) ([]string, error)
	Delete(ctx context.Context, id string) error
	// ListWithoutProfile returns the IDs of users that have no profile.
	ListWithoutProfile(ctx context.Context) ([]string, error)
}

// VerificationTokenStore issues and redeems single-use email verification tokens.
type VerificationTokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	// Consume returns the user the token was issued for and invalidates it.
	// Unknown or expired tokens yield domain.ErrInvalidToken.
	Consume(ctx context.Context, token string) (string, error)
}

// MailMessage is an outbound email.
type MailMessage struct {
	UserID  string
	To      string
	Subject string
	Body    string
}

// MailQueue accepts emails for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg MailMessage)
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
