package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/benesafe/registry/internal/api/metrics"
	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

const minPasswordLength = 8

// AuthOptions configures token issuance.
type AuthOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	// PublicBaseURL prefixes the verification link in outbound email.
	PublicBaseURL string
}

// AuthService implements registration, login and email verification.
type AuthService struct {
	repo         ports.AuthRepository
	profiles     ports.ProfileService
	bouquets     ports.BouquetRepository
	entitlements ports.EntitlementService
	tokens       ports.VerificationTokenStore
	mail         ports.MailQueue
	opts         AuthOptions
	log          zerolog.Logger
	now          func() time.Time
}

func NewAuthService(
	repo ports.AuthRepository,
	profiles ports.ProfileService,
	bouquets ports.BouquetRepository,
	entitlements ports.EntitlementService,
	tokens ports.VerificationTokenStore,
	mail ports.MailQueue,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:         repo,
		profiles:     profiles,
		bouquets:     bouquets,
		entitlements: entitlements,
		tokens:       tokens,
		mail:         mail,
		opts:         opts,
		log:          log,
		now:          time.Now,
	}
}

// Register creates the user and its profile. A selected bouquet must exist
// and be active; registration is refused otherwise.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	var selected *domain.Bouquet
	if in.BouquetID != "" {
		b, err := s.bouquets.FindByID(ctx, in.BouquetID)
		if err != nil {
			return nil, err
		}
		if !b.Active {
			return nil, fmt.Errorf("bouquet %s is inactive: %w", in.BouquetID, domain.ErrBouquetNotFound)
		}
		selected = b
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.CreateForUser(ctx, created.ID, in.BouquetID)
	if err != nil {
		if derr := s.repo.Delete(ctx, created.ID); derr != nil {
			s.log.Error().Err(derr).Str("user_id", created.ID).Msg("user left without profile")
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(s.bouquetLabel(ctx, selected, profile)).Inc()

	if err := s.sendVerification(ctx, created); err != nil {
		s.log.Warn().Err(err).Str("user_id", created.ID).Msg("verification email not queued")
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !user.Active {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	// role_category is informational; authorization always re-resolves the profile.
	var category domain.RoleCategory
	if p, err := s.entitlements.Resolve(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("login without resolved role")
	} else if p.Role != nil {
		category = p.Role.Category
	}

	token, err := s.generateToken(user, category)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// VerifyEmail redeems a single-use verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidToken
	}
	userID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if err := s.profiles.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("email verified")
	return nil
}

// ResendVerification issues a fresh token. Already verified users are a no-op.
func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	if p.EmailVerified {
		return nil
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.sendVerification(ctx, user)
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.opts.PublicBaseURL, "/") + "/auth/verify-email?token=" + url.QueryEscape(token)
	s.mail.Enqueue(ports.MailMessage{
		UserID:  user.ID,
		To:      user.Email,
		Subject: "Verify your BeneSafe email address",
		Body: fmt.Sprintf("Hello %s,\n\nConfirm your email address by opening the link below:\n\n%s\n",
			displayName(user), link),
	})
	return nil
}

func (s *AuthService) bouquetLabel(ctx context.Context, selected *domain.Bouquet, p *domain.Profile) string {
	if selected != nil {
		return selected.Name
	}
	if p == nil || p.BouquetID == nil {
		return "none"
	}
	b, err := s.bouquets.FindByID(ctx, *p.BouquetID)
	if err != nil {
		return "none"
	}
	return b.Name
}

func (s *AuthService) generateToken(user *domain.User, category domain.RoleCategory) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":           user.ID,
		"username":      user.Username,
		"role_category": string(category),
		"iat":           now.Unix(),
		"exp":           now.Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}

func validateRegistration(in ports.RegisterInput) error {
	switch {
	case in.Username == "":
		return &domain.ValidationError{Field: "username", Reason: "is required"}
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return &domain.ValidationError{Field: "email", Reason: "must be a valid address"}
	case len(in.Password) < minPasswordLength:
		return &domain.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	return nil
}

func displayName(u *domain.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}
