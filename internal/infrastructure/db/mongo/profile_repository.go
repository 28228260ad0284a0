package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

const collectionProfiles = "profiles"

// ProfileRepository implements ports.ProfileRepository using MongoDB. The
// document key is the user ID, so a user has at most one profile.
type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionProfiles)}
}

type profileDoc struct {
	UserID             string     `bson:"_id"`
	RoleID             *string    `bson:"role_id"`
	BouquetID          *string    `bson:"bouquet_id"`
	Phone              string     `bson:"phone,omitempty"`
	NRC                string     `bson:"nrc,omitempty"`
	Address            string     `bson:"address,omitempty"`
	DateOfBirth        *time.Time `bson:"date_of_birth,omitempty"`
	VerificationStatus string     `bson:"verification_status"`
	VerifiedBy         *string    `bson:"verified_by,omitempty"`
	VerifiedAt         *time.Time `bson:"verified_at,omitempty"`
	EmailVerified      bool       `bson:"email_verified"`
	SubscriptionActive bool       `bson:"subscription_active"`
	SubscriptionStart  time.Time  `bson:"subscription_start"`
	SubscriptionEnd    *time.Time `bson:"subscription_end,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func newProfileDoc(p *domain.Profile) profileDoc {
	return profileDoc{
		UserID:             p.UserID,
		RoleID:             p.RoleID,
		BouquetID:          p.BouquetID,
		Phone:              p.Phone,
		NRC:                p.NRC,
		Address:            p.Address,
		DateOfBirth:        p.DateOfBirth,
		VerificationStatus: string(p.VerificationStatus),
		VerifiedBy:         p.VerifiedBy,
		VerifiedAt:         p.VerifiedAt,
		EmailVerified:      p.EmailVerified,
		SubscriptionActive: p.SubscriptionActive,
		SubscriptionStart:  p.SubscriptionStart.UTC(),
		SubscriptionEnd:    p.SubscriptionEnd,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
	}
}

func (d profileDoc) toDomain() domain.Profile {
	return domain.Profile{
		UserID:             d.UserID,
		RoleID:             d.RoleID,
		BouquetID:          d.BouquetID,
		Phone:              d.Phone,
		NRC:                d.NRC,
		Address:            d.Address,
		DateOfBirth:        d.DateOfBirth,
		VerificationStatus: domain.VerificationStatus(d.VerificationStatus),
		VerifiedBy:         d.VerifiedBy,
		VerifiedAt:         d.VerifiedAt,
		EmailVerified:      d.EmailVerified,
		SubscriptionActive: d.SubscriptionActive,
		SubscriptionStart:  d.SubscriptionStart,
		SubscriptionEnd:    d.SubscriptionEnd,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d profileDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	p := d.toDomain()
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newProfileDoc(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.UserID}, newProfileDoc(p))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// List returns profiles matching f, newest first, with the total match count.
func (r *ProfileRepository) List(ctx context.Context, f ports.ListProfilesFilter) ([]domain.Profile, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := profileListFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode profiles: %w", err)
	}
	out := make([]domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// ListMissingDefaults returns profiles with a null role or bouquet.
func (r *ProfileRepository) ListMissingDefaults(ctx context.Context) ([]domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, missingDefaultsFilter())
	if err != nil {
		return nil, fmt.Errorf("list incomplete profiles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	out := make([]domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, referenceFilter("role_id", roleID))
}

func (r *ProfileRepository) CountByBouquet(ctx context.Context, bouquetID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, referenceFilter("bouquet_id", bouquetID))
}

// EnsureIndexes creates indexes backing the admin filters and reference counts.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "role_id", Value: 1}}},
		{Keys: bson.D{{Key: "bouquet_id", Value: 1}}},
		{Keys: bson.D{{Key: "verification_status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
