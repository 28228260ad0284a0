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
)

const collectionBouquets = "bouquets"

// BouquetRepository implements ports.BouquetRepository using MongoDB.
type BouquetRepository struct {
	col *mongo.Collection
}

func NewBouquetRepository(db *mongo.Database) *BouquetRepository {
	return &BouquetRepository{col: db.Collection(collectionBouquets)}
}

type bouquetDoc struct {
	ID                            string    `bson:"_id"`
	Name                          string    `bson:"name"`
	DisplayName                   string    `bson:"display_name"`
	Description                   string    `bson:"description,omitempty"`
	Price                         int64     `bson:"price"`
	MaxAssetsPerCategory          int       `bson:"max_assets_per_category"`
	MaxDependents                 int       `bson:"max_dependents"`
	MaxBeneficiaries              int       `bson:"max_beneficiaries"`
	HasRewardTracker              bool      `bson:"has_reward_tracker"`
	RewardPercentage              int       `bson:"reward_percentage"`
	CanExportReports              bool      `bson:"can_export_reports"`
	CanDownloadDocuments          bool      `bson:"can_download_documents"`
	CanManageBusinesses           bool      `bson:"can_manage_businesses"`
	CanManageProfessionalContacts bool      `bson:"can_manage_professional_contacts"`
	Active                        bool      `bson:"active"`
	CreatedAt                     time.Time `bson:"created_at"`
	UpdatedAt                     time.Time `bson:"updated_at"`
}

func newBouquetDoc(b *domain.Bouquet) bouquetDoc {
	return bouquetDoc{
		ID:                            b.ID,
		Name:                          b.Name,
		DisplayName:                   b.DisplayName,
		Description:                   b.Description,
		Price:                         b.Price,
		MaxAssetsPerCategory:          b.MaxAssetsPerCategory,
		MaxDependents:                 b.MaxDependents,
		MaxBeneficiaries:              b.MaxBeneficiaries,
		HasRewardTracker:              b.HasRewardTracker,
		RewardPercentage:              b.RewardPercentage,
		CanExportReports:              b.CanExportReports,
		CanDownloadDocuments:          b.CanDownloadDocuments,
		CanManageBusinesses:           b.CanManageBusinesses,
		CanManageProfessionalContacts: b.CanManageProfessionalContacts,
		Active:                        b.Active,
		CreatedAt:                     b.CreatedAt.UTC(),
		UpdatedAt:                     b.UpdatedAt.UTC(),
	}
}

func (d bouquetDoc) toDomain() *domain.Bouquet {
	return &domain.Bouquet{
		ID:                            d.ID,
		Name:                          d.Name,
		DisplayName:                   d.DisplayName,
		Description:                   d.Description,
		Price:                         d.Price,
		MaxAssetsPerCategory:          d.MaxAssetsPerCategory,
		MaxDependents:                 d.MaxDependents,
		MaxBeneficiaries:              d.MaxBeneficiaries,
		HasRewardTracker:              d.HasRewardTracker,
		RewardPercentage:              d.RewardPercentage,
		CanExportReports:              d.CanExportReports,
		CanDownloadDocuments:          d.CanDownloadDocuments,
		CanManageBusinesses:           d.CanManageBusinesses,
		CanManageProfessionalContacts: d.CanManageProfessionalContacts,
		Active:                        d.Active,
		CreatedAt:                     d.CreatedAt,
		UpdatedAt:                     d.UpdatedAt,
	}
}

func (r *BouquetRepository) FindByID(ctx context.Context, id string) (*domain.Bouquet, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BouquetRepository) FindByName(ctx context.Context, name string) (*domain.Bouquet, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

// ListActive returns active bouquets in creation order. Callers sort by price.
func (r *BouquetRepository) ListActive(ctx context.Context) ([]domain.Bouquet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list bouquets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bouquetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bouquets: %w", err)
	}
	out := make([]domain.Bouquet, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

func (r *BouquetRepository) Create(ctx context.Context, b *domain.Bouquet) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newBouquetDoc(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *BouquetRepository) Update(ctx context.Context, b *domain.Bouquet) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, newBouquetDoc(b))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrBouquetNotFound
	}
	return nil
}

func (r *BouquetRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBouquetNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index on the bouquets collection.
func (r *BouquetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

func (r *BouquetRepository) findOne(ctx context.Context, filter bson.M) (*domain.Bouquet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d bouquetDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBouquetNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}
