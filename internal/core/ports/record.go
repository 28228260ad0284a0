package ports

import (
	"context"

	"github.com/benesafe/registry/internal/core/domain"
)

// RecordCounter counts an owner's live records. Category narrows asset
// counts and is ignored for other kinds.
type RecordCounter interface {
	Count(ctx context.Context, ownerID string, kind domain.RecordKind, category domain.AssetCategory) (int, error)
}

// RecordRepository persists owned records.
type RecordRepository interface {
	RecordCounter
	Create(ctx context.Context, r *domain.Record) error
	// FindByID only matches records owned by ownerID that are not deleted.
	FindByID(ctx context.Context, ownerID, id string) (*domain.Record, error)
	ListByOwner(ctx context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error)
	SoftDelete(ctx context.Context, ownerID, id string) error
}

// CreateRecordInput carries a new owned record.
type CreateRecordInput struct {
	Kind        domain.RecordKind
	Category    domain.AssetCategory
	Name        string
	Description string
}

// RecordService creates and removes owned records under quota.
type RecordService interface {
	Create(ctx context.Context, owner *domain.ResolvedProfile, in CreateRecordInput) (*domain.Record, error)
	List(ctx context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}
