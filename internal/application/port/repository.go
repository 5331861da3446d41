package port

import (
	"context"

	"github.com/garyjia/erp-forms/internal/domain/entity"
)

// RecordRepository defines persistence operations for submitted forms
type RecordRepository interface {
	Create(ctx context.Context, record *entity.Record) error
	Update(ctx context.Context, record *entity.Record) error
	// GetByID returns nil, nil when the record does not exist.
	GetByID(ctx context.Context, id int64) (*entity.Record, error)
	ListByForm(ctx context.Context, formName string, limit, offset int) ([]*entity.Record, error)
	CountByForm(ctx context.Context, formName string) (int, error)
}

// ReferenceRepository defines read access to reference data
type ReferenceRepository interface {
	// ListByKind returns active items of a kind whose code or label contains
	// query, ordered by label. A limit of 0 or less means no limit.
	ListByKind(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error)
	Kinds(ctx context.Context) ([]string, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
