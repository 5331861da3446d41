package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garyjia/erp-forms/internal/application/port"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ReferenceRepository implements port.ReferenceRepository
type ReferenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *sql.DB, logger *zap.Logger) port.ReferenceRepository {
	return &ReferenceRepository{
		db:     db,
		logger: logger,
	}
}

// ListByKind returns active items of a kind matching query. A limit of 0
// or less returns them all.
func (r *ReferenceRepository) ListByKind(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error) {
	stmt := `
		SELECT id, kind, code, label, active
		FROM reference_items
		WHERE kind = ? AND active = 1
			AND (? = '' OR code LIKE ? ESCAPE '\' OR label LIKE ? ESCAPE '\')
		ORDER BY label
		LIMIT ?
	`

	if limit <= 0 {
		limit = -1
	}
	query = strings.TrimSpace(query)
	pattern := "%" + escapeLike(query) + "%"

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, stmt, kind, query, pattern, pattern, limit)
	if err != nil {
		r.logger.Error("Failed to list reference items",
			zap.String("kind", kind),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list reference items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ReferenceItem
	for rows.Next() {
		var item entity.ReferenceItem
		if err := rows.Scan(&item.ID, &item.Kind, &item.Code, &item.Label, &item.Active); err != nil {
			return nil, fmt.Errorf("failed to scan reference item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Kinds lists the distinct kinds with at least one active item
func (r *ReferenceRepository) Kinds(ctx context.Context) ([]string, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx,
		"SELECT DISTINCT kind FROM reference_items WHERE active = 1 ORDER BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to list reference kinds: %w", err)
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Verify interface compliance
var _ port.ReferenceRepository = (*ReferenceRepository)(nil)
