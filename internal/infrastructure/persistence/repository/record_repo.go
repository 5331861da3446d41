package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/erp-forms/internal/application/port"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// RecordRepository implements port.RecordRepository
type RecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sql.DB, logger *zap.Logger) port.RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a newly submitted form
func (r *RecordRepository) Create(ctx context.Context, record *entity.Record) error {
	query := `
		INSERT INTO form_records (form_name, status, summary, amount, values_json)
		VALUES (?, ?, ?, ?, ?)
	`

	if record.Status == "" {
		record.Status = entity.StatusSubmitted
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		record.FormName,
		record.Status,
		record.Summary,
		record.Amount,
		record.Values,
	)
	if err != nil {
		r.logger.Error("Failed to create record",
			zap.String("form", record.FormName),
			zap.Error(err))
		return fmt.Errorf("failed to create record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// Update replaces the values of an existing record
func (r *RecordRepository) Update(ctx context.Context, record *entity.Record) error {
	query := `
		UPDATE form_records
		SET status = ?, summary = ?, amount = ?, values_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND form_name = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		record.Status,
		record.Summary,
		record.Amount,
		record.Values,
		record.ID,
		record.FormName,
	)
	if err != nil {
		r.logger.Error("Failed to update record",
			zap.Int64("id", record.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %d of form %s not found", record.ID, record.FormName)
	}
	return nil
}

// GetByID retrieves a record by its ID
func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*entity.Record, error) {
	query := `
		SELECT id, form_name, status, summary, amount, values_json, created_at, updated_at
		FROM form_records
		WHERE id = ?
	`

	record, err := scanRecord(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get record by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListByForm returns records of one form, newest first
func (r *RecordRepository) ListByForm(ctx context.Context, formName string, limit, offset int) ([]*entity.Record, error) {
	query := `
		SELECT id, form_name, status, summary, amount, values_json, created_at, updated_at
		FROM form_records
		WHERE form_name = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, formName, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list records",
			zap.String("form", formName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*entity.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountByForm returns the number of records of one form
func (r *RecordRepository) CountByForm(ctx context.Context, formName string) (int, error) {
	var count int
	err := sqlite.ExecutorFor(ctx, r.db).
		QueryRowContext(ctx, "SELECT COUNT(*) FROM form_records WHERE form_name = ?", formName).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.Record, error) {
	var record entity.Record
	err := row.Scan(
		&record.ID,
		&record.FormName,
		&record.Status,
		&record.Summary,
		&record.Amount,
		&record.Values,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Verify interface compliance
var _ port.RecordRepository = (*RecordRepository)(nil)
