package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/erp-forms/internal/application/port"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
	"github.com/garyjia/erp-forms/internal/forms"
)

// ErrRecordNotFound is returned when a record id does not exist for a form.
var ErrRecordNotFound = errors.New("record not found")

// FormService exposes the form catalogue and owns the submit collaborator
// that persists submitted forms.
type FormService interface {
	// Models lists every form schema
	Models() []*form.Model

	// Model returns one form schema
	Model(name string) (*form.Model, error)

	// Compute builds values from input and fills in the derived fields
	Compute(name string, input map[string]any) (form.Values, error)

	// Validate computes values from input and checks them
	Validate(name string, input map[string]any, lookups form.Lookups) (form.Values, form.ErrorMap, error)

	// Submitter returns the collaborator that persists a form. recordID
	// reports the record to update; it returns 0 to create a new record.
	Submitter(name string, recordID func() int64) form.Submitter

	// GetRecord retrieves a stored record of a form
	GetRecord(ctx context.Context, name string, id int64) (*entity.Record, error)

	// ListRecords retrieves a page of stored records and the total count
	ListRecords(ctx context.Context, name string, limit, offset int) ([]*entity.Record, int, error)

	// RecordValues decodes the values of a stored record
	RecordValues(record *entity.Record) (map[string]any, error)

	// GetInvoice loads a stored invoice
	GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error)
}

type formServiceImpl struct {
	registry   *forms.Registry
	recordRepo port.RecordRepository
	txManager  port.TransactionManager
	logger     Logger
	now        func() time.Time
}

// NewFormService creates a new FormService
func NewFormService(
	registry *forms.Registry,
	recordRepo port.RecordRepository,
	txManager port.TransactionManager,
	logger Logger,
) FormService {
	return &formServiceImpl{
		registry:   registry,
		recordRepo: recordRepo,
		txManager:  txManager,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *formServiceImpl) Models() []*form.Model {
	return s.registry.Models()
}

func (s *formServiceImpl) Model(name string) (*form.Model, error) {
	return s.registry.Get(name)
}

func (s *formServiceImpl) Compute(name string, input map[string]any) (form.Values, error) {
	m, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return form.FromInput(m, input, s.now())
}

func (s *formServiceImpl) Validate(name string, input map[string]any, lookups form.Lookups) (form.Values, form.ErrorMap, error) {
	m, err := s.registry.Get(name)
	if err != nil {
		return nil, nil, err
	}
	values, err := form.FromInput(m, input, s.now())
	if err != nil {
		return nil, nil, err
	}
	return values, form.Validate(m, values, lookups), nil
}

func (s *formServiceImpl) Submitter(name string, recordID func() int64) form.Submitter {
	return form.SubmitFunc(func(ctx context.Context, values form.Values) (form.Result, error) {
		var id int64
		if recordID != nil {
			id = recordID()
		}
		return s.save(ctx, name, id, values)
	})
}

// save stores values as a new record, or over recordID when it is set.
func (s *formServiceImpl) save(ctx context.Context, name string, recordID int64, values form.Values) (form.Result, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return form.Result{}, fmt.Errorf("failed to encode values: %w", err)
	}

	summary, amount := forms.Summarize(name, values)
	record := &entity.Record{
		ID:       recordID,
		FormName: name,
		Summary:  summary,
		Amount:   amount,
		Values:   string(data),
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if recordID == 0 {
			record.Status = entity.StatusSubmitted
			return s.recordRepo.Create(ctx, record)
		}

		existing, err := s.recordRepo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if existing == nil || existing.FormName != name {
			return fmt.Errorf("%w: %s %d", ErrRecordNotFound, name, recordID)
		}
		record.Status = entity.StatusUpdated
		return s.recordRepo.Update(ctx, record)
	})
	if err != nil {
		s.logger.Error("Failed to save form record", "form", name, "record_id", recordID, "error", err)
		return form.Result{}, err
	}

	s.logger.Info("Form record saved", "form", name, "record_id", record.ID, "status", record.Status)

	msg := "created"
	if recordID != 0 {
		msg = "updated"
	}
	return form.Result{ID: record.ID, Message: msg}, nil
}

func (s *formServiceImpl) GetRecord(ctx context.Context, name string, id int64) (*entity.Record, error) {
	if _, err := s.registry.Get(name); err != nil {
		return nil, err
	}
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || record.FormName != name {
		return nil, fmt.Errorf("%w: %s %d", ErrRecordNotFound, name, id)
	}
	return record, nil
}

func (s *formServiceImpl) ListRecords(ctx context.Context, name string, limit, offset int) ([]*entity.Record, int, error) {
	if _, err := s.registry.Get(name); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.recordRepo.ListByForm(ctx, name, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.CountByForm(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *formServiceImpl) RecordValues(record *entity.Record) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(record.Values), &values); err != nil {
		return nil, fmt.Errorf("failed to decode record %d: %w", record.ID, err)
	}
	return values, nil
}

func (s *formServiceImpl) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	record, err := s.GetRecord(ctx, entity.FormInvoice, id)
	if err != nil {
		return nil, err
	}
	raw, err := s.RecordValues(record)
	if err != nil {
		return nil, err
	}

	m, err := s.registry.Get(entity.FormInvoice)
	if err != nil {
		return nil, err
	}
	inv := forms.InvoiceFromValues(form.Init(m, form.ModeEdit, raw, s.now()))
	inv.ID = record.ID
	inv.CreatedAt = record.CreatedAt
	return &inv, nil
}
