package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/erp-forms/internal/application/port"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownReference is returned for a reference data kind that does not exist.
var ErrUnknownReference = errors.New("unknown reference data kind")

// searchLimit caps the options returned for a search. An empty query
// returns every item, since validation checks membership against it.
const searchLimit = 200

// ReferenceService is the list-fetch collaborator: it serves read-only
// reference data as form lookups.
type ReferenceService interface {
	// Lookup returns the options of a kind matching query
	Lookup(ctx context.Context, kind, query string) (form.Lookup, error)

	// Kinds lists the available reference data kinds
	Kinds() []string
}

type referenceServiceImpl struct {
	refRepo port.ReferenceRepository
	logger  Logger

	// drafts opened together share one query per kind and search
	fetches singleflight.Group
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(refRepo port.ReferenceRepository, logger Logger) ReferenceService {
	return &referenceServiceImpl{
		refRepo: refRepo,
		logger:  logger,
	}
}

var referenceKinds = []string{
	entity.RefAccounts,
	entity.RefCustomers,
	entity.RefDepartments,
	entity.RefEmployees,
	entity.RefProjects,
}

func (s *referenceServiceImpl) Kinds() []string {
	return append([]string(nil), referenceKinds...)
}

func (s *referenceServiceImpl) Lookup(ctx context.Context, kind, query string) (form.Lookup, error) {
	if !isReferenceKind(kind) {
		return form.Lookup{}, fmt.Errorf("%w: %s", ErrUnknownReference, kind)
	}

	v, err, _ := s.fetches.Do(kind+"\x00"+query, func() (interface{}, error) {
		limit := searchLimit
		if query == "" {
			limit = 0
		}
		items, err := s.refRepo.ListByKind(ctx, kind, query, limit)
		if err != nil {
			s.logger.Error("Failed to fetch reference data", "kind", kind, "error", err)
			return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
		}

		options := make([]form.Choice, 0, len(items))
		for _, item := range items {
			options = append(options, form.Choice{Value: item.Code, Label: item.Label})
		}
		return options, nil
	})
	if err != nil {
		return form.Lookup{}, err
	}

	// every caller gets its own slice
	shared := v.([]form.Choice)
	return form.Lookup{Items: append(make([]form.Choice, 0, len(shared)), shared...)}, nil
}

func isReferenceKind(kind string) bool {
	for _, k := range referenceKinds {
		if k == kind {
			return true
		}
	}
	return false
}
