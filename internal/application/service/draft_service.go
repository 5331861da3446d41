package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garyjia/erp-forms/internal/form"
	"github.com/garyjia/erp-forms/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDraftNotFound is returned for an unknown or expired draft id.
var ErrDraftNotFound = errors.New("draft not found")

// DefaultDraftTTL is how long an untouched draft is kept.
const DefaultDraftTTL = 2 * time.Hour

// DraftView is a snapshot of one open form instance.
type DraftView struct {
	ID         string        `json:"id"`
	Form       string        `json:"form"`
	Mode       form.Mode     `json:"mode"`
	RecordID   int64         `json:"record_id,omitempty"`
	Values     form.Values   `json:"values"`
	Errors     form.ErrorMap `json:"errors"`
	Lookups    form.Lookups  `json:"lookups,omitempty"`
	Submitting bool          `json:"submitting"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

// DraftService keeps open form instances in memory between requests. Each
// draft wraps one form.Controller; drafts left idle past the TTL are swept.
type DraftService interface {
	// Open starts a draft in create mode, or in edit mode when recordID is set
	Open(ctx context.Context, formName string, recordID int64) (*DraftView, error)

	// Get returns the current state of a draft
	Get(id string) (*DraftView, error)

	// SetField edits one field
	SetField(id, field string, value any) (*DraftView, error)

	// AddListItem appends an empty row and returns its index
	AddListItem(id, field string) (*DraftView, int, error)

	// SetListItem edits one row of a list field
	SetListItem(id, field string, index int, value any) (*DraftView, error)

	// RemoveListItem deletes one row of a list field
	RemoveListItem(id, field string, index int) (*DraftView, error)

	// Submit validates and persists a draft
	Submit(ctx context.Context, id string) (form.Result, *DraftView, error)

	// Discard drops a draft
	Discard(id string) error

	// Sweep drops drafts idle for longer than the TTL and returns how many
	Sweep(now time.Time) int

	// Count returns the number of open drafts
	Count() int
}

type draft struct {
	id       string
	form     string
	ctrl     *form.Controller
	recordID atomic.Int64
	lastSeen atomic.Int64
}

func (d *draft) touch(now time.Time) {
	d.lastSeen.Store(now.UnixNano())
}

type draftServiceImpl struct {
	forms  FormService
	refs   ReferenceService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	drafts map[string]*draft
}

// NewDraftService creates a new DraftService. A non-positive ttl uses
// DefaultDraftTTL.
func NewDraftService(forms FormService, refs ReferenceService, ttl time.Duration, logger *zap.Logger) DraftService {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &draftServiceImpl{
		forms:  forms,
		refs:   refs,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		drafts: make(map[string]*draft),
	}
}

func (s *draftServiceImpl) Open(ctx context.Context, formName string, recordID int64) (*DraftView, error) {
	m, err := s.forms.Model(formName)
	if err != nil {
		return nil, err
	}

	d := &draft{id: uuid.NewString(), form: formName}
	d.recordID.Store(recordID)
	d.touch(s.now())

	opts := []form.Option{
		form.WithLogger(s.logger.With(zap.String("draft_id", d.id))),
		form.WithClock(s.now),
		form.WithOnSuccess(func(form.Result) {
			// the controller is back in create mode
			d.recordID.Store(0)
		}),
	}
	if recordID > 0 {
		record, err := s.forms.GetRecord(ctx, formName, recordID)
		if err != nil {
			return nil, err
		}
		values, err := s.forms.RecordValues(record)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.WithRecord(values))
	}

	d.ctrl = form.NewController(m, s.forms.Submitter(formName, d.recordID.Load), opts...)
	if err := s.loadLookups(ctx, d.ctrl); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.drafts[d.id] = d
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	s.mu.Unlock()

	s.logger.Info("Draft opened",
		zap.String("draft_id", d.id),
		zap.String("form", formName),
		zap.Int64("record_id", recordID))
	return s.view(d), nil
}

// loadLookups fetches the reference data of every select field
// concurrently. Each field is marked loading until its data arrives.
func (s *draftServiceImpl) loadLookups(ctx context.Context, ctrl *form.Controller) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range ctrl.Model().Fields {
		if f.Lookup == "" {
			continue
		}
		if err := ctrl.SetLookup(f.Name, form.Lookup{Loading: true}); err != nil {
			return err
		}

		name, kind := f.Name, f.Lookup
		g.Go(func() error {
			l, err := s.refs.Lookup(gctx, kind, "")
			if err != nil {
				return err
			}
			return ctrl.SetLookup(name, l)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	return nil
}

func (s *draftServiceImpl) Get(id string) (*DraftView, error) {
	d, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *draftServiceImpl) SetField(id, field string, value any) (*DraftView, error) {
	d, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := d.ctrl.SetField(field, value); err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *draftServiceImpl) AddListItem(id, field string) (*DraftView, int, error) {
	d, err := s.get(id)
	if err != nil {
		return nil, 0, err
	}
	index, err := d.ctrl.AddListItem(field)
	if err != nil {
		return nil, 0, err
	}
	return s.view(d), index, nil
}

func (s *draftServiceImpl) SetListItem(id, field string, index int, value any) (*DraftView, error) {
	d, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := d.ctrl.SetListItem(field, index, value); err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *draftServiceImpl) RemoveListItem(id, field string, index int) (*DraftView, error) {
	d, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := d.ctrl.RemoveListItem(field, index); err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *draftServiceImpl) Submit(ctx context.Context, id string) (form.Result, *DraftView, error) {
	d, err := s.get(id)
	if err != nil {
		return form.Result{}, nil, err
	}

	res, err := d.ctrl.Submit(ctx)

	var verr *form.ValidationError
	var serr *form.SubmissionError
	switch {
	case err == nil:
		metrics.SubmissionsTotal.WithLabelValues(d.form, metrics.OutcomeSuccess).Inc()
	case errors.As(err, &verr):
		metrics.SubmissionsTotal.WithLabelValues(d.form, metrics.OutcomeInvalid).Inc()
		metrics.RecordValidation(d.form, verr.Errors.Fields())
	case errors.As(err, &serr):
		metrics.SubmissionsTotal.WithLabelValues(d.form, metrics.OutcomeFailed).Inc()
	default:
		metrics.SubmissionsTotal.WithLabelValues(d.form, metrics.OutcomeRejected).Inc()
	}

	d.touch(s.now())
	return res, s.view(d), err
}

func (s *draftServiceImpl) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	delete(s.drafts, id)
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	return nil
}

func (s *draftServiceImpl) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.drafts {
		if d.lastSeen.Load() > cutoff || d.ctrl.Submitting() {
			continue
		}
		delete(s.drafts, id)
		removed++
	}

	if removed > 0 {
		metrics.DraftsExpiredTotal.Add(float64(removed))
		s.logger.Info("Expired idle drafts",
			zap.Int("removed", removed),
			zap.Int("remaining", len(s.drafts)))
	}
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	return removed
}

func (s *draftServiceImpl) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

func (s *draftServiceImpl) get(id string) (*draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	d.touch(s.now())
	return d, nil
}

func (s *draftServiceImpl) view(d *draft) *DraftView {
	return &DraftView{
		ID:         d.id,
		Form:       d.form,
		Mode:       d.ctrl.Mode(),
		RecordID:   d.recordID.Load(),
		Values:     d.ctrl.Values(),
		Errors:     d.ctrl.Errors(),
		Lookups:    d.ctrl.Lookups(),
		Submitting: d.ctrl.Submitting(),
		ExpiresAt:  time.Unix(0, d.lastSeen.Load()).Add(s.ttl).UTC(),
	}
}
