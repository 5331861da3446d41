package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Result is what a Submitter reports after persisting a form.
type Result struct {
	ID      int64  `json:"id"`
	Message string `json:"message,omitempty"`
}

// Submitter persists the values of a validated form. It is the only
// collaborator a Controller calls out to.
type Submitter interface {
	Submit(ctx context.Context, values Values) (Result, error)
}

// SubmitFunc adapts a function to the Submitter interface.
type SubmitFunc func(ctx context.Context, values Values) (Result, error)

// Submit calls f.
func (f SubmitFunc) Submit(ctx context.Context, values Values) (Result, error) {
	return f(ctx, values)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for submission failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithOnSuccess registers a callback fired after a successful submission.
func WithOnSuccess(fn func(Result)) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// WithRecord starts the controller in edit mode, hydrated from record.
func WithRecord(record map[string]any) Option {
	return func(c *Controller) {
		c.mode = ModeEdit
		c.record = record
	}
}

// Controller owns the values of one form instance. Field edits are allowed at
// any time, including while a submission is in flight; only one submission
// may run at a time.
type Controller struct {
	model     *Model
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time
	onSuccess func(Result)
	mode      Mode
	record    map[string]any
	inflight  *semaphore.Weighted

	mu      sync.Mutex
	values  Values
	errors  ErrorMap
	lookups Lookups
}

// NewController creates a controller for model that submits through s.
func NewController(model *Model, s Submitter, opts ...Option) *Controller {
	c := &Controller{
		model:     model,
		submitter: s,
		logger:    zap.NewNop(),
		now:       time.Now,
		mode:      ModeCreate,
		inflight:  semaphore.NewWeighted(1),
		errors:    make(ErrorMap),
		lookups:   make(Lookups),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values = Init(model, c.mode, c.record, c.now())
	return c
}

// Model returns the schema the controller was built for.
func (c *Controller) Model() *Model {
	return c.model
}

// Mode reports whether the controller was opened to create or edit a record.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Values returns a copy of the current values.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// Errors returns a copy of the current errors.
func (c *Controller) Errors() ErrorMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Clone()
}

// Lookups returns a copy of the current lookup states.
func (c *Controller) Lookups() Lookups {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Lookups, len(c.lookups))
	for k, v := range c.lookups {
		out[k] = v
	}
	return out
}

// SetField stores a user edit, clears the field's error, and recomputes the
// derived fields that depend on it.
func (c *Controller) SetField(name string, value any) error {
	f, err := c.editable(name)
	if err != nil {
		return err
	}
	val, err := coerce(f, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = val
	delete(c.errors, name)
	c.model.Recompute(c.values, name)
	return nil
}

// SetListItem replaces row index of a list field. For line items a map
// value only replaces the keys it carries.
func (c *Controller) SetListItem(name string, index int, value any) error {
	f, err := c.list(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch f.Kind {
	case KindLineItems:
		items := append([]entity.LineItem(nil), c.values.Items(name)...)
		if index < 0 || index >= len(items) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, name, index)
		}
		item, err := mergeItem(items[index], value)
		if err != nil {
			return err
		}
		items[index] = normalizeItem(item, index)
		c.values[name] = items
	default:
		list := append([]string(nil), c.values.List(name)...)
		if index < 0 || index >= len(list) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, name, index)
		}
		s, err := coerceRowText(value)
		if err != nil {
			return err
		}
		list[index] = s
		c.values[name] = list
	}

	delete(c.errors, name)
	c.model.Recompute(c.values, name)
	return nil
}

// AddListItem appends an empty row to a list field and returns its index.
func (c *Controller) AddListItem(name string) (int, error) {
	f, err := c.list(name)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var index int
	switch f.Kind {
	case KindLineItems:
		items := append([]entity.LineItem(nil), c.values.Items(name)...)
		items = append(items, f.emptyRow(nextRowID(items)).(entity.LineItem))
		c.values[name] = items
		index = len(items) - 1
	default:
		list := append(append([]string(nil), c.values.List(name)...), "")
		c.values[name] = list
		index = len(list) - 1
	}

	c.model.Recompute(c.values, name)
	return index, nil
}

// RemoveListItem deletes row index of a list field. The last remaining line
// item cannot be removed.
func (c *Controller) RemoveListItem(name string, index int) error {
	f, err := c.list(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch f.Kind {
	case KindLineItems:
		items := c.values.Items(name)
		if index < 0 || index >= len(items) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, name, index)
		}
		if len(items) == 1 {
			return ErrLastRow
		}
		out := make([]entity.LineItem, 0, len(items)-1)
		out = append(append(out, items[:index]...), items[index+1:]...)
		c.values[name] = out
	default:
		list := c.values.List(name)
		if index < 0 || index >= len(list) {
			return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, name, index)
		}
		out := make([]string, 0, len(list)-1)
		out = append(append(out, list[:index]...), list[index+1:]...)
		c.values[name] = out
	}

	delete(c.errors, name)
	c.model.Recompute(c.values, name)
	return nil
}

// SetLookup records the reference data state for a select field. While any
// lookup is loading, Submit refuses to run.
func (c *Controller) SetLookup(name string, l Lookup) error {
	if _, ok := c.model.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups[name] = l
	return nil
}

// Validate runs the validator over the current values and stores the
// result, replacing any previous errors.
func (c *Controller) Validate() ErrorMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = Validate(c.model, c.values, c.lookups)
	return c.errors.Clone()
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	if c.inflight.TryAcquire(1) {
		c.inflight.Release(1)
		return false
	}
	return true
}

// Submit validates the current values and, when they are valid, hands them
// to the Submitter. A second call while one is in flight returns
// ErrSubmitInFlight without calling the Submitter. Invalid values return a
// *ValidationError. A Submitter failure returns a *SubmissionError and keeps
// the values; success fires the success callback and resets the form to
// create-mode defaults.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	if !c.inflight.TryAcquire(1) {
		return Result{}, ErrSubmitInFlight
	}
	defer c.inflight.Release(1)

	c.mu.Lock()
	for name, l := range c.lookups {
		if l.Loading {
			c.mu.Unlock()
			return Result{}, fmt.Errorf("%w: %s", ErrLookupLoading, name)
		}
	}
	c.model.RecomputeAll(c.values)
	c.errors = Validate(c.model, c.values, c.lookups)
	if len(c.errors) > 0 {
		errs := c.errors.Clone()
		c.mu.Unlock()
		return Result{}, &ValidationError{Errors: errs}
	}
	snapshot := c.values.Clone()
	mode := c.mode
	c.mu.Unlock()

	res, err := c.submitter.Submit(ctx, snapshot)
	if err != nil {
		c.logger.Error("Form submission failed",
			zap.String("form", c.model.Name),
			zap.String("mode", string(mode)),
			zap.Error(err))

		c.mu.Lock()
		c.errors[FormErrorKey] = SubmissionFailedMessage
		c.mu.Unlock()
		return Result{}, &SubmissionError{Err: err}
	}

	c.logger.Info("Form submitted",
		zap.String("form", c.model.Name),
		zap.Int64("id", res.ID))

	c.Reset()
	if c.onSuccess != nil {
		c.onSuccess(res)
	}
	return res, nil
}

// Reset discards every edit and error and returns the form to create-mode
// defaults.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeCreate
	c.record = nil
	c.values = Init(c.model, ModeCreate, nil, c.now())
	c.errors = make(ErrorMap)
}

func (c *Controller) editable(name string) (Field, error) {
	f, ok := c.model.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if f.Derived {
		return Field{}, fmt.Errorf("%w: %s", ErrDerivedField, name)
	}
	return f, nil
}

func (c *Controller) list(name string) (Field, error) {
	f, err := c.editable(name)
	if err != nil {
		return Field{}, err
	}
	if !f.Kind.IsList() {
		return Field{}, fmt.Errorf("%w: %s", ErrNotAList, name)
	}
	return f, nil
}

// IsUserError reports whether err was caused by the caller's input rather
// than by the engine or the submit collaborator.
func IsUserError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrDerivedField) ||
		errors.Is(err, ErrNotAList) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrLastRow) ||
		errors.Is(err, ErrInvalidValue)
}
