package form

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSubmitter records calls and optionally blocks until released.
type mockSubmitter struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	got     []Values
}

func (m *mockSubmitter) Submit(ctx context.Context, values Values) (Result, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.got = append(m.got, values)
	m.mu.Unlock()
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return Result{}, m.err
	}
	return Result{ID: 7}, nil
}

func newTestController(s Submitter, opts ...Option) *Controller {
	opts = append([]Option{WithClock(clock), WithLogger(zap.NewNop())}, opts...)
	return NewController(testInvoiceModel(), s, opts...)
}

func fillValidInvoice(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SetField("customer", "CUST-001"))
	require.NoError(t, c.SetListItem("items", 0, map[string]any{"description": "Guard shift", "quantity": "2", "unit_price": 1000.0}))
	_, err := c.AddListItem("items")
	require.NoError(t, err)
	require.NoError(t, c.SetListItem("items", 1, map[string]any{"description": "Patrol", "quantity": 1.0, "unit_price": "500"}))
}

func TestController_SetField(t *testing.T) {
	t.Run("recomputes dependent fields", func(t *testing.T) {
		c := newTestController(&mockSubmitter{})
		require.NoError(t, c.SetField("issue_date", "2024-01-15"))
		assert.Equal(t, "2024-02-14", c.Values()["due_date"])

		require.NoError(t, c.SetField("payment_terms", "7"))
		assert.Equal(t, "2024-01-22", c.Values()["due_date"])
	})

	t.Run("clears the field error before revalidation", func(t *testing.T) {
		c := newTestController(&mockSubmitter{})
		errs := c.Validate()
		require.Contains(t, errs, "customer")

		require.NoError(t, c.SetField("customer", ""))
		assert.NotContains(t, c.Errors(), "customer")
		assert.Contains(t, c.Errors(), "items")
	})

	t.Run("rejects derived and unknown fields", func(t *testing.T) {
		c := newTestController(&mockSubmitter{})
		assert.ErrorIs(t, c.SetField("total", 10), ErrDerivedField)
		assert.ErrorIs(t, c.SetField("nope", 10), ErrUnknownField)
		assert.ErrorIs(t, c.SetField("customer", map[string]any{}), ErrInvalidValue)
	})

	t.Run("strips control characters from text", func(t *testing.T) {
		c := newTestController(&mockSubmitter{})
		require.NoError(t, c.SetField("customer", "ACME\x00 Ltd"))
		assert.Equal(t, "ACME Ltd", c.Values()["customer"])
	})
}

func TestController_ListItems(t *testing.T) {
	c := newTestController(&mockSubmitter{})
	fillValidInvoice(t, c)

	v := c.Values()
	items := v.Items("items")
	require.Len(t, items, 2)
	assert.Equal(t, 2000.0, items[0].Amount)
	assert.Equal(t, 500.0, items[1].Amount)
	assert.Equal(t, "2", items[1].ID)
	assert.InDelta(t, 2500, v.Number("subtotal"), 1e-9)
	assert.InDelta(t, 450, v.Number("tax"), 1e-9)
	assert.InDelta(t, 2950, v.Number("total"), 1e-9)

	t.Run("partial update keeps other keys", func(t *testing.T) {
		require.NoError(t, c.SetListItem("items", 0, map[string]any{"quantity": 3.0}))
		item := c.Values().Items("items")[0]
		assert.Equal(t, "Guard shift", item.Description)
		assert.Equal(t, 3000.0, item.Amount)
		assert.InDelta(t, 3500, c.Values().Number("subtotal"), 1e-9)
	})

	t.Run("client supplied amount is ignored", func(t *testing.T) {
		require.NoError(t, c.SetListItem("items", 1, map[string]any{"amount": 1.0}))
		assert.Equal(t, 500.0, c.Values().Items("items")[1].Amount)
	})

	t.Run("remove recomputes totals and keeps ids unique", func(t *testing.T) {
		require.NoError(t, c.RemoveListItem("items", 0))
		v := c.Values()
		assert.InDelta(t, 590, v.Number("total"), 1e-9)

		idx, err := c.AddListItem("items")
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Equal(t, "3", c.Values().Items("items")[1].ID)
	})

	t.Run("bounds and kinds", func(t *testing.T) {
		assert.ErrorIs(t, c.SetListItem("items", 9, map[string]any{}), ErrIndexOutOfRange)
		assert.ErrorIs(t, c.RemoveListItem("items", -1), ErrIndexOutOfRange)
		assert.ErrorIs(t, c.SetListItem("customer", 0, "x"), ErrNotAList)
		_, err := c.AddListItem("subtotal")
		assert.ErrorIs(t, err, ErrDerivedField)
	})

	t.Run("last line item cannot be removed", func(t *testing.T) {
		require.NoError(t, c.RemoveListItem("items", 1))
		assert.ErrorIs(t, c.RemoveListItem("items", 0), ErrLastRow)
	})

	t.Run("text lists", func(t *testing.T) {
		idx, err := c.AddListItem("tags")
		require.NoError(t, err)
		require.NoError(t, c.SetListItem("tags", idx, "priority"))
		_, err = c.AddListItem("tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"priority", ""}, c.Values().List("tags"))

		require.NoError(t, c.RemoveListItem("tags", 1))
		require.NoError(t, c.RemoveListItem("tags", 0))
		assert.Empty(t, c.Values().List("tags"))
		assert.NotNil(t, c.Values().List("tags"))
	})

	t.Run("fractional amounts add up to the subtotal", func(t *testing.T) {
		require.NoError(t, c.SetListItem("items", 0, map[string]any{"quantity": 3, "unit_price": 0.1}))
		_, err := c.AddListItem("items")
		require.NoError(t, err)
		require.NoError(t, c.SetListItem("items", 1, map[string]any{"description": "Radio", "quantity": 7, "unit_price": 0.15}))

		v := c.Values()
		sum := 0.0
		for _, item := range v.Items("items") {
			sum += item.Amount
		}
		assert.Equal(t, 0.3, v.Items("items")[0].Amount)
		assert.Equal(t, 1.05, v.Items("items")[1].Amount)
		assert.Equal(t, 1.35, v.Number("subtotal"))
		assert.InDelta(t, sum, v.Number("subtotal"), 1e-12)
	})
}

func TestController_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid values never reach the submitter", func(t *testing.T) {
		s := &mockSubmitter{}
		c := newTestController(s)

		_, err := c.Submit(ctx)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "customer")
		assert.Contains(t, verr.Errors, "items")
		assert.Equal(t, verr.Errors, c.Errors())
		assert.Equal(t, int32(0), s.calls.Load())
	})

	t.Run("success submits computed values and resets", func(t *testing.T) {
		s := &mockSubmitter{}
		var got Result
		c := newTestController(s, WithOnSuccess(func(r Result) { got = r }))
		fillValidInvoice(t, c)

		res, err := c.Submit(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(7), res.ID)
		assert.Equal(t, res, got)
		require.Len(t, s.got, 1)
		assert.InDelta(t, 2950, s.got[0].Number("total"), 1e-9)
		assert.Equal(t, "2024-03-31", s.got[0]["due_date"])

		v := c.Values()
		assert.Equal(t, "", v["customer"])
		assert.Equal(t, []entity.LineItem{{ID: "1"}}, v["items"])
		assert.Empty(t, c.Errors())
	})

	t.Run("failure keeps values and reports a generic error", func(t *testing.T) {
		cause := errors.New("database is locked")
		s := &mockSubmitter{err: cause}
		c := newTestController(s)
		fillValidInvoice(t, c)

		_, err := c.Submit(ctx)

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, SubmissionFailedMessage, err.Error())
		assert.Equal(t, SubmissionFailedMessage, c.Errors()[FormErrorKey])
		assert.Equal(t, "CUST-001", c.Values()["customer"])

		s.err = nil
		_, err = c.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(2), s.calls.Load())
	})

	t.Run("second submit while one is in flight is rejected", func(t *testing.T) {
		s := &mockSubmitter{started: make(chan struct{}), release: make(chan struct{})}
		c := newTestController(s)
		fillValidInvoice(t, c)

		done := make(chan error, 1)
		go func() {
			_, err := c.Submit(ctx)
			done <- err
		}()
		<-s.started

		assert.True(t, c.Submitting())
		_, err := c.Submit(ctx)
		assert.ErrorIs(t, err, ErrSubmitInFlight)

		// edits are still accepted while the first submit runs
		assert.NoError(t, c.SetField("customer", "CUST-009"))

		close(s.release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), s.calls.Load())
		assert.False(t, c.Submitting())
	})

	t.Run("loading lookups block submission", func(t *testing.T) {
		s := &mockSubmitter{}
		c := newTestController(s)
		fillValidInvoice(t, c)
		require.NoError(t, c.SetLookup("customer", Lookup{Loading: true}))

		_, err := c.Submit(ctx)
		assert.ErrorIs(t, err, ErrLookupLoading)

		require.NoError(t, c.SetLookup("customer", Lookup{Items: []Choice{{Value: "CUST-001", Label: "Kigali Bank"}}}))
		_, err = c.Submit(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), s.calls.Load())
	})
}

func TestController_EditMode(t *testing.T) {
	c := newTestController(&mockSubmitter{}, WithRecord(map[string]any{
		"customer":   "CUST-001",
		"issue_date": "2024-01-15",
		"items":      []any{map[string]any{"description": "Guard shift", "quantity": 1.0, "unit_price": 1000.0}},
	}))

	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "CUST-001", c.Values()["customer"])
	assert.InDelta(t, 1180, c.Values().Number("total"), 1e-9)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, "", c.Values()["customer"])
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(&ValidationError{Errors: ErrorMap{"a": "b"}}))
	assert.True(t, IsUserError(ErrDerivedField))
	assert.False(t, IsUserError(&SubmissionError{Err: errors.New("boom")}))
	assert.False(t, IsUserError(ErrSubmitInFlight))
}
