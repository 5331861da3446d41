package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/erp-forms/internal/application/service"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/export"
	"github.com/garyjia/erp-forms/internal/form"
	"github.com/garyjia/erp-forms/internal/forms"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/repository"
	"github.com/garyjia/erp-forms/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/erp-forms/internal/money"
	"github.com/garyjia/erp-forms/migrations"
	"github.com/garyjia/erp-forms/pkg/database"
	"github.com/garyjia/erp-forms/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type draftBody struct {
	ID       string            `json:"id"`
	Form     string            `json:"form"`
	Mode     string            `json:"mode"`
	RecordID int64             `json:"record_id"`
	Values   map[string]any    `json:"values"`
	Errors   map[string]string `json:"errors"`
	Lookups  form.Lookups      `json:"lookups"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	zlog := zap.NewNop()
	logger := utils.NewKVLogger(zlog)

	db, err := database.New(ctx, database.Config{Path: database.MemoryPath}, zlog)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrator(db, zlog).Run(ctx, migrations.FS))

	formSvc := service.NewFormService(
		forms.NewRegistry(forms.DefaultSettings()),
		repository.NewRecordRepository(db.DB, zlog),
		sqlite.NewTxManager(db),
		logger,
	)
	refSvc := service.NewReferenceService(repository.NewReferenceRepository(db.DB, zlog), logger)

	server := NewServer(ServerConfig{Mode: gin.TestMode}, Services{
		Database:   db,
		Forms:      formSvc,
		Drafts:     service.NewDraftService(formSvc, refSvc, 0, zlog),
		References: refSvc,
		Exporter:   export.NewInvoiceExporter(t.TempDir(), money.MustFormatter(money.DefaultCode, money.DefaultLocale), zlog),
	}, logger)
	return server.Router()
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func openDraft(t *testing.T, router *gin.Engine, req OpenDraftRequest) draftBody {
	t.Helper()
	w, env := do(t, router, http.MethodPost, "/api/drafts", req)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	return decode[draftBody](t, env.Data)
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)

	w, env := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	health := decode[HealthResponse](t, env.Data)
	assert.Equal(t, "healthy", health.Status)
	assert.Zero(t, health.Drafts)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return fmt.Errorf("database is closed") }

func TestHealthCheck_DatabaseDown(t *testing.T) {
	server := NewServer(ServerConfig{Mode: gin.TestMode}, Services{Database: downPinger{}}, utils.NewKVLogger(zap.NewNop()))

	w, env := do(t, server.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, env.Data).Status)
}

func TestFormCatalogue(t *testing.T) {
	router := setupRouter(t)

	t.Run("list", func(t *testing.T) {
		w, env := do(t, router, http.MethodGet, "/api/forms", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]FormSummary](t, env.Data)
		assert.Len(t, list, 7)
	})

	t.Run("schema with defaults", func(t *testing.T) {
		w, env := do(t, router, http.MethodGet, "/api/forms/leave", nil)
		require.Equal(t, http.StatusOK, w.Code)

		schema := decode[struct {
			Name     string         `json:"name"`
			Fields   []form.Field   `json:"fields"`
			Defaults map[string]any `json:"defaults"`
		}](t, env.Data)
		assert.Equal(t, entity.FormLeave, schema.Name)
		assert.NotEmpty(t, schema.Fields)
		assert.Equal(t, "annual", schema.Defaults[forms.LeaveType])
	})

	t.Run("unknown form", func(t *testing.T) {
		w, env := do(t, router, http.MethodGet, "/api/forms/budget", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, env.Success)
		assert.Contains(t, env.Error, "budget")
	})
}

func TestComputeAndValidate(t *testing.T) {
	router := setupRouter(t)
	values := map[string]any{
		forms.InvoiceCustomer:  "CUST-001",
		forms.InvoiceIssueDate: "2024-03-01",
		forms.InvoiceItems: []map[string]any{
			{"description": "Guard shift", "quantity": 2, "unit_price": 1000},
			{"description": "Patrol", "quantity": 1, "unit_price": 500},
		},
	}

	t.Run("compute fills derived fields", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, "/api/forms/invoice/compute", ValuesRequest{Values: values})
		require.Equal(t, http.StatusOK, w.Code, env.Error)

		got := decode[map[string]any](t, env.Data)
		assert.InDelta(t, 2500, got[forms.InvoiceSubtotal], 1e-9)
		assert.InDelta(t, 450, got[forms.InvoiceTax], 1e-9)
		assert.InDelta(t, 2950, got[forms.InvoiceTotal], 1e-9)
		assert.Equal(t, "2024-03-31", got[forms.InvoiceDueDate])
	})

	t.Run("compute rejects unknown field", func(t *testing.T) {
		w, _ := do(t, router, http.MethodPost, "/api/forms/invoice/compute", ValuesRequest{Values: map[string]any{"bogus": 1}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validate checks lookups", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, "/api/forms/invoice/validate", ValuesRequest{Values: values})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[ValidateResponse](t, env.Data).Valid)

		bad := map[string]any{}
		for k, v := range values {
			bad[k] = v
		}
		bad[forms.InvoiceCustomer] = "CUST-999"
		w, env = do(t, router, http.MethodPost, "/api/forms/invoice/validate", ValuesRequest{Values: bad})
		require.Equal(t, http.StatusOK, w.Code)

		res := decode[ValidateResponse](t, env.Data)
		assert.False(t, res.Valid)
		assert.Equal(t, form.ErrorMap{forms.InvoiceCustomer: "Customer is not a valid choice"}, res.Errors)
	})
}

func TestDraftLifecycle(t *testing.T) {
	router := setupRouter(t)

	draft := openDraft(t, router, OpenDraftRequest{Form: entity.FormInvoice})
	assert.Equal(t, string(form.ModeCreate), draft.Mode)
	assert.False(t, draft.Lookups[forms.InvoiceCustomer].Loading)
	assert.NotEmpty(t, draft.Lookups[forms.InvoiceCustomer].Items)
	base := "/api/drafts/" + draft.ID

	t.Run("invalid submit reports field errors", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, base+"/submit", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		res := decode[SubmitResponse](t, env.Data)
		assert.Contains(t, res.Errors, forms.InvoiceCustomer)
		assert.Contains(t, res.Errors, forms.InvoiceItems)
	})

	t.Run("edit fields and rows", func(t *testing.T) {
		w, env := do(t, router, http.MethodPut, base+"/fields/"+forms.InvoiceCustomer, ValueRequest{Value: "CUST-001"})
		require.Equal(t, http.StatusOK, w.Code, env.Error)
		assert.NotContains(t, decode[draftBody](t, env.Data).Errors, forms.InvoiceCustomer)

		w, env = do(t, router, http.MethodPut, base+"/lists/items/0", ValueRequest{Value: map[string]any{
			"description": "Guard shift", "quantity": 2, "unit_price": 1000,
		}})
		require.Equal(t, http.StatusOK, w.Code, env.Error)

		w, env = do(t, router, http.MethodPost, base+"/lists/items", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, decode[ListItemResponse](t, env.Data).Index)

		w, env = do(t, router, http.MethodDelete, base+"/lists/items/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.InDelta(t, 2360, decode[draftBody](t, env.Data).Values[forms.InvoiceTotal], 1e-9)
	})

	t.Run("row errors", func(t *testing.T) {
		w, _ := do(t, router, http.MethodDelete, base+"/lists/items/0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = do(t, router, http.MethodDelete, base+"/lists/items/x", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = do(t, router, http.MethodPut, base+"/fields/"+forms.InvoiceTotal, ValueRequest{Value: 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var recordID int64
	t.Run("submit persists and resets", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, base+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code, env.Error)

		res := decode[SubmitResponse](t, env.Data)
		require.NotNil(t, res.Result)
		recordID = res.Result.ID
		assert.Positive(t, recordID)
		assert.Equal(t, "", res.Draft.Values[forms.InvoiceCustomer])
	})

	t.Run("records", func(t *testing.T) {
		w, env := do(t, router, http.MethodGet, "/api/records/invoice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[RecordListResponse](t, env.Data)
		require.Equal(t, 1, list.Total)
		assert.InDelta(t, 2360, list.Records[0].Amount, 1e-9)

		w, env = do(t, router, http.MethodGet, fmt.Sprintf("/api/records/invoice/%d", recordID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "CUST-001", decode[RecordResponse](t, env.Data).Values[forms.InvoiceCustomer])

		w, _ = do(t, router, http.MethodGet, fmt.Sprintf("/api/records/leave/%d", recordID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = do(t, router, http.MethodGet, "/api/records/invoice/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("export", func(t *testing.T) {
		w, _ := do(t, router, http.MethodGet, fmt.Sprintf("/api/records/invoice/%d/export", recordID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("invoice-%d.xlsx", recordID))
		assert.NotZero(t, w.Body.Len())

		w, _ = do(t, router, http.MethodGet, "/api/records/invoice/9999/export", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = do(t, router, http.MethodGet, fmt.Sprintf("/api/records/leave/%d/export", recordID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("edit mode draft", func(t *testing.T) {
		edit := openDraft(t, router, OpenDraftRequest{Form: entity.FormInvoice, RecordID: recordID})
		assert.Equal(t, string(form.ModeEdit), edit.Mode)
		assert.Equal(t, recordID, edit.RecordID)
		assert.Equal(t, "CUST-001", edit.Values[forms.InvoiceCustomer])

		w, env := do(t, router, http.MethodPost, "/api/drafts/"+edit.ID+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code, env.Error)
		assert.Equal(t, recordID, decode[SubmitResponse](t, env.Data).Result.ID)
	})

	t.Run("discard", func(t *testing.T) {
		w, _ := do(t, router, http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, env := do(t, router, http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, env.Error, "draft not found")
	})
}

func TestOpenDraftErrors(t *testing.T) {
	router := setupRouter(t)

	w, _ := do(t, router, http.MethodPost, "/api/drafts", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/drafts", OpenDraftRequest{Form: "budget"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/drafts", OpenDraftRequest{Form: entity.FormLeave, RecordID: 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReferences(t *testing.T) {
	router := setupRouter(t)

	w, env := do(t, router, http.MethodGet, "/api/references", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[[]string](t, env.Data), entity.RefCustomers)

	w, env = do(t, router, http.MethodGet, "/api/references/customers?q=Heights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[form.Lookup](t, env.Data)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "CUST-002", l.Items[0].Value)
	assert.False(t, l.Loading)

	w, _ = do(t, router, http.MethodGet, "/api/references/vendors", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown form", forms.ErrUnknownForm, http.StatusNotFound},
		{"draft", fmt.Errorf("wrap: %w", service.ErrDraftNotFound), http.StatusNotFound},
		{"validation", &form.ValidationError{Errors: form.ErrorMap{"a": "b"}}, http.StatusUnprocessableEntity},
		{"in flight", form.ErrSubmitInFlight, http.StatusConflict},
		{"loading", form.ErrLookupLoading, http.StatusConflict},
		{"last row", form.ErrLastRow, http.StatusBadRequest},
		{"submission", &form.SubmissionError{Err: fmt.Errorf("disk full")}, http.StatusInternalServerError},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestMetricsRecordRouteTemplate(t *testing.T) {
	router := setupRouter(t)

	w, _ := do(t, router, http.MethodGet, "/api/drafts/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `erp_http_request_duration_seconds_count{method="GET",route="/api/drafts/:id",status="404"}`)
	assert.NotContains(t, body, `route="/api/drafts/missing"`)
}
