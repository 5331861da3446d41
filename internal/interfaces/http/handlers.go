package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/erp-forms/internal/application/service"
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/export"
	"github.com/garyjia/erp-forms/internal/form"
	"github.com/garyjia/erp-forms/internal/forms"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
		now:      time.Now,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Drafts    int    `json:"drafts"`
}

// FormSummary is one entry of the form catalogue
type FormSummary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// FormSchema describes one form: its fields and create-mode defaults
type FormSchema struct {
	Name     string       `json:"name"`
	Title    string       `json:"title"`
	Fields   []form.Field `json:"fields"`
	Defaults form.Values  `json:"defaults"`
}

// ValuesRequest carries raw form values
type ValuesRequest struct {
	Values map[string]any `json:"values"`
}

// ValidateResponse is the result of a stateless validation
type ValidateResponse struct {
	Valid  bool          `json:"valid"`
	Values form.Values   `json:"values"`
	Errors form.ErrorMap `json:"errors"`
}

// OpenDraftRequest starts a draft; a record_id opens it in edit mode
type OpenDraftRequest struct {
	Form     string `json:"form" binding:"required"`
	RecordID int64  `json:"record_id"`
}

// ValueRequest carries one field or row value
type ValueRequest struct {
	Value any `json:"value"`
}

// ListItemResponse is returned after a row is appended
type ListItemResponse struct {
	Index int                `json:"index"`
	Draft *service.DraftView `json:"draft"`
}

// SubmitResponse is returned by a draft submission
type SubmitResponse struct {
	Result *form.Result       `json:"result,omitempty"`
	Errors form.ErrorMap      `json:"errors,omitempty"`
	Draft  *service.DraftView `json:"draft,omitempty"`
}

// RecordResponse represents a stored record in API responses
type RecordResponse struct {
	ID        int64          `json:"id"`
	Form      string         `json:"form"`
	Status    string         `json:"status"`
	Summary   string         `json:"summary"`
	Amount    float64        `json:"amount"`
	Values    map[string]any `json:"values"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// RecordListResponse is a page of records
type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}

// ListRecordsRequest represents query parameters for listing records
type ListRecordsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}
	if h.services.Drafts != nil {
		response.Drafts = h.services.Drafts.Count()
	}

	status := http.StatusOK
	if h.services.Database != nil {
		if err := h.services.Database.Ping(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// ListForms handles GET /api/forms
func (h *Handlers) ListForms(c *gin.Context) {
	models := h.services.Forms.Models()
	out := make([]FormSummary, 0, len(models))
	for _, m := range models {
		out = append(out, FormSummary{Name: m.Name, Title: m.Title})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// GetForm handles GET /api/forms/:form
func (h *Handlers) GetForm(c *gin.Context) {
	m, err := h.services.Forms.Model(c.Param("form"))
	if err != nil {
		h.fail(c, err, "failed to load form")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: FormSchema{
			Name:     m.Name,
			Title:    m.Title,
			Fields:   m.Fields,
			Defaults: form.Init(m, form.ModeCreate, nil, h.now()),
		},
	})
}

// ComputeForm handles POST /api/forms/:form/compute
func (h *Handlers) ComputeForm(c *gin.Context) {
	var req ValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	values, err := h.services.Forms.Compute(c.Param("form"), req.Values)
	if err != nil {
		h.fail(c, err, "failed to compute form")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: values})
}

// ValidateForm handles POST /api/forms/:form/validate
func (h *Handlers) ValidateForm(c *gin.Context) {
	var req ValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	name := c.Param("form")
	m, err := h.services.Forms.Model(name)
	if err != nil {
		h.fail(c, err, "failed to load form")
		return
	}
	lookups, err := h.lookups(c, m)
	if err != nil {
		h.fail(c, err, "failed to load reference data")
		return
	}

	values, errs, err := h.services.Forms.Validate(name, req.Values, lookups)
	if err != nil {
		h.fail(c, err, "failed to validate form")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ValidateResponse{
			Valid:  len(errs) == 0,
			Values: values,
			Errors: errs,
		},
	})
}

// lookups fetches the reference data of every select field of m.
func (h *Handlers) lookups(c *gin.Context, m *form.Model) (form.Lookups, error) {
	out := make(form.Lookups)
	for _, f := range m.Fields {
		if f.Lookup == "" {
			continue
		}
		l, err := h.services.References.Lookup(c.Request.Context(), f.Lookup, "")
		if err != nil {
			return nil, err
		}
		out[f.Name] = l
	}
	return out, nil
}

// OpenDraft handles POST /api/drafts
func (h *Handlers) OpenDraft(c *gin.Context) {
	var req OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if req.RecordID < 0 {
		h.badRequest(c, "invalid record ID", fmt.Errorf("negative record id %d", req.RecordID))
		return
	}

	view, err := h.services.Drafts.Open(c.Request.Context(), req.Form, req.RecordID)
	if err != nil {
		h.fail(c, err, "failed to open draft")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: view})
}

// GetDraft handles GET /api/drafts/:id
func (h *Handlers) GetDraft(c *gin.Context) {
	view, err := h.services.Drafts.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load draft")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// DiscardDraft handles DELETE /api/drafts/:id
func (h *Handlers) DiscardDraft(c *gin.Context) {
	if err := h.services.Drafts.Discard(c.Param("id")); err != nil {
		h.fail(c, err, "failed to discard draft")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// SetDraftField handles PUT /api/drafts/:id/fields/:field
func (h *Handlers) SetDraftField(c *gin.Context) {
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	view, err := h.services.Drafts.SetField(c.Param("id"), c.Param("field"), req.Value)
	if err != nil {
		h.fail(c, err, "failed to update field")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// AddDraftListItem handles POST /api/drafts/:id/lists/:field
func (h *Handlers) AddDraftListItem(c *gin.Context) {
	view, index, err := h.services.Drafts.AddListItem(c.Param("id"), c.Param("field"))
	if err != nil {
		h.fail(c, err, "failed to add row")
		return
	}
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    ListItemResponse{Index: index, Draft: view},
	})
}

// SetDraftListItem handles PUT /api/drafts/:id/lists/:field/:index
func (h *Handlers) SetDraftListItem(c *gin.Context) {
	index, ok := h.index(c)
	if !ok {
		return
	}
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	view, err := h.services.Drafts.SetListItem(c.Param("id"), c.Param("field"), index, req.Value)
	if err != nil {
		h.fail(c, err, "failed to update row")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RemoveDraftListItem handles DELETE /api/drafts/:id/lists/:field/:index
func (h *Handlers) RemoveDraftListItem(c *gin.Context) {
	index, ok := h.index(c)
	if !ok {
		return
	}

	view, err := h.services.Drafts.RemoveListItem(c.Param("id"), c.Param("field"), index)
	if err != nil {
		h.fail(c, err, "failed to remove row")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SubmitDraft handles POST /api/drafts/:id/submit
func (h *Handlers) SubmitDraft(c *gin.Context) {
	id := c.Param("id")
	res, view, err := h.services.Drafts.Submit(c.Request.Context(), id)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, Response{
				Success: false,
				Data:    SubmitResponse{Errors: verr.Errors, Draft: view},
				Error:   err.Error(),
			})
			return
		}
		h.fail(c, err, form.SubmissionFailedMessage)
		return
	}

	h.logger.Info("Draft submitted", "draft_id", id, "record_id", res.ID)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    SubmitResponse{Result: &res, Draft: view},
	})
}

// ListRecords handles GET /api/records/:form
func (h *Handlers) ListRecords(c *gin.Context) {
	var req ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	records, total, err := h.services.Forms.ListRecords(c.Request.Context(), c.Param("form"), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err, "failed to retrieve records")
		return
	}

	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		resp, err := h.toRecordResponse(r)
		if err != nil {
			h.fail(c, err, "failed to retrieve records")
			return
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    RecordListResponse{Records: out, Total: total},
	})
}

// GetRecord handles GET /api/records/:form/:id
func (h *Handlers) GetRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	record, err := h.services.Forms.GetRecord(c.Request.Context(), c.Param("form"), id)
	if err != nil {
		h.fail(c, err, "failed to retrieve record")
		return
	}
	resp, err := h.toRecordResponse(record)
	if err != nil {
		h.fail(c, err, "failed to retrieve record")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ExportInvoice handles GET /api/records/invoice/:id/export
func (h *Handlers) ExportInvoice(c *gin.Context) {
	if c.Param("form") != entity.FormInvoice {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "export is only available for invoices",
		})
		return
	}
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	inv, err := h.services.Forms.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load invoice")
		return
	}

	var buf bytes.Buffer
	if err := h.services.Exporter.Write(c.Request.Context(), inv, &buf); err != nil {
		h.fail(c, err, "failed to export invoice")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(inv)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListReferenceKinds handles GET /api/references
func (h *Handlers) ListReferenceKinds(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.services.References.Kinds()})
}

// GetReferences handles GET /api/references/:kind
func (h *Handlers) GetReferences(c *gin.Context) {
	l, err := h.services.References.Lookup(c.Request.Context(), c.Param("kind"), c.Query("q"))
	if err != nil {
		h.fail(c, err, "failed to retrieve reference data")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: l})
}

func (h *Handlers) index(c *gin.Context) (int, bool) {
	raw := c.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		h.badRequest(c, "invalid row index", err)
		return 0, false
	}
	return index, true
}

func (h *Handlers) recordID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid record ID", "id", raw, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid record ID",
		})
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error("Bad request", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// fail maps a service error onto a status code. Errors caused by the
// request carry their own message; anything else is logged and replaced by
// fallback.
func (h *Handlers) fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()

	var serr *form.SubmissionError
	switch {
	case errors.As(err, &serr):
		h.logger.Error("Submission failed", "path", c.Request.URL.Path, "error", serr.Err)
	case status == http.StatusInternalServerError:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		msg = fallback
	}

	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

func statusFor(err error) int {
	var verr *form.ValidationError
	switch {
	case errors.Is(err, forms.ErrUnknownForm),
		errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrUnknownReference):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrSubmitInFlight),
		errors.Is(err, form.ErrLookupLoading):
		return http.StatusConflict
	case form.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) toRecordResponse(r *entity.Record) (RecordResponse, error) {
	values, err := h.services.Forms.RecordValues(r)
	if err != nil {
		return RecordResponse{}, err
	}
	return RecordResponse{
		ID:        r.ID,
		Form:      r.FormName,
		Status:    r.Status,
		Summary:   r.Summary,
		Amount:    r.Amount,
		Values:    values,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}, nil
}
