package http

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/donkihote1489/site-cost-manager/internal/auth"
	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
	domain "github.com/donkihote1489/site-cost-manager/internal/domain/workflow"
	"github.com/donkihote1489/site-cost-manager/internal/report"
	"github.com/donkihote1489/site-cost-manager/internal/workflow"
)

const (
	authHeader    = "X-Auth-Token"
	ctxDepartment = "department"
)

// ProcedureEngine is the engine surface the handlers consume.
type ProcedureEngine interface {
	CurrentStep(ctx context.Context, key entity.InstanceKey) (*workflow.CurrentState, error)
	IsAuthorized(record *entity.StepRecord, department string) bool
	SetStatus(ctx context.Context, key entity.InstanceKey, stepNo int, status, department string) error
	RecordAmount(ctx context.Context, key entity.InstanceKey, stepNo int, field string, amount int64, department string) error
	Advance(ctx context.Context, key entity.InstanceKey, stepNo int) (*workflow.Advanced, error)
}

// ReportStore is the aggregation/cleanup surface the handlers consume.
type ReportStore interface {
	Aggregate(ctx context.Context) ([]*entity.PeriodSummary, error)
	DeletePeriod(ctx context.Context, site, year, month string) error
}

// Identity resolves credentials and session tokens to departments.
type Identity interface {
	Login(username, password string) (*auth.Session, error)
	CurrentDepartment(token string) (string, bool)
	Logout(token string)
}

// Handlers contains all HTTP request handlers.
type Handlers struct {
	engine   ProcedureEngine
	store    ReportStore
	identity Identity
	exporter *report.Exporter
	logger   *zap.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(engine ProcedureEngine, store ReportStore, identity Identity, exporter *report.Exporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		store:    store,
		identity: identity,
		exporter: exporter,
		logger:   logger,
	}
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StepResponse is one step record in API responses.
type StepResponse struct {
	Site            string `json:"site"`
	Year            string `json:"year"`
	Month           string `json:"month"`
	CostType        string `json:"cost_type"`
	StepNo          int    `json:"step_no"`
	Task            string `json:"task"`
	Department      string `json:"department"`
	Status          string `json:"status"`
	ProgressPayment *int64 `json:"progress_payment,omitempty"`
	LaborCost       *int64 `json:"labor_cost,omitempty"`
	InputCost       *int64 `json:"input_cost,omitempty"`
}

func stepResponse(rec *entity.StepRecord) *StepResponse {
	if rec == nil {
		return nil
	}
	resp := &StepResponse{
		Site:       rec.Site,
		Year:       rec.Year,
		Month:      rec.Month,
		CostType:   rec.CostType,
		StepNo:     rec.StepNo,
		Task:       rec.Task,
		Department: rec.Department,
		Status:     rec.Status,
	}
	if rec.ProgressPayment.Valid {
		resp.ProgressPayment = &rec.ProgressPayment.Int64
	}
	if rec.LaborCost.Valid {
		resp.LaborCost = &rec.LaborCost.Int64
	}
	if rec.InputCost.Valid {
		resp.InputCost = &rec.InputCost.Int64
	}
	return resp
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "username and password are required"})
		return
	}

	session, err := h.identity.Login(req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrTooManyAttempts) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, Response{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"token":      session.Token,
		"department": session.Department,
	}})
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handlers) Logout(c *gin.Context) {
	if token := c.GetHeader(authHeader); token != "" {
		h.identity.Logout(token)
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// RequireSession resolves the session token into the acting department.
// Without a valid session no operation is authorized.
func (h *Handlers) RequireSession(c *gin.Context) {
	dept, ok := h.identity.CurrentDepartment(c.GetHeader(authHeader))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Error: "login required"})
		return
	}
	c.Set(ctxDepartment, dept)
	c.Next()
}

func (h *Handlers) department(c *gin.Context) string {
	return c.GetString(ctxDepartment)
}

func instanceKeyFromQuery(c *gin.Context) entity.InstanceKey {
	return entity.NewInstanceKey(
		c.Query("site"),
		c.Query("year"),
		c.Query("month"),
		c.Query("cost_type"),
	)
}

// instanceRequest is the shared body of the mutating procedure endpoints.
type instanceRequest struct {
	Site     string `json:"site" binding:"required"`
	Year     string `json:"year" binding:"required"`
	Month    string `json:"month" binding:"required"`
	CostType string `json:"cost_type" binding:"required"`
	StepNo   int    `json:"step_no" binding:"required"`
}

func (r *instanceRequest) key() entity.InstanceKey {
	return entity.NewInstanceKey(r.Site, r.Year, r.Month, r.CostType)
}

// CurrentStep handles GET /api/v1/procedures/current. It lazily initializes
// the instance and reports the actionable step with the caller's
// authorization flag.
func (h *Handlers) CurrentStep(c *gin.Context) {
	key := instanceKeyFromQuery(c)
	if key.Site == "" || key.Year == "" || key.Month == "" || key.CostType == "" {
		c.JSON(http.StatusBadRequest, Response{Error: "site, year, month and cost_type are required"})
		return
	}

	state, err := h.engine.CurrentStep(c.Request.Context(), key)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"completed":   state.Completed,
		"total_steps": state.TotalSteps,
		"step":        stepResponse(state.Record),
		"authorized":  h.engine.IsAuthorized(state.Record, h.department(c)),
	}})
}

// SetStatus handles PUT /api/v1/procedures/status.
func (h *Handlers) SetStatus(c *gin.Context) {
	var req struct {
		instanceRequest
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	if err := h.engine.SetStatus(c.Request.Context(), req.key(), req.StepNo, req.Status, h.department(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// RecordAmount handles PUT /api/v1/procedures/amount.
func (h *Handlers) RecordAmount(c *gin.Context) {
	var req struct {
		instanceRequest
		Field  string `json:"field" binding:"required"`
		Amount *int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	if err := h.engine.RecordAmount(c.Request.Context(), req.key(), req.StepNo, req.Field, *req.Amount, h.department(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// Advance handles POST /api/v1/procedures/advance.
func (h *Handlers) Advance(c *gin.Context) {
	var req instanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	advanced, err := h.engine.Advance(c.Request.Context(), req.key(), req.StepNo)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"completed": advanced.Completed,
		"next":      stepResponse(advanced.Next),
	}})
}

// Summary handles GET /api/v1/reports/summary.
func (h *Handlers) Summary(c *gin.Context) {
	summaries, err := h.store.Aggregate(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	rows := report.BuildRows(summaries)
	if site := c.Query("site"); site != "" {
		rows = report.FilterSite(rows, site)
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rows})
}

// ExportSummary handles GET /api/v1/reports/summary/export and streams the
// generated workbook.
func (h *Handlers) ExportSummary(c *gin.Context) {
	summaries, err := h.store.Aggregate(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	path, err := h.exporter.Export(report.BuildRows(summaries))
	if err != nil {
		h.logger.Error("Failed to export summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to export summary"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// DeletePeriod handles DELETE /api/v1/reports/:site/:year/:month. Admin
// only: removing a period erases every procedure instance in it.
func (h *Handlers) DeletePeriod(c *gin.Context) {
	if h.department(c) != entity.RoleAdmin {
		c.JSON(http.StatusForbidden, Response{Error: "administrative role required"})
		return
	}

	if err := h.store.DeletePeriod(c.Request.Context(),
		c.Param("site"), c.Param("year"), c.Param("month")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// renderError maps typed engine rejections to status codes. Every message
// already names the failed precondition, so it is passed through verbatim.
func (h *Handlers) renderError(c *gin.Context, err error) {
	var (
		storageErr   *domain.StorageError
		unauthorized *domain.UnauthorizedError
		notFound     *domain.StepNotFoundError
		premature    *domain.PrematureAdvanceError
		missing      *domain.MissingAmountError
		finalized    *domain.StepFinalizedError
		notYet       *domain.StepNotActionableError
		badField     *domain.InvalidFieldError
		badAmount    *domain.InvalidAmountError
		badStatus    *domain.InvalidStatusError
	)

	switch {
	case errors.As(err, &storageErr):
		h.logger.Error("Storage failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "storage unavailable, try again later"})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusForbidden, Response{Error: err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
	case errors.As(err, &premature),
		errors.As(err, &missing),
		errors.As(err, &finalized),
		errors.As(err, &notYet):
		c.JSON(http.StatusConflict, Response{Error: err.Error()})
	case errors.As(err, &badField),
		errors.As(err, &badAmount),
		errors.As(err, &badStatus),
		errors.Is(err, domain.ErrUnknownCostType):
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "internal error"})
	}
}
