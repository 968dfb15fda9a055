package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/fetch"
	"merchantdash/internal/hierarchy"
	"merchantdash/internal/repository"
	"merchantdash/internal/service"
	"merchantdash/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Handler struct {
	authService        *service.AuthService
	accountService     *service.AccountService
	transactionService *service.TransactionService
	summaryService     *service.SummaryService
	disputeService     *service.DisputeService
	fundingService     *service.FundingService
	hierarchyStore     *hierarchy.Store
	workspaces         *service.WorkspaceRegistry
	logger             *zap.Logger
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, hier *hierarchy.Store, workspaces *service.WorkspaceRegistry, logger *zap.Logger) *Handler {
	return &Handler{
		authService:        service.NewAuthService(db, rdb, cfg, hier, workspaces, logger),
		accountService:     service.NewAccountService(db, rdb, cfg, logger),
		transactionService: service.NewTransactionService(db, logger),
		summaryService:     service.NewSummaryService(db, cfg, logger),
		disputeService:     service.NewDisputeService(db, logger),
		fundingService:     service.NewFundingService(db, logger),
		hierarchyStore:     hier,
		workspaces:         workspaces,
		logger:             logger,
	}
}

// ============================================================
// Auth
// ============================================================

type LoginRequest struct {
	MerchantCode string `json:"merchant_code" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// Login opens a dashboard session.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.MerchantCode, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.BusinessError(c, response.CodeInvalidCredentials, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"token":         session.Token,
		"merchant_id":   session.MerchantID,
		"merchant_code": session.MerchantCode,
		"email":         session.Email,
		"can_refund":    session.CanRefund,
		"has_pre_auth":  session.HasPreAuth,
	})
}

// Logout closes the session and tears down its cached state.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	session := currentSession(c)
	if err := h.authService.Logout(c.Request.Context(), session.Token); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// ============================================================
// Merchant hierarchy
// ============================================================

// HierarchyChildren expands one node of the merchant tree.
// GET /api/v1/hierarchy/children?parent_id=xxx&force=true
func (h *Handler) HierarchyChildren(c *gin.Context) {
	parentID := c.Query("parent_id")
	if parentID == "" {
		response.ParamError(c, "parent_id is required")
		return
	}
	force := c.Query("force") == "true"

	session := currentSession(c)
	nodes, err := h.hierarchyStore.FetchChildren(c.Request.Context(), parentID, session.Token, force)
	if err != nil {
		response.BusinessError(c, response.CodeHierarchyFailed, err.Error())
		return
	}

	response.Success(c, gin.H{
		"parent_id":      parentID,
		"childrens_data": nodes,
	})
}

// ============================================================
// Transactions
// ============================================================

type TransactionSearchRequest struct {
	Status   string `json:"status"`
	Type     string `json:"type"`
	Gateway  string `json:"payment_gateway"`
	Currency string `json:"currency"`
	From     string `json:"from"`
	To       string `json:"to"`
	Page     *int   `json:"page"`
	PageSize *int   `json:"page_size"`
}

// SearchTransactions runs a search through the session's transaction slot, so
// a newer search from the same session supersedes one still in flight.
// POST /api/v1/transactions/search
func (h *Handler) SearchTransactions(c *gin.Context) {
	var req TransactionSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		response.ParamError(c, err.Error())
		return
	}

	session := currentSession(c)
	ws := h.workspaces.Get(session.Token)
	if req.PageSize != nil {
		ws.Transactions.SetPageSize(*req.PageSize)
	}
	if req.Page != nil {
		ws.Transactions.SetPage(*req.Page)
	}
	state := ws.Transactions.State()

	filter := repository.TransactionFilter{
		MerchantID: session.MerchantID,
		Status:     req.Status,
		Type:       req.Type,
		Gateway:    req.Gateway,
		Currency:   req.Currency,
		From:       from,
		To:         to,
	}

	if err := ws.Transactions.Fetch(c.Request.Context(), func(ctx context.Context) (*service.TransactionSearchResult, error) {
		return h.transactionService.Search(ctx, filter, state.Page, state.PageSize, session)
	}); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, ws.Transactions.State())
}

// GetTransaction returns one decorated transaction.
// GET /api/v1/transactions/:transaction_no
func (h *Handler) GetTransaction(c *gin.Context) {
	transactionNo := c.Param("transaction_no")
	session := currentSession(c)

	row, err := h.transactionService.Get(c.Request.Context(), transactionNo, session)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			response.Error(c, response.CodeNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, row)
}

// ============================================================
// Settlement summaries
// ============================================================

// DailySummary lists daily settlement rows for the session's merchant.
// GET /api/v1/summary/daily?currency=USD&from=2026-08-01&to=2026-08-31
func (h *Handler) DailySummary(c *gin.Context) {
	h.summaryList(c, func(ctx context.Context, merchantID, currency string, from, to time.Time) (*service.SummaryResult, error) {
		return h.summaryService.Daily(ctx, merchantID, currency, from, to)
	}, func(ws *service.Workspace) *fetch.Resource[service.SummaryResult] {
		return ws.DailySummary
	})
}

// MonthlySummary lists monthly settlement rows.
// GET /api/v1/summary/monthly?currency=USD&from=2026-01-01&to=2026-08-31
func (h *Handler) MonthlySummary(c *gin.Context) {
	h.summaryList(c, func(ctx context.Context, merchantID, currency string, from, to time.Time) (*service.SummaryResult, error) {
		return h.summaryService.Monthly(ctx, merchantID, currency, from, to)
	}, func(ws *service.Workspace) *fetch.Resource[service.SummaryResult] {
		return ws.MonthlySummary
	})
}

func (h *Handler) summaryList(
	c *gin.Context,
	load func(ctx context.Context, merchantID, currency string, from, to time.Time) (*service.SummaryResult, error),
	slot func(ws *service.Workspace) *fetch.Resource[service.SummaryResult],
) {
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.ParamError(c, err.Error())
		return
	}
	currency := c.Query("currency")

	session := currentSession(c)
	resource := slot(h.workspaces.Get(session.Token))

	if err := resource.Fetch(c.Request.Context(), func(ctx context.Context) (*service.SummaryResult, error) {
		return load(ctx, session.MerchantID, currency, from, to)
	}); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resource.State())
}

// ============================================================
// Disputes
// ============================================================

// ListDisputes pages the session merchant's disputes.
// GET /api/v1/disputes?status=OPEN&page=0&page_size=25
func (h *Handler) ListDisputes(c *gin.Context) {
	status := c.Query("status")
	session := currentSession(c)
	ws := h.workspaces.Get(session.Token)
	applyPaging(c, ws.Disputes.SetPage, ws.Disputes.SetPageSize)
	state := ws.Disputes.State()

	if err := ws.Disputes.Fetch(c.Request.Context(), func(ctx context.Context) (*service.DisputeListResult, error) {
		return h.disputeService.List(ctx, session.MerchantID, status, state.Page, state.PageSize)
	}); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, ws.Disputes.State())
}

// GetDispute returns one dispute.
// GET /api/v1/disputes/:dispute_no
func (h *Handler) GetDispute(c *gin.Context) {
	dispute, err := h.disputeService.Get(c.Request.Context(), c.Param("dispute_no"))
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			response.BusinessError(c, response.CodeDisputeNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, dispute)
}

// GetDisputeForm returns the evidence form definition for a dispute.
// GET /api/v1/disputes/:dispute_no/form
func (h *Handler) GetDisputeForm(c *gin.Context) {
	form, err := h.disputeService.Form(c.Request.Context(), c.Param("dispute_no"))
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			response.BusinessError(c, response.CodeDisputeNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, form)
}

// ============================================================
// Fundings
// ============================================================

// ListFundings pages payout batches with per-currency totals.
// GET /api/v1/fundings?from=2026-08-01&to=2026-08-31&page=0
func (h *Handler) ListFundings(c *gin.Context) {
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.ParamError(c, err.Error())
		return
	}

	session := currentSession(c)
	ws := h.workspaces.Get(session.Token)
	applyPaging(c, ws.Fundings.SetPage, ws.Fundings.SetPageSize)
	state := ws.Fundings.State()

	if err := ws.Fundings.Fetch(c.Request.Context(), func(ctx context.Context) (*service.FundingListResult, error) {
		return h.fundingService.List(ctx, session.MerchantID, from, to, state.Page, state.PageSize)
	}); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, ws.Fundings.State())
}

// ============================================================
// Account settings
// ============================================================

type MFARequest struct {
	Purpose string `json:"purpose" binding:"required"`
}

// RequestMFACode issues a one-time code for a pending account change.
// POST /api/v1/account/mfa
func (h *Handler) RequestMFACode(c *gin.Context) {
	var req MFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	session := currentSession(c)
	requestID, err := h.accountService.RequestMFACode(c.Request.Context(), session.UserID, req.Purpose)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"request_id": requestID})
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
	Code        string `json:"code" binding:"required"`
}

// ChangePassword swaps the account password after MFA verification.
// POST /api/v1/account/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	session := currentSession(c)
	err := h.accountService.ChangePassword(c.Request.Context(), session.UserID, req.OldPassword, req.NewPassword, req.Code)
	if err != nil {
		h.accountError(c, err)
		return
	}

	response.Success(c, nil)
}

type ChangePhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ChangePhone swaps the contact phone after MFA verification.
// POST /api/v1/account/phone
func (h *Handler) ChangePhone(c *gin.Context) {
	var req ChangePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	session := currentSession(c)
	if err := h.accountService.ChangePhone(c.Request.Context(), session.UserID, req.Phone, req.Code); err != nil {
		h.accountError(c, err)
		return
	}

	response.Success(c, nil)
}

func (h *Handler) accountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		response.BusinessError(c, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrMFAInvalid):
		response.BusinessError(c, response.CodeMFAInvalid, err.Error())
	case errors.Is(err, service.ErrBusy):
		response.Error(c, response.CodeServerError, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// helpers
// ============================================================

func applyPaging(c *gin.Context, setPage func(int), setPageSize func(int)) {
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			setPageSize(size)
		}
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 0 {
			setPage(page)
		}
	}
}

// parseDateRange parses inclusive from/exclusive to. Empty values default to
// the last 30 days.
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if fromStr != "" {
		parsed, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		// treat "to" as inclusive date
		to = parsed.Add(24 * time.Hour)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return from, to, nil
}
