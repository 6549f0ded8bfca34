package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rongwang/stonks/internal/models"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/rongwang/stonks/internal/service"
	"github.com/rongwang/stonks/internal/utils"
)

// Handler handles the HTTP API
type Handler struct {
	svc    service.Service
	logger *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Handler{svc: svc, logger: logger}
}

// SetupRoutes registers the API on router. Every route requires a bearer token.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(AuthMiddleware())

	banks := api.Group("/banks")
	banks.GET("", h.ListBanks)
	banks.POST("", h.CreateBank)
	banks.DELETE("/:bankId", h.DeleteBank)

	accounts := api.Group("/accounts")
	accounts.GET("", h.ListAccounts)
	accounts.POST("", h.CreateAccount)
	accounts.DELETE("/:accountId", h.DeleteAccount)
	accounts.GET("/:accountId/balance", h.GetAccountBalance)

	assets := api.Group("/assets")
	assets.GET("", h.ListAssets)
	assets.POST("", h.CreateAsset)

	transactions := api.Group("/transactions")
	transactions.GET("", h.ListTransactions)
	transactions.POST("", h.CreateTransaction)
	transactions.GET("/:transactionId/deltas", h.GetTransactionDeltas)
	transactions.POST("/:transactionId/deltas", h.AddDelta)

	api.GET("/delta-types", h.ListDeltaTypes)
}

// Banks

func (h *Handler) ListBanks(c *gin.Context) {
	startAt, ok := h.startAt(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListBanks(c.Request.Context(), userIDFrom(c), startAt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateBank(c *gin.Context) {
	var req models.CreateBankRequest
	if !h.bind(c, &req) {
		return
	}
	bank, err := h.svc.CreateBank(c.Request.Context(), userIDFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bank)
}

func (h *Handler) DeleteBank(c *gin.Context) {
	bankID, ok := h.pathID(c, "bankId")
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteBank(c.Request.Context(), userIDFrom(c), bankID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondDeleted(c, deleted, "bank")
}

// Accounts

func (h *Handler) ListAccounts(c *gin.Context) {
	startAt, ok := h.startAt(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListAccounts(c.Request.Context(), userIDFrom(c), startAt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if !h.bind(c, &req) {
		return
	}
	account, err := h.svc.CreateAccount(c.Request.Context(), userIDFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	accountID, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteAccount(c.Request.Context(), userIDFrom(c), accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondDeleted(c, deleted, "account")
}

func (h *Handler) GetAccountBalance(c *gin.Context) {
	accountID, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}
	resp, err := h.svc.GetAccountBalance(c.Request.Context(), userIDFrom(c), accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Assets

func (h *Handler) ListAssets(c *gin.Context) {
	startAt, ok := h.startAt(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListAssets(c.Request.Context(), userIDFrom(c), startAt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateAsset(c *gin.Context) {
	var req models.CreateAssetRequest
	if !h.bind(c, &req) {
		return
	}
	asset, err := h.svc.CreateAsset(c.Request.Context(), userIDFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// Transactions

func (h *Handler) ListTransactions(c *gin.Context) {
	startAt, ok := h.startAt(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), userIDFrom(c), startAt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if !h.bind(c, &req) {
		return
	}
	txn, err := h.svc.CreateTransaction(c.Request.Context(), userIDFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *Handler) AddDelta(c *gin.Context) {
	transactionID, ok := h.pathID(c, "transactionId")
	if !ok {
		return
	}
	var req models.AddDeltaRequest
	if !h.bind(c, &req) {
		return
	}
	deltaID, err := h.svc.AddDelta(c.Request.Context(), userIDFrom(c), transactionID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.AddDeltaResponse{Status: "success", DeltaID: deltaID})
}

func (h *Handler) GetTransactionDeltas(c *gin.Context) {
	transactionID, ok := h.pathID(c, "transactionId")
	if !ok {
		return
	}
	resp, err := h.svc.GetTransactionDeltas(c.Request.Context(), userIDFrom(c), transactionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListDeltaTypes(c *gin.Context) {
	resp, err := h.svc.ListDeltaTypes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Helpers

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(c *gin.Context, name string) (models.ID, bool) {
	id, err := models.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

// startAt reads the optional page cursor; an absent cursor starts at 0.
func (h *Handler) startAt(c *gin.Context) (models.ID, bool) {
	raw, present := c.GetQuery("start_at")
	if !present {
		return 0, true
	}
	id, err := models.ParseID(raw)
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

func (h *Handler) respondDeleted(c *gin.Context, deleted bool, what string) {
	if !deleted {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: what + " not found",
		})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: what + " deleted"})
}

// StatusFor maps an error kind to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusBadRequest, "INVALID_REFERENCE"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, repository.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		loggerFrom(c, h.logger).Error("%s %s: %+v", c.Request.Method, c.FullPath(), err)
		message = http.StatusText(status)
	}
	c.JSON(status, models.ErrorResponse{Status: "error", Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_ARGUMENT",
		Message: message,
	})
}
