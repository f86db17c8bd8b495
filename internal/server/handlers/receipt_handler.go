package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/partyhire/internal/domain/models"
	"github.com/mamadbah2/partyhire/internal/receipt"
	"github.com/mamadbah2/partyhire/internal/service/commands"
	"github.com/mamadbah2/partyhire/internal/store"
	"github.com/mamadbah2/partyhire/internal/validation"
)

const (
	exhaustedMessage    = "No more unique receipt numbers can be generated. Please delete old entries to add new ones."
	malformedMessage    = "The data file is corrupted or improperly formatted. POST /receipts/reset to replace it with an empty list."
	resetRefusedMessage = "The data file is healthy. Reset is only available when the data file is corrupted; delete receipts individually instead."
	duplicateMessage    = "A receipt with the same customer full name and item already exists. Resubmit with on_duplicate set to \"update\" to change its amount, or \"insert\" to add a new receipt."
)

// ReceiptHandler adapts HTTP requests to dispatcher commands.
type ReceiptHandler struct {
	svc    commands.Dispatcher
	logger *zap.Logger
}

// NewReceiptHandler constructs the HTTP handler adapter.
func NewReceiptHandler(svc commands.Dispatcher, logger *zap.Logger) *ReceiptHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptHandler{svc: svc, logger: logger}
}

// List returns every stored receipt in insertion order.
func (h *ReceiptHandler) List(c *gin.Context) {
	res, err := h.svc.HandleCommand(c.Request.Context(), models.Command{Type: models.CommandList})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptListResponse{
		Message:   res.Message,
		Records:   res.Records,
		NextEntry: res.NextEntry,
	})
}

// Submit validates a hire form and stores it.
func (h *ReceiptHandler) Submit(c *gin.Context) {
	var req models.SubmitReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	policy, err := models.ParseDuplicatePolicy(req.OnDuplicate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: `on_duplicate must be one of "ask", "update" or "insert"`})
		return
	}

	res, err := h.svc.HandleCommand(c.Request.Context(), models.Command{
		Type:        models.CommandSubmit,
		Submission:  req.Input(),
		OnDuplicate: policy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Updated {
		status = http.StatusOK
	}
	c.JSON(status, models.ReceiptResponse{
		Message:   res.Message,
		Record:    res.Record,
		Updated:   res.Updated,
		NextEntry: res.NextEntry,
	})
}

// Delete removes the receipt named by the receipt_number query value.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	res, err := h.svc.HandleCommand(c.Request.Context(), models.Command{
		Type:          models.CommandDelete,
		ReceiptNumber: c.Query("receipt_number"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptResponse{
		Message:   res.Message,
		Record:    res.Record,
		NextEntry: res.NextEntry,
	})
}

// Reset replaces a malformed data file with an empty list.
func (h *ReceiptHandler) Reset(c *gin.Context) {
	res, err := h.svc.HandleCommand(c.Request.Context(), models.Command{Type: models.CommandReset})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptListResponse{
		Message:   res.Message,
		Records:   res.Records,
		NextEntry: res.NextEntry,
	})
}

func (h *ReceiptHandler) respondError(c *gin.Context, err error) {
	var dup *store.DuplicateError

	switch {
	case validation.IsValidationError(err):
		errs := validation.Extract(err)
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: errs.Numbered(), Errors: errs.Messages()})
	case errors.As(err, &dup):
		existing := dup.Existing
		c.JSON(http.StatusConflict, models.ErrorResponse{Message: duplicateMessage, Duplicate: &existing})
	case errors.Is(err, store.ErrReceiptNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Receipt not found."})
	case errors.Is(err, receipt.ErrExhausted):
		c.JSON(http.StatusInsufficientStorage, models.ErrorResponse{Error: exhaustedMessage})
	case errors.Is(err, store.ErrResetRefused):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: resetRefusedMessage})
	case errors.Is(err, store.ErrMalformedFile):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: malformedMessage})
	case errors.Is(err, commands.ErrInvalidArguments), errors.Is(err, commands.ErrUnsupportedCommand):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("failed processing command", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "The receipts file could not be read or written. Check file permissions or disk space."})
	}
}
