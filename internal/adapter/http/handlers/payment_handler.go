package handlers

import (
	"errors"
	"net/http"

	request "payhook/internal/adapter/http/dto/request"
	response "payhook/internal/adapter/http/dto/response"
	"payhook/internal/usecase"
	"payhook/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)

// PaymentHandler opens transactions and exposes their state.
type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
	logger  *zap.Logger
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{usecase: uc, logger: logger.Named("http")}
}

// CreatePayment godoc
// @Summary      Create payment
// @Description  Opens a PENDING transaction for (user_id, plan_id) or returns the one already pending.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      request.PaymentCreateRequest  true  "Payment to open"
// @Success      201      {object}  response.PaymentResponse
// @Failure      400      {object}  pkg.HTTPError
// @Failure      500      {object}  pkg.HTTPError
// @Router       /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.PaymentCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Info("[payment][handler] invalid payload", zap.Error(err))
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	created, err := h.usecase.CreatePayment(c.Request.Context(), payload.ToInput())
	if err != nil {
		appErr := mapPaymentError(err)
		h.logger.Error("[payment][handler] create failed", zap.String("user_id", payload.UserID), zap.Error(appErr))
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	h.logger.Info("[payment][handler] create success", zap.String("transaction_id", created.ID), zap.String("status", string(created.Status)))

	c.JSON(http.StatusCreated, response.FromTransaction(created))
}

// GetPaymentByID godoc
// @Summary      Get payment
// @Description  Returns the transaction with the given id.
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  response.PaymentResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPaymentByID(c *gin.Context) {
	id := c.Param("id")

	tx, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		appErr := mapPaymentError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			h.logger.Error("[payment][handler] get failed", zap.String("transaction_id", id), zap.Error(appErr))
		}
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromTransaction(tx))
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidUserID), errors.Is(err, usecase.ErrInvalidPlanID),
		errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrInvalidProvider),
		errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrShortIDExhausted):
		return pkg.NewDomainError("SHORT_ID_EXHAUSTED", "No short id available, retry later", err, http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
