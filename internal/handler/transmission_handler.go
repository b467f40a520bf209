package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"github.com/pharmaflow/pharmaml-gateway/internal/service"
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxBatchOrders      = 100
)

type TransmissionService interface {
	Send(ctx context.Context, order domain.Order) (*service.SendResult, error)
	SendMany(ctx context.Context, orders []domain.Order) []service.BatchItem
	HasBeenSent(ctx context.Context, orderID string) (*service.SentStatus, error)
	HistoryByOrder(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error)
	HistoryBySupplier(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error)
}

type TransmissionHandler struct {
	service TransmissionService
}

func NewTransmissionHandler(service TransmissionService) (*TransmissionHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("transmission service is required")
	}
	return &TransmissionHandler{service: service}, nil
}

func RegisterTransmissionRoutes(router fiber.Router, service TransmissionService) error {
	h, err := NewTransmissionHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/transmissions", h.SendOrder)
	v1.Post("/transmissions/batch", h.SendBatch)
	v1.Get("/orders/:orderId/transmissions", h.ListOrderTransmissions)
	v1.Get("/orders/:orderId/transmissions/status", h.GetOrderSendStatus)
	v1.Get("/suppliers/:supplierId/transmissions", h.ListSupplierTransmissions)

	return nil
}

type orderLineRequest struct {
	ProductCode string          `json:"productCode"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type sendOrderRequest struct {
	OrderID    string             `json:"orderId"`
	SupplierID string             `json:"supplierId"`
	OfficineID string             `json:"officineId"`
	CreatedAt  *time.Time         `json:"createdAt,omitempty"`
	Lines      []orderLineRequest `json:"lines"`
}

type sendBatchRequest struct {
	Orders []sendOrderRequest `json:"orders"`
}

type sendResultResponse struct {
	Outcome             string `json:"outcome"`
	RecordID            string `json:"recordId,omitempty"`
	SupplierOrderNumber string `json:"supplierOrderNumber,omitempty"`
	ErrorCode           string `json:"errorCode,omitempty"`
	Message             string `json:"message,omitempty"`
	DurationMs          int64  `json:"durationMs"`
}

type batchItemResponse struct {
	OrderID string              `json:"orderId"`
	Result  *sendResultResponse `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type sendBatchResponse struct {
	TotalCount int                 `json:"totalCount"`
	Items      []batchItemResponse `json:"items"`
}

type transmissionResponse struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"orderId"`
	SupplierID          string    `json:"supplierId"`
	Status              string    `json:"status"`
	ErrorCode           *string   `json:"errorCode,omitempty"`
	Message             *string   `json:"message,omitempty"`
	SupplierOrderNumber *string   `json:"supplierOrderNumber,omitempty"`
	DurationMs          *int64    `json:"durationMs,omitempty"`
	RequestXML          *string   `json:"requestXml,omitempty"`
	ResponseXML         *string   `json:"responseXml,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

type transmissionListResponse struct {
	Data []transmissionResponse `json:"data"`
}

type sendStatusResponse struct {
	OrderID    string  `json:"orderId"`
	Sent       bool    `json:"sent"`
	LastStatus *string `json:"lastStatus,omitempty"`
}

func (h *TransmissionHandler) SendOrder(c *fiber.Ctx) error {
	var req sendOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Send(c.Context(), requestToDomainOrder(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toSendResultResponse(result))
}

func (h *TransmissionHandler) SendBatch(c *fiber.Ctx) error {
	var req sendBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Orders) == 0 {
		return toHTTPError(fmt.Errorf("%w: orders is required", domain.ErrValidation))
	}
	if len(req.Orders) > maxBatchOrders {
		return toHTTPError(fmt.Errorf("%w: at most %d orders per batch", domain.ErrValidation, maxBatchOrders))
	}

	orders := make([]domain.Order, 0, len(req.Orders))
	for _, item := range req.Orders {
		orders = append(orders, requestToDomainOrder(item))
	}

	items := h.service.SendMany(c.Context(), orders)

	responses := make([]batchItemResponse, 0, len(items))
	for _, item := range items {
		entry := batchItemResponse{OrderID: item.OrderID}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		}
		if item.Result != nil {
			result := toSendResultResponse(item.Result)
			entry.Result = &result
		}
		responses = append(responses, entry)
	}

	return c.Status(fiber.StatusOK).JSON(sendBatchResponse{
		TotalCount: len(responses),
		Items:      responses,
	})
}

func (h *TransmissionHandler) ListOrderTransmissions(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Params("orderId"))

	limit, err := parseHistoryLimit(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, err := h.service.HistoryByOrder(c.Context(), orderID, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTransmissionListResponse(records))
}

func (h *TransmissionHandler) GetOrderSendStatus(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Params("orderId"))

	status, err := h.service.HasBeenSent(c.Context(), orderID)
	if err != nil {
		return toHTTPError(err)
	}

	resp := sendStatusResponse{OrderID: orderID, Sent: status.Sent}
	if status.LastStatus != nil {
		last := status.LastStatus.String()
		resp.LastStatus = &last
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *TransmissionHandler) ListSupplierTransmissions(c *fiber.Ctx) error {
	supplierID := strings.TrimSpace(c.Params("supplierId"))

	limit, err := parseHistoryLimit(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, err := h.service.HistoryBySupplier(c.Context(), supplierID, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toTransmissionListResponse(records))
}

func parseHistoryLimit(c *fiber.Ctx) (int, error) {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxHistoryLimit)
	}
	return limit, nil
}

func requestToDomainOrder(req sendOrderRequest) domain.Order {
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.OrderLine{
			ProductCode: strings.TrimSpace(line.ProductCode),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	order := domain.Order{
		ID:         strings.TrimSpace(req.OrderID),
		SupplierID: strings.TrimSpace(req.SupplierID),
		OfficineID: strings.TrimSpace(req.OfficineID),
		Lines:      lines,
	}
	if req.CreatedAt != nil {
		order.CreatedAt = *req.CreatedAt
	}

	return order
}

func toSendResultResponse(result *service.SendResult) sendResultResponse {
	if result == nil {
		return sendResultResponse{}
	}

	return sendResultResponse{
		Outcome:             string(result.Outcome),
		RecordID:            result.RecordID,
		SupplierOrderNumber: result.SupplierOrderNumber,
		ErrorCode:           result.ErrorCode,
		Message:             result.Message,
		DurationMs:          result.DurationMs,
	}
}

func toTransmissionListResponse(records []domain.TransmissionRecord) transmissionListResponse {
	data := make([]transmissionResponse, 0, len(records))
	for i := range records {
		data = append(data, toTransmissionResponse(&records[i]))
	}
	return transmissionListResponse{Data: data}
}

func toTransmissionResponse(record *domain.TransmissionRecord) transmissionResponse {
	if record == nil {
		return transmissionResponse{}
	}

	return transmissionResponse{
		ID:                  record.ID,
		OrderID:             record.OrderID,
		SupplierID:          record.SupplierID,
		Status:              record.Status.String(),
		ErrorCode:           record.ErrorCode,
		Message:             record.Message,
		SupplierOrderNumber: record.SupplierOrderNumber,
		DurationMs:          record.DurationMs,
		RequestXML:          record.RequestXML,
		ResponseXML:         record.ResponseXML,
		CreatedAt:           record.CreatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
