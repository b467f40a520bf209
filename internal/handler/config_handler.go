package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"github.com/pharmaflow/pharmaml-gateway/internal/transmitter"
)

type ConfigService interface {
	Get(ctx context.Context, supplierID string) (*domain.SupplierConfig, error)
	Save(ctx context.Context, supplierID string, cfg domain.SupplierConfig) (*domain.SupplierConfig, error)
	IsConfigured(ctx context.Context, supplierID string) (bool, error)
	TestConnection(ctx context.Context, endpointURL string) (transmitter.TestResult, error)
}

type ConfigHandler struct {
	service ConfigService
}

func NewConfigHandler(service ConfigService) (*ConfigHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("config service is required")
	}
	return &ConfigHandler{service: service}, nil
}

func RegisterConfigRoutes(router fiber.Router, service ConfigService) error {
	h, err := NewConfigHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Put("/suppliers/:supplierId/pharmaml-config", h.SaveConfig)
	v1.Get("/suppliers/:supplierId/pharmaml-config", h.GetConfig)
	v1.Get("/suppliers/:supplierId/pharmaml-config/status", h.GetConfigStatus)
	v1.Post("/suppliers/:supplierId/pharmaml-config/test", h.TestConnection)

	return nil
}

type saveConfigRequest struct {
	Enabled        bool   `json:"enabled"`
	EndpointURL    string `json:"endpointUrl"`
	DispatcherCode string `json:"dispatcherCode"`
	DispatcherID   string `json:"dispatcherId"`
	SecretKey      string `json:"secretKey"`
	OfficineID     string `json:"officineId"`
	CountryCode    string `json:"countryCode"`
}

// The secret key is write-only: responses only say whether one is set.
type configResponse struct {
	SupplierID     string    `json:"supplierId"`
	Enabled        bool      `json:"enabled"`
	EndpointURL    string    `json:"endpointUrl"`
	DispatcherCode string    `json:"dispatcherCode,omitempty"`
	DispatcherID   string    `json:"dispatcherId"`
	SecretKeySet   bool      `json:"secretKeySet"`
	OfficineID     string    `json:"officineId"`
	CountryCode    string    `json:"countryCode,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

type configStatusResponse struct {
	SupplierID string `json:"supplierId"`
	Configured bool   `json:"configured"`
}

type testConnectionRequest struct {
	EndpointURL string `json:"endpointUrl"`
}

type testConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ConfigHandler) SaveConfig(c *fiber.Ctx) error {
	supplierID := strings.TrimSpace(c.Params("supplierId"))

	var req saveConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cfg := domain.SupplierConfig{
		Enabled:        req.Enabled,
		EndpointURL:    req.EndpointURL,
		DispatcherCode: req.DispatcherCode,
		DispatcherID:   req.DispatcherID,
		SecretKey:      req.SecretKey,
		OfficineID:     req.OfficineID,
		CountryCode:    req.CountryCode,
	}

	saved, err := h.service.Save(c.Context(), supplierID, cfg)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toConfigResponse(saved))
}

func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	supplierID := strings.TrimSpace(c.Params("supplierId"))

	cfg, err := h.service.Get(c.Context(), supplierID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toConfigResponse(cfg))
}

func (h *ConfigHandler) GetConfigStatus(c *fiber.Ctx) error {
	supplierID := strings.TrimSpace(c.Params("supplierId"))

	configured, err := h.service.IsConfigured(c.Context(), supplierID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(configStatusResponse{
		SupplierID: supplierID,
		Configured: configured,
	})
}

// TestConnection probes the endpoint given in the body, falling back to
// the stored endpoint when the body carries none.
func (h *ConfigHandler) TestConnection(c *fiber.Ctx) error {
	supplierID := strings.TrimSpace(c.Params("supplierId"))

	var req testConnectionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	endpointURL := strings.TrimSpace(req.EndpointURL)
	if endpointURL == "" {
		cfg, err := h.service.Get(c.Context(), supplierID)
		if err != nil {
			return toHTTPError(err)
		}
		endpointURL = cfg.EndpointURL
	}

	result, err := h.service.TestConnection(c.Context(), endpointURL)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(testConnectionResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

func toConfigResponse(cfg *domain.SupplierConfig) configResponse {
	if cfg == nil {
		return configResponse{}
	}

	return configResponse{
		SupplierID:     cfg.SupplierID,
		Enabled:        cfg.Enabled,
		EndpointURL:    cfg.EndpointURL,
		DispatcherCode: cfg.DispatcherCode,
		DispatcherID:   cfg.DispatcherID,
		SecretKeySet:   cfg.SecretKey != "",
		OfficineID:     cfg.OfficineID,
		CountryCode:    cfg.CountryCode,
		CreatedAt:      cfg.CreatedAt,
		UpdatedAt:      cfg.UpdatedAt,
	}
}
