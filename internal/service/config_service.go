package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmaflow/pharmaml-gateway/internal/country"
	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"github.com/pharmaflow/pharmaml-gateway/internal/repository"
	"github.com/pharmaflow/pharmaml-gateway/internal/transmitter"
	"go.uber.org/zap"
)

// ConfigService manages per-supplier PharmaML configuration and the
// configuration-time diagnostics around it.
type ConfigService struct {
	configs repository.SupplierConfigRepository
	tester  transmitter.ConnectionTester
	logger  *zap.Logger
}

func NewConfigService(
	configs repository.SupplierConfigRepository,
	tester transmitter.ConnectionTester,
	logger *zap.Logger,
) (*ConfigService, error) {
	if configs == nil {
		return nil, fmt.Errorf("supplier config repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConfigService{
		configs: configs,
		tester:  tester,
		logger:  logger,
	}, nil
}

func (s *ConfigService) Get(ctx context.Context, supplierID string) (*domain.SupplierConfig, error) {
	trimmedID := strings.TrimSpace(supplierID)
	if trimmedID == "" {
		return nil, fmt.Errorf("%w: supplier id is required", domain.ErrValidation)
	}
	return s.configs.Get(ctx, trimmedID)
}

// Save upserts a supplier configuration. The enabled-implies-complete
// invariant is enforced here, at save time, not merely at send time.
func (s *ConfigService) Save(ctx context.Context, supplierID string, cfg domain.SupplierConfig) (*domain.SupplierConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg.SupplierID = supplierID
	cfg.Normalize()

	if cfg.CountryCode != "" {
		if _, err := country.Lookup(cfg.CountryCode); err != nil {
			return nil, fmt.Errorf("%w: unknown country code %q", domain.ErrValidation, cfg.CountryCode)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.configs.Save(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to save supplier config: %w", err)
	}

	s.logger.Info("supplier pharmaml config saved",
		zap.String("supplierId", cfg.SupplierID),
		zap.Bool("enabled", cfg.Enabled),
		zap.String("countryCode", cfg.CountryCode),
	)

	return &cfg, nil
}

// IsConfigured gates every send attempt and tells the UI whether to offer
// a send action at all. A missing config is simply not configured.
func (s *ConfigService) IsConfigured(ctx context.Context, supplierID string) (bool, error) {
	cfg, err := s.Get(ctx, supplierID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cfg.IsConfigured(), nil
}

// Template returns the country defaults used to pre-fill a new config.
func (s *ConfigService) Template(countryCode string) (country.Template, error) {
	return country.Lookup(countryCode)
}

// TestConnection probes an endpoint without creating an order and without
// touching the ledger or the stored configuration.
func (s *ConfigService) TestConnection(ctx context.Context, endpointURL string) (transmitter.TestResult, error) {
	if s.tester == nil {
		return transmitter.TestResult{}, fmt.Errorf("connection tester is not configured")
	}
	if strings.TrimSpace(endpointURL) == "" {
		return transmitter.TestResult{}, fmt.Errorf("%w: endpointUrl is required", domain.ErrValidation)
	}

	result := s.tester.Test(ctx, endpointURL)
	s.logger.Info("pharmaml endpoint test",
		zap.String("endpointUrl", endpointURL),
		zap.Bool("success", result.Success),
	)
	return result, nil
}
