package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"github.com/pharmaflow/pharmaml-gateway/internal/observability"
	"github.com/pharmaflow/pharmaml-gateway/internal/pharmaml"
	"github.com/pharmaflow/pharmaml-gateway/internal/repository"
	"github.com/pharmaflow/pharmaml-gateway/internal/sendlock"
	"github.com/pharmaflow/pharmaml-gateway/internal/transmitter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minSendConcurrency = 1
	// leaseGrace extends the order lease past the send budget so the lease
	// outlives the slowest possible transmission.
	leaseGrace = 5 * time.Second
)

// Outcome is the caller-facing result of a send call.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeError         Outcome = "error"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeNotConfigured Outcome = "not-configured"
)

// SendResult is what the order workflow gets back from a transmission.
// Raw XML stays on the ledger record for audit drill-down.
type SendResult struct {
	Outcome             Outcome
	RecordID            string
	SupplierOrderNumber string
	ErrorCode           string
	Message             string
	DurationMs          int64
}

// SentStatus answers the idempotency question for an order.
type SentStatus struct {
	Sent       bool
	LastStatus *domain.TransmissionStatus
}

// BatchItem is the per-order result of SendMany.
type BatchItem struct {
	OrderID string
	Result  *SendResult
	Err     error
}

// TransmissionService executes order transmissions and owns the
// transmission ledger queries.
type TransmissionService struct {
	configs     repository.SupplierConfigRepository
	ledger      repository.TransmissionRepository
	wire        transmitter.Transmitter
	locks       sendlock.OrderLock
	logger      *zap.Logger
	metrics     *observability.Metrics
	sendTimeout time.Duration
	concurrency int
	now         func() time.Time
}

func NewTransmissionService(
	configs repository.SupplierConfigRepository,
	ledger repository.TransmissionRepository,
	wire transmitter.Transmitter,
	locks sendlock.OrderLock,
	sendTimeout time.Duration,
	concurrency int,
	logger *zap.Logger,
) (*TransmissionService, error) {
	if configs == nil {
		return nil, fmt.Errorf("supplier config repository is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("transmission repository is required")
	}
	if wire == nil {
		return nil, fmt.Errorf("transmitter is required")
	}
	if sendTimeout <= 0 {
		sendTimeout = transmitter.DefaultSendTimeout
	}
	if concurrency < minSendConcurrency {
		concurrency = minSendConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TransmissionService{
		configs:     configs,
		ledger:      ledger,
		wire:        wire,
		locks:       locks,
		logger:      logger,
		sendTimeout: sendTimeout,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (s *TransmissionService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Send transmits one order to its supplier. The ledger gets exactly one
// insert (the pending row, written before the network call) and exactly
// one finalizing update. Retries are a caller decision: re-invoking Send
// after a failure is the only retry mechanism.
func (s *TransmissionService) Send(ctx context.Context, order domain.Order) (*SendResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.configs.Get(ctx, order.SupplierID)
	if errors.Is(err, domain.ErrNotFound) {
		return notConfiguredResult(order.SupplierID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier config: %w", err)
	}
	// No network call and no ledger write for an unconfigured supplier.
	if !cfg.IsConfigured() {
		return notConfiguredResult(order.SupplierID), nil
	}

	if s.locks != nil {
		acquired, lockErr := s.locks.Acquire(ctx, order.ID, s.sendTimeout+leaseGrace)
		if lockErr != nil {
			return nil, fmt.Errorf("failed to acquire order send lease: %w", lockErr)
		}
		if !acquired {
			return nil, fmt.Errorf("%w: a transmission is already in flight for order %s", domain.ErrConflict, order.ID)
		}
		defer func() {
			if releaseErr := s.locks.Release(context.WithoutCancel(ctx), order.ID); releaseErr != nil {
				s.logger.Warn("failed to release order send lease",
					zap.String("orderId", order.ID),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	requestXML, err := pharmaml.BuildOrderRequest(order, *cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build pharmaml document: %w", err)
	}

	requestBody := string(requestXML)
	record := &domain.TransmissionRecord{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		SupplierID: order.SupplierID,
		RequestXML: &requestBody,
		Status:     domain.StatusPending,
		CreatedAt:  s.now().UTC(),
	}
	// The pending row must exist before the wire call so the attempt is
	// auditable even if the process dies mid-transmission.
	if err := s.ledger.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record transmission attempt: %w", err)
	}

	countryLabel := cfg.CountryCode
	if s.metrics != nil {
		s.metrics.IncTransmissionInFlight(countryLabel)
		defer s.metrics.DecTransmissionInFlight(countryLabel)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	start := s.now()
	wireResp, sendErr := s.wire.Transmit(sendCtx, cfg.EndpointURL, requestXML)
	durationMs := s.now().Sub(start).Milliseconds()

	fin, result := s.classifyOutcome(wireResp, sendErr, durationMs)
	result.RecordID = record.ID

	// The attempt already hit the wire: the terminal status must land on
	// the ledger even if the caller has gone away. Losing this write means
	// losing the audit record of a real wholesaler transaction.
	if err := s.ledger.Finalize(context.WithoutCancel(ctx), record.ID, fin); err != nil {
		s.logger.Error("failed to finalize transmission record",
			zap.String("recordId", record.ID),
			zap.String("orderId", order.ID),
			zap.String("supplierId", order.SupplierID),
			zap.String("status", fin.Status.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to finalize transmission record %s: %w", record.ID, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveTransmissionDuration(countryLabel, time.Duration(durationMs)*time.Millisecond)
		switch fin.Status {
		case domain.StatusSuccess:
			s.metrics.IncTransmissionSent(countryLabel)
		default:
			s.metrics.IncTransmissionFailed(countryLabel, result.ErrorCode)
		}
	}

	s.logger.Info("order transmission finished",
		zap.String("orderId", order.ID),
		zap.String("supplierId", order.SupplierID),
		zap.String("status", fin.Status.String()),
		zap.Int64("durationMs", durationMs),
	)

	return result, nil
}

// SendMany transmits independent orders concurrently with a bounded
// fan-out. Each order goes through the complete single-send path,
// including its own lease; there is no cross-order ordering guarantee.
func (s *TransmissionService) SendMany(ctx context.Context, orders []domain.Order) []BatchItem {
	if ctx == nil {
		ctx = context.Background()
	}

	items := make([]BatchItem, len(orders))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range orders {
		i := i
		order := orders[i]
		g.Go(func() error {
			result, err := s.Send(ctx, order)
			items[i] = BatchItem{OrderID: order.ID, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// HasBeenSent reports whether the order already has a successful
// transmission on record. Success is sticky: later failures never erase
// it. Failures alone never set it, so retry stays possible.
func (s *TransmissionService) HasBeenSent(ctx context.Context, orderID string) (*SentStatus, error) {
	trimmedID := strings.TrimSpace(orderID)
	if trimmedID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}

	sent, err := s.ledger.HasSuccess(ctx, trimmedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transmission ledger: %w", err)
	}

	lastStatus, err := s.ledger.LastTerminalStatus(ctx, trimmedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transmission ledger: %w", err)
	}

	return &SentStatus{Sent: sent, LastStatus: lastStatus}, nil
}

func (s *TransmissionService) HistoryByOrder(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error) {
	trimmedID := strings.TrimSpace(orderID)
	if trimmedID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	return s.ledger.ListByOrder(ctx, trimmedID, limit)
}

func (s *TransmissionService) HistoryBySupplier(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error) {
	trimmedID := strings.TrimSpace(supplierID)
	if trimmedID == "" {
		return nil, fmt.Errorf("%w: supplier id is required", domain.ErrValidation)
	}
	return s.ledger.ListBySupplier(ctx, trimmedID, limit)
}

func (s *TransmissionService) classifyOutcome(
	wireResp *transmitter.WireResponse,
	sendErr error,
	durationMs int64,
) (domain.TransmissionFinalization, *SendResult) {
	if sendErr != nil {
		errorCode := transmitter.ClassNetwork
		var transportErr *transmitter.TransportError
		if errors.As(sendErr, &transportErr) && transportErr.Class != "" {
			errorCode = transportErr.Class
		}

		status := domain.StatusError
		outcome := OutcomeError
		if errorCode == transmitter.ClassTimeout {
			status = domain.StatusTimeout
			outcome = OutcomeTimeout
		}

		message := sendErr.Error()
		fin := domain.TransmissionFinalization{
			Status:     status,
			ErrorCode:  &errorCode,
			Message:    &message,
			DurationMs: &durationMs,
		}
		return fin, &SendResult{
			Outcome:    outcome,
			ErrorCode:  errorCode,
			Message:    message,
			DurationMs: durationMs,
		}
	}

	parsed := pharmaml.Parse([]byte(wireResp.Body))

	fin := domain.TransmissionFinalization{
		Status:              parsed.Status,
		ResponseXML:         optionalString(wireResp.Body),
		ErrorCode:           optionalString(parsed.ErrorCode),
		Message:             optionalString(parsed.Message),
		SupplierOrderNumber: optionalString(parsed.SupplierOrderNumber),
		DurationMs:          &durationMs,
	}

	outcome := OutcomeError
	if parsed.Status == domain.StatusSuccess {
		outcome = OutcomeSuccess
	}

	return fin, &SendResult{
		Outcome:             outcome,
		SupplierOrderNumber: parsed.SupplierOrderNumber,
		ErrorCode:           parsed.ErrorCode,
		Message:             parsed.Message,
		DurationMs:          durationMs,
	}
}

func notConfiguredResult(supplierID string) *SendResult {
	return &SendResult{
		Outcome:   OutcomeNotConfigured,
		ErrorCode: "NOT_CONFIGURED",
		Message:   fmt.Sprintf("supplier %s: %v", supplierID, domain.ErrNotConfigured),
	}
}

func optionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &v
}
