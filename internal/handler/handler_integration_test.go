package handler

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"github.com/pharmaflow/pharmaml-gateway/internal/service"
	"github.com/pharmaflow/pharmaml-gateway/internal/transmitter"
	"github.com/pharmaflow/pharmaml-gateway/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestConfigIntegration_SaveAndGet(t *testing.T) {
	t.Parallel()

	stored := make(map[string]*domain.SupplierConfig)
	svc := &stubConfigService{
		saveFn: func(_ context.Context, supplierID string, cfg domain.SupplierConfig) (*domain.SupplierConfig, error) {
			cfg.SupplierID = supplierID
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			stored[supplierID] = &cfg
			return &cfg, nil
		},
		getFn: func(_ context.Context, supplierID string) (*domain.SupplierConfig, error) {
			cfg, ok := stored[supplierID]
			if !ok {
				return nil, domain.ErrNotFound
			}
			return cfg, nil
		},
	}

	app := newConfigTestApp(t, svc)

	validBody := `{"enabled":true,"endpointUrl":"https://pharmaml.laborex.sn/commande","dispatcherId":"LBX-1","secretKey":"s3cret","officineId":"OFF-9","countryCode":"SN"}`
	resp, body := performRequest(t, app, http.MethodPut, "/v1/suppliers/sup-1/pharmaml-config", validBody)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var saved map[string]any
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if saved["supplierId"] != "sup-1" {
		t.Fatalf("supplierId = %v, want sup-1", saved["supplierId"])
	}
	if saved["secretKeySet"] != true {
		t.Fatal("secretKeySet should be true")
	}
	if _, leaked := saved["secretKey"]; leaked {
		t.Fatal("the secret key must never appear in a response")
	}

	incompleteBody := `{"enabled":true,"endpointUrl":"https://example.test"}`
	resp, _ = performRequest(t, app, http.MethodPut, "/v1/suppliers/sup-2/pharmaml-config", incompleteBody)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for incomplete enabled config", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/suppliers/sup-1/pharmaml-config", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/suppliers/unknown/pharmaml-config", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestConfigIntegration_Status(t *testing.T) {
	t.Parallel()

	svc := &stubConfigService{
		isConfiguredFn: func(_ context.Context, supplierID string) (bool, error) {
			return supplierID == "sup-ready", nil
		},
	}

	app := newConfigTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/suppliers/sup-ready/pharmaml-config/status", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["configured"] != true {
		t.Fatalf("configured = %v, want true", parsed["configured"])
	}

	resp, body = performRequest(t, app, http.MethodGet, "/v1/suppliers/sup-other/pharmaml-config/status", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["configured"] != false {
		t.Fatalf("configured = %v, want false", parsed["configured"])
	}
}

func TestConfigIntegration_TestConnection(t *testing.T) {
	t.Parallel()

	svc := &stubConfigService{
		getFn: func(_ context.Context, supplierID string) (*domain.SupplierConfig, error) {
			return &domain.SupplierConfig{
				SupplierID:  supplierID,
				EndpointURL: "https://stored.example.test",
			}, nil
		},
		testFn: func(_ context.Context, endpointURL string) (transmitter.TestResult, error) {
			if endpointURL == "https://reachable.example.test" {
				return transmitter.TestResult{Success: true, Message: "endpoint reachable, responded with status 200"}, nil
			}
			return transmitter.TestResult{Success: false, Message: "connection refused"}, nil
		},
	}

	app := newConfigTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodPost, "/v1/suppliers/sup-1/pharmaml-config/test", `{"endpointUrl":"https://reachable.example.test"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["success"] != true {
		t.Fatalf("success = %v, want true", parsed["success"])
	}

	// Empty body falls back to the stored endpoint, which is unreachable here.
	resp, body = performRequest(t, app, http.MethodPost, "/v1/suppliers/sup-1/pharmaml-config/test", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["success"] != false {
		t.Fatalf("success = %v, want false", parsed["success"])
	}
}

func TestTransmissionIntegration_SendOrder(t *testing.T) {
	t.Parallel()

	svc := &stubTransmissionService{
		sendFn: func(_ context.Context, order domain.Order) (*service.SendResult, error) {
			if err := order.Validate(); err != nil {
				return nil, err
			}
			return &service.SendResult{
				Outcome:             service.OutcomeSuccess,
				RecordID:            "rec-1",
				SupplierOrderNumber: "WH-555",
				DurationMs:          840,
			}, nil
		},
	}

	app := newTransmissionTestApp(t, svc)

	validBody := `{"orderId":"ord-1","supplierId":"sup-1","officineId":"OFF-9","lines":[{"productCode":"3400930000001","quantity":12,"unitPrice":1500}]}`
	resp, body := performRequest(t, app, http.MethodPost, "/v1/transmissions", validBody)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["outcome"] != string(service.OutcomeSuccess) {
		t.Fatalf("outcome = %v, want success", parsed["outcome"])
	}
	if parsed["supplierOrderNumber"] != "WH-555" {
		t.Fatalf("supplierOrderNumber = %v, want WH-555", parsed["supplierOrderNumber"])
	}

	noLinesBody := `{"orderId":"ord-2","supplierId":"sup-1","lines":[]}`
	resp, _ = performRequest(t, app, http.MethodPost, "/v1/transmissions", noLinesBody)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty lines", resp.StatusCode)
	}
}

func TestTransmissionIntegration_SendOrderConflict(t *testing.T) {
	t.Parallel()

	svc := &stubTransmissionService{
		sendFn: func(context.Context, domain.Order) (*service.SendResult, error) {
			return nil, domain.ErrConflict
		},
	}

	app := newTransmissionTestApp(t, svc)

	body := `{"orderId":"ord-1","supplierId":"sup-1","lines":[{"productCode":"P1","quantity":1,"unitPrice":100}]}`
	resp, _ := performRequest(t, app, http.MethodPost, "/v1/transmissions", body)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409 when a send is already in flight", resp.StatusCode)
	}
}

func TestTransmissionIntegration_SendBatch(t *testing.T) {
	t.Parallel()

	svc := &stubTransmissionService{
		sendManyFn: func(_ context.Context, orders []domain.Order) []service.BatchItem {
			items := make([]service.BatchItem, 0, len(orders))
			for _, order := range orders {
				items = append(items, service.BatchItem{
					OrderID: order.ID,
					Result:  &service.SendResult{Outcome: service.OutcomeSuccess, RecordID: "rec-" + order.ID},
				})
			}
			return items
		},
	}

	app := newTransmissionTestApp(t, svc)

	validBody := `{"orders":[{"orderId":"ord-1","supplierId":"sup-1","lines":[{"productCode":"P1","quantity":1,"unitPrice":100}]},{"orderId":"ord-2","supplierId":"sup-1","lines":[{"productCode":"P2","quantity":2,"unitPrice":200}]}]}`
	resp, body := performRequest(t, app, http.MethodPost, "/v1/transmissions/batch", validBody)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		TotalCount int `json:"totalCount"`
		Items      []struct {
			OrderID string `json:"orderId"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed.TotalCount != 2 || len(parsed.Items) != 2 {
		t.Fatalf("totalCount = %d, items = %d, want 2 and 2", parsed.TotalCount, len(parsed.Items))
	}

	resp, _ = performRequest(t, app, http.MethodPost, "/v1/transmissions/batch", `{"orders":[]}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty batch", resp.StatusCode)
	}
}

func TestTransmissionIntegration_History(t *testing.T) {
	t.Parallel()

	errorCode := "TIMEOUT"
	svc := &stubTransmissionService{
		historyByOrderFn: func(_ context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error) {
			if limit != 5 {
				t.Fatalf("limit = %d, want 5", limit)
			}
			return []domain.TransmissionRecord{
				{ID: "rec-1", OrderID: orderID, SupplierID: "sup-1", Status: domain.StatusTimeout, ErrorCode: &errorCode},
			}, nil
		},
		historyBySupplierFn: func(_ context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error) {
			return []domain.TransmissionRecord{
				{ID: "rec-2", OrderID: "ord-9", SupplierID: supplierID, Status: domain.StatusSuccess},
			}, nil
		},
	}

	app := newTransmissionTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/orders/ord-1/transmissions?limit=5", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(parsed.Data) != 1 || parsed.Data[0]["errorCode"] != "TIMEOUT" {
		t.Fatalf("unexpected history payload %+v", parsed.Data)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/suppliers/sup-1/transmissions", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/orders/ord-1/transmissions?limit=9999", "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for oversized limit", resp.StatusCode)
	}
}

func TestTransmissionIntegration_SendStatus(t *testing.T) {
	t.Parallel()

	lastStatus := domain.StatusError
	svc := &stubTransmissionService{
		hasBeenSentFn: func(_ context.Context, orderID string) (*service.SentStatus, error) {
			if orderID == "ord-sent" {
				success := domain.StatusSuccess
				return &service.SentStatus{Sent: true, LastStatus: &success}, nil
			}
			return &service.SentStatus{Sent: false, LastStatus: &lastStatus}, nil
		},
	}

	app := newTransmissionTestApp(t, svc)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/orders/ord-sent/transmissions/status", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["sent"] != true || parsed["lastStatus"] != "SUCCESS" {
		t.Fatalf("payload = %v, want sent=true lastStatus=SUCCESS", parsed)
	}

	resp, body = performRequest(t, app, http.MethodGet, "/v1/orders/ord-failed/transmissions/status", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["sent"] != false || parsed["lastStatus"] != "ERROR" {
		t.Fatalf("payload = %v, want sent=false lastStatus=ERROR", parsed)
	}
}

func TestCountryIntegration_Catalog(t *testing.T) {
	t.Parallel()

	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	RegisterCountryRoutes(app)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/countries", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var parsed struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if len(parsed.Data) == 0 {
		t.Fatal("expected at least one country template")
	}

	resp, body = performRequest(t, app, http.MethodGet, "/v1/countries/sn", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}
	var tpl map[string]any
	if err := json.Unmarshal(body, &tpl); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if tpl["countryCode"] != "SN" {
		t.Fatalf("countryCode = %v, want SN", tpl["countryCode"])
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/countries/ZZ", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthIntegration_LivezAndReadyz(t *testing.T) {
	t.Parallel()

	t.Run("livez returns 200", func(t *testing.T) {
		t.Parallel()

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sql.OpenDB(stubConnector{}), newStubRedisClient(nil))

		resp, body := performRequest(t, app, http.MethodGet, "/livez", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("readyz returns 200 when dependencies healthy", func(t *testing.T) {
		t.Parallel()

		sqlDB := sql.OpenDB(stubConnector{})
		t.Cleanup(func() { _ = sqlDB.Close() })

		rdb := newStubRedisClient(nil)
		t.Cleanup(func() { _ = rdb.Close() })

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sqlDB, rdb)

		resp, body := performRequest(t, app, http.MethodGet, "/readyz", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("readyz returns 503 when dependencies down", func(t *testing.T) {
		t.Parallel()

		sqlDB := sql.OpenDB(stubConnector{pingErr: errors.New("postgres down")})
		t.Cleanup(func() { _ = sqlDB.Close() })

		rdb := newStubRedisClient(errors.New("redis down"))
		t.Cleanup(func() { _ = rdb.Close() })

		app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
		RegisterHealthRoutes(app, sqlDB, rdb)

		resp, body := performRequest(t, app, http.MethodGet, "/readyz", "")
		if resp.StatusCode != fiber.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503, body=%s", resp.StatusCode, string(body))
		}
	})
}

type stubConfigService struct {
	getFn          func(ctx context.Context, supplierID string) (*domain.SupplierConfig, error)
	saveFn         func(ctx context.Context, supplierID string, cfg domain.SupplierConfig) (*domain.SupplierConfig, error)
	isConfiguredFn func(ctx context.Context, supplierID string) (bool, error)
	testFn         func(ctx context.Context, endpointURL string) (transmitter.TestResult, error)
}

func (s *stubConfigService) Get(ctx context.Context, supplierID string) (*domain.SupplierConfig, error) {
	if s.getFn != nil {
		return s.getFn(ctx, supplierID)
	}
	return nil, domain.ErrNotFound
}

func (s *stubConfigService) Save(ctx context.Context, supplierID string, cfg domain.SupplierConfig) (*domain.SupplierConfig, error) {
	if s.saveFn != nil {
		return s.saveFn(ctx, supplierID, cfg)
	}
	return nil, errors.New("not implemented")
}

func (s *stubConfigService) IsConfigured(ctx context.Context, supplierID string) (bool, error) {
	if s.isConfiguredFn != nil {
		return s.isConfiguredFn(ctx, supplierID)
	}
	return false, nil
}

func (s *stubConfigService) TestConnection(ctx context.Context, endpointURL string) (transmitter.TestResult, error) {
	if s.testFn != nil {
		return s.testFn(ctx, endpointURL)
	}
	return transmitter.TestResult{}, errors.New("not implemented")
}

type stubTransmissionService struct {
	sendFn              func(ctx context.Context, order domain.Order) (*service.SendResult, error)
	sendManyFn          func(ctx context.Context, orders []domain.Order) []service.BatchItem
	hasBeenSentFn       func(ctx context.Context, orderID string) (*service.SentStatus, error)
	historyByOrderFn    func(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error)
	historyBySupplierFn func(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error)
}

func (s *stubTransmissionService) Send(ctx context.Context, order domain.Order) (*service.SendResult, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, order)
	}
	return nil, errors.New("not implemented")
}

func (s *stubTransmissionService) SendMany(ctx context.Context, orders []domain.Order) []service.BatchItem {
	if s.sendManyFn != nil {
		return s.sendManyFn(ctx, orders)
	}
	return nil
}

func (s *stubTransmissionService) HasBeenSent(ctx context.Context, orderID string) (*service.SentStatus, error) {
	if s.hasBeenSentFn != nil {
		return s.hasBeenSentFn(ctx, orderID)
	}
	return nil, domain.ErrNotFound
}

func (s *stubTransmissionService) HistoryByOrder(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error) {
	if s.historyByOrderFn != nil {
		return s.historyByOrderFn(ctx, orderID, limit)
	}
	return nil, nil
}

func (s *stubTransmissionService) HistoryBySupplier(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error) {
	if s.historyBySupplierFn != nil {
		return s.historyBySupplierFn(ctx, supplierID, limit)
	}
	return nil, nil
}

func newConfigTestApp(t *testing.T, svc ConfigService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterConfigRoutes(app, svc); err != nil {
		t.Fatalf("RegisterConfigRoutes() error = %v", err)
	}

	return app
}

func newTransmissionTestApp(t *testing.T, svc TransmissionService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterTransmissionRoutes(app, svc); err != nil {
		t.Fatalf("RegisterTransmissionRoutes() error = %v", err)
	}

	return app
}

func performRequest(t *testing.T, app *fiber.App, method string, path string, body string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

type stubConnector struct {
	pingErr error
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn(c), nil
}

func (c stubConnector) Driver() driver.Driver {
	return stubDriver(c)
}

type stubDriver struct {
	pingErr error
}

func (d stubDriver) Open(string) (driver.Conn, error) {
	return stubConn(d), nil
}

type stubConn struct {
	pingErr error
}

func (c stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not implemented") }
func (c stubConn) Ping(context.Context) error          { return c.pingErr }

type stubRedisHook struct {
	pingErr error
}

func (h stubRedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h stubRedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if strings.EqualFold(cmd.Name(), "ping") {
			if h.pingErr != nil {
				cmd.SetErr(h.pingErr)
				return h.pingErr
			}
			cmd.SetErr(nil)
			return nil
		}
		cmd.SetErr(nil)
		return nil
	}
}

func (h stubRedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			cmd.SetErr(nil)
		}
		return nil
	}
}

func newStubRedisClient(pingErr error) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:6379",
		DialTimeout:  time.Millisecond,
		ReadTimeout:  time.Millisecond,
		WriteTimeout: time.Millisecond,
	})
	rdb.AddHook(stubRedisHook{pingErr: pingErr})
	return rdb
}
