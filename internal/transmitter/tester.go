package transmitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/pharmaml"
)

// DefaultProbeTimeout keeps the configuration-time diagnostic snappy.
const DefaultProbeTimeout = 5 * time.Second

// Tester sends a minimal protocol probe to a candidate endpoint. It is a
// configuration-time diagnostic: it never builds an order and never writes
// a transmission record.
type Tester struct {
	client *resty.Client
}

func NewTester(timeout time.Duration) *Tester {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return &Tester{client: client}
}

func (t *Tester) Test(ctx context.Context, endpointURL string) TestResult {
	if t == nil || t.client == nil {
		return TestResult{Success: false, Message: "tester is not initialized"}
	}

	trimmedEndpoint := strings.TrimSpace(endpointURL)
	if trimmedEndpoint == "" {
		return TestResult{Success: false, Message: "endpoint url is required"}
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return TestResult{Success: false, Message: fmt.Sprintf("invalid endpoint url: %v", err)}
	}

	probe, err := pharmaml.ProbeDocument("")
	if err != nil {
		return TestResult{Success: false, Message: fmt.Sprintf("failed to build probe document: %v", err)}
	}

	response, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeXML).
		SetBody(probe).
		Post(trimmedEndpoint)
	if err != nil {
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("endpoint unreachable (%s): %v", Classify(err), err),
		}
	}

	status := response.StatusCode()
	if status >= http.StatusInternalServerError {
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("endpoint responded with status %d", status),
		}
	}

	return TestResult{
		Success: true,
		Message: fmt.Sprintf("endpoint reachable, responded with status %d", status),
	}
}
