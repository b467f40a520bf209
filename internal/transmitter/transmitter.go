// Package transmitter is the outbound wire port: it POSTs PharmaML
// documents to supplier endpoints and classifies transport failures.
package transmitter

import "context"

// Transmitter posts an XML document to a supplier endpoint and returns the
// raw response for any HTTP status received. Transport-level failures are
// returned as *TransportError.
type Transmitter interface {
	Transmit(ctx context.Context, endpointURL string, body []byte) (*WireResponse, error)
}

// WireResponse stores the raw supplier response for parsing and audit.
type WireResponse struct {
	StatusCode int
	Body       string
}

// TestResult is the outcome of a configuration-time endpoint probe.
type TestResult struct {
	Success bool
	Message string
}

// ConnectionTester validates endpoint reachability without creating an
// order and without touching the transmission ledger.
type ConnectionTester interface {
	Test(ctx context.Context, endpointURL string) TestResult
}
