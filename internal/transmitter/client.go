package transmitter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultSendTimeout bounds a synchronous, user-facing send.
	DefaultSendTimeout = 15 * time.Second

	contentTypeXML = "application/xml; charset=utf-8"
)

// HTTPTransmitter posts PharmaML documents over HTTP(S).
type HTTPTransmitter struct {
	client *resty.Client
}

func NewHTTPTransmitter(timeout time.Duration) *HTTPTransmitter {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	// Retrying against a stateful wholesaler endpoint risks duplicate
	// order creation on their side; retries are always a caller decision.
	client.SetRetryCount(0)

	return &HTTPTransmitter{client: client}
}

func NewHTTPTransmitterWithClient(client *resty.Client) (*HTTPTransmitter, error) {
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(DefaultSendTimeout)
	}
	client.SetRetryCount(0)

	return &HTTPTransmitter{client: client}, nil
}

// Transmit posts the document and returns the raw response for any HTTP
// status: PharmaML servers may report domain-level errors inside a 200
// body, so status interpretation belongs to the response parser.
func (t *HTTPTransmitter) Transmit(ctx context.Context, endpointURL string, body []byte) (*WireResponse, error) {
	if t == nil || t.client == nil {
		return nil, fmt.Errorf("transmitter is not initialized")
	}

	trimmedEndpoint := strings.TrimSpace(endpointURL)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("endpoint url is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}

	response, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeXML).
		SetHeader("Accept", "application/xml").
		SetBody(body).
		Post(trimmedEndpoint)
	if err != nil {
		return nil, &TransportError{
			Class:   Classify(err),
			Message: "pharmaml request failed",
			Cause:   err,
		}
	}
	if response == nil {
		return nil, &TransportError{
			Class:   ClassNetwork,
			Message: "pharmaml endpoint returned empty response",
		}
	}

	return &WireResponse{
		StatusCode: response.StatusCode(),
		Body:       response.String(),
	}, nil
}
