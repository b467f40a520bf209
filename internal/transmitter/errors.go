package transmitter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Transport failure classes recorded as ledger error codes.
const (
	ClassTimeout = "TIMEOUT"
	ClassDNS     = "NETWORK_DNS"
	ClassRefused = "NETWORK_REFUSED"
	ClassTLS     = "NETWORK_TLS"
	ClassNetwork = "NETWORK"
)

// TransportError classifies a failure that happened before any response
// body was received.
type TransportError struct {
	Class   string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	parts = append(parts, "transport error")
	if e.Class != "" {
		parts = append(parts, fmt.Sprintf("class=%s", e.Class))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Classify maps a transport failure onto a failure class.
func Classify(err error) string {
	if err == nil {
		return ClassNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ClassRefused
	}

	var certVerifyErr *tls.CertificateVerificationError
	var recordErr tls.RecordHeaderError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certVerifyErr) || errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) {
		return ClassTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	return ClassNetwork
}

// IsTimeout reports whether the error represents an exceeded send budget.
func IsTimeout(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Class == ClassTimeout
	}
	return Classify(err) == ClassTimeout
}
