package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransmissionStatus represents the lifecycle state of a transmission attempt.
type TransmissionStatus string

const (
	StatusPending TransmissionStatus = "PENDING"
	StatusSuccess TransmissionStatus = "SUCCESS"
	StatusError   TransmissionStatus = "ERROR"
	StatusTimeout TransmissionStatus = "TIMEOUT"
)

func (s TransmissionStatus) String() string { return string(s) }

func (s TransmissionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusError, StatusTimeout:
		return true
	}
	return false
}

// IsTerminal reports whether the status may never change again.
func (s TransmissionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusError, StatusTimeout:
		return true
	}
	return false
}

func ParseTransmissionStatusFromString(s string) (TransmissionStatus, error) {
	st := TransmissionStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid transmission status %q", ErrValidation, s)
	}
	return st, nil
}

// TransmissionRecord is one ledger entry per transmission attempt. A record
// is inserted as PENDING before the network call and finalized exactly once
// to a terminal status; finalized rows are immutable.
type TransmissionRecord struct {
	ID                  string
	OrderID             string
	SupplierID          string
	RequestXML          *string
	ResponseXML         *string
	Status              TransmissionStatus
	ErrorCode           *string
	Message             *string
	SupplierOrderNumber *string
	DurationMs          *int64
	CreatedAt           time.Time
}

// TransmissionFinalization carries the terminal values applied to a
// pending ledger record.
type TransmissionFinalization struct {
	Status              TransmissionStatus
	ResponseXML         *string
	ErrorCode           *string
	Message             *string
	SupplierOrderNumber *string
	DurationMs          *int64
}

func (f *TransmissionFinalization) Validate() error {
	if !f.Status.IsTerminal() {
		return fmt.Errorf("%w: finalization status must be terminal, got %q", ErrValidation, f.Status)
	}
	return nil
}
