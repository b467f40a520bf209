package pharmaml

import (
	"encoding/xml"
	"strings"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
)

// Protocol-level error codes surfaced on the ledger.
const (
	ErrCodeMalformed        = "PROTOCOL_MALFORMED"
	ErrCodeUnknown          = "PROTOCOL_UNKNOWN"
	ErrCodeSupplierRejected = "SUPPLIER_REJECTED"
)

// ParsedResult is the classified outcome of a supplier response body.
type ParsedResult struct {
	Status              domain.TransmissionStatus
	SupplierOrderNumber string
	Message             string
	ErrorCode           string
}

// Parse classifies a raw response body. It fails closed: success is only
// reported for a well-formed acknowledgement carrying a supplier order
// number; everything ambiguous is an error. Supplier diagnostic text is
// surfaced verbatim, never discarded.
func Parse(rawBody []byte) ParsedResult {
	var resp orderResponse
	if err := xml.Unmarshal(rawBody, &resp); err != nil {
		return ParsedResult{
			Status:    domain.StatusError,
			ErrorCode: ErrCodeMalformed,
			Message:   "response is not well-formed XML: " + err.Error(),
		}
	}

	if resp.XMLName.Local != RootElement {
		return ParsedResult{
			Status:    domain.StatusError,
			ErrorCode: ErrCodeMalformed,
			Message:   "unexpected response root element " + resp.XMLName.Local,
		}
	}

	if resp.Rejection != nil {
		code := strings.TrimSpace(resp.Rejection.Code)
		if code == "" {
			code = ErrCodeSupplierRejected
		}
		return ParsedResult{
			Status:    domain.StatusError,
			ErrorCode: code,
			Message:   resp.Rejection.Message,
		}
	}

	if resp.Ack != nil {
		number := strings.TrimSpace(resp.Ack.SupplierOrderNumber)
		if number != "" {
			return ParsedResult{
				Status:              domain.StatusSuccess,
				SupplierOrderNumber: number,
				Message:             resp.Ack.Message,
			}
		}
	}

	return ParsedResult{
		Status:    domain.StatusError,
		ErrorCode: ErrCodeUnknown,
		Message:   "response is well-formed but carries no recognizable acknowledgement",
	}
}
