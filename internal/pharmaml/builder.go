package pharmaml

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
)

// BuildOrderRequest maps an order and a supplier configuration into a
// protocol-compliant XML document. The caller is responsible for rejecting
// empty or otherwise invalid orders before calling; the builder assumes a
// pre-validated order and config.
func BuildOrderRequest(order domain.Order, cfg domain.SupplierConfig) ([]byte, error) {
	dialect := DialectFor(cfg.CountryCode)

	orderDate := order.CreatedAt
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	header := orderHeader{
		OrderRef:       order.ID,
		OrderDate:      orderDate.Format(dialect.DateFormat),
		DispatcherCode: cfg.DispatcherCode,
		DispatcherID:   cfg.DispatcherID,
		OfficineID:     cfg.OfficineID,
		LineCount:      len(order.Lines),
	}
	if dialect.EmbedSecretKey {
		header.SecretKey = cfg.SecretKey
	}

	lines := make([]orderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLine{
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(dialect.PriceScale),
		})
	}

	doc := OrderRequest{
		Version: dialect.Version,
		Order: orderElement{
			Header: header,
			Lines:  lines,
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize order %s: %w", order.ID, err)
	}

	return append([]byte(xml.Header), body...), nil
}
