package domain

import (
	"fmt"
	"strings"
	"time"
)

// SupplierConfig holds the PharmaML protocol parameters for one supplier.
// Configs are never hard-deleted; a supplier is taken out of service by
// setting Enabled to false.
type SupplierConfig struct {
	SupplierID     string
	Enabled        bool
	EndpointURL    string
	DispatcherCode string
	DispatcherID   string
	SecretKey      string
	OfficineID     string
	CountryCode    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Normalize trims all textual fields and upper-cases the country code.
func (c *SupplierConfig) Normalize() {
	c.SupplierID = strings.TrimSpace(c.SupplierID)
	c.EndpointURL = strings.TrimSpace(c.EndpointURL)
	c.DispatcherCode = strings.TrimSpace(c.DispatcherCode)
	c.DispatcherID = strings.TrimSpace(c.DispatcherID)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.OfficineID = strings.TrimSpace(c.OfficineID)
	c.CountryCode = strings.ToUpper(strings.TrimSpace(c.CountryCode))
}

// Validate enforces the save-time invariant: an enabled config must carry
// every field needed to reach the wholesaler.
func (c *SupplierConfig) Validate() error {
	if c.SupplierID == "" {
		return fmt.Errorf("%w: supplier id is required", ErrValidation)
	}
	if !c.Enabled {
		return nil
	}
	if c.EndpointURL == "" {
		return fmt.Errorf("%w: endpointUrl is required when pharmaml is enabled", ErrValidation)
	}
	if c.DispatcherID == "" {
		return fmt.Errorf("%w: dispatcherId is required when pharmaml is enabled", ErrValidation)
	}
	if c.OfficineID == "" {
		return fmt.Errorf("%w: officineId is required when pharmaml is enabled", ErrValidation)
	}
	return nil
}

// IsConfigured reports whether the supplier can be sent to. A disabled
// config always short-circuits to false regardless of the other fields,
// and a pre-existing invalid record never counts as configured.
func (c *SupplierConfig) IsConfigured() bool {
	if c == nil || !c.Enabled {
		return false
	}
	return c.EndpointURL != "" && c.DispatcherID != "" && c.OfficineID != ""
}
