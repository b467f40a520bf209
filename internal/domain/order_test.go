package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderValidate(t *testing.T) {
	t.Parallel()

	base := Order{
		ID:         "ord-1",
		SupplierID: "sup-1",
		OfficineID: "OFF-77",
		CreatedAt:  time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC),
		Lines: []OrderLine{
			{ProductCode: "3400935955838", Quantity: 4, UnitPrice: decimal.RequireFromString("1250")},
		},
	}

	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr bool
	}{
		{
			name:   "valid order",
			mutate: func(o *Order) {},
		},
		{
			name: "missing order id",
			mutate: func(o *Order) {
				o.ID = " "
			},
			wantErr: true,
		},
		{
			name: "missing supplier id",
			mutate: func(o *Order) {
				o.SupplierID = ""
			},
			wantErr: true,
		},
		{
			name: "zero lines",
			mutate: func(o *Order) {
				o.Lines = nil
			},
			wantErr: true,
		},
		{
			name: "line without product code",
			mutate: func(o *Order) {
				o.Lines = []OrderLine{{ProductCode: "", Quantity: 1, UnitPrice: decimal.Zero}}
			},
			wantErr: true,
		},
		{
			name: "line with zero quantity",
			mutate: func(o *Order) {
				o.Lines = []OrderLine{{ProductCode: "3400935955838", Quantity: 0, UnitPrice: decimal.Zero}}
			},
			wantErr: true,
		},
		{
			name: "line with negative price",
			mutate: func(o *Order) {
				o.Lines = []OrderLine{{ProductCode: "3400935955838", Quantity: 1, UnitPrice: decimal.RequireFromString("-0.01")}}
			},
			wantErr: true,
		},
		{
			name: "free line with zero price",
			mutate: func(o *Order) {
				o.Lines = []OrderLine{{ProductCode: "3400935955838", Quantity: 1, UnitPrice: decimal.Zero}}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
