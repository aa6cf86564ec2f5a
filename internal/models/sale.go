package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus represents the payment status of a sale
type SaleStatus string

const (
	SaleStatusApproved  SaleStatus = "approved"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusRejected  SaleStatus = "rejected"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// SaleItem is a line of a sale
type SaleItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal is quantity times unit price
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is a vending transaction
type Sale struct {
	ID            string     `json:"_id"`
	TransactionID string     `json:"vendingTransactionId"`
	MachineID     string     `json:"machineId"`
	Status        SaleStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	Items         []SaleItem `json:"items"`
}

// Key identifies the sale in cached collections
func (s Sale) Key() string {
	return s.ID
}

// Total sums quantity times price over all items
func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Summary lists the items as "3x Cola, 2x Chips"
func (s Sale) Summary() string {
	parts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}
	return strings.Join(parts, ", ")
}
