package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaleTotal(t *testing.T) {
	sale := Sale{Items: []SaleItem{
		{Name: "Cola", Price: decimal.RequireFromString("2.50"), Quantity: 3},
		{Name: "Chips", Price: decimal.RequireFromString("1.00"), Quantity: 2},
	}}

	if got := Money(sale.Total()); got != "$9.50" {
		t.Fatalf("Total() = %s, want $9.50", got)
	}
	if got := sale.Summary(); got != "3x Cola, 2x Chips" {
		t.Fatalf("Summary() = %q", got)
	}
}

func TestSaleTotalEmpty(t *testing.T) {
	if got := Money(Sale{}.Total()); got != "$0.00" {
		t.Fatalf("Total() of empty sale = %s, want $0.00", got)
	}
}

func TestSaleDecodesNumericPrices(t *testing.T) {
	raw := `{"_id":"s1","vendingTransactionId":"tx-1","machineId":"VM001","status":"approved",
		"createdAt":"2025-08-30T10:00:00Z","items":[{"name":"Water","quantity":4,"price":0.1}]}`

	var sale Sale
	if err := json.Unmarshal([]byte(raw), &sale); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := Money(sale.Total()); got != "$0.40" {
		t.Fatalf("Total() = %s, want $0.40", got)
	}
	if sale.Status != SaleStatusApproved {
		t.Fatalf("Status = %q", sale.Status)
	}
}
