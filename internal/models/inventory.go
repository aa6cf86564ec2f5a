package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity under which an item counts as low stock
const LowStockThreshold = 5

// Channel is the slot an item sits in. Some machines number their slots,
// others label them ("A1"), so both JSON forms are accepted.
type Channel string

// UnmarshalJSON accepts a string or a number.
func (c *Channel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Channel(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Channel(n.String())
	return nil
}

// InventoryItem is one loaded channel of a machine
type InventoryItem struct {
	ID        string          `json:"_id"`
	MachineID string          `json:"machineId,omitempty"`
	ChannelID Channel         `json:"channelId"`
	Product   ProductRef      `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Key identifies the item in cached collections
func (i InventoryItem) Key() string {
	return i.ID
}

// LowStock reports whether the item is under the low stock threshold
func (i InventoryItem) LowStock() bool {
	return i.Quantity < LowStockThreshold
}

// InventoryUpdate is the body of PATCH /api/inventory/:itemId
type InventoryUpdate struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// InventoryAssignment is the body of POST /api/inventory
type InventoryAssignment struct {
	MachineID string          `json:"machineId"`
	ProductID string          `json:"productId"`
	ChannelID string          `json:"channelId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
