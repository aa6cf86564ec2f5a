package models

import (
	"bytes"
	"encoding/json"
)

// Product is an item of the general catalogue
type Product struct {
	ID          string `json:"_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Key identifies the product in cached collections
func (p Product) Key() string {
	return p.ID
}

// ProductRequest is used for product creation
type ProductRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

// ProductRef is the product an inventory item points at. The backend sends
// either the populated product or only its id.
type ProductRef struct {
	ID   string `json:"_id,omitempty"`
	SKU  string `json:"sku,omitempty"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a product object or a bare id string.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ProductRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = ProductRef{ID: id}
		return nil
	}

	type plain ProductRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProductRef(v)
	return nil
}

// Populated reports whether the reference carries display details
func (p ProductRef) Populated() bool {
	return p.Name != ""
}
