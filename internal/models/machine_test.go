package models

import (
	"encoding/json"
	"testing"
)

func TestMachineLocationForms(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantName  string
		wantValid bool
	}{
		{"object", `{"_id":"1","machineId":"VM001","location":{"name":"Lobby","latitude":20.6,"longitude":-103.3},"status":"online"}`, "Lobby", true},
		{"bare name", `{"_id":"2","machineId":"VM002","location":"Campus","status":"offline"}`, "Campus", false},
		{"missing", `{"_id":"3","machineId":"VM003","status":"maintenance"}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Machine
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if m.Location.Name != tt.wantName {
				t.Errorf("Location.Name = %q, want %q", m.Location.Name, tt.wantName)
			}
			if m.Location.Valid() != tt.wantValid {
				t.Errorf("Location.Valid() = %v, want %v", m.Location.Valid(), tt.wantValid)
			}
		})
	}
}

func TestMachinesNeedingAttention(t *testing.T) {
	fleet := []Machine{
		{ID: "1", Status: MachineStatusOnline},
		{ID: "2", Status: MachineStatusOffline},
		{ID: "3", Status: MachineStatusMaintenance},
	}

	got := MachinesNeedingAttention(fleet)
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Fatalf("MachinesNeedingAttention() = %+v", got)
	}
}

func TestInventoryItemAcceptsNumericChannelAndProductID(t *testing.T) {
	raw := `{"_id":"i1","channelId":12,"productId":"p1","quantity":3,"price":18.5}`

	var item InventoryItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.ChannelID != "12" {
		t.Errorf("ChannelID = %q, want 12", item.ChannelID)
	}
	if item.Product.ID != "p1" || item.Product.Populated() {
		t.Errorf("Product = %+v", item.Product)
	}
	if !item.LowStock() {
		t.Errorf("LowStock() = false for quantity 3")
	}
	if Money(item.Price) != "$18.50" {
		t.Errorf("Price = %s", Money(item.Price))
	}
}

func TestSessionNormalize(t *testing.T) {
	s := Session{Role: RoleAdmin, UserName: "Ana"}.Normalize()
	if s != (Session{}) {
		t.Fatalf("Normalize() without token = %+v, want zero", s)
	}

	full := Session{Token: "t", Role: RoleSales, UserName: "luis"}
	if full.Normalize() != full {
		t.Fatalf("Normalize() changed an authenticated session")
	}
	if full.Initial() != "L" {
		t.Fatalf("Initial() = %q", full.Initial())
	}
}
