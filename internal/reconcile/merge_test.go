package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vendfleet/dashboard/internal/models"
)

func TestMergeReplacesByKey(t *testing.T) {
	items := []models.InventoryItem{
		{ID: "a", Quantity: 10, Price: decimal.RequireFromString("5.00")},
		{ID: "b", Quantity: 1},
	}
	updated := models.InventoryItem{ID: "a", Quantity: 7, Price: decimal.RequireFromString("5.50")}

	got := Merge(items, updated)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Quantity != 7 || !got[0].Price.Equal(decimal.RequireFromString("5.50")) {
		t.Fatalf("merged item = %+v", got[0])
	}
	if items[0].Quantity != 10 {
		t.Fatalf("input collection was modified")
	}
}

func TestMergeAppendsUnknownKey(t *testing.T) {
	machines := []models.Machine{{ID: "1", MachineID: "VM001"}}

	got := Merge(machines, models.Machine{ID: "2", MachineID: "VM002"})

	if len(got) != 2 || got[1].MachineID != "VM002" {
		t.Fatalf("Merge() = %+v", got)
	}
	if len(machines) != 1 {
		t.Fatalf("input collection was modified")
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	products := []models.Product{{ID: "p", Name: "old"}}

	products = Merge(products, models.Product{ID: "p", Name: "first"})
	products = Merge(products, models.Product{ID: "p", Name: "second"})

	if len(products) != 1 || products[0].Name != "second" {
		t.Fatalf("Merge() = %+v", products)
	}
}

func TestMergeNilCollection(t *testing.T) {
	got := Merge[models.Product](nil, models.Product{ID: "p"})
	if len(got) != 1 {
		t.Fatalf("Merge(nil) = %+v", got)
	}

	if _, ok := Find(got, "missing"); ok {
		t.Fatalf("Find() found a missing key")
	}
	if p, ok := Find(got, "p"); !ok || p.ID != "p" {
		t.Fatalf("Find() = %+v, %v", p, ok)
	}
}
