package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/reconcile"
	"github.com/vendfleet/dashboard/internal/screen"
)

// ErrItemNotFound is returned when an item is not in the machine's inventory
var ErrItemNotFound = errors.New("inventory item not found")

// RowMode is the mode of one inventory table row
type RowMode string

const (
	RowView RowMode = "view"
	RowEdit RowMode = "edit"
)

// Row is an inventory item as shown in the table
type Row struct {
	Item     models.InventoryItem
	Mode     RowMode
	Quantity string
	Price    string
	Err      string
}

type rowEdit struct {
	quantity string
	price    string
	err      string
}

// FormAssign returns the form key of the assign product form of a machine
func FormAssign(machineID string) string {
	return "assign:" + machineID
}

// InventoryService serves a machine's inventory and its row editor
type InventoryService struct {
	client *backend.Client
	forms  *screen.FormStore
	items  *screen.Loader[[]models.InventoryItem]

	mu    sync.Mutex
	edits map[string]map[string]rowEdit
}

// NewInventoryService creates a new inventory service
func NewInventoryService(client *backend.Client, cache *screen.Cache, forms *screen.FormStore, staleAfter time.Duration) *InventoryService {
	return &InventoryService{
		client: client,
		forms:  forms,
		items:  screen.NewLoader[[]models.InventoryItem](cache, "inventory", staleAfter),
		edits:  make(map[string]map[string]rowEdit),
	}
}

// Items lists the inventory of a machine
func (s *InventoryService) Items(ctx context.Context, v Viewer, machineID string, refresh bool) ([]models.InventoryItem, error) {
	return s.items.Load(ctx, v.SessionID, machineID, refresh, func(ctx context.Context) ([]models.InventoryItem, error) {
		return s.client.ListInventory(ctx, v.token(), machineID)
	})
}

// Rows pairs items with their edit state
func (s *InventoryService) Rows(v Viewer, machineID string, items []models.InventoryItem) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{Item: item, Mode: RowView}
		if e, ok := s.edits[v.SessionID][rowKey(machineID, item.ID)]; ok {
			row.Mode = RowEdit
			row.Quantity = e.quantity
			row.Price = e.price
			row.Err = e.err
		}
		rows = append(rows, row)
	}
	return rows
}

// Edit switches a row to EDIT, seeding its fields from the cached item. A
// row already in EDIT keeps what the user typed.
func (s *InventoryService) Edit(v Viewer, machineID, itemID string) error {
	items, _ := s.items.Peek(v.SessionID, machineID)
	item, ok := reconcile.Find(items, itemID)
	if !ok {
		return ErrItemNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := rowKey(machineID, itemID)
	if _, editing := s.edits[v.SessionID][key]; editing {
		return nil
	}
	s.setEdit(v.SessionID, key, rowEdit{
		quantity: strconv.Itoa(item.Quantity),
		price:    item.Price.StringFixed(2),
	})
	return nil
}

// Cancel discards a row's edits and returns it to VIEW
func (s *InventoryService) Cancel(v Viewer, machineID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edits[v.SessionID], rowKey(machineID, itemID))
}

// Save sends the row's quantity and price. On success the returned item is
// merged into the cached inventory and the row goes back to VIEW; on failure
// the row stays in EDIT with the entered values and the error message.
func (s *InventoryService) Save(ctx context.Context, v Viewer, machineID, itemID, quantity, price string) (*models.InventoryItem, error) {
	key := rowKey(machineID, itemID)

	updated, err := s.save(ctx, v, machineID, itemID, quantity, price)
	if err != nil {
		s.mu.Lock()
		s.setEdit(v.SessionID, key, rowEdit{
			quantity: quantity,
			price:    price,
			err:      Message(err, "Could not update the item."),
		})
		s.mu.Unlock()
		return nil, err
	}

	s.items.Update(v.SessionID, machineID, func(items []models.InventoryItem) []models.InventoryItem {
		if prev, ok := reconcile.Find(items, updated.ID); ok {
			fillFrom(updated, prev)
		}
		return reconcile.Merge(items, *updated)
	})

	s.mu.Lock()
	delete(s.edits[v.SessionID], key)
	s.mu.Unlock()
	return updated, nil
}

func (s *InventoryService) save(ctx context.Context, v Viewer, machineID, itemID, quantity, price string) (*models.InventoryItem, error) {
	values := map[string]string{"quantity": quantity, "price": price}
	if err := screen.Required(values, "quantity", "price"); err != nil {
		return nil, err
	}

	upd, err := parseStock(quantity, price)
	if err != nil {
		return nil, err
	}

	updated, err := s.client.UpdateInventory(ctx, v.token(), itemID, models.InventoryUpdate{
		Quantity: upd.qty,
		Price:    upd.price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item %s: %w", itemID, err)
	}
	if updated.ID == "" {
		updated.ID = itemID
	}
	if updated.MachineID == "" {
		updated.MachineID = machineID
	}
	return updated, nil
}

// fillFrom keeps display details the update response left out
func fillFrom(updated *models.InventoryItem, prev models.InventoryItem) {
	if !updated.Product.Populated() && (updated.Product.ID == "" || updated.Product.ID == prev.Product.ID) {
		updated.Product = prev.Product
	}
	if updated.ChannelID == "" {
		updated.ChannelID = prev.ChannelID
	}
}

// Assign puts a product into a channel of a machine and merges the new item
// into the cached inventory
func (s *InventoryService) Assign(ctx context.Context, v Viewer, machineID string, values map[string]string, products []models.Product) (*models.InventoryItem, error) {
	item, err := s.assign(ctx, v, machineID, values)
	if err != nil {
		s.forms.Fail(v.SessionID, FormAssign(machineID), values, Message(err, "Could not assign the product."))
		return nil, err
	}

	if !item.Product.Populated() {
		if p, ok := reconcile.Find(products, item.Product.ID); ok {
			item.Product = models.ProductRef{ID: p.ID, SKU: p.SKU, Name: p.Name}
		}
	}

	s.items.Update(v.SessionID, machineID, func(items []models.InventoryItem) []models.InventoryItem {
		return reconcile.Merge(items, *item)
	})
	s.forms.Close(v.SessionID, FormAssign(machineID))
	return item, nil
}

func (s *InventoryService) assign(ctx context.Context, v Viewer, machineID string, values map[string]string) (*models.InventoryItem, error) {
	if err := screen.Required(values, "productId", "channelId", "quantity", "price"); err != nil {
		return nil, err
	}

	upd, err := parseStock(values["quantity"], values["price"])
	if err != nil {
		return nil, err
	}

	item, err := s.client.AssignProduct(ctx, v.token(), models.InventoryAssignment{
		MachineID: machineID,
		ProductID: strings.TrimSpace(values["productId"]),
		ChannelID: strings.ToUpper(strings.TrimSpace(values["channelId"])),
		Quantity:  upd.qty,
		Price:     upd.price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign product to %s: %w", machineID, err)
	}
	if item.Product.ID == "" {
		item.Product.ID = strings.TrimSpace(values["productId"])
	}
	return item, nil
}

// Drop forgets every row edit of a session
func (s *InventoryService) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edits, sid)
}

func (s *InventoryService) setEdit(sid, key string, e rowEdit) {
	perSession, ok := s.edits[sid]
	if !ok {
		perSession = make(map[string]rowEdit)
		s.edits[sid] = perSession
	}
	perSession[key] = e
}

func rowKey(machineID, itemID string) string {
	return machineID + "/" + itemID
}

type stock struct {
	qty   int
	price decimal.Decimal
}

func parseStock(quantity, price string) (stock, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil || qty < 0 {
		return stock{}, &ValidationError{Msg: "Quantity must be a whole number of zero or more."}
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil || p.IsNegative() {
		return stock{}, &ValidationError{Msg: "Price must be a number of zero or more."}
	}
	return stock{qty: qty, price: p.Round(2)}, nil
}
