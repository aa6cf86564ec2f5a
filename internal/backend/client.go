// Package backend is the HTTP client of the fleet REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vendfleet/dashboard/internal/models"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 * 1024

// Config holds the backend connection settings
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client calls the backend on behalf of a session
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client. An empty URL is accepted; every call then
// fails with ErrNotConfigured.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a backend URL is set
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMachines lists the fleet
func (c *Client) ListMachines(ctx context.Context, token string) ([]models.Machine, error) {
	var machines []models.Machine
	if err := c.do(ctx, http.MethodGet, "/api/machines", token, nil, nil, &machines); err != nil {
		return nil, err
	}
	return machines, nil
}

// CreateMachine registers a machine
func (c *Client) CreateMachine(ctx context.Context, token string, req models.MachineRequest) (*models.Machine, error) {
	var machine models.Machine
	if err := c.do(ctx, http.MethodPost, "/api/machines", token, nil, req, &machine); err != nil {
		return nil, err
	}
	return &machine, nil
}

// GetMachine gets a machine by its machine id
func (c *Client) GetMachine(ctx context.Context, token, machineID string) (*models.Machine, error) {
	var machine models.Machine
	path := "/api/machines/" + url.PathEscape(machineID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &machine); err != nil {
		return nil, err
	}
	return &machine, nil
}

// ListInventory lists the inventory of a machine
func (c *Client) ListInventory(ctx context.Context, token, machineID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	path := "/api/machines/" + url.PathEscape(machineID) + "/inventory"
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateInventory changes quantity and price of an inventory item
func (c *Client) UpdateInventory(ctx context.Context, token, itemID string, upd models.InventoryUpdate) (*models.InventoryItem, error) {
	var item models.InventoryItem
	path := "/api/inventory/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodPatch, path, token, nil, upd, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AssignProduct places a product in a machine channel
func (c *Client) AssignProduct(ctx context.Context, token string, req models.InventoryAssignment) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodPost, "/api/inventory", token, nil, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListProducts lists the catalogue
func (c *Client) ListProducts(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", token, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a product to the catalogue
func (c *Client) CreateProduct(ctx context.Context, token string, req models.ProductRequest) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", token, nil, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListSales lists sales, optionally only those of one machine
func (c *Client) ListSales(ctx context.Context, token, machineID string) ([]models.Sale, error) {
	query := url.Values{}
	if machineID != "" {
		query.Set("machineId", machineID)
	}

	var sales []models.Sale
	if err := c.do(ctx, http.MethodGet, "/api/sales", token, query, nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// SalesPerformance gets the top products and machines for a date range
func (c *Client) SalesPerformance(ctx context.Context, token string, r models.DateRange) (*models.SalesPerformance, error) {
	query := url.Values{}
	if !r.Start.IsZero() {
		query.Set("startDate", r.Start.Format(models.DateLayout))
	}
	if !r.End.IsZero() {
		query.Set("endDate", r.End.Format(models.DateLayout))
	}

	var perf models.SalesPerformance
	if err := c.do(ctx, http.MethodGet, "/api/analytics/sales-performance", token, query, nil, &perf); err != nil {
		return nil, err
	}
	return &perf, nil
}

// AdminDashboard gets the KPIs, network status and recent activity
func (c *Client) AdminDashboard(ctx context.Context, token string) (*models.AdminDashboard, error) {
	var dash models.AdminDashboard
	if err := c.do(ctx, http.MethodGet, "/api/analytics/admin-dashboard", token, nil, nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// TechnicianDashboard gets the machines needing attention and low stock items
func (c *Client) TechnicianDashboard(ctx context.Context, token string) (*models.TechnicianDashboard, error) {
	var dash models.TechnicianDashboard
	if err := c.do(ctx, http.MethodGet, "/api/analytics/technician-dashboard", token, nil, nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// do issues one request and decodes the JSON answer into out
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, in, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: "decode " + path, Err: err}
	}
	return nil
}

// statusError builds a StatusError, picking up the backend {msg} when present
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Msg != "":
			msg = payload.Msg
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}

	return &StatusError{Code: resp.StatusCode, Msg: msg}
}
