// Package client is a Go client for the kirana storefront API, including
// the cart reconciler used by checkout frontends and kiosk builds.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kirana/internal/models"
)

// Client calls the storefront REST API. The session token is sent as a
// Bearer header, matching what the backend accepts from non-browser
// clients.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// New creates a Client for the API rooted at baseURL (for example
// "https://shop.example.com/api").
func New(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is the backend's JSON error shape.
type apiError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// Error reports the status and server message of a failed API call.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		message := ae.Message
		if message == "" {
			message = resp.Status
		}
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Me returns the authenticated user.
func (c *Client) Me() (*models.User, error) {
	var user models.User
	if err := c.do(http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sets the contact fields required for checkout.
func (c *Client) UpdateProfile(phone, address, geolocation string) (*models.User, error) {
	body := map[string]string{
		"phone_number": phone,
		"home_address": address,
		"geolocation":  geolocation,
	}
	var user models.User
	if err := c.do(http.MethodPut, "/user/profile", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Items returns a page of catalog items.
func (c *Client) Items(page, limit int) ([]models.Item, error) {
	var items []models.Item
	path := fmt.Sprintf("/items?page=%d&limit=%d", page, limit)
	if err := c.do(http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Categories returns the storefront category filter list.
func (c *Client) Categories() ([]string, error) {
	var names []string
	if err := c.do(http.MethodGet, "/categories", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetCart fetches the persisted cart.
func (c *Client) GetCart() (*models.Cart, error) {
	var cart models.Cart
	if err := c.do(http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// PutCart replaces the persisted cart wholesale.
func (c *Client) PutCart(lines []models.Line) (*models.Cart, error) {
	body := map[string]interface{}{"items": lines}
	var cart models.Cart
	if err := c.do(http.MethodPut, "/cart", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart drops the persisted cart.
func (c *Client) ClearCart() error {
	return c.do(http.MethodDelete, "/cart", nil, nil)
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(lines []models.Line, grandTotal float64) (*models.Order, error) {
	body := map[string]interface{}{"items": lines, "grand_total": grandTotal}
	var order models.Order
	if err := c.do(http.MethodPost, "/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders returns the caller's orders, newest first.
func (c *Client) Orders() ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder replaces an existing order's items and total.
func (c *Client) UpdateOrder(orderID string, lines []models.Line, grandTotal float64) (*models.Order, error) {
	body := map[string]interface{}{"items": lines, "grand_total": grandTotal}
	var order models.Order
	if err := c.do(http.MethodPut, "/orders/"+orderID, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(orderID string) error {
	return c.do(http.MethodDelete, "/orders/"+orderID, nil, nil)
}
