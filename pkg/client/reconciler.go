package client

import (
	"errors"
	"sync"
	"time"

	"kirana/internal/models"
)

// DefaultSaveDelay is how long the reconciler waits after the last mutation
// before persisting the cart. Each mutation resets the timer, so a burst of
// quantity taps collapses into a single save.
const DefaultSaveDelay = 500 * time.Millisecond

// Reconciler errors.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProfileIncomplete = errors.New("phone number and address are required before ordering")
)

// Reconciler keeps a local cart line list and mirrors it to the backend
// with debounced wholesale saves. Mutations update local state immediately;
// persistence failures are reported through the error handler and never
// roll local state back, so the UI stays responsive and the next save
// re-converges. Concurrent sessions are last write wins.
type Reconciler struct {
	api     *Client
	delay   time.Duration
	onError func(error)

	mu      sync.Mutex
	lines   []models.Line
	timer   *time.Timer
	editing string // order ID when editing a placed order, else empty
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSaveDelay overrides the debounce delay.
func WithSaveDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.delay = d }
}

// WithErrorHandler installs a callback for background save failures.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Reconciler) { r.onError = fn }
}

// NewReconciler creates a Reconciler on top of api.
func NewReconciler(api *Client, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:     api,
		delay:   DefaultSaveDelay,
		onError: func(error) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load hydrates local state from the persisted cart.
func (r *Reconciler) Load() error {
	cart, err := r.api.GetCart()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.lines = append([]models.Line(nil), cart.Items...)
	r.mu.Unlock()
	return nil
}

// Lines returns a copy of the local cart lines.
func (r *Reconciler) Lines() []models.Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Line(nil), r.lines...)
}

// GrandTotal returns the current local cart total.
func (r *Reconciler) GrandTotal() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.SumLineTotals(r.lines)
}

// Add puts one unit of item in the cart. Adding an item already present
// increments its quantity instead of duplicating the line.
func (r *Reconciler) Add(item models.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].ItemID == item.ID {
			r.lines[i].Quantity++
			r.lines[i].Total = models.Round2(r.lines[i].Rate * r.lines[i].Quantity)
			r.scheduleSaveLocked()
			return
		}
	}
	r.lines = append(r.lines, models.Line{
		ItemID:   item.ID,
		ItemName: item.Name,
		Rate:     item.Rate,
		Quantity: 1,
		Total:    models.Round2(item.Rate),
	})
	r.scheduleSaveLocked()
}

// SetQuantity sets a line's quantity. The stepper never goes below one
// unit; removing a line takes an explicit Remove. Unknown items are
// ignored.
func (r *Reconciler) SetQuantity(itemID string, quantity float64) {
	if quantity < 1 {
		quantity = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].ItemID == itemID {
			r.lines[i].Quantity = quantity
			r.lines[i].Total = models.Round2(r.lines[i].Rate * quantity)
			r.scheduleSaveLocked()
			return
		}
	}
}

// Remove drops a line from the cart.
func (r *Reconciler) Remove(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.lines {
		if r.lines[i].ItemID == itemID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			r.scheduleSaveLocked()
			return
		}
	}
}

// scheduleSaveLocked arms the debounce timer, resetting it if already
// armed. Callers must hold r.mu.
func (r *Reconciler) scheduleSaveLocked() {
	if r.timer == nil {
		r.timer = time.AfterFunc(r.delay, func() {
			if err := r.saveNow(); err != nil {
				r.onError(err)
			}
		})
		return
	}
	r.timer.Reset(r.delay)
}

// Flush cancels any pending debounce and persists the cart immediately.
func (r *Reconciler) Flush() error {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()
	return r.saveNow()
}

func (r *Reconciler) saveNow() error {
	r.mu.Lock()
	snapshot := append([]models.Line(nil), r.lines...)
	r.mu.Unlock()

	_, err := r.api.PutCart(snapshot)
	return err
}

// EditOrder loads a placed order's lines back into the cart for editing.
// The draft persists through the normal cart-save flow; Checkout then
// updates the order in place.
func (r *Reconciler) EditOrder(order *models.Order) {
	r.mu.Lock()
	r.editing = order.ID
	r.lines = append([]models.Line(nil), order.Items...)
	r.scheduleSaveLocked()
	r.mu.Unlock()
}

// CancelEdit abandons an in-progress order edit, leaving the cart empty
// and the original order untouched.
func (r *Reconciler) CancelEdit() error {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.editing = ""
	r.lines = nil
	r.mu.Unlock()
	return r.api.ClearCart()
}

// Checkout submits the cart as an order: a new one normally, or an
// in-place update when editing. The profile must carry a phone number and
// address first. On success the cart is cleared locally and server-side.
func (r *Reconciler) Checkout() (*models.Order, error) {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	lines := append([]models.Line(nil), r.lines...)
	editing := r.editing
	r.mu.Unlock()

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrEmptyCart
		}
	}

	user, err := r.api.Me()
	if err != nil {
		return nil, err
	}
	if user.PhoneNumber == "" || user.HomeAddress == "" {
		return nil, ErrProfileIncomplete
	}

	total := models.SumLineTotals(lines)
	var order *models.Order
	if editing != "" {
		order, err = r.api.UpdateOrder(editing, lines, total)
	} else {
		order, err = r.api.PlaceOrder(lines, total)
	}
	if err != nil {
		return nil, err
	}

	if err := r.api.ClearCart(); err != nil {
		r.onError(err)
	}
	r.mu.Lock()
	r.lines = nil
	r.editing = ""
	r.mu.Unlock()
	return order, nil
}
