package state

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const CartKey = "storefront-cart"

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Item is what the shopper adds: a product in one size and colour, with the
// price, name and image captured at the time.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
}

type Line struct {
	ID string `json:"id"`
	Item
}

// Cart is safe for concurrent use. Every mutation is persisted before it
// becomes visible; a failed save leaves the cart as it was.
type Cart struct {
	mu    sync.Mutex
	store Store
	log   *slog.Logger
	lines []Line
}

// NewCart rehydrates from store. A value that cannot be decoded is logged and
// the cart starts empty.
func NewCart(store Store, log *slog.Logger) *Cart {
	if log == nil {
		log = slog.Default()
	}
	c := &Cart{store: store, log: log}

	data, ok, err := store.Load(CartKey)
	switch {
	case err != nil:
		log.Warn("load cart", "error", err)
	case ok:
		var lines []Line
		if err := json.Unmarshal(data, &lines); err != nil {
			log.Warn("stored cart is corrupt, starting empty", "error", err)
		} else {
			c.lines = lines
		}
	}
	return c
}

// Add merges item into the line with the same product, size and colour, or
// appends a new line.
func (c *Cart) Add(item Item) (Line, error) {
	if item.Quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]Line(nil), c.lines...)
	for i, l := range next {
		if l.ProductID == item.ProductID && l.Size == item.Size && l.Color == item.Color {
			next[i].Quantity += item.Quantity
			if err := c.commit(next); err != nil {
				return Line{}, err
			}
			return next[i], nil
		}
	}

	line := Line{ID: uuid.NewString(), Item: item}
	next = append(next, line)
	if err := c.commit(next); err != nil {
		return Line{}, err
	}
	return line, nil
}

// Remove drops the line with the given id. Unknown ids are ignored.
func (c *Cart) Remove(lineID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ID != lineID {
			next = append(next, l)
		}
	}
	if len(next) == len(c.lines) {
		return nil
	}
	return c.commit(next)
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit([]Line{})
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, l := range c.lines {
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}

func (c *Cart) commit(next []Line) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := c.store.Save(CartKey, data); err != nil {
		return err
	}
	c.lines = next
	return nil
}
