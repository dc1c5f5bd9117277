// Package pack implements the gift pack composition engine: the
// selection store, the spatial arranger used by the basket view, and
// the ingestion adapter that normalizes click and drag/drop input.
package pack

import "errors"

// Engine error taxonomy. Validation errors are returned synchronously
// and never leave the store partially updated.
var (
	ErrEmptyProductID  = errors.New("pack: product id is empty")
	ErrOutOfRange      = errors.New("pack: item index out of range")
	ErrInvalidColor    = errors.New("pack: ribbon color not in palette")
	ErrInvalidQuantity = errors.New("pack: quantity must be at least 1")
	ErrEmptyPack       = errors.New("pack: no items selected")
	ErrBadPayload      = errors.New("pack: malformed drag payload")
)

// Product is a read-only catalog record. Prices are integer millimes.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceMillimes int64  `json:"price_millimes"`
	Image         string `json:"image,omitempty"`
	Category      string `json:"category"`
}

// SelectedItem is a product picked into the pack. Quantity starts at 1;
// picking the same product twice appends a second item rather than
// merging, preserving insertion order.
type SelectedItem struct {
	Product
	Quantity int
}

// GiftPack is the in-progress pack: ordered picks plus note and ribbon.
type GiftPack struct {
	Items       []SelectedItem
	Note        string
	RibbonColor string
}

// TotalPriceMillimes sums price x quantity over all items.
func (p GiftPack) TotalPriceMillimes() int64 {
	var total int64
	for _, it := range p.Items {
		total += it.PriceMillimes * int64(it.Quantity)
	}
	return total
}

// DefaultPalette is the ribbon palette used when config supplies none.
var DefaultPalette = []string{"#700100", "#1A1F2C", "#F1F0FB", "#FFD700"}

// Notification is a toast-like event for the presentation layer. The
// engine only emits these; it never renders them.
type Notification struct {
	Title       string
	Description string
	Style       string // palette color hint for the presenter
	ActionLabel string // optional follow-up, e.g. "Go to cart"
}

// Effects is the side-effect sink: toast notifications plus a
// fire-and-forget audio cue on item add. Implementations must be cheap
// and must not call back into the store.
type Effects interface {
	Notify(n Notification)
	PlayTick()
}

// NopEffects discards all effects. Useful default for tests.
type NopEffects struct{}

func (NopEffects) Notify(Notification) {}
func (NopEffects) PlayTick()           {}
