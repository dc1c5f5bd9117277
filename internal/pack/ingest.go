package pack

import (
	"encoding/json"
	"fmt"
)

// PayloadKey is the conventional structured-data key a drag source
// attaches the serialized product under.
const PayloadKey = "application/x-giftforge-product"

// EncodePayload serializes a product for a drag source.
func EncodePayload(p Product) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses a drag payload back into a product. Malformed
// JSON or a missing id yields ErrBadPayload.
func DecodePayload(data []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.ID == "" {
		return Product{}, fmt.Errorf("%w: missing product id", ErrBadPayload)
	}
	return p, nil
}

// Ingestor normalizes the two selection inputs (catalog click and
// drag/drop payload) into Store.AddItem. It validates and converts
// formats only; business rules stay in the store.
type Ingestor struct {
	Store   *Store
	Effects Effects
}

// Select is the click-to-select path.
func (in *Ingestor) Select(p Product) error {
	return in.Store.AddItem(p)
}

// Drop is the drag/drop path. A malformed payload is swallowed: the
// store is untouched, a warning effect makes the failure observable,
// and the returned error carries ErrBadPayload for callers that care.
func (in *Ingestor) Drop(payload []byte) error {
	p, err := DecodePayload(payload)
	if err != nil {
		if in.Effects != nil {
			in.Effects.Notify(Notification{
				Title:       "Could not add item",
				Description: "The dropped item could not be read.",
			})
		}
		return err
	}
	return in.Store.AddItem(p)
}
