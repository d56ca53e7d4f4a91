package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProductNotFound is returned when no product carries the requested id
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProduct is returned when the store already holds an equivalent product
	ErrDuplicateProduct = errors.New("product already exists")
)

// reserved JSON keys owned by the typed fields of Product
const (
	keyID        = "id"
	keyName      = "name"
	keyPrice     = "price"
	keyCreatedAt = "created_at"
)

// Product represents a catalog entry. Attributes carries every descriptive field
// beyond the typed ones and is flattened next to them in JSON.
type Product struct {
	ID         string
	Name       string
	Price      float64
	CreatedAt  time.Time
	Attributes map[string]any

	// created_at exactly as it was read, written back while CreatedAt is unchanged
	createdAtRaw    json.RawMessage
	createdAtParsed time.Time
}

// timestamp layouts accepted for created_at, tried in order; zoneless values are UTC
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// MarshalJSON writes the product as a single flat object
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attributes)+4)
	for k, v := range p.Attributes {
		out[k] = v
	}
	out[keyID] = p.ID
	out[keyName] = p.Name
	out[keyPrice] = p.Price
	switch {
	case p.createdAtRaw != nil && p.CreatedAt.Equal(p.createdAtParsed):
		out[keyCreatedAt] = p.createdAtRaw
	case !p.CreatedAt.IsZero():
		out[keyCreatedAt] = p.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object; a missing price stays zero.
// An unparseable created_at leaves CreatedAt zero but is kept for re-encoding.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Product
	if v, ok := raw[keyID]; ok {
		if err := json.Unmarshal(v, &decoded.ID); err != nil {
			return fmt.Errorf("product id: %w", err)
		}
	}
	if v, ok := raw[keyName]; ok {
		if err := json.Unmarshal(v, &decoded.Name); err != nil {
			return fmt.Errorf("product name: %w", err)
		}
	}
	if v, ok := raw[keyPrice]; ok {
		if err := json.Unmarshal(v, &decoded.Price); err != nil {
			return fmt.Errorf("product price: %w", err)
		}
	}
	if v, ok := raw[keyCreatedAt]; ok {
		decoded.CreatedAt = parseCreatedAt(v)
		decoded.createdAtRaw = append(json.RawMessage(nil), v...)
		decoded.createdAtParsed = decoded.CreatedAt
	}

	attrs, err := ExtraAttributes(raw)
	if err != nil {
		return err
	}
	decoded.Attributes = attrs
	*p = decoded
	return nil
}

func parseCreatedAt(v json.RawMessage) time.Time {
	var text string
	if err := json.Unmarshal(v, &text); err != nil {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Clone returns a copy whose attribute map can be modified independently
func (p Product) Clone() Product {
	if p.Attributes != nil {
		attrs := make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		p.Attributes = attrs
	}
	return p
}

// ExtraAttributes decodes every key of raw that is not a typed Product field
func ExtraAttributes(raw map[string]json.RawMessage) (map[string]any, error) {
	var attrs map[string]any
	for k, v := range raw {
		switch k {
		case keyID, keyName, keyPrice, keyCreatedAt:
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("product attribute %q: %w", k, err)
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[k] = val
	}
	return attrs, nil
}

// ProductPatch is a partial update; nil fields are left untouched
type ProductPatch struct {
	Name       *string
	Price      *float64
	Attributes map[string]any
}

// Apply returns p with the patch applied. id and created_at never change.
func (patch ProductPatch) Apply(p Product) Product {
	updated := p.Clone()
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if len(patch.Attributes) > 0 && updated.Attributes == nil {
		updated.Attributes = make(map[string]any, len(patch.Attributes))
	}
	for k, v := range patch.Attributes {
		updated.Attributes[k] = v
	}
	return updated
}
