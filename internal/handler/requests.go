package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
)

// ListProductsRequest carries the listing query parameters
type ListProductsRequest struct {
	Name        string `query:"name" validate:"max=50"`
	SortByPrice bool   `query:"sort_by_price"`
	Order       string `query:"order"`
	Limit       int    `query:"limit" validate:"min=1,max=100"`
	Offset      int    `query:"offset" validate:"min=0"`
}

func newListProductsRequest() ListProductsRequest {
	q := catalog.DefaultQuery()
	return ListProductsRequest{Order: q.Order, Limit: q.Limit, Offset: q.Offset}
}

func (r ListProductsRequest) toQuery() catalog.Query {
	return catalog.Query{
		Name:        r.Name,
		SortByPrice: r.SortByPrice,
		Order:       r.Order,
		Limit:       r.Limit,
		Offset:      r.Offset,
	}
}

// ProductRequest is the create payload. Fields other than name and price are
// kept as attributes; id and created_at are assigned by the service.
type ProductRequest struct {
	Name       string         `json:"name" validate:"required,max=255"`
	Price      *float64       `json:"price" validate:"required,gte=0"`
	Attributes map[string]any `json:"-"`
}

func (r *ProductRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := decodeField(raw, "name", &req.Name); err != nil {
		return err
	}
	if err := decodeField(raw, "price", &req.Price); err != nil {
		return err
	}
	if req.Attributes, err = model.ExtraAttributes(raw); err != nil {
		return err
	}
	*r = req
	return nil
}

func (r ProductRequest) toNewProduct() catalog.NewProduct {
	return catalog.NewProduct{Name: r.Name, Price: *r.Price, Attributes: r.Attributes}
}

// ProductPatchRequest is the partial update payload; absent or null fields are left alone
type ProductPatchRequest struct {
	Name       *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Price      *float64       `json:"price" validate:"omitempty,gte=0"`
	Attributes map[string]any `json:"-"`
}

func (r *ProductPatchRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var req ProductPatchRequest
	if err := decodeField(raw, "name", &req.Name); err != nil {
		return err
	}
	if err := decodeField(raw, "price", &req.Price); err != nil {
		return err
	}
	if req.Attributes, err = model.ExtraAttributes(raw); err != nil {
		return err
	}
	*r = req
	return nil
}

func (r ProductPatchRequest) toPatch() model.ProductPatch {
	return model.ProductPatch{Name: r.Name, Price: r.Price, Attributes: r.Attributes}
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
