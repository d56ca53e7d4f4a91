package catalog

import "catalog-service/internal/model"

// Find returns the first product whose id equals id exactly
func Find(products []model.Product, id string) (model.Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, model.ErrProductNotFound
}
