package catalog

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"github.com/google/uuid"
)

// Store persists the ordered catalog. Implementations live in internal/store.
type Store interface {
	// Load returns the whole catalog in insertion order
	Load(ctx context.Context) ([]model.Product, error)
	// Insert appends p, or fails with model.ErrDuplicateProduct
	Insert(ctx context.Context, p model.Product) error
	// Replace overwrites the product with p.ID, or fails with model.ErrProductNotFound
	Replace(ctx context.Context, p model.Product) error
	// Delete removes the product with id, or fails with model.ErrProductNotFound
	Delete(ctx context.Context, id string) error
}

// NewProduct is the validated payload of a create request
type NewProduct struct {
	Name       string
	Price      float64
	Attributes map[string]any
}

// Service answers catalog requests. Every call reads the catalog afresh.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option customises a Service
type Option func(*Service)

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides product id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) load(ctx context.Context) ([]model.Product, error) {
	defer prometheus.TrackStoreOperation("load")(time.Now())
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	prometheus.SetCatalogSize(len(products))
	return products, nil
}

// List runs the query pipeline over the current catalog
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	products, err := s.load(ctx)
	if err != nil {
		return Page{}, err
	}
	return Run(products, q)
}

// Get looks a product up by id
func (s *Service) Get(ctx context.Context, id string) (model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return model.Product{}, err
	}
	return Find(products, id)
}

// Create assigns an id and creation time and stores the product
func (s *Service) Create(ctx context.Context, in NewProduct) (model.Product, error) {
	p := model.Product{
		ID:         s.newID(),
		Name:       in.Name,
		Price:      in.Price,
		CreatedAt:  s.now().UTC(),
		Attributes: in.Attributes,
	}

	defer prometheus.TrackStoreOperation("insert")(time.Now())
	if err := s.store.Insert(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// Update applies patch to the product with id
func (s *Service) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return model.Product{}, err
	}
	current, err := Find(products, id)
	if err != nil {
		return model.Product{}, err
	}

	updated := patch.Apply(current)

	defer prometheus.TrackStoreOperation("replace")(time.Now())
	if err := s.store.Replace(ctx, updated); err != nil {
		return model.Product{}, fmt.Errorf("replace product: %w", err)
	}
	return updated, nil
}

// Delete removes the product with id
func (s *Service) Delete(ctx context.Context, id string) error {
	defer prometheus.TrackStoreOperation("delete")(time.Now())
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
