package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// productRow is the table layout. Seq preserves insertion order.
type productRow struct {
	Seq        uint           `gorm:"primaryKey;autoIncrement"`
	ID         string         `gorm:"size:36;uniqueIndex;not null"`
	Name       string         `gorm:"type:varchar(255);not null"`
	NameKey    string         `gorm:"type:varchar(255);index;not null"`
	Price      float64        `gorm:"not null;default:0"`
	Attributes map[string]any `gorm:"type:text;serializer:json"`
	CreatedAt  time.Time      `gorm:"autoCreateTime:false"`
}

func (productRow) TableName() string {
	return "products"
}

func toRow(p model.Product) productRow {
	return productRow{
		ID:         p.ID,
		Name:       p.Name,
		NameKey:    nameKey(p.Name),
		Price:      p.Price,
		Attributes: p.Attributes,
		CreatedAt:  p.CreatedAt,
	}
}

func (r productRow) toProduct() model.Product {
	return model.Product{
		ID:         r.ID,
		Name:       r.Name,
		Price:      r.Price,
		CreatedAt:  r.CreatedAt.UTC(),
		Attributes: r.Attributes,
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GormStore keeps the catalog in a SQL table through gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the products table and returns the store
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toProduct())
	}
	return products, nil
}

func (s *GormStore) Insert(ctx context.Context, p model.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&productRow{}).
			Where("id = ? OR name_key = ?", p.ID, nameKey(p.Name)).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check duplicates: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", model.ErrDuplicateProduct, p.Name)
		}

		row := toRow(p)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Replace(ctx context.Context, p model.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&productRow{}).
			Where("name_key = ? AND id <> ?", nameKey(p.Name), p.ID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check duplicates: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", model.ErrDuplicateProduct, p.Name)
		}

		row := toRow(p)
		result := tx.Model(&productRow{}).
			Where("id = ?", p.ID).
			Select("name", "name_key", "price", "attributes").
			Updates(&row)
		if result.Error != nil {
			return fmt.Errorf("failed to update product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return model.ErrProductNotFound
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&productRow{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
