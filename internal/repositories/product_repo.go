package repositories

import (
	"context"
	"errors"

	"productapi/internal/models"
)

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrRepository wraps store-level failures other than a missing product.
	ErrRepository = errors.New("product repository failure")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	// GetByCreator filters on an exact creator match. An empty creator
	// returns every product.
	GetByCreator(ctx context.Context, creator string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	// UpdateByID returns the product as stored after the update.
	UpdateByID(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	// DeleteByID returns the product as it was just before removal.
	DeleteByID(ctx context.Context, id string) (*models.Product, error)
}
