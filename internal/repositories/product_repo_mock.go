package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"productapi/internal/models"
	"productapi/internal/validation"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.GetByCreator(ctx, "")
}

// GetByCreator returns the products created by creator, or all of them
// when creator is empty.
func (r *MockProductRepository) GetByCreator(_ context.Context, creator string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if creator == "" || p.Creator == creator {
			productList = append(productList, p)
		}
	}
	// ObjectIDs created in one process sort in creation order.
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, input models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product := input.NewProduct(validation.NewID(), time.Now().UTC())
	r.products[product.ID] = product
	return &product, nil
}

// UpdateByID merges the update onto an existing product.
func (r *MockProductRepository) UpdateByID(_ context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	update.Apply(&product)
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return &product, nil
}

// DeleteByID removes a product by its ID.
func (r *MockProductRepository) DeleteByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	delete(r.products, id)
	return &product, nil
}
