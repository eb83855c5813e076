package services

import (
	"context"
	"log"

	"productapi/internal/models"
	"productapi/internal/repositories"
)

// Product lifecycle event names, used as routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher delivers product lifecycle events to other systems.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event string, product models.Product) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductsByCreator retrieves the products of a single creator.
func (s *ProductService) GetProductsByCreator(ctx context.Context, creator string) ([]models.Product, error) {
	return s.repo.GetByCreator(ctx, creator)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a validated product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventProductCreated, *product)
	return product, nil
}

// UpdateProduct replaces the user-supplied fields of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input models.ProductInput) (*models.Product, error) {
	product, err := s.repo.UpdateByID(ctx, id, input.FullUpdate())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventProductUpdated, *product)
	return product, nil
}

// DeleteProduct deletes a product by its ID and returns what was removed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventProductDeleted, *product)
	return product, nil
}

// publish never fails the caller; the write has already happened.
func (s *ProductService) publish(ctx context.Context, event string, product models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(ctx, event, product); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", event, product.ID, err)
	}
}
