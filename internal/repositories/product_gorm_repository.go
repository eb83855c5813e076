package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productapi/internal/database"
	"productapi/internal/models"
	"productapi/internal/validation"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	conn *database.Manager[*gorm.DB]
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(conn *database.Manager[*gorm.DB]) *GORMProductRepository {
	return &GORMProductRepository{
		conn: conn,
	}
}

func (r *GORMProductRepository) db(ctx context.Context) (*gorm.DB, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.GetByCreator(ctx, "")
}

// GetByCreator retrieves the products whose creator matches exactly.
func (r *GORMProductRepository) GetByCreator(ctx context.Context, creator string) ([]models.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Order("id")
	if creator != "" {
		query = query.Where("creator = ?", creator)
	}
	products := make([]models.Product, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to get products: %v", ErrRepository, err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return firstProduct(db, id)
}

func firstProduct(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: failed to get product by ID %s: %v", ErrRepository, id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	product := input.NewProduct(validation.NewID(), time.Now().UTC())
	if err := db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create product: %v", ErrRepository, err)
	}
	return &product, nil
}

// UpdateByID updates the supplied columns and returns the updated product.
func (r *GORMProductRepository) UpdateByID(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	cols := update.Columns()
	cols["updated_at"] = time.Now().UTC()

	res := db.Model(&models.Product{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: failed to update product: %v", ErrRepository, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return firstProduct(db, id)
}

// DeleteByID deletes a product by its ID and returns what was removed.
func (r *GORMProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *models.Product
	err = db.Transaction(func(tx *gorm.DB) error {
		product, err := firstProduct(tx, id)
		if err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("%w: failed to delete product: %v", ErrRepository, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		deleted = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
