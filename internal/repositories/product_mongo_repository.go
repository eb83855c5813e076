package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productapi/internal/database"
	"productapi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	ImageURL    string             `bson:"imageUrl"`
	Price       float64            `bson:"price"`
	Creator     string             `bson:"creator"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDocument) toModel() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    models.Category(d.Category),
		ImageURL:    d.ImageURL,
		Price:       d.Price,
		Creator:     d.Creator,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	conn       *database.Manager[*mongo.Client]
	dbName     string
	collection string
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(conn *database.Manager[*mongo.Client], dbName, collection string) *MongoProductRepository {
	return &MongoProductRepository{
		conn:       conn,
		dbName:     dbName,
		collection: collection,
	}
}

func (r *MongoProductRepository) products(ctx context.Context) (*mongo.Collection, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(r.dbName).Collection(r.collection), nil
}

// GetAll retrieves every product in the collection.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.D{})
}

// GetByCreator retrieves the products whose creator matches exactly.
func (r *MongoProductRepository) GetByCreator(ctx context.Context, creator string) ([]models.Product, error) {
	if creator == "" {
		return r.find(ctx, bson.D{})
	}
	return r.find(ctx, bson.D{{Key: "creator", Value: creator}})
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.D) ([]models.Product, error) {
	coll, err := r.products(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find products: %v", ErrRepository, err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: failed to decode products: %v", ErrRepository, err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	coll, err := r.products(ctx)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "get product by ID "+id)
	}
	product := doc.toModel()
	return &product, nil
}

// Create inserts a new product, assigning its ID and timestamps.
func (r *MongoProductRepository) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	coll, err := r.products(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    string(input.Category),
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Creator:     input.Creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: failed to create product: %v", ErrRepository, err)
	}
	product := doc.toModel()
	return &product, nil
}

// UpdateByID sets the supplied fields and returns the updated product.
func (r *MongoProductRepository) UpdateByID(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	coll, err := r.products(ctx)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC().Truncate(time.Millisecond)}}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.Category != nil {
		set = append(set, bson.E{Key: "category", Value: string(*update.Category)})
	}
	if update.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *update.ImageURL})
	}
	if update.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *update.Price})
	}
	if update.Creator != nil {
		set = append(set, bson.E{Key: "creator", Value: *update.Creator})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err = coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, "update product "+id)
	}
	product := doc.toModel()
	return &product, nil
}

// DeleteByID removes a product and returns its prior state.
func (r *MongoProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	coll, err := r.products(ctx)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	if err := coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, "delete product "+id)
	}
	product := doc.toModel()
	return &product, nil
}

func translateMongoError(err error, action string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrProductNotFound
	}
	return fmt.Errorf("%w: failed to %s: %v", ErrRepository, action, err)
}
