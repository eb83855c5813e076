package repositories_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"productapi/internal/database"
	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const productsNamespace = "store.products"

// newMockedMongoRepository wires a repository to the mock deployment
// behind mt.Client. Replies are scripted with mt.AddMockResponses.
func newMockedMongoRepository(mt *mtest.T) *repositories.MongoProductRepository {
	conn := database.NewManager("MongoDB", func(ctx context.Context) (*mongo.Client, error) {
		return mt.Client, nil
	}, nil)
	return repositories.NewMongoProductRepository(conn, "store", "products")
}

func productDoc(id primitive.ObjectID, title, creator string, price float64) bson.D {
	stamp := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "description", Value: title + " description"},
		{Key: "category", Value: "electronics"},
		{Key: "imageUrl", Value: "https://example.com/" + title + ".png"},
		{Key: "price", Value: price},
		{Key: "creator", Value: creator},
		{Key: "createdAt", Value: stamp},
		{Key: "updatedAt", Value: stamp},
	}
}

func TestMongoProductRepository_Operations(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by creator filters on creator", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNamespace, mtest.FirstBatch,
			productDoc(first, "iphone", "apple", 99),
			productDoc(second, "ipad", "apple", 120),
		))

		products, err := repo.GetByCreator(ctx, "apple")
		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, first.Hex(), products[0].ID)
		assert.Equal(mt, "iphone", products[0].Title)
		assert.Equal(mt, "iphone description", products[0].Description)
		assert.Equal(mt, models.CategoryElectronics, products[0].Category)
		assert.Equal(mt, "https://example.com/iphone.png", products[0].ImageURL)
		assert.Equal(mt, 99.0, products[0].Price)
		assert.Equal(mt, second.Hex(), products[1].ID)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, "products", evt.Command.Lookup("find").StringValue())
		assert.Equal(mt, "apple", evt.Command.Lookup("filter", "creator").StringValue())
	})

	mt.Run("empty creator lists every product", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNamespace, mtest.FirstBatch,
			productDoc(primitive.NewObjectID(), "iphone", "apple", 99),
		))

		products, err := repo.GetByCreator(ctx, "")
		require.NoError(mt, err)
		assert.Len(mt, products, 1)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		elems, err := evt.Command.Lookup("filter").Document().Elements()
		require.NoError(mt, err)
		assert.Empty(mt, elems)
	})

	mt.Run("empty collection lists an empty slice", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNamespace, mtest.FirstBatch))

		products, err := repo.GetAll(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})

	mt.Run("get by id decodes the document", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNamespace, mtest.FirstBatch,
			productDoc(id, "iphone", "apple", 99),
		))

		product, err := repo.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), product.ID)
		assert.Equal(mt, "apple", product.Creator)
		assert.True(mt, product.CreatedAt.Equal(time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, id, evt.Command.Lookup("filter", "_id").ObjectID())
	})

	mt.Run("get by unknown id is not found", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNamespace, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.True(mt, errors.Is(err, repositories.ErrProductNotFound))
	})

	mt.Run("create inserts and returns the product", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		input := sampleInput("iphone", "apple")
		created, err := repo.Create(ctx, input)
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(created.ID))
		assert.Equal(mt, input.Title, created.Title)
		assert.Equal(mt, input.Creator, created.Creator)
		assert.False(mt, created.CreatedAt.IsZero())
		assert.Equal(mt, created.CreatedAt, created.UpdatedAt)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
	})

	mt.Run("update sets only supplied fields and returns the new document", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: productDoc(id, "iphone pro", "apple", 1500)},
		))

		title := "iphone pro"
		price := 1500.0
		updated, err := repo.UpdateByID(ctx, id.Hex(), models.ProductUpdate{Title: &title, Price: &price})
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), updated.ID)
		assert.Equal(mt, title, updated.Title)
		assert.Equal(mt, price, updated.Price)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, id, evt.Command.Lookup("query", "_id").ObjectID())
		assert.True(mt, evt.Command.Lookup("new").Boolean())
		assert.Equal(mt, title, evt.Command.Lookup("update", "$set", "title").StringValue())
		assert.Equal(mt, price, evt.Command.Lookup("update", "$set", "price").Double())
		assert.Equal(mt, bson.TypeDateTime, evt.Command.Lookup("update", "$set", "updatedAt").Type)
		for _, untouched := range []string{"description", "category", "imageUrl", "creator", "createdAt"} {
			_, err := evt.Command.LookupErr("update", "$set", untouched)
			assert.Error(mt, err, untouched)
		}
	})

	mt.Run("update unknown id is not found", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		title := "nothing"
		_, err := repo.UpdateByID(ctx, primitive.NewObjectID().Hex(), models.ProductUpdate{Title: &title})
		assert.True(mt, errors.Is(err, repositories.ErrProductNotFound))
	})

	mt.Run("delete returns the prior state", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: productDoc(id, "iphone", "apple", 99)},
		))

		deleted, err := repo.DeleteByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), deleted.ID)
		assert.Equal(mt, "iphone", deleted.Title)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("remove").Boolean())
		assert.Equal(mt, id, evt.Command.Lookup("query", "_id").ObjectID())
	})

	mt.Run("delete unknown id is not found", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.DeleteByID(ctx, primitive.NewObjectID().Hex())
		assert.True(mt, errors.Is(err, repositories.ErrProductNotFound))
	})

	mt.Run("server errors are repository errors", func(mt *mtest.T) {
		repo := newMockedMongoRepository(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad filter",
		}))

		_, err := repo.GetAll(ctx)
		require.Error(mt, err)
		assert.True(mt, errors.Is(err, repositories.ErrRepository))
		assert.False(mt, errors.Is(err, repositories.ErrProductNotFound))
	})
}

// TestMongoProductRepository_Contract runs the shared repository checks
// against a live server when TEST_MONGODB_URI is set.
func TestMongoProductRepository_Contract(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI is not set")
	}

	runRepositoryContract(t, func(t *testing.T) repositories.ProductRepository {
		conn := database.NewMongoManager(uri)
		dbName := "products_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		t.Cleanup(func() {
			ctx := context.Background()
			if client, err := conn.Get(ctx); err == nil {
				_ = client.Database(dbName).Drop(ctx)
			}
			_ = conn.Close(ctx)
		})
		return repositories.NewMongoProductRepository(conn, dbName, "products")
	})
}
