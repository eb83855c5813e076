package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productapi/internal/config"
	"productapi/internal/repositories"
	"productapi/internal/services"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	app := newApp(services.NewProductService(repositories.NewMockProductRepository(), nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(bodyBytes), `"status":"healthy"`)
}

func TestProductRoutesAreMounted(t *testing.T) {
	app := newApp(services.NewProductService(repositories.NewMockProductRepository(), nil))

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "gold ring",
		"description": "18k",
		"category":    "jewelry",
		"imageUrl":    "https://example.com/ring.png",
		"price":       350,
		"creator":     "tiffany",
	})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/products/dashboard?creator=tiffany", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "gold ring", products[0]["title"])
}

func TestNewProductRepository(t *testing.T) {
	repo, closeStore, err := newProductRepository(&config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	closeStore()
	assert.IsType(t, &repositories.MockProductRepository{}, repo)

	repo, closeStore, err = newProductRepository(&config.Config{StoreDriver: config.DriverSQLite, DatabaseDSN: "file::memory:"})
	require.NoError(t, err)
	closeStore()
	assert.IsType(t, &repositories.GORMProductRepository{}, repo)

	// Nothing is dialed until the first request.
	repo, closeStore, err = newProductRepository(&config.Config{
		StoreDriver:     config.DriverMongo,
		MongoURI:        "mongodb://127.0.0.1:1",
		MongoDatabase:   "store",
		MongoCollection: "products",
	})
	require.NoError(t, err)
	closeStore()
	assert.IsType(t, &repositories.MongoProductRepository{}, repo)
}
