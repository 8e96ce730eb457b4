package catalog

import (
	"context"
	"time"
)

// ImportProductsRequest is the request for running a catalog import.
type ImportProductsRequest struct{}

// ImportProductsResponse reports how many product-store links the run created.
type ImportProductsResponse struct {
	LinksCreated int `json:"links_created"`
}

// GetProductRequest is the request for fetching one product.
type GetProductRequest struct {
	ID uint `json:"id"`
}

// ProductResponse represents a product in responses.
type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListProductsRequest is the request for listing products.
type ListProductsRequest struct {
	Search string `json:"search,omitempty"`
}

// ListProductsResponse is the response containing a list of products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

// CatalogPort is the interface other modules use to reach catalog services.
type CatalogPort interface {
	ImportProducts(ctx context.Context) (*ImportProductsResponse, error)
	GetProduct(ctx context.Context, id uint) (*ProductResponse, error)
	ListProducts(ctx context.Context, search string) (*ListProductsResponse, error)
}
