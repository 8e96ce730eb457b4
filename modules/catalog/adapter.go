package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// catalogAdapter wraps ServiceContainer for type-safe cross-module calls.
type catalogAdapter struct {
	container mono.ServiceContainer
}

// NewCatalogAdapter creates an adapter over the catalog module's service
// container received via SetDependencyServiceContainer.
func NewCatalogAdapter(container mono.ServiceContainer) CatalogPort {
	if container == nil {
		panic("catalog adapter requires non-nil ServiceContainer")
	}
	return &catalogAdapter{container: container}
}

// ImportProducts runs a catalog import via the import-products service.
func (a *catalogAdapter) ImportProducts(ctx context.Context) (*ImportProductsResponse, error) {
	req := ImportProductsRequest{}
	var resp ImportProductsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "import-products",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("import-products service call failed: %w", err)
	}
	return &resp, nil
}

// GetProduct retrieves a product by ID via the get-product service.
func (a *catalogAdapter) GetProduct(ctx context.Context, id uint) (*ProductResponse, error) {
	req := GetProductRequest{ID: id}
	var resp ProductResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-product",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-product service call failed: %w", err)
	}
	return &resp, nil
}

// ListProducts lists products via the list-products service.
func (a *catalogAdapter) ListProducts(ctx context.Context, search string) (*ListProductsResponse, error) {
	req := ListProductsRequest{Search: search}
	var resp ListProductsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-products",
		json.Marshal, json.Unmarshal,
		&req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-products service call failed: %w", err)
	}
	return &resp, nil
}
