// Package clients holds thin HTTP clients for the services that own
// the references a movement points at: the product catalog, the fleet
// registry and the invoicing service.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"forestech/internal/core/apperror"
	"forestech/internal/core/types"
	"forestech/internal/domain/movement"
)

const defaultTimeout = 5 * time.Second

// CatalogClient resolves products against the catalog service.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

// NewCatalogClient creates a catalog client.
func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type productPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
}

// GetProduct fetches a product by id. Unknown ids map to a not-found
// error so callers can reject the movement reference.
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*movement.Product, error) {
	endpoint := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("catalog service unreachable: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperror.NewNotFound("product", productID)
	default:
		return nil, apperror.NewInternal(fmt.Errorf("catalog service returned %d", resp.StatusCode))
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}

	price, err := types.NewMoneyFromString(payload.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("parse unit price: %w", err)
	}

	return &movement.Product{
		ID:        payload.ID,
		Name:      payload.Name,
		UnitPrice: price,
	}, nil
}

// Ensure interface compliance.
var _ movement.ProductResolver = (*CatalogClient)(nil)
