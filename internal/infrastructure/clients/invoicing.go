package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"forestech/internal/core/apperror"
	"forestech/internal/domain/movement"
)

// InvoicingClient checks invoice references against the invoicing service.
type InvoicingClient struct {
	baseURL string
	client  *http.Client
}

// NewInvoicingClient creates an invoicing client.
func NewInvoicingClient(baseURL string) *InvoicingClient {
	return &InvoicingClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// InvoiceExists reports whether the invoicing service knows the invoice.
func (c *InvoicingClient) InvoiceExists(ctx context.Context, invoiceID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/invoices/%s", c.baseURL, url.PathEscape(invoiceID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("invoicing service unreachable: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apperror.NewInternal(fmt.Errorf("invoicing service returned %d", resp.StatusCode))
	}
}

// Ensure interface compliance.
var _ movement.InvoiceResolver = (*InvoicingClient)(nil)
