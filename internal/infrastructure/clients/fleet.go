package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"forestech/internal/core/apperror"
	"forestech/internal/domain/movement"
)

// FleetClient checks vehicle references against the fleet registry.
type FleetClient struct {
	baseURL string
	client  *http.Client
}

// NewFleetClient creates a fleet client.
func NewFleetClient(baseURL string) *FleetClient {
	return &FleetClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// VehicleExists reports whether the fleet registry knows the vehicle.
func (c *FleetClient) VehicleExists(ctx context.Context, vehicleID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/vehicles/%s", c.baseURL, url.PathEscape(vehicleID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("fleet service unreachable: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apperror.NewInternal(fmt.Errorf("fleet service returned %d", resp.StatusCode))
	}
}

// Ensure interface compliance.
var _ movement.VehicleResolver = (*FleetClient)(nil)
