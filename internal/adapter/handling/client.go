// Package handling provides the direct HTTP dispatcher towards the external
// handling supervisor.
package handling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/port"
	"go.uber.org/zap"
)

type client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates the HTTP task dispatcher with a bounded request timeout
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) port.TaskDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type refuelRequest struct {
	PlaneID      string `json:"planeId"`
	PlaneParking string `json:"planeParking"`
	FuelAmount   int    `json:"fuelAmount"`
}

// DispatchFuel posts a refuel instruction to the supervisor. Fire-and-forget
// at the protocol level: the response body is ignored, but transport failures
// and non-2xx statuses are reported to the caller so dispatch outcomes stay
// observable.
func (c *client) DispatchFuel(ctx context.Context, planeID, planeParking string, fuelAmount int) error {
	body, err := json.Marshal(refuelRequest{
		PlaneID:      planeID,
		PlaneParking: planeParking,
		FuelAmount:   fuelAmount,
	})
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/v1/tasks/refuel", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: handling supervisor returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	c.log.Debug("Sent refuel task to handling supervisor",
		zap.String("plane_id", planeID),
		zap.String("parking", planeParking),
		zap.Int("fuel_amount", fuelAmount))
	return nil
}
