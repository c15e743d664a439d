// Package flightinfo provides the client for the external flight information
// panel. The panel exposes the full flight list; all filtering happens
// locally.
package flightinfo

import (
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
	cache   *Cache
	log     *zap.Logger
}

// NewClient creates a flight source client with a bounded request timeout.
// The cache may be nil, in which case every call fetches from the panel.
func NewClient(baseURL string, timeout time.Duration, cache *Cache, log *zap.Logger) port.FlightSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

// ListFlights fetches the full flight list, going through the cache snapshot
// when one is fresh.
func (c *client) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	if c.cache != nil {
		if flights, ok := c.cache.Get(ctx); ok {
			return flights, nil
		}
	}

	reqURL := fmt.Sprintf("%s/v1/flights", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: flight panel returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var flights []domain.Flight
	if err := json.NewDecoder(resp.Body).Decode(&flights); err != nil {
		return nil, fmt.Errorf("%w: decoding flight list: %v", domain.ErrUnavailable, err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, flights)
	}
	return flights, nil
}

// NearestDepart returns the depart flight for planeID with the minimum
// scheduled time, or (nil, nil) when none matches or the panel is down.
func (c *client) NearestDepart(ctx context.Context, planeID string) (*domain.Flight, error) {
	flights, err := c.ListFlights(ctx)
	if err != nil {
		c.log.Warn("Error fetching flights, treating as no depart flight",
			zap.String("plane_id", planeID), zap.Error(err))
		return nil, nil
	}

	nearest := nearest(flights, func(f domain.Flight) bool {
		return f.Type == domain.FlightTypeDepart && f.PlaneID == planeID
	})
	if nearest == nil {
		c.log.Debug("No depart flights found", zap.String("plane_id", planeID))
	}
	return nearest, nil
}

// NearestArrive returns the soonest inbound flight for planeID that is close
// enough to arrival, or (nil, nil) when none matches or the panel is down.
func (c *client) NearestArrive(ctx context.Context, planeID string) (*domain.Flight, error) {
	flights, err := c.ListFlights(ctx)
	if err != nil {
		c.log.Warn("Error fetching flights, treating as no arrive flight",
			zap.String("plane_id", planeID), zap.Error(err))
		return nil, nil
	}

	nearest := nearest(flights, func(f domain.Flight) bool {
		return f.Type == domain.FlightTypeArrive &&
			f.Status == domain.FlightStatusSoonArrived &&
			f.PlaneID == planeID
	})
	if nearest == nil {
		c.log.Debug("No arrive flights found", zap.String("plane_id", planeID))
	}
	return nearest, nil
}

// nearest picks the matching flight with the minimum scheduled time
func nearest(flights []domain.Flight, match func(domain.Flight) bool) *domain.Flight {
	var best *domain.Flight
	for i := range flights {
		f := flights[i]
		if !match(f) {
			continue
		}
		if best == nil || f.ScheduledTime < best.ScheduledTime {
			best = &f
		}
	}
	return best
}
