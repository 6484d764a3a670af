package medication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrUnavailable is returned when the upstream catalog cannot be reached
// and no cached copy is fresh enough to serve.
var ErrUnavailable = errors.New("medication catalog unavailable")

// Medication is one entry in the reference catalog. The catalog is
// read-only; prescriptions store the chosen name and dosage as plain text.
type Medication struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Dosages []string `json:"dosages"`
}

type catalogPayload struct {
	Medications []Medication `json:"medications"`
}

// Catalog fetches the medication list from an upstream feed and caches it
// for a short TTL so the admin form does not hammer the feed on every load.
type Catalog struct {
	url    string
	ttl    time.Duration
	client *http.Client

	mu        sync.RWMutex
	cached    []Medication
	fetchedAt time.Time
}

func NewCatalog(url string, ttl time.Duration) *Catalog {
	return &Catalog{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// List returns the catalog, served from cache while it is fresh. A fetch
// failure is reported immediately rather than masked with stale data.
func (c *Catalog) List(ctx context.Context) ([]Medication, error) {
	c.mu.RLock()
	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		meds := c.cached
		c.mu.RUnlock()
		return meds, nil
	}
	c.mu.RUnlock()

	meds, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cached = meds
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return meds, nil
}

func (c *Catalog) fetch(ctx context.Context) ([]Medication, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	var payload catalogPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if payload.Medications == nil {
		payload.Medications = []Medication{}
	}
	return payload.Medications, nil
}
