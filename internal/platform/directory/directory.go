// Package directory resolves client and worker display names from the
// agency's identity service. Names are presentation data only, so lookups
// are cached and failures degrade to empty names rather than errors
// surfacing to callers.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type person struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// HTTPResolver looks up names over the identity service's REST API.
type HTTPResolver struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	cache map[string]string
}

// NewHTTPResolver creates a resolver against the given base URL, e.g.
// "http://identity:8000/api/v1".
func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   make(map[string]string),
	}
}

func (r *HTTPResolver) ClientName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.lookup(ctx, "clients", id)
}

func (r *HTTPResolver) WorkerName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.lookup(ctx, "workers", id)
}

func (r *HTTPResolver) lookup(ctx context.Context, kind string, id uuid.UUID) (string, error) {
	key := kind + "/" + id.String()

	r.mu.RLock()
	name, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+key, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory: %s returned %d", key, resp.StatusCode)
	}

	var p person
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("directory: decode %s: %w", key, err)
	}

	r.mu.Lock()
	r.cache[key] = p.Name
	r.mu.Unlock()

	return p.Name, nil
}
