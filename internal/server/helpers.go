package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// WaitForHealthy polls baseURL's /health endpoint until it answers 200 OK and
// returns the reported session status.
func WaitForHealthy(ctx context.Context, baseURL string) (Health, error) {
	client := &http.Client{Timeout: time.Second}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if health, ok := fetchHealth(ctx, client, baseURL+"/health"); ok {
			return health, nil
		}
		select {
		case <-ctx.Done():
			return Health{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func fetchHealth(ctx context.Context, client *http.Client, url string) (Health, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Health{}, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return Health{}, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Health{}, false
	}
	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return Health{}, false
	}
	return health, true
}
