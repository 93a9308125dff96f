package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"attestra/internal/domain"
)

// HTTPSource pulls snapshots from the external attestation provider's JSON
// endpoints. Snapshot shapes are the wire contracts in the domain package.
type HTTPSource struct {
	client       *http.Client
	reservesURL  string
	liabilityURL string
}

// NewHTTPSource constructs a source over the two provider endpoints. A nil
// client falls back to http.DefaultClient; callers should normally supply one
// with a transport-level timeout.
func NewHTTPSource(client *http.Client, reservesURL, liabilityURL string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		client:       client,
		reservesURL:  reservesURL,
		liabilityURL: liabilityURL,
	}
}

func (s *HTTPSource) FetchReserves(ctx context.Context) (domain.ReserveData, error) {
	var data domain.ReserveData
	if err := s.getJSON(ctx, s.reservesURL, &data); err != nil {
		return domain.ReserveData{}, fmt.Errorf("fetch reserves: %w", err)
	}
	return data, nil
}

func (s *HTTPSource) FetchLiabilities(ctx context.Context) (domain.LiabilityData, error) {
	var data domain.LiabilityData
	if err := s.getJSON(ctx, s.liabilityURL, &data); err != nil {
		return domain.LiabilityData{}, fmt.Errorf("fetch liabilities: %w", err)
	}
	return data, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
