// Package geo resolves coordinate pairs into postal addresses through
// an external geocoding service.
package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ssplabs/atende/internal/result"
)

const defaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Geocoder performs reverse geocoding against a Google-style geocode
// endpoint.
type Geocoder struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewGeocoder creates a geocoder; baseURL may be empty for the public
// endpoint.
func NewGeocoder(apiKey, baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = defaultGeocodeURL
	}
	return &Geocoder{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Reverse resolves (lat, lon) into a formatted address. "No address
// for these coordinates" is a distinct failure from a service error.
func (g *Geocoder) Reverse(ctx context.Context, lat, lon float64) result.Result[string] {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return result.Wrap[string]("Erro inesperado ao buscar o endereço", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return result.Wrap[string]("Erro inesperado ao buscar o endereço", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Wrap[string]("Erro inesperado ao buscar o endereço", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result.Failf[string]("Erro inesperado ao buscar o endereço: status %d", resp.StatusCode)
	}

	status := gjson.GetBytes(body, "status").String()
	address := gjson.GetBytes(body, "results.0.formatted_address").String()
	if status != "OK" || address == "" {
		return result.Fail[string]("Endereço não encontrado para as coordenadas fornecidas.")
	}
	return result.Ok(address)
}
