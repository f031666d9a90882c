package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var geocodeClient = &http.Client{Timeout: 10 * time.Second}

// ReverseGeocode converts coordinates to a display address using OpenStreetMap
// Nominatim. The address only annotates a saved location; callers fall back
// to a placeholder when the lookup fails.
func ReverseGeocode(baseURL string, lat, lng float64) (string, error) {
	if !IsLocationValid(lat, lng) {
		return "", fmt.Errorf("invalid coordinates: %f, %f", lat, lng)
	}

	apiURL := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s",
		baseURL,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lng)))

	resp, err := geocodeClient.Get(apiURL)
	if err != nil {
		return "", fmt.Errorf("failed to make geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding service returned status: %d", resp.StatusCode)
	}

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if result.DisplayName == "" {
		return "Location set", nil
	}
	return result.DisplayName, nil
}
