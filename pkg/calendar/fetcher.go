package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrAccessDenied is returned when a source rejects the request with 401/403
var ErrAccessDenied = errors.New("calendar: access denied by source")

type fetchResult struct {
	body        []byte
	etag        string
	notModified bool
}

// normalizeURL turns webcal subscription links into plain https URLs
func normalizeURL(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "webcals://"):
		return "https://" + raw[len("webcals://"):]
	case strings.HasPrefix(lower, "webcal://"):
		return "https://" + raw[len("webcal://"):]
	}
	return raw
}

func (s *Service) fetch(ctx context.Context, icalURL, etag string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(icalURL), nil)
	if err != nil {
		return fetchResult{}, fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fetchResult{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return fetchResult{etag: etag, notModified: true}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fetchResult{}, fmt.Errorf("%w: HTTP %d", ErrAccessDenied, resp.StatusCode)
	default:
		return fetchResult{}, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchResult{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := validateICalFormat(string(body)); err != nil {
		return fetchResult{}, err
	}

	return fetchResult{body: body, etag: resp.Header.Get("ETag")}, nil
}

func validateICalFormat(bodyStr string) error {
	trimmed := strings.TrimSpace(strings.TrimPrefix(bodyStr, "\ufeff"))

	// Login pages come back as HTML with a 200
	upperBody := strings.ToUpper(trimmed)
	if strings.HasPrefix(upperBody, "<!DOCTYPE") || strings.HasPrefix(upperBody, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}

	if !strings.HasPrefix(upperBody, "BEGIN:VCALENDAR") {
		previewLen := min(100, len(trimmed))
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", trimmed[:previewLen])
	}

	return nil
}
