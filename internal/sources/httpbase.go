package sources

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
)

const userAgent = "unilib/1.0 (+https://github.com/jwolfley/unilib)"

// UserAgent exposes the shared adapter user-agent string for packages
// outside internal/sources that make their own direct HTTP calls
// against the same storefronts (e.g. internal/updatetracker's Steam
// HTTP fallback).
func UserAgent() string { return userAgent }

// newHTTPClient mirrors the teacher's steamapi.New tuning: 20s overall
// timeout, 10s dial/TLS, generous idle-conn reuse. Every adapter that
// talks plain net/http shares this shape.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 20 * time.Second,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          100,
			MaxConnsPerHost:       10,
		},
	}
}

// doJSON executes req and decodes a JSON body, classifying the
// response into the §7 error taxonomy so callers can branch on Kind
// without re-parsing the HTTP status.
func doJSON(client *http.Client, op string, req *http.Request, v any) error {
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return apperr.New(apperr.TransientNetwork, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperr.New(apperr.RateLimited, op, fmt.Errorf("http 429"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.New(apperr.AuthExpired, op, fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.NotFound, op, fmt.Errorf("http 404"))
	case resp.StatusCode >= 500:
		return apperr.New(apperr.TransientNetwork, op, fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperr.New(apperr.Unknown, op, fmt.Errorf("http %d", resp.StatusCode))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperr.New(apperr.Parse, op, err)
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 { return &f }
