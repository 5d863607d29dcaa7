// Package metacritic scrapes critic/user scores from a Metacritic
// game page (spec §3 Rating Sources, §4.6). There is no Metacritic
// API; goquery is the pack's HTML-scraping dependency (other_examples
// manifests), used here the way the teacher's steamapi.Client uses
// doJSON — one shared http.Client plus a decode helper, just decoding
// HTML instead of JSON.
package metacritic

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwolfley/unilib/internal/apperr"
)

type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{
		client: &http.Client{
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
		},
	}
}

// Scores is the pair of scores a Metacritic game page exposes.
type Scores struct {
	CriticScore   *float64
	UserScore     *float64
}

// FetchScores scrapes the critic/user Metascores from a game page
// identified by its slug (e.g. "elden-ring").
func (c *Client) FetchScores(ctx context.Context, slug string) (Scores, error) {
	u := fmt.Sprintf("https://www.metacritic.com/game/%s/", slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Scores{}, apperr.New(apperr.Fatal, "metacritic.build", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; unilib/1.0)")

	doc, err := c.doHTML(req)
	if err != nil {
		return Scores{}, err
	}

	var out Scores
	doc.Find(`[data-testid="critic-score-info"] .c-siteReviewScore span`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v, ok := parseScore(sel.Text()); ok {
			out.CriticScore = &v
		}
		return false
	})
	doc.Find(`[data-testid="user-score-info"] .c-siteReviewScore span`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v, ok := parseScore(sel.Text()); ok {
			out.UserScore = &v
		}
		return false
	})

	if out.CriticScore == nil && out.UserScore == nil {
		return out, apperr.New(apperr.NotFound, "metacritic.scores", nil)
	}
	return out, nil
}

func (c *Client) doHTML(req *http.Request) (*goquery.Document, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "metacritic.do", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.New(apperr.NotFound, "metacritic.do", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.New(apperr.RateLimited, "metacritic.do", nil)
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.TransientNetwork, "metacritic.do", fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apperr.New(apperr.Unknown, "metacritic.do", fmt.Errorf("http %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.Parse, "metacritic.parse", err)
	}
	return doc, nil
}

func parseScore(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "tbd" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
