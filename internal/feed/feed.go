// Package feed handles downloading and decoding the breaking-news feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eilbot/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// response mirrors the upstream JSON document. Only the fields the bot
// consumes are declared.
type response struct {
	News []newsEntry `json:"news"`
}

type newsEntry struct {
	ExternalID   string         `json:"externalId"`
	Date         string         `json:"date"`
	Title        string         `json:"title"`
	URL          string         `json:"detailsweb"`
	BreakingNews bool           `json:"breakingNews"`
	Content      []contentBlock `json:"content"`
}

type contentBlock struct {
	Value string `json:"value"`
}

// Client downloads and decodes the breaking-news feed.
type Client struct {
	client HTTPClient
	url    string
}

// New creates a Client for the given endpoint.
func New(client HTTPClient, url string) *Client {
	return &Client{client: client, url: url}
}

// FetchBreaking downloads the feed and returns the current breaking
// candidate, or nil when the feed reports no breaking item.
func (c *Client) FetchBreaking(ctx context.Context) (*model.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "EilBot/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var doc response
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	if len(doc.News) == 0 {
		return nil, nil
	}

	first := doc.News[0]
	if !first.BreakingNews {
		return nil, nil
	}

	published, err := ParseTimestamp(first.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", first.Date, err)
	}

	return &model.NewsItem{
		ID:          first.ExternalID,
		Title:       strings.TrimSpace(first.Title),
		Body:        itemBody(first.Content),
		URL:         first.URL,
		PublishedAt: published,
	}, nil
}

func itemBody(content []contentBlock) string {
	if len(content) == 0 {
		return ""
	}
	v := content[0].Value
	v = strings.ReplaceAll(v, "<em>", "")
	v = strings.ReplaceAll(v, "</em>", "")
	return strings.TrimSpace(v)
}

// offsetNoColon matches a trailing zone offset without the colon
// separator, e.g. "+0200".
var offsetNoColon = regexp.MustCompile(`([+-]\d{2})(\d{2})$`)

// ParseTimestamp parses an ISO-8601 timestamp with a zone offset. The
// upstream delivers both "+02:00" and "+0200" style offsets, so the
// offset is normalized before parsing. The offset is retained in the
// returned time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = offsetNoColon.ReplaceAllString(s, "$1:$2")
	return time.Parse(time.RFC3339, s)
}
