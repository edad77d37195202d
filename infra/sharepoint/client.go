// Package sharepoint reads delivery records from a SharePoint list through
// the REST API in OData verbose mode.
package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/docksched/auth"
	"github.com/kilianp07/docksched/core/ingest"
	"github.com/kilianp07/docksched/core/source"
	"github.com/kilianp07/docksched/infra/logger"
)

// MaxItems is the page size requested from the list.
const MaxItems = 5000

// Config locates the list and the credentials used to read it.
type Config struct {
	SiteURL        string    `json:"site_url"`
	ListName       string    `json:"list_name"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	Auth           auth.Conf `json:"auth"`
}

// Client implements source.Source.
type Client struct {
	endpoint string
	http     *http.Client
	creds    *auth.ClientCred
	log      logger.Logger
}

// New builds a client. Without client credentials requests are sent
// unauthenticated, which only works inside a trusted network.
func New(cfg Config) (*Client, error) {
	if cfg.SiteURL == "" || cfg.ListName == "" {
		return nil, errors.New("sharepoint: site_url and list_name are required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		endpoint: ItemsURL(cfg.SiteURL, cfg.ListName),
		http:     &http.Client{Timeout: timeout},
		log:      logger.New("sharepoint"),
	}
	if cfg.Auth.Enabled() {
		c.creds = auth.NewClientCred(cfg.Auth)
	}
	return c, nil
}

// ItemsURL builds the items endpoint selecting every column the record
// adapter understands.
func ItemsURL(siteURL, listName string) string {
	q := url.Values{}
	q.Set("$select", strings.Join(ingest.SelectFields(), ","))
	q.Set("$top", fmt.Sprint(MaxItems))
	title := strings.ReplaceAll(listName, "'", "''")
	return fmt.Sprintf("%s/_api/web/lists/getbytitle('%s')/items?%s",
		strings.TrimRight(siteURL, "/"), url.PathEscape(title), q.Encode())
}

type verboseEnvelope struct {
	D *struct {
		Results []source.Item `json:"results"`
	} `json:"d"`
}

// Fetch returns every list item. Day filtering happens in the ingest
// adapter because the list stores free-form timestamps.
func (c *Client) Fetch(ctx context.Context, day time.Time) ([]source.Item, error) {
	items, err := c.fetch(ctx)
	var fe *source.FetchError
	if c.creds != nil && errors.As(err, &fe) && fe.Status == http.StatusUnauthorized {
		c.creds.Invalidate()
		items, err = c.fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	c.log.Debugw("list fetched", map[string]any{"items": len(items), "day": day.Format("2006-01-02")})
	return items, nil
}

func (c *Client) fetch(ctx context.Context) ([]source.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json;odata=verbose")
	req.Header.Set("Content-Type", "application/json;odata=verbose")
	if c.creds != nil {
		if err := c.creds.SetAuthHeader(ctx, req); err != nil {
			return nil, source.NewNetworkError(err)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, source.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, source.NewStatusError(resp.StatusCode, statusError(resp.StatusCode, body))
	}
	var env verboseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &source.FetchError{Status: resp.StatusCode, Err: fmt.Errorf("decode list response: %w", err)}
	}
	if env.D == nil || env.D.Results == nil {
		return nil, &source.FetchError{Status: resp.StatusCode, Err: errors.New("unexpected list response: missing d.results")}
	}
	return env.D.Results, nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.New("access to the list was denied")
	case http.StatusNotFound:
		return errors.New("list not found, check list_name")
	default:
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return errors.New(msg)
	}
}
