// Package directory reads employees from the company directory API and keeps
// local accounts in sync with it.
package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meal-admin/config"
	"meal-admin/models"

	"github.com/tidwall/gjson"
)

const maxBodyBytes = 10 << 20

// Fetcher returns the full employee list.
type Fetcher interface {
	FetchEmployees(ctx context.Context) ([]models.Employee, error)
}

type Client struct {
	httpClient *http.Client
	cfg        config.DirectoryConfig
}

func NewClient(cfg config.DirectoryConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

func (c *Client) FetchEmployees(ctx context.Context) ([]models.Employee, error) {
	if c.cfg.URL == "" {
		return nil, fmt.Errorf("directory url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("directory returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return ParseEmployees(body, c.cfg.ItemsPath, c.cfg.CodeField, c.cfg.NameField)
}

// ParseEmployees extracts code/name pairs from a directory response.
// itemsPath is a gjson path to the array; empty means the document itself.
// Entries without a code are skipped; later duplicates win.
func ParseEmployees(body []byte, itemsPath, codeField, nameField string) ([]models.Employee, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("directory response is not valid JSON")
	}
	items := gjson.ParseBytes(body)
	if itemsPath != "" {
		items = items.Get(itemsPath)
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("directory response has no employee array at %q", itemsPath)
	}
	if codeField == "" {
		codeField = "code"
	}
	if nameField == "" {
		nameField = "name"
	}

	index := make(map[string]int)
	var out []models.Employee
	items.ForEach(func(_, v gjson.Result) bool {
		code := strings.TrimSpace(v.Get(codeField).String())
		if code == "" {
			return true
		}
		e := models.Employee{Code: code, Name: strings.TrimSpace(v.Get(nameField).String())}
		if i, ok := index[code]; ok {
			out[i] = e
			return true
		}
		index[code] = len(out)
		out = append(out, e)
		return true
	})
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
