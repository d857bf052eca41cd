// Package geomag fetches the planetary K index from the space weather feed.
// The feed is a plain tabular text product; the most recent row is the
// relevant observation and its Kp column holds the index value.
package geomag

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const defaultFeedURL = "https://services.swpc.noaa.gov/text/planetary-k-index.txt"

// DefaultKp is the neutral index assumed when the feed is not contactable.
const DefaultKp = 3.0

// Client reads the geomagnetic index feed. No credential is required.
type Client struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a feed client. An empty url selects the default feed.
func NewClient(httpClient *http.Client, url string, logger *zap.Logger) *Client {
	if url == "" {
		url = defaultFeedURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: url, client: httpClient, logger: logger}
}

// LatestKp fetches the feed and returns the most recent Kp value.
func (c *Client) LatestKp(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("geomagnetic feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("geomagnetic feed returned status %d", resp.StatusCode)
	}

	return parseLatestKp(bufio.NewScanner(resp.Body))
}

// LatestKpOrDefault returns the latest Kp, or the neutral default when the
// feed cannot be read.
func (c *Client) LatestKpOrDefault(ctx context.Context) float64 {
	kp, err := c.LatestKp(ctx)
	if err != nil {
		c.logger.Warn("geomagnetic feed unavailable, using neutral Kp",
			zap.Float64("default", DefaultKp), zap.Error(err))
		return DefaultKp
	}
	return kp
}

// parseLatestKp scans tabular rows, skipping headers and comments, and
// returns the Kp column of the last data row. Rows open with a date and a
// time field, neither of which parses as a float, so the Kp value is the
// first field that does.
func parseLatestKp(scanner *bufio.Scanner) (float64, error) {
	var last float64
	found := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ":") {
			continue
		}
		for _, field := range strings.Fields(line) {
			kp, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			last = kp
			found = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("geomagnetic feed: no index rows in response")
	}
	return last, nil
}
