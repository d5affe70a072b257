// Package sheets reads spreadsheet rows through the Google Sheets v4 API
// using a service-account credential.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2/google"
)

const defaultBaseURL = "https://sheets.googleapis.com"

// ReadOnlyScope is the least-privilege scope for values.get.
const ReadOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// Client fetches spreadsheet values. It holds an HTTP client that attaches
// and refreshes the service account's access token on every request.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a read-only Sheets client from a service-account JSON
// credential file. A missing or malformed file is an error; callers treat
// that as fatal at startup.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials %s: %w", credentialsFile, err)
	}
	conf, err := google.JWTConfigFromJSON(data, ReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}

	httpClient := conf.Client(ctx)
	httpClient.Timeout = 15 * time.Second

	return &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
	}, nil
}

// Values fetches one A1 cell range. Rows come back in sheet order, each row
// an ordered slice of cell strings; a range with no data yields no rows.
func (c *Client) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(readRange))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("values.get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var vr ValueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decoding values.get response: %w", err)
	}
	return vr.Values, nil
}

// apiError converts a non-200 response into ErrAuth or *APIError, keeping
// credential problems distinguishable from everything else.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	msg := http.StatusText(resp.StatusCode)
	var apiResp apiErrorResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error.Message != "" {
		msg = apiResp.Error.Message
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", ErrAuth, resp.StatusCode, msg)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
