package postgrest

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

// getItems makes GET requests for table and collects the rows of every page.
// When q carries its own limit, a single page is fetched.
func getItems[T any](ctx context.Context, c *Client, table string, q url.Values) ([]T, error) {
	if q.Get("limit") != "" {
		var items []T
		if _, err := c.getJSON(ctx, table, q, nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	perPage := c.PageSize
	if perPage <= 0 {
		perPage = pageSize
	}

	var items []T
	for offset := 0; ; offset += perPage {
		page := cloneValues(q)
		page.Set("limit", strconv.Itoa(perPage))
		page.Set("offset", strconv.Itoa(offset))

		var batch []T
		if _, err := c.getJSON(ctx, table, page, nil, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)

		if len(batch) < perPage {
			break
		}

		c.logger.Debug("additional request needed",
			zap.String("table", table),
			zap.Int("fetched", len(items)),
		)
	}

	return items, nil
}

// count asks for an exact row count without transferring rows.
func (c *Client) count(ctx context.Context, table string, q url.Values) (int, error) {
	q = cloneValues(q)
	q.Set("select", "id")
	q.Set("limit", "1")

	header := http.Header{}
	header.Set("Prefer", "count=exact")

	resp, err := c.getJSON(ctx, table, q, header, nil)
	if err != nil {
		return 0, err
	}

	return parseContentRange(resp.Header.Get("Content-Range"))
}

func (c *Client) getJSON(ctx context.Context, table string, q url.Values, header http.Header, target any) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, table, q, header, nil, target)
}

// do sends a request to the table endpoint and decodes a JSON response into target.
func (c *Client) do(ctx context.Context, method, table string, q url.Values, header http.Header, body, target any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+table, reader)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp, data)
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", table, err)
	}

	return resp, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

// apiError builds an error from a PostgREST error body ({"code","message","details","hint"}).
func apiError(resp *http.Response, data []byte) error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return fmt.Errorf("bad status: %s: %s (%s)", resp.Status, body.Message, body.Code)
	}
	return fmt.Errorf("bad status: %s", resp.Status)
}

// parseContentRange reads the total from headers like "0-24/3573" or "*/0".
func parseContentRange(value string) (int, error) {
	idx := strings.LastIndex(value, "/")
	if idx == -1 {
		return 0, fmt.Errorf("missing total in content range %q", value)
	}
	total := value[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("server did not return an exact count")
	}
	return strconv.Atoi(total)
}

func cloneValues(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
