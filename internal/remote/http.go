package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkarpov/studysync/internal/common"
)

// HTTPSource implements ContentSource against the portal's REST API.
type HTTPSource struct {
	baseURL string
	client  *http.Client

	// tokenFn, when set, supplies the bearer token attached to every request.
	tokenFn func() string
}

type HTTPOption func(*HTTPSource)

// WithToken attaches a bearer token supplier; called per request so the host
// can rotate tokens.
func WithToken(fn func() string) HTTPOption {
	return func(s *HTTPSource) { s.tokenFn = fn }
}

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

func NewHTTPSource(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchBlob downloads a material's file. ref may be an absolute URL (e.g. a
// presigned object-storage link) or a path relative to the portal base URL.
func (s *HTTPSource) FetchBlob(ctx context.Context, ref string) ([]byte, string, error) {
	resp, err := s.do(ctx, http.MethodGet, ref, nil, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read blob: %w", errors.Join(common.ErrNetwork, err))
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

// Versions queries authoritative versions for exactly the given ids.
func (s *HTTPSource) Versions(ctx context.Context, ids []string) (map[string]int64, error) {
	body, err := json.Marshal(struct {
		IDs []string `json:"ids"`
	}{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to encode version query: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, "/materials/versions",
		map[string]string{"Content-Type": "application/json"}, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded struct {
		Versions []struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode version response: %w", errors.Join(common.ErrNetwork, err))
	}

	result := make(map[string]int64, len(decoded.Versions))
	for _, v := range decoded.Versions {
		result[v.ID] = v.Version
	}
	return result, nil
}

// Do replays a persisted request tuple and discards the response body.
func (s *HTTPSource) Do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) error {
	resp, err := s.do(ctx, method, endpoint, headers, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *HTTPSource) do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) (*http.Response, error) {
	url := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		url = s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", errors.Join(common.ErrValidation, err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if s.tokenFn != nil {
		if token := s.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", errors.Join(common.ErrNetwork, err))
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, common.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: status %s: %w", method, endpoint, resp.Status, common.ErrNetwork)
	}
	return resp, nil
}
