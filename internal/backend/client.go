package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no backend address is configured.
const DefaultBaseURL = "http://localhost:8000"

const maxResponseBytes = 8 << 20

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestTimeout bounds list and get requests. Zero disables the bound.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithUploadTimeout bounds create requests. Zero disables the bound.
func WithUploadTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.uploadTimeout = d
	}
}

// Client talks to the video backend. The base URL is fixed at construction.
type Client struct {
	baseURL        string
	httpClient     HTTPClient
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// StreamURL returns the address the player loads the media bytes from.
func (c *Client) StreamURL(filename string) string {
	return c.baseURL + "/stream/" + url.PathEscape(filename)
}

// VideosURL returns the collection endpoint, with the query attached only
// when it is non-empty.
func (c *Client) VideosURL(query string) string {
	u := c.baseURL + "/api/videos"
	if query != "" {
		u += "?" + url.Values{"q": {query}}.Encode()
	}
	return u
}

// ListVideos fetches the video collection, optionally filtered by query.
// The result is in backend order and never nil.
func (c *Client) ListVideos(ctx context.Context, query string) ([]Video, error) {
	ctx, cancel := c.bound(ctx, c.requestTimeout)
	defer cancel()

	body, err := c.doRequest(ctx, http.MethodGet, c.VideosURL(query), nil, "")
	if err != nil {
		return nil, err
	}

	var videos []Video
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("failed to parse video list: %w", err)
	}
	if videos == nil {
		videos = []Video{}
	}
	return videos, nil
}

// GetVideo fetches one video. A 404 or an empty/null body yields ErrNotFound.
func (c *Client) GetVideo(ctx context.Context, id string) (*Video, error) {
	ctx, cancel := c.bound(ctx, c.requestTimeout)
	defer cancel()

	body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/api/videos/"+url.PathEscape(id), nil, "")
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, ErrNotFound
	}

	var v Video
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to parse video %q: %w", id, err)
	}
	return &v, nil
}

// CreateVideo posts a multipart upload. The file is streamed, not buffered.
// A 2xx body that is not a JSON object is rejected with ErrUnexpectedResponse.
func (c *Client) CreateVideo(ctx context.Context, u Upload) (*Video, error) {
	if u.File == nil {
		return nil, fmt.Errorf("upload requires a file")
	}

	ctx, cancel := c.bound(ctx, c.uploadTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, u))
	}()
	defer pr.Close()

	body, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/videos", pr, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: create response is not a JSON object", ErrUnexpectedResponse)
	}

	var created Video
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return &created, nil
}

// Ping checks that the collection endpoint answers with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx, c.requestTimeout)
	defer cancel()

	_, err := c.doRequest(ctx, http.MethodGet, c.VideosURL(""), nil, "")
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUpload(mw *multipart.Writer, u Upload) error {
	name := u.FileName
	if name == "" {
		name = "upload"
	}
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, u.File); err != nil {
		return fmt.Errorf("copy upload body: %w", err)
	}

	for _, f := range u.fields() {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (c *Client) bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (c *Client) doRequest(ctx context.Context, method, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
