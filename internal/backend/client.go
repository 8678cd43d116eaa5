// Package backend is the console's client for the platform REST API.
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

	"quiz-admin-console/internal/domain"
)

const fallbackMessage = "Something went wrong"

// APIError is a non-success answer from the backend. Message is shown to the
// user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %d: %s", e.StatusCode, e.Message)
}

// Client talks to the platform backend. Each call carries the caller's access
// token; the client holds no per-user state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope is the backend's response wrapper. Paging metadata appears either at
// the top level or nested inside data, under "pagination" or "meta".
type envelope struct {
	Status     *bool              `json:"status"`
	Success    *bool              `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Pagination *domain.Pagination `json:"pagination"`
	Meta       *domain.Pagination `json:"meta"`
}

func (e envelope) ok() bool {
	if e.Status != nil {
		return *e.Status
	}
	if e.Success != nil {
		return *e.Success
	}
	return true
}

func (e envelope) paging() domain.Pagination {
	if e.Pagination != nil {
		return *e.Pagination
	}
	if e.Meta != nil {
		return *e.Meta
	}
	return domain.Pagination{}
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, token string, payload any) (request, error) {
	req := request{method: method, path: path, token: token}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("marshal: %w", err)
	}
	req.body = bytes.NewReader(body)
	req.contentType = "application/json"
	return req, nil
}

func (c *Client) do(ctx context.Context, r request) (envelope, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("read: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &env); err != nil {
			if resp.StatusCode >= 300 {
				return envelope{}, &APIError{StatusCode: resp.StatusCode, Message: fallbackMessage}
			}
			return envelope{}, fmt.Errorf("unmarshal: %w", err)
		}
	}

	if resp.StatusCode >= 300 || !env.ok() {
		msg := env.Message
		if msg == "" {
			msg = fallbackMessage
		}
		status := resp.StatusCode
		if status < 300 {
			status = http.StatusBadRequest
		}
		return envelope{}, &APIError{StatusCode: status, Message: msg}
	}
	return env, nil
}

func decodeData(env envelope, out any) error {
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func pageQuery(page, limit int, search string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	return q
}

// multipartForm collects text fields and at most one file for the category and
// joke endpoints.
type multipartForm struct {
	fields    [][2]string
	fileField string
	file      *domain.Upload
}

func (f *multipartForm) add(name, value string) {
	f.fields = append(f.fields, [2]string{name, value})
}

func (f *multipartForm) request(method, path, token string) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return request{}, fmt.Errorf("multipart field %s: %w", kv[0], err)
		}
	}
	if f.file != nil && len(f.file.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.fileField, f.file.Filename))
		ct := f.file.ContentType
		if ct == "" {
			ct = http.DetectContentType(f.file.Data)
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("multipart file: %w", err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return request{}, fmt.Errorf("multipart file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("multipart close: %w", err)
	}
	return request{
		method:      method,
		path:        path,
		token:       token,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}
