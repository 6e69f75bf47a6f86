package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Indexer pushes documents to a search indexer's HTTP API.
type Indexer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewIndexer(baseURL, apiKey string) *Indexer {
	return &Indexer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DocumentRequest is the body for PUT /documents/{key}.
type DocumentRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	Tag         string `json:"tag,omitempty"`
	Source      string `json:"source,omitempty"`
}

func (c *Indexer) Name() string { return "indexer" }

// Write stores or replaces the document at obj.Key.
func (c *Indexer) Write(ctx context.Context, obj Object) error {
	body, err := json.Marshal(DocumentRequest{
		Content:     obj.Content,
		ContentType: markdownContentType,
		Tag:         obj.Tag,
		Source:      obj.Source,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	u := c.baseURL + "/documents/" + escapeKey(obj.Key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Sink: c.Name(), Message: fmt.Sprintf("put document: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{Sink: c.Name(), StatusCode: resp.StatusCode, Message: string(respBody)}
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put document %s: status %d: %s", obj.Key, resp.StatusCode, string(respBody))
	}
}

// escapeKey escapes each path segment but keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(strings.ReplaceAll(key, "\\", "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Close releases idle connections.
func (c *Indexer) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
