package blobsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

// HTTPStore uploads blobs to a remote media service over its REST API.
type HTTPStore struct {
	uploadURL string
	apiKey    string
	http      *http.Client
}

var _ core.BlobStore = (*HTTPStore)(nil) // interface compliance check

func NewHTTPStore(uploadURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResult struct {
	URL string `json:"url"`
}

func (s *HTTPStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("path", path)
	_ = w.WriteField("content_type", contentType)
	part, err := w.CreateFormFile("file", path)
	if err != nil {
		return "", errors.Wrap(err, "building upload form")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "building upload form")
	}
	_ = w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &buf)
	if err != nil {
		return "", errors.Wrap(err, "creating upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "uploading blob")
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", errors.Errorf("uploading blob: status %d: %s", resp.StatusCode, string(body))
	}

	var result uploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "decoding upload response")
	}
	return result.URL, nil
}

func (s *HTTPStore) Delete(ctx context.Context, path string) error {
	q := url.Values{"path": {path}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.uploadURL+"?"+q.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "creating delete request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "deleting blob")
	}
	defer func() { _ = resp.Body.Close() }()

	// a blob that is already gone counts as deleted
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return errors.Errorf("deleting blob: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
