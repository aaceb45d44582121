package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ObjectStore is the external storage the adapter writes to. Delete is
// idempotent: deleting an already-deleted URL is a no-op, not an error.
type ObjectStore interface {
	Put(ctx context.Context, pathname string, data []byte, contentType string, randomizeSuffix bool) (string, error)
	Delete(ctx context.Context, urls []string) error
}

// HTTPStore talks to a Vercel-Blob-style storage REST API.
type HTTPStore struct {
	Endpoint string
	Token    string
	client   *http.Client
}

func NewHTTPStore(endpoint, token string) *HTTPStore {
	return &HTTPStore{
		Endpoint: endpoint,
		Token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type putResponse struct {
	Url      string `json:"url"`
	Pathname string `json:"pathname"`
}

func (s *HTTPStore) Put(ctx context.Context, pathname string, data []byte, contentType string, randomizeSuffix bool) (string, error) {
	endpoint := fmt.Sprintf("%s/%s", s.Endpoint, pathname)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Access", "public")
	if randomizeSuffix {
		req.Header.Set("X-Add-Random-Suffix", "1")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blob store put error: %s", string(bodyBytes))
	}

	var putResp putResponse
	if err := json.Unmarshal(bodyBytes, &putResp); err != nil {
		return "", err
	}
	return putResp.Url, nil
}

func (s *HTTPStore) Delete(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	jsonBody, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/delete", s.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The store reports missing objects as a successful delete; only a
	// hard rejection is an error.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("blob store delete error: %s", string(bodyBytes))
	}
	return nil
}

// MemoryStore is an in-process ObjectStore used by tests and local
// development without storage credentials.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
	counter int
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "https://test" + DefaultHostSuffix
	}
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

func (s *MemoryStore) Put(ctx context.Context, pathname string, data []byte, contentType string, randomizeSuffix bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/%s", s.baseURL, pathname)
	if randomizeSuffix {
		s.counter++
		url = fmt.Sprintf("%s-%d", url, s.counter)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[url] = buf
	return url, nil
}

func (s *MemoryStore) Delete(ctx context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range urls {
		delete(s.objects, u)
	}
	return nil
}

// Has reports whether an object is still fetchable.
func (s *MemoryStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
