package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-process Client used by tests.
type MemoryClient struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryClient constructs an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{objects: make(map[string][]byte)}
}

func (c *MemoryClient) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.objects[path] = buf
	return nil
}

func (c *MemoryClient) Download(ctx context.Context, path string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[path]
	if !ok {
		return nil, fmt.Errorf("storage: object %s not found", path)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (c *MemoryClient) Delete(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, path)
	return nil
}

func (c *MemoryClient) PublicURL(path string) string {
	return "memory://" + path
}

// Len reports how many objects are stored.
func (c *MemoryClient) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

var _ Client = (*MemoryClient)(nil)
