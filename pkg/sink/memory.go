package sink

import (
	"context"
	"image"
	"sync"
)

// Memory keeps every output as encoded bytes. Only use it for previews or
// short rolls; it holds all pages at once.
type Memory struct {
	mu    sync.Mutex
	order []string
	files map[string][]byte
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// WritePage stores img as PNG bytes under name.png.
func (m *Memory) WritePage(ctx context.Context, name string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return m.WriteFile(ctx, PNGName(name), data)
}

// WriteFile stores data under name.
func (m *Memory) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		m.order = append(m.order, name)
	}
	m.files[name] = data
	return nil
}

// Names returns stored file names in write order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Get returns the bytes stored under name.
func (m *Memory) Get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

var _ Sink = (*Memory)(nil)
