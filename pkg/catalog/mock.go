package catalog

import "context"

// MockClient is a catalog client for testing
type MockClient struct {
	entries []Entry
	loadErr error
	loads   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithEntries sets the entries to return
func WithEntries(entries []Entry) MockOption {
	return func(m *MockClient) {
		m.entries = entries
	}
}

// WithLoadError sets an error to return from Load
func WithLoadError(err error) MockOption {
	return func(m *MockClient) {
		m.loadErr = err
	}
}

// NewMockClient creates a mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockClient) Load(ctx context.Context) ([]Entry, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MockClient) Source() string {
	return "mock"
}

// Loads returns how many times Load was called
func (m *MockClient) Loads() int {
	return m.loads
}

var _ Client = (*MockClient)(nil)
