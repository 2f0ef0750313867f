package session

import (
	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// mockAdapter is a platform.Adapter driven by testify expectations.
type mockAdapter struct {
	mock.Mock
	client mcp.ClientID
}

func newMockAdapter(client mcp.ClientID) *mockAdapter {
	return &mockAdapter{client: client}
}

func (m *mockAdapter) Client() mcp.ClientID { return m.client }
func (m *mockAdapter) DisplayName() string  { return string(m.client) }
func (m *mockAdapter) DefaultPath() string  { return "/default/" + string(m.client) }

func (m *mockAdapter) Parse(path string) (*mcp.Config, error) {
	args := m.Called(path)
	cfg, _ := args.Get(0).(*mcp.Config)
	return cfg, args.Error(1)
}

func (m *mockAdapter) Write(cfg *mcp.Config, path string) error {
	args := m.Called(cfg, path)
	return args.Error(0)
}

func (m *mockAdapter) Validate(cfg *mcp.Config) bool {
	args := m.Called(cfg)
	return args.Bool(0)
}
