package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect runs the server in-process and returns a client session.
func connect(t *testing.T, ports *Ports, opts ...Option) *mcp.ClientSession {
	t.Helper()
	server, err := NewServer(ports, opts...)
	require.NoError(t, err)

	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestNewServer(t *testing.T) {
	t.Run("nil query service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("query only is valid", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Query:  &mockQueryService{},
			Search: &mockSearchService{},
			Web:    &mockWebService{},
			Health: &mockHealthService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_RegistersToolsForSetPorts(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  []string
	}{
		{
			name:  "query only",
			ports: &Ports{Query: &mockQueryService{}},
			want:  []string{ToolQuery},
		},
		{
			name:  "all tools",
			ports: &Ports{Query: &mockQueryService{}, Search: &mockSearchService{}, Web: &mockWebService{}, News: &mockPagedWebService{}},
			want:  []string{ToolQuery, ToolSearchDocuments, ToolWebSearch, ToolNewsSearch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, tt.ports)

			res, err := cs.ListTools(context.Background(), nil)
			require.NoError(t, err)

			names := make([]string, 0, len(res.Tools))
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestNewServer_NilPorts(t *testing.T) {
	_, err := NewServer(nil)

	assert.ErrorIs(t, err, ErrMissingQueryService)
}

func TestServer_ReportsVersionAndInstructions(t *testing.T) {
	cs := connect(t, &Ports{Query: &mockQueryService{}}, WithVersion("2.0.1"))

	info := cs.InitializeResult()
	require.NotNil(t, info)
	assert.Equal(t, "sercha-rag", info.ServerInfo.Name)
	assert.Equal(t, "2.0.1", info.ServerInfo.Version)
	assert.Contains(t, info.Instructions, "search_documents")
}

func TestWithVersion_EmptyKeepsDefault(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}}, WithVersion(""))

	require.NoError(t, err)
	assert.Equal(t, "dev", server.Version())
}

func TestServe_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "not-an-address")

	assert.Error(t, err)
}
