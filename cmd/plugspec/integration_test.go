package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is set by TestMain after building the binary.
var binaryPath string

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	tmp, err := os.MkdirTemp("", "plugspec-integration-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "plugspec")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmp)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// --- helpers ---

func skipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests")
	}
}

// startServer launches `plugspec serve <root>` and returns an initialized
// MCP client.
func startServer(t *testing.T, root string) *client.Client {
	t.Helper()

	c, err := client.NewStdioMCPClient(binaryPath, nil, "serve", root, "--log-level", "error")
	require.NoError(t, err, "failed to start MCP server")
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "plugspec-integration-test",
		Version: "1.0.0",
	}

	result, err := c.Initialize(ctx, initReq)
	require.NoError(t, err, "failed to initialize MCP session")
	assert.Equal(t, "plugspec", result.ServerInfo.Name)

	return c
}

func callToolHelper(t *testing.T, c *client.Client, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := c.CallTool(ctx, req)
	require.NoError(t, err, "CallTool(%s) failed", toolName)
	return result
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected content in result")
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- integration tests ---

func TestIntegration_ListTools(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t, writeTree(t, clockTree))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	toolNames := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		toolNames[i] = tool.Name
	}
	for _, name := range []string{"list_plugins", "get_plugin_settings", "extract_settings", "rescan"} {
		assert.Contains(t, toolNames, name, "missing tool: %s", name)
	}
}

func TestIntegration_ListAndGet(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t, writeTree(t, clockTree))

	result := callToolHelper(t, c, "list_plugins", nil)
	require.False(t, result.IsError)

	var plugins []map[string]any
	require.NoError(t, json.Unmarshal([]byte(extractText(t, result)), &plugins))
	require.Len(t, plugins, 1)
	assert.Equal(t, "Clock", plugins[0]["name"])

	result = callToolHelper(t, c, "get_plugin_settings", map[string]any{"name": "clock"})
	require.False(t, result.IsError)

	var plugin struct {
		Settings map[string]map[string]any `json:"settings"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractText(t, result)), &plugin))
	assert.Equal(t, "enumeration", plugin.Settings["format"]["type"])

	result = callToolHelper(t, c, "get_plugin_settings", map[string]any{"name": "Empty"})
	assert.True(t, result.IsError)
}

func TestIntegration_ExtractSettings(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t, writeTree(t, clockTree))

	result := callToolHelper(t, c, "extract_settings", map[string]any{
		"source": clockTree["src/plugins/clock/index.ts"],
		"path":   "index.ts",
		"format": "nix",
	})
	require.False(t, result.IsError)
	assert.Contains(t, extractText(t, result), "Clock = {")
}

func TestIntegration_Rescan(t *testing.T) {
	skipIfNotIntegration(t)
	root := writeTree(t, clockTree)
	c := startServer(t, root)

	callToolHelper(t, c, "list_plugins", nil)

	extra := filepath.Join(root, "src", "plugins", "beta.ts")
	require.NoError(t, os.WriteFile(extra, []byte(`
const settings = definePluginSettings({
    enabled: { type: OptionType.BOOLEAN, description: "Enabled", default: true },
});
export default definePlugin({ name: "Beta", settings });
`), 0o644))

	result := callToolHelper(t, c, "rescan", nil)
	require.False(t, result.IsError)

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(extractText(t, result)), &stats))
	assert.Equal(t, float64(2), stats["plugins_analyzed"])
}
