package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listPluginsTool() mcp.Tool {
	return mcp.NewTool("list_plugins",
		mcp.WithDescription("Lists plugins that declare settings, with their descriptions and setting counts."),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive filter on plugin name and description")),
	)
}

func getPluginSettingsTool() mcp.Tool {
	return mcp.NewTool("get_plugin_settings",
		mcp.WithDescription("Returns the inferred settings schema of one plugin: types, defaults, allowed values and labels."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Plugin name, case-insensitive")),
		mcp.WithString("format",
			mcp.Description("json (default) or nix"),
			mcp.Enum("json", "nix")),
	)
}

func extractSettingsTool() mcp.Tool {
	return mcp.NewTool("extract_settings",
		mcp.WithDescription("Extracts the settings schema from plugin source passed inline. Imports are not followed."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("TypeScript or JavaScript source of the plugin")),
		mcp.WithString("path",
			mcp.Description("File name used to pick the grammar, e.g. index.tsx (default)")),
		mcp.WithString("format",
			mcp.Description("json (default) or nix"),
			mcp.Enum("json", "nix")),
	)
}

func rescanTool() mcp.Tool {
	return mcp.NewTool("rescan",
		mcp.WithDescription("Rescans the plugin tree and returns scan statistics."),
	)
}
