package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	goutcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"github.com/w-h-a/rio/tool_handler/utcp"
	toolprovider "github.com/w-h-a/rio/tool_provider"
)

type utcpToolProvider struct {
	options toolprovider.Options
	client  Client
}

func (tp *utcpToolProvider) Load(ctx context.Context, query string, limit int) ([]toolhandler.ToolHandler, error) {
	remoteTools, err := tp.client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp discovery failed: %w", err)
	}

	var handlers []toolhandler.ToolHandler
	for _, tool := range remoteTools {
		spec := toolhandler.ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema(tool.Inputs),
		}

		handlers = append(handlers, utcp.NewToolHandler(
			utcp.WithUtcpClient(tp.client),
			utcp.WithToolName(tool.Name),
			utcp.WithToolSpec(spec),
		))
	}

	return handlers, nil
}

// inputSchema always yields an object schema with a properties map, which
// every model provider requires.
func inputSchema(inputs tools.ToolInputOutputSchema) map[string]any {
	properties := map[string]any{}
	if inputs.Properties != nil {
		properties = inputs.Properties
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(inputs.Required) > 0 {
		schema["required"] = inputs.Required
	}

	return schema
}

type providerConfig struct {
	Type    string            `json:"provider_type"`
	Name    string            `json:"name"`
	Url     string            `json:"url"`
	Method  string            `json:"http_method"`
	Headers map[string]string `json:"headers"`
}

func providersFile(addrs []string) (string, error) {
	config := struct {
		Providers []providerConfig `json:"providers"`
	}{}

	for _, u := range addrs {
		parsed, err := url.Parse(u)
		if err != nil {
			return "", err
		}
		config.Providers = append(config.Providers, providerConfig{
			Type:   "http",
			Name:   parsed.Hostname(),
			Url:    u,
			Method: "POST",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		})
	}

	f, err := os.CreateTemp("", "rio_utcp_*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(config); err != nil {
		return "", err
	}

	return f.Name(), nil
}

func NewToolProvider(opts ...toolprovider.Option) (toolprovider.ToolProvider, error) {
	options := toolprovider.NewOptions(opts...)

	tp := &utcpToolProvider{
		options: options,
	}

	if client, ok := UtcpClientFrom(options.Context); ok {
		tp.client = client
		return tp, nil
	}

	var configPath string

	if len(options.Addrs) > 0 {
		path, err := providersFile(options.Addrs)
		if err != nil {
			return nil, err
		}
		configPath = path
		defer os.Remove(path)
	}

	client, err := goutcp.NewUTCPClient(
		options.Context,
		&goutcp.UtcpClientConfig{
			ProvidersFilePath: configPath,
		},
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create utcp client: %w", err)
	}

	tp.client = client

	return tp, nil
}
