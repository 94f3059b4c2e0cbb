package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/callwire/callwire"
	"github.com/callwire/callwire/cache"
	"github.com/callwire/callwire/client"
	"github.com/callwire/callwire/server"
	"github.com/callwire/callwire/tools"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callwire",
		Short:         "Schema-described tool calling over HTTP and WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newListCmd(), newCallCmd(), newStreamCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tool server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := server.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = server.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			registry := callwire.NewRegistry()
			results := cache.New(
				cache.WithEnabled(cfg.CacheEnabled),
				cache.WithMaxSize(cfg.CacheMaxSize),
				cache.WithTTL(cfg.CacheTTL),
			)
			if err := tools.RegisterAll(registry, results); err != nil {
				return fmt.Errorf("registering tools: %w", err)
			}
			return server.New(cfg, registry, logger).ListenAndServe()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

// clientFlags are shared by the remote commands.
type clientFlags struct {
	url     string
	apiKey  string
	timeout time.Duration
	noCache bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key sent as X-API-Key")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "skip the client result cache for this call")
}

func (f *clientFlags) newClient() *client.Client {
	opts := []client.Option{
		client.WithTimeout(f.timeout),
		client.WithCache(cache.New()),
	}
	if f.apiKey != "" {
		opts = append(opts, client.WithAPIKey(f.apiKey))
	}
	return client.New(f.url, opts...)
}

func newListCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List functions on a server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := flags.newClient().ListFunctions(cmd.Context())
			if err != nil {
				return err
			}
			for _, def := range defs {
				infoColor.Printf("%s\n", def.Name)
				fmt.Printf("  %s\n", def.Description)
				for name, prop := range def.Parameters.Properties {
					required := ""
					for _, req := range def.Parameters.Required {
						if req == name {
							required = " (required)"
							break
						}
					}
					fmt.Printf("    %-16s %s%s\n", name, prop.Type, required)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCallCmd() *cobra.Command {
	var flags clientFlags
	var paramsJSON string
	cmd := &cobra.Command{
		Use:   "call NAME",
		Short: "Call a function on a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramsJSON)
			if err != nil {
				return err
			}
			var callOpts []client.CallOption
			if flags.noCache {
				callOpts = append(callOpts, client.WithoutCache())
			}
			resp, err := flags.newClient().CallFunction(cmd.Context(), args[0], params, callOpts...)
			if err != nil {
				return err
			}
			printResponse(resp)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&paramsJSON, "params", "p", "{}", "call parameters as JSON")
	return cmd
}

func newStreamCmd() *cobra.Command {
	var flags clientFlags
	var paramsJSON string
	cmd := &cobra.Command{
		Use:   "stream NAME",
		Short: "Call a function and print its chunk stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramsJSON)
			if err != nil {
				return err
			}
			chunks, err := flags.newClient().StreamFunction(cmd.Context(), args[0], params, "")
			if err != nil {
				return err
			}
			for chunk := range chunks {
				data, _ := json.Marshal(chunk.Content)
				if chunk.IsFinal {
					if chunk.Status == callwire.ChunkError {
						errColor.Printf("error: %s\n", chunk.Error.Message)
					} else {
						okColor.Printf("final: %s\n", data)
					}
					return nil
				}
				fmt.Printf("chunk: %s\n", data)
			}
			errColor.Println("error: stream closed before final chunk")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&paramsJSON, "params", "p", "{}", "call parameters as JSON")
	return cmd
}

func parseParams(s string) (map[string]any, error) {
	var params map[string]any
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, fmt.Errorf("invalid --params JSON: %w", err)
	}
	return params, nil
}

func printResponse(resp callwire.FunctionResponse) {
	if resp.OK() {
		data, _ := json.MarshalIndent(resp.Result, "", "  ")
		okColor.Println("success")
		fmt.Println(string(data))
		return
	}
	errColor.Printf("error (%s): %s\n", resp.Error.Kind, resp.Error.Message)
	if len(resp.Error.Detail) > 0 {
		data, _ := json.MarshalIndent(resp.Error.Detail, "", "  ")
		fmt.Println(string(data))
	}
}
