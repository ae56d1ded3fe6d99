package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wassette-go/wassette/pkg/lifecycle"
)

func newLoadCmd() *cobra.Command {
	var (
		toolFilter string
		stateful   bool
	)

	cmd := &cobra.Command{
		Use:   "load <source-uri>",
		Short: "Load a WebAssembly component and register its exports as tools",
		Long: `Load fetches a component from a file:// or oci:// source URI,
introspects its exports, and registers a tool per export (optionally
restricted by --tool-filter, an HCL boolean expression over raw export
names).

Examples:
  wassette load file:///path/to/echo.wasm
  wassette load oci://ghcr.io/acme/fetch-url:v1 --stateful`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			mode := lifecycle.Stateless
			if stateful {
				mode = lifecycle.Stateful
			}

			result, err := a.manager.Load(ctx, args[0], toolFilter, mode)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&toolFilter, "tool-filter", "", "HCL boolean expression over raw export names")
	cmd.Flags().BoolVar(&stateful, "stateful", false, "keep one long-lived instance across invocations")
	return cmd
}

func newUnloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unload <component-id>",
		Short: "Unload a component and unregister its tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.UnloadComponent(ctx, args[0])
			printResult(raw)
			return err
		},
	}
}
