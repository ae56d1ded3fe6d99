package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

func newInvokeCmd() *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "invoke <tool-name>",
		Short: "Call a registered tool",
		Long: `invoke decodes --args (a JSON object) per the tool's declared
parameters, dispatches the call through the owning component, and
prints the structured JSON result.

Example:
  wassette invoke echo --args '{"s":"hello"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var jsonArgs map[string]interface{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &jsonArgs); err != nil {
					return wassetteerr.New(wassetteerr.CodeTypeMismatch, "failed to parse --args as JSON")
				}
			} else {
				jsonArgs = map[string]interface{}{}
			}

			out, err := a.manager.Invoke(ctx, args[0], jsonArgs)
			if err != nil {
				return err
			}
			printResult(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "", "tool arguments as a JSON object")
	return cmd
}
