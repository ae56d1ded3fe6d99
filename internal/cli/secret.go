package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage a component's secret values",
	}
	cmd.AddCommand(newSetSecretCmd())
	cmd.AddCommand(newDeleteSecretCmd())
	return cmd
}

func newSetSecretCmd() *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "set <component-id> <key>",
		Short: "Set a secret value for a component",
		Long: `set stores a secret value a component may read through an
allow-listed environment variable. If --value is omitted and stdin is a
terminal, the value is read with echo disabled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			v := value
			if v == "" {
				v, err = promptForSecret(args[1])
				if err != nil {
					return err
				}
			}

			raw, err := a.dispatcher.SetSecret(args[0], args[1], v)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "secret value (prompted, masked, if omitted)")
	return cmd
}

func newDeleteSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <component-id> <key>",
		Short: "Delete a stored secret value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.DeleteSecret(args[0], args[1])
			printResult(raw)
			return err
		},
	}
}

// promptForSecret reads a secret value from stdin with echo disabled
// when stdin is a terminal, falling back to a plain newline-delimited
// read (e.g. piped input) otherwise.
func promptForSecret(key string) (string, error) {
	fmt.Printf("value for %s: ", key)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		var raw string
		if _, err := fmt.Scanln(&raw); err != nil {
			return "", err
		}
		return strings.TrimSpace(raw), nil
	}

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePassword)), nil
}
