package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-policy <component-id>",
		Short: "Show a component's current capability grants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.GetPolicy(args[0])
			printResult(raw)
			return err
		},
	}
}

func newGrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a storage, network, or environment-variable capability",
	}
	cmd.AddCommand(newGrantStorageCmd())
	cmd.AddCommand(newGrantNetworkCmd())
	cmd.AddCommand(newGrantEnvCmd())
	return cmd
}

func newGrantStorageCmd() *cobra.Command {
	var (
		uri    string
		access []string
	)
	cmd := &cobra.Command{
		Use:   "storage <component-id>",
		Short: "Allow-list a storage URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.GrantStoragePermission(args[0], uri, access)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", `storage URI, e.g. "fs:///data/**"`)
	cmd.Flags().StringSliceVar(&access, "access", []string{"read"}, `access modes: "read", "write", or both`)
	return cmd
}

func newGrantNetworkCmd() *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "network <component-id>",
		Short: "Allow-list a network host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.GrantNetworkPermission(args[0], host)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&host, "host", "", `exact host or "*.suffix" wildcard`)
	return cmd
}

func newGrantEnvCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "env <component-id>",
		Short: "Allow-list an environment variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.GrantEnvironmentVariablePermission(args[0], key)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "environment variable name")
	return cmd
}

func newRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a storage, network, or environment-variable capability",
	}
	cmd.AddCommand(newRevokeStorageCmd())
	cmd.AddCommand(newRevokeNetworkCmd())
	cmd.AddCommand(newRevokeEnvCmd())
	return cmd
}

func newRevokeStorageCmd() *cobra.Command {
	var uri string
	cmd := &cobra.Command{
		Use:   "storage <component-id>",
		Short: "Remove a storage allow-list rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.RevokeStoragePermission(args[0], uri)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "storage URI")
	return cmd
}

func newRevokeNetworkCmd() *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "network <component-id>",
		Short: "Remove a network allow-list rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.RevokeNetworkPermission(args[0], host)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "network host")
	return cmd
}

func newRevokeEnvCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "env <component-id>",
		Short: "Remove an environment-variable allow-list rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.RevokeEnvironmentVariablePermission(args[0], key)
			printResult(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "environment variable name")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <component-id>",
		Short: "Clear every capability grant for a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			raw, err := a.dispatcher.ResetPermission(args[0])
			printResult(raw)
			return err
		},
	}
}
