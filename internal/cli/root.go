// Package cli implements the wassette command-line front end: a thin
// layer over pkg/lifecycle, pkg/policy, and internal/builtintools that
// lets an operator exercise the component host directly, without an
// MCP transport in front of it.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wassette",
	Short: "Run WebAssembly components as capability-sandboxed MCP tools",
	Long: `wassette loads WebAssembly components, exposes their exports as
tools, and enforces per-component storage/network/environment-variable
capability grants on every invocation.

Command Structure:
  wassette <action> [arguments] [flags]

Examples:
  wassette load file:///path/to/component.wasm
  wassette list
  wassette invoke echo --args '{"s":"hello"}'
  wassette grant network my-component --host api.example.com`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wassette/config.yaml)")
	rootCmd.PersistentFlags().String("components-dir", "", "component cache directory (default is $HOME/.wassette/components)")
	rootCmd.PersistentFlags().String("secrets-dir", "", "secrets directory (default is $HOME/.wassette/secrets)")
	rootCmd.PersistentFlags().String("backend", "local", "component store backend")

	_ = viper.BindPFlag("components-dir", rootCmd.PersistentFlags().Lookup("components-dir"))
	_ = viper.BindPFlag("secrets-dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.SetEnvPrefix("WASSETTE")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newUnloadCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newInvokeCmd())
	rootCmd.AddCommand(newPolicyCmd())
	rootCmd.AddCommand(newGrantCmd())
	rootCmd.AddCommand(newRevokeCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSecretCmd())
	rootCmd.AddCommand(newServeCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.wassette")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}
	_ = viper.ReadInConfig()
}
