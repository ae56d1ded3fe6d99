package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// newServeCmd starts the lifecycle manager (rebuilding its component
// registry from whatever is already on disk) and blocks until an
// operator signal. The manager is a single in-process instance,
// instantiated at startup and torn down on shutdown; wiring an MCP
// transport in front of it is out of scope here — this command is
// what an embedder's main would otherwise call directly.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the component host and block until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			fmt.Printf("wassette: %d component(s) loaded\n", len(a.manager.List()))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			fmt.Println("\nshutting down")
			return nil
		},
	}
}
