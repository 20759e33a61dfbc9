package cli

import (
	"github.com/spf13/cobra"

	"github.com/Ace0731/Image-Converter/internal/appServer"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			appServer.NewServer(a.cfg)
			return nil
		},
	}
}
