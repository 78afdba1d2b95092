package main

import (
	"github.com/adrianliechti/scanpress/server"

	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()

			if err != nil {
				return err
			}

			if address != "" {
				cfg.Address = address
			}

			s, err := server.New(cfg)

			if err != nil {
				return err
			}

			return s.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address")

	return cmd
}
