package main

import (
	"go-clinic-scheduling/cmd/bootstrap"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
}

func runServer(cmd *cobra.Command) error {
	app, err := bootstrap.New(cmd.Context())
	if err != nil {
		return err
	}

	app.Run()
	return nil
}
