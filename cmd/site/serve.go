package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	site "github.com/pulsodigital/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the site server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := site.LoadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := site.New(cfg)
		go func() {
			<-ctx.Done()
			log.Println("shutting down")
			if err := app.Echo.Shutdown(context.Background()); err != nil {
				log.Printf("shutdown: %v", err)
			}
		}()
		defer app.Close()

		return app.Start(ctx)
	},
}
