package cmd

import (
	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversations over a websocket",
	Long:  `Start an HTTP server exposing GET /chat (websocket) and GET /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Get()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}

		var health server.HealthChecker
		if checker, ok := app.source.(server.HealthChecker); ok {
			health = checker
		}

		return server.New(app.newController, health).ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
