package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/headless"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/render"
	"github.com/killallgit/pharmai/pkg/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pharmai",
	Short: "Pharmacology assistant that shows its thinking",
	Long: `PharmAI answers pharmacology questions with a streaming model and shows
the model's reasoning separately from its final answer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(cfgFile); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return logger.Init()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Get()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderer := render.New(out, cfg.ShowThinking)

		if prompt := viper.GetString("prompt"); prompt != "" {
			return headless.RunHeadless(ctx, app.newController(), renderer, prompt)
		}

		input := repl.NewLinerInput(config.BuildSettingsPath("input_history"))
		defer input.Close()

		return repl.NewSession(app.newController(), renderer, input, out).Run(ctx)
	},
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .pharmai/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("provider", "gemini", "model provider (gemini or ollama)")
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))

	rootCmd.PersistentFlags().Bool("show-thinking", true, "print the model's reasoning before the answer")
	viper.BindPFlag("show_thinking", rootCmd.PersistentFlags().Lookup("show-thinking"))

	rootCmd.Flags().StringP("prompt", "p", "", "answer a single question and exit")
	viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))
}
