package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crowdstream/crowdstream/internal/app"
	"github.com/crowdstream/crowdstream/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trading engine",
	Long: `Starts the crowdstream trading engine, which will:
1. Open a trade election round and accept votes over HTTP
2. Validate the winning trade against live broker data when the round closes
3. Accept and validate personal wallet orders as instant commands
4. Re-open the next round and repeat

Use --round-length to override the configured round duration.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationP("round-length", "r", 0, "Override the trade round length (e.g. 90s)")
	runCmd.Flags().Bool("subscribers-only", false, "Only accept trade votes from subscribers")
}

func runEngine(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	roundLength, _ := cmd.Flags().GetDuration("round-length")
	if roundLength > 0 {
		cfg.TradeRoundLength = roundLength
	}
	if cmd.Flags().Changed("subscribers-only") {
		cfg.SubscribersOnly, _ = cmd.Flags().GetBool("subscribers-only")
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
