package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/client"
)

var (
	serverURL      string
	requestTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "weather-cli",
	Short: "terminal client for the weather dashboard",
	Long: `weather-cli - look up the weather and browse search history

The backend URL includes the API prefix and can be set with --server
or the WEATHER_SERVER environment variable.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := os.Getenv("WEATHER_SERVER")
	if def == "" {
		def = client.DefaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "backend base URL")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 15*time.Second, "per-request timeout")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(suggestCmd)
}

// newClient is swapped out in tests.
var newClient = func() *client.Client {
	return client.New(serverURL, nil)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}
