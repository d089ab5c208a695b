package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/client"
)

var (
	historyLimit int
	historyCity  string
	forecastDays int
)

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Look up current weather and record the search",
	Example: `  weather-cli search London
  weather-cli search "New York"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches, newest first",
	Example: `  weather-cli history               # Show last 10 searches
  weather-cli history --city lon    # Only cities containing "lon"
  weather-cli history -n 50         # Show up to 50 searches`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most searched cities",
	Args:  cobra.NoArgs,
	RunE:  runPopular,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the search history",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "Show the daily forecast for the coming days",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runForecast,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of searches to show")
	historyCmd.Flags().StringVar(&historyCity, "city", "", "only show cities containing this text")

	forecastCmd.Flags().IntVarP(&forecastDays, "days", "d", 5, "number of days (1-5)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	client.RenderSearch(cmd.OutOrStdout(), res)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().History(ctx, historyCity, historyLimit)
	if err != nil {
		return err
	}
	client.RenderHistory(cmd.OutOrStdout(), res)
	return nil
}

func runPopular(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().Popular(ctx)
	if err != nil {
		return err
	}
	client.RenderPopular(cmd.OutOrStdout(), res)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().Stats(ctx)
	if err != nil {
		return err
	}
	client.RenderStats(cmd.OutOrStdout(), res)
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().ClearHistory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Get("message").String())
	return nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	res, err := newClient().Forecast(ctx, strings.Join(args, " "), forecastDays)
	if err != nil {
		return err
	}
	client.RenderForecast(cmd.OutOrStdout(), res)
	return nil
}
