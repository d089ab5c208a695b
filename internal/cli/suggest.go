package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	suggestLimit int
	suggestDelay time.Duration
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest city names as you type",
	Long: `Read partial city names from stdin, one per line, and print suggestions
once input pauses. A new line supersedes any pending lookup.

Examples:
  weather-cli suggest
  printf 'Lo\nLon\n' | weather-cli suggest`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", weather.DefaultSuggestLimit, "maximum suggestions (1-10)")
	suggestCmd.Flags().DurationVar(&suggestDelay, "delay", client.DefaultSuggestDelay, "quiet interval before fetching")
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	c := newClient()
	out := cmd.OutOrStdout()

	var (
		mu        sync.Mutex
		delivered = make(chan string, 8)
	)
	fetch := func(ctx context.Context, q string) ([]weather.Suggestion, error) {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return c.Suggest(ctx, q, suggestLimit)
	}
	deliver := func(q string, s []weather.Suggestion, err error) {
		mu.Lock()
		defer mu.Unlock()
		printSuggestions(out, q, s, err)
		select {
		case delivered <- q:
		default:
		}
	}

	sug := client.NewSuggester(suggestDelay, fetch, deliver)
	defer sug.Stop()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	last, typed := "", false
	for scanner.Scan() {
		drain(delivered)
		last, typed = scanner.Text(), true
		sug.Type(last)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !typed {
		return nil
	}

	// Input ended; wait for the last query's result.
	timeout := time.After(suggestDelay + requestTimeout)
	for {
		select {
		case q := <-delivered:
			if q == last {
				return nil
			}
		case <-timeout:
			return nil
		}
	}
}

func drain(ch chan string) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func printSuggestions(w io.Writer, q string, s []weather.Suggestion, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", q, err)
		return
	}
	if len(s) == 0 {
		fmt.Fprintf(w, "%s: no suggestions\n", q)
		return
	}
	fmt.Fprintf(w, "%s:\n", q)
	for _, sg := range s {
		fmt.Fprintf(w, "  %s\n", sg.Label())
	}
}
