package client

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tidwall/gjson"
)

// RenderSearch prints the weather block of a search response.
func RenderSearch(w io.Writer, res gjson.Result) {
	wx := res.Get("weather")
	place := wx.Get("city").String()
	if country := wx.Get("country").String(); country != "" {
		place += ", " + country
	}

	fmt.Fprintf(w, "%s\n", place)
	fmt.Fprintf(w, "  %.1f°C (feels like %.1f°C), %s\n",
		wx.Get("temperature").Float(),
		wx.Get("feelsLike").Float(),
		wx.Get("description").String(),
	)
	fmt.Fprintf(w, "  humidity %d%%, wind %.1f m/s\n", wx.Get("humidity").Int(), wx.Get("windSpeed").Float())
	fmt.Fprintf(w, "  search #%d\n", res.Get("searchId").Int())
	if note := res.Get("note"); note.Exists() {
		fmt.Fprintf(w, "  note: %s\n", note.String())
	}
}

// RenderHistory prints history entries newest first.
func RenderHistory(w io.Writer, res gjson.Result) {
	entries := res.Get("history").Array()
	fmt.Fprintf(w, "%d of %d matching searches\n", len(entries), res.Get("total").Int())
	if len(entries) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCITY\tTEMP\tCONDITIONS\tWHEN")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f°C\t%s\t%s\n",
			e.Get("id").Int(),
			e.Get("city").String(),
			e.Get("weather.temperature").Float(),
			e.Get("weather.description").String(),
			formatTime(e.Get("timestamp").String()),
		)
	}
	tw.Flush()
}

func RenderPopular(w io.Writer, res gjson.Result) {
	cities := res.Get("popularCities").Array()
	if len(cities) == 0 {
		fmt.Fprintln(w, "No searches yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range cities {
		fmt.Fprintf(tw, "%d.\t%s\t%d\n", i+1, c.Get("city").String(), c.Get("searchCount").Int())
	}
	tw.Flush()
}

func RenderStats(w io.Writer, res gjson.Result) {
	s := res.Get("stats")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total searches\t%d\n", s.Get("totalSearches").Int())
	fmt.Fprintf(tw, "Unique cities\t%d\n", s.Get("uniqueCities").Int())
	fmt.Fprintf(tw, "Last 24 hours\t%d\n", s.Get("searchesLast24Hours").Int())
	fmt.Fprintf(tw, "Average per day\t%.2f\n", s.Get("averageSearchesPerDay").Float())
	tw.Flush()
}

func RenderForecast(w io.Writer, res gjson.Result) {
	f := res.Get("forecast")
	fmt.Fprintf(w, "%s forecast\n", f.Get("city").String())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	f.Get("days").ForEach(func(_, d gjson.Result) bool {
		fmt.Fprintf(tw, "%s\t%s\t%.0f°/%.0f°\t%s\n",
			d.Get("day").String(),
			d.Get("date").String(),
			d.Get("high").Float(),
			d.Get("low").Float(),
			d.Get("description").String(),
		)
		return true
	})
	tw.Flush()
}

func formatTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}
