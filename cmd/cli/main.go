// Command cli reads service status from the history API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/statushistory/internal/domain"
)

var (
	apiBase string
	apiKey  string
	client  = &http.Client{Timeout: 10 * time.Second}
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cli",
		Short:        "Query the status history API",
		SilenceUsage: true,
	}
	defaultBase := os.Getenv("API_BASE")
	if defaultBase == "" {
		defaultBase = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&apiBase, "api", defaultBase, "history API base URL")
	root.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("API_KEY"), "API key")
	root.AddCommand(statusCmd(), historyCmd())
	return root
}

type serviceView struct {
	Name    string         `json:"name"`
	Slug    string         `json:"slug"`
	URL     string         `json:"url"`
	Summary domain.Summary `json:"summary"`
	Error   string         `json:"error"`
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest status and uptime of every service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var services []serviceView
			if err := get("/api/services", &services); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tSTATUS\tUPTIME\tAVG\tCHECKED")
			for _, s := range services {
				status, checked := "n/a", "never"
				if s.Error != "" {
					status = "error"
				} else if s.Summary.Last != nil {
					status = string(s.Summary.Last.Status)
					checked = s.Summary.Last.Timestamp
				}
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.0f ms\t%s\n",
					s.Name, status, s.Summary.UptimePercent, s.Summary.AvgResponseMS, checked)
			}
			return w.Flush()
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <slug>",
		Short: "Print recent records of one service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/services/" + url.PathEscape(args[0]) + "/history"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}
			var body struct {
				Service string                `json:"service"`
				Records []domain.StatusRecord `json:"records"`
			}
			if err := get(path, &body); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range body.Records {
				fmt.Fprintf(out, "%s  %-4s  %d ms\n", r.Timestamp, r.Status, r.ResponseTime)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "newest records to show (0 for all)")
	return cmd
}

func get(path string, v any) error {
	req, err := http.NewRequest(http.MethodGet, apiBase+path, nil)
	if err != nil {
		return err
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned %s: %s", resp.Status, b)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
