// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/statushistory/internal/config"
	"github.com/hamed0406/statushistory/internal/repo"
	"github.com/hamed0406/statushistory/internal/repo/yamlfile"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
	}
	ok("config " + cfg.ConfigFile)

	if len(cfg.Services) == 0 {
		warn("no services configured; probe runs will do nothing.")
	}
	for _, s := range cfg.Services {
		line := fmt.Sprintf("%s -> %s/%s.yml", s.Name, cfg.HistoryDir, s.Slug())
		switch {
		case s.Auth && s.Secret == "":
			warn(line + " (auth enabled but no secret; no Authorization header will be sent)")
		case !s.Auth && s.Secret != "":
			warn(line + " (secret set but auth disabled; it will not be sent)")
		default:
			ok(line)
		}
	}

	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		fail("history dir not writable: " + err.Error())
	}
	ok("history dir " + cfg.HistoryDir)

	orphans, err := repo.Orphans(context.Background(), yamlfile.New(cfg.HistoryDir, zap.NewNop()), cfg.Services)
	if err != nil {
		fail("list history: " + err.Error())
	}
	for _, slug := range orphans {
		warn(fmt.Sprintf("%s/%s.yml has no configured service (renamed or removed?)", cfg.HistoryDir, slug))
	}

	if len(cfg.SlackWebhookURLs) == 0 {
		warn("SLACK_WEBHOOK_URL empty; no transition alerts will be sent.")
	} else {
		ok(fmt.Sprintf("SLACK_WEBHOOK_URL present (%d webhooks)", len(cfg.SlackWebhookURLs)))
	}
	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty (POST /api/run is open).")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured; history API is open.")
	}
	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; API allows every origin.")
	}

	ok("preflight passed")
}
