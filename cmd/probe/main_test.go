package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProbeCommand_WritesHistory(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	dir := t.TempDir()
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	cfgPath := filepath.Join(dir, "config.json")
	body := `{"services": [{"name": "Status API", "url": "` + up.URL + `", "auth": true, "secret": "tok"}]}`
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	historyDir := filepath.Join(dir, "history")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "--history-dir", historyDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(historyDir, "status-api.yml"))
	if err != nil {
		t.Fatalf("history file: %v", err)
	}
	if !strings.Contains(string(b), "status: up") || !strings.Contains(string(b), "responseTime:") {
		t.Fatalf("unexpected history content:\n%s", b)
	}
}

func TestProbeCommand_MissingConfigFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.json")})
	cmd.SetErr(new(strings.Builder))
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected missing config to fail")
	}
}
