package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "souldraw.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SOULDRAW_REFRESH_INTERVAL", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Souldraw.RefreshInterval != 15*time.Second || cfg.Souldraw.MaxRefreshFailures != 3 {
		t.Errorf("souldraw defaults = %+v", cfg.Souldraw)
	}
	if cfg.Server.Port != "3000" || cfg.Events.SubjectPrefix != "souldraw.events" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
discord:
  guild_id: g1
  channel_id: c1
  admin_role_ids: [r1, r2]
souldraw:
  refresh_interval: 30s
server:
  port: "8080"
log_level: debug
`)
	t.Setenv("CHANNEL_ID", "c-env")
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("DISCORD_ADMIN_ROLES", "r9, r10 ,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.GuildID != "g1" || cfg.Discord.ChannelID != "c-env" || cfg.Discord.Token != "secret" {
		t.Errorf("discord = %+v", cfg.Discord)
	}
	if !slices.Equal(cfg.Discord.AdminRoleIDs, []string{"r9", "r10"}) {
		t.Errorf("admin roles = %v", cfg.Discord.AdminRoleIDs)
	}
	if cfg.Souldraw.RefreshInterval != 30*time.Second || cfg.Souldraw.MaxRefreshFailures != 3 {
		t.Errorf("souldraw = %+v", cfg.Souldraw)
	}
	if cfg.Server.Port != "8080" || cfg.LogLevel != "debug" {
		t.Errorf("server/log = %s/%s", cfg.Server.Port, cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "souldraw:\n  max_refresh_failures: 0\n")
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SOULDRAW_TEST_INT", "nope")
	if got := getEnvAsInt("SOULDRAW_TEST_INT", 7); got != 7 {
		t.Errorf("got %d", got)
	}
}
