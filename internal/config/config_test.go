package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TERMINATE_CONFIG", "")
	t.Setenv("TERMINATE_LOG_DIR", "")
	t.Setenv("TERMINATE_LOG_LEVEL", "")
}

func TestFallback_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Fallback()
	if err != nil {
		t.Fatalf("Fallback() error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Dir != os.TempDir() {
		t.Errorf("Log.Dir = %q, want %q", cfg.Log.Dir, os.TempDir())
	}
	if cfg.Lock.Dir != cfg.Log.Dir {
		t.Errorf("Lock.Dir = %q, want log dir", cfg.Lock.Dir)
	}
	if !cfg.LockEnabled() {
		t.Error("LockEnabled() = false, want true")
	}

	r := cfg.Reporter
	if r.RegistryKey != `SOFTWARE\LANDesk\ManagementSuite\WinClient` || r.RegistryValue != "Path" {
		t.Errorf("registry = %q/%q", r.RegistryKey, r.RegistryValue)
	}
	if r.Executable != "miniscan.exe" {
		t.Errorf("Executable = %q", r.Executable)
	}
	if r.NameField != "Custom Data - Support - ProcessName" || r.AgeField != "Custom Data - Support - ProcessAgeMinutes" {
		t.Errorf("fields = %q/%q", r.NameField, r.AgeField)
	}
	if r.Timeout.Duration != 0 || r.InstallPath != "" {
		t.Errorf("Timeout = %v, InstallPath = %q; want 0 and empty", r.Timeout, r.InstallPath)
	}
}

func TestLoad_NoOverride(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.Reporter.Executable != "miniscan.exe" {
		t.Errorf("Executable = %q", cfg.Reporter.Executable)
	}
}

func TestLoad_TOMLOverrideMerges(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	path := writeFile(t, dir, "terminate.toml", `
[log]
dir = '`+logDir+`'

[reporter]
install_path = 'C:\Program Files\LANDesk\LDClient'
timeout = "2m"

[lock]
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Log.Dir != logDir || cfg.Lock.Dir != logDir {
		t.Errorf("dirs = %q/%q, want %q", cfg.Log.Dir, cfg.Lock.Dir, logDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default kept", cfg.Log.Level)
	}
	if cfg.Reporter.InstallPath != `C:\Program Files\LANDesk\LDClient` {
		t.Errorf("InstallPath = %q", cfg.Reporter.InstallPath)
	}
	if cfg.Reporter.Timeout.Duration != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", cfg.Reporter.Timeout)
	}
	if cfg.Reporter.Executable != "miniscan.exe" {
		t.Errorf("Executable = %q, want default kept", cfg.Reporter.Executable)
	}
	if cfg.LockEnabled() {
		t.Error("LockEnabled() = true, want false")
	}
}

func TestLoad_YAMLOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "terminate.yaml", `
log:
  level: debug
reporter:
  executable: ldiscn32.exe
  timeout: 30s
lock:
  dir: /var/lock/terminate
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Reporter.Executable != "ldiscn32.exe" {
		t.Errorf("Executable = %q", cfg.Reporter.Executable)
	}
	if cfg.Reporter.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Reporter.Timeout)
	}
	if cfg.Lock.Dir != "/var/lock/terminate" {
		t.Errorf("Lock.Dir = %q", cfg.Lock.Dir)
	}
	if !cfg.LockEnabled() {
		t.Error("LockEnabled() = false, want default true")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "terminate.toml", "[log]\nlevel = \"warn\"\n")
	t.Setenv("TERMINATE_CONFIG", path)
	t.Setenv("TERMINATE_LOG_DIR", dir)
	t.Setenv("TERMINATE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q from env", cfg.Source, path)
	}
	if cfg.Log.Dir != dir || cfg.Lock.Dir != dir {
		t.Errorf("dirs = %q/%q, want %q", cfg.Log.Dir, cfg.Lock.Dir, dir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env to win", cfg.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "nope.toml"), "nope.toml"},
		{"unknown toml key", writeFile(t, dir, "bad.toml", "[reporter]\nexe = \"x\"\n"), "unknown keys"},
		{"unknown yaml key", writeFile(t, dir, "bad.yml", "reporter:\n  exe: x\n"), "decode"},
		{"bad duration", writeFile(t, dir, "dur.toml", "[reporter]\ntimeout = \"soon\"\n"), "invalid duration"},
		{"malformed toml", writeFile(t, dir, "broken.toml", "[log\n"), "parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Reporter.Executable != "miniscan.exe" {
		t.Errorf("Executable = %q", cfg.Reporter.Executable)
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" || d.String() != "1m30s" {
		t.Errorf("MarshalText() = %q, String() = %q", text, d.String())
	}
}

func TestFallback_UsesEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("TERMINATE_LOG_DIR", dir)
	t.Setenv("TERMINATE_CONFIG", filepath.Join(dir, "missing.toml"))

	if _, err := Load(""); err == nil {
		t.Fatal("Load() with a missing config should fail")
	}
	cfg, err := Fallback()
	if err != nil {
		t.Fatalf("Fallback() error: %v", err)
	}
	if cfg.Log.Dir != dir || cfg.Lock.Dir != dir {
		t.Errorf("dirs = %q/%q, want %q", cfg.Log.Dir, cfg.Lock.Dir, dir)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
}
