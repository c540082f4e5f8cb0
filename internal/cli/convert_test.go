package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func captureConvert(t *testing.T) **ConvertConfig {
	t.Helper()
	var captured *ConvertConfig
	convertRunner = func(ctx context.Context, cfg *ConvertConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { convertRunner = runConvert })
	return &captured
}

func executeRoot(args ...string) error {
	root, logs := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return execute(root, logs)
}

func TestConvertConfigFromFlags(t *testing.T) {
	captured := captureConvert(t)

	err := executeRoot(
		"--verbose",
		"convert",
		"--url", "https://api.example.com/swagger/index.html",
		"--name", "users",
		"--out-dir", "./build",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--folder-segment", "1",
		"--timeout", "5s",
		"--dry-run",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}
	if cfg.URL != "https://api.example.com/swagger/index.html" {
		t.Errorf("url mismatch: got %q", cfg.URL)
	}
	if cfg.Name != "users" {
		t.Errorf("name mismatch: got %q", cfg.Name)
	}
	if cfg.OutDir != "./build" {
		t.Errorf("out dir mismatch: got %q", cfg.OutDir)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", cfg.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", cfg.ExcludeTags)
	}
	if cfg.FolderSegment != 1 {
		t.Errorf("folder segment mismatch: got %d", cfg.FolderSegment)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout mismatch: got %s", cfg.Timeout)
	}
	if !cfg.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !cfg.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestConvertConfigDefaultsAndArgs(t *testing.T) {
	captured := captureConvert(t)

	if err := executeRoot("convert", "http://localhost/docs.json", "orders"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg.URL != "http://localhost/docs.json" || cfg.Name != "orders" {
		t.Fatalf("positional args not applied: %+v", cfg)
	}
	if cfg.OutDir != "." {
		t.Errorf("out dir default: got %q", cfg.OutDir)
	}
	if cfg.FolderSegment != 2 {
		t.Errorf("folder segment default: got %d", cfg.FolderSegment)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout default: got %s", cfg.Timeout)
	}
}

func TestConvertConfigPrecedence(t *testing.T) {
	captured := captureConvert(t)
	t.Setenv(envURL, "http://env.example.com/docs.json")
	t.Setenv(envName, "from-env")
	t.Setenv(envOutDir, "env-out")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := strings.TrimSpace(`url: http://config.example.com/docs.json
out-dir: from-config
includeTags:
  - cfgFoo
exclude_tags: cfgBar
folderSegment: 3
timeout: 45
dryRun: true
verbose: true
`) + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := executeRoot(
		"--config", configPath,
		"convert",
		"--url", "http://flag.example.com/docs.json",
		"--include-tags", "flagTag",
		"--dry-run=false",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg == nil {
		t.Fatalf("expected config to be captured")
	}
	if cfg.URL != "http://flag.example.com/docs.json" {
		t.Errorf("url: flag should win, got %q", cfg.URL)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name: env should apply when nothing overrides it, got %q", cfg.Name)
	}
	if cfg.OutDir != "from-config" {
		t.Errorf("out dir: config should beat env, got %q", cfg.OutDir)
	}
	if want := []string{"flagTag"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, cfg.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(cfg.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, cfg.ExcludeTags)
	}
	if cfg.FolderSegment != 3 {
		t.Errorf("folder segment: got %d", cfg.FolderSegment)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("timeout: got %s", cfg.Timeout)
	}
	if cfg.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !cfg.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if cfg.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", cfg.ConfigPath)
	}
}

func TestConvertConfigDotEnv(t *testing.T) {
	captured := captureConvert(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SWAGGER2POSTMAN_URL=http://dotenv.example.com/docs.json\nSWAGGER2POSTMAN_NAME=dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	prev := dotEnvPath
	dotEnvPath = envFile
	t.Cleanup(func() { dotEnvPath = prev })
	t.Setenv(envName, "process-env")

	if err := executeRoot("convert"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	cfg := *captured
	if cfg.URL != "http://dotenv.example.com/docs.json" {
		t.Errorf("url from .env: got %q", cfg.URL)
	}
	if cfg.Name != "process-env" {
		t.Errorf("process environment should beat .env, got %q", cfg.Name)
	}
}

func TestConvertConfigUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := executeRoot("--config", configPath, "convert", "--url", "x.json", "--name", "x")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestConvertConfigValidation(t *testing.T) {
	captureConvert(t)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing url", []string{"convert", "--name", "x"}, "url is required"},
		{"missing name", []string{"convert", "--url", "x.json"}, "name is required"},
		{"name with separator", []string{"convert", "x.json", "a/b"}, "path separators"},
		{"overlapping tags", []string{"convert", "x.json", "x", "--include-tags", "a,b", "--exclude-tags", "b"}, "overlap: b"},
		{"negative segment", []string{"convert", "x.json", "x", "--folder-segment=-1"}, "folder-segment"},
		{"arg and flag", []string{"convert", "x.json", "--url", "y.json", "--name", "x"}, "both as argument"},
		{"too many args", []string{"convert", "a", "b", "c"}, "at most 2 arguments"},
		{"bad log level", []string{"--log-level", "loud", "convert", "x.json", "x"}, "unknown log level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := executeRoot(tc.args...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
