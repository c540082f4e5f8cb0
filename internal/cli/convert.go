package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2postman/internal/logging"
	"github.com/mark3labs/swagger2postman/internal/postman"
	"github.com/mark3labs/swagger2postman/internal/spec"
)

// ConvertConfig captures all inputs that influence the convert command after
// merging defaults, environment, config file values, and CLI overrides.
type ConvertConfig struct {
	URL           string
	Name          string
	OutDir        string
	IncludeTags   []string
	ExcludeTags   []string
	FolderSegment int
	Timeout       time.Duration
	ConfigPath    string
	DryRun        bool
	Verbose       bool
}

func defaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		OutDir:        ".",
		FolderSegment: postman.DefaultFolderSegment,
		Timeout:       spec.DefaultSettings().HTTPTimeout,
	}
}

var convertRunner = runConvert

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [url] [name]",
		Short: "Convert a Swagger document into a Postman collection",
		Long: "Fetch a Swagger v2 document and write <name>_collection.json. " +
			"Options can be provided via arguments, flags, environment, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2postman convert https://api.example.com/swagger/index.html users
  swagger2postman convert --url ./docs.json --name users --out-dir ./collections
  swagger2postman --config swagger2postman.yaml convert --dry-run`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 2 {
				return newUsageError(fmt.Sprintf("convert: expected at most 2 arguments (url, name), got %d\n\n%s", len(args), cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConvertConfig(cmd, args)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				logging.SetLevel(slog.LevelDebug)
			}
			return convertRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("url", "", "Swagger documentation URL (http/https) or local file path")
	flags.String("name", "", "Short API name; output is written to <name>_collection.json")
	flags.String("out-dir", "", "Directory to write the collection into (default current directory)")
	flags.StringSlice("include-tags", nil, "Only include folders with these names")
	flags.StringSlice("exclude-tags", nil, "Exclude folders with these names")
	flags.Int("folder-segment", postman.DefaultFolderSegment, "Path segment naming the folder of untagged operations")
	flags.Duration("timeout", spec.DefaultSettings().HTTPTimeout, "HTTP timeout for fetching the document (0 disables)")
	flags.Bool("dry-run", false, "Preview the planned output without writing files")

	return cmd
}

func resolveConvertConfig(cmd *cobra.Command, args []string) (*ConvertConfig, error) {
	cfg := defaultConvertConfig()

	if err := applyConvertEnv(&cfg); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConvertConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyConvertFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if err := applyConvertArgs(cmd.Flags(), args, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyConvertFlagOverrides(flags *pflag.FlagSet, cfg *ConvertConfig) error {
	if flags.Changed("url") {
		value, err := flags.GetString("url")
		if err != nil {
			return err
		}
		cfg.URL = strings.TrimSpace(value)
	}
	if flags.Changed("name") {
		value, err := flags.GetString("name")
		if err != nil {
			return err
		}
		cfg.Name = strings.TrimSpace(value)
	}
	if flags.Changed("out-dir") {
		value, err := flags.GetString("out-dir")
		if err != nil {
			return err
		}
		cfg.OutDir = strings.TrimSpace(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("folder-segment") {
		value, err := flags.GetInt("folder-segment")
		if err != nil {
			return err
		}
		cfg.FolderSegment = value
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

// applyConvertArgs fills url and name from positional arguments. Giving the
// same value both as an argument and as a flag is ambiguous and rejected.
func applyConvertArgs(flags *pflag.FlagSet, args []string, cfg *ConvertConfig) error {
	targets := []struct {
		flag string
		dst  *string
	}{
		{"url", &cfg.URL},
		{"name", &cfg.Name},
	}
	for i, arg := range args {
		t := targets[i]
		if flags.Changed(t.flag) {
			return newUsageError(fmt.Sprintf("convert: %s given both as argument and as --%s", t.flag, t.flag))
		}
		*t.dst = strings.TrimSpace(arg)
	}
	return nil
}

func (c *ConvertConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Name = strings.TrimSpace(c.Name)
	c.OutDir = strings.TrimSpace(c.OutDir)
	if c.OutDir == "" {
		c.OutDir = "."
	}
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *ConvertConfig) validate() error {
	if c.URL == "" {
		return newUsageError("convert: url is required (argument, --url, " + envURL + " or config file)")
	}
	if c.Name == "" {
		return newUsageError("convert: name is required (argument, --name, " + envName + " or config file)")
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return newUsageError(fmt.Sprintf("convert: name %q must not contain path separators (use --out-dir)", c.Name))
	}
	if c.FolderSegment < 0 {
		return newUsageError(fmt.Sprintf("convert: --folder-segment must be >= 0, got %d", c.FolderSegment))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("convert: --timeout must not be negative, got %s", c.Timeout))
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("convert: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runConvert(ctx context.Context, cfg *ConvertConfig) error {
	doc, err := spec.Fetch(ctx, cfg.URL, spec.WithHTTPTimeout(cfg.Timeout))
	if err != nil {
		return specUsageError(err)
	}
	defs, _ := doc.Schemas()
	slog.Debug("document loaded", "location", doc.Location, "paths", len(doc.Paths), "definitions", len(defs))

	collection, err := postman.Build(
		ctx,
		doc,
		postman.WithIncludeTags(cfg.IncludeTags),
		postman.WithExcludeTags(cfg.ExcludeTags),
		postman.WithFolderSegment(cfg.FolderSegment),
	)
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			return specUsageError(err)
		}
		return fmt.Errorf("build collection: %w", err)
	}

	outPath := filepath.Join(cfg.OutDir, postman.FileName(cfg.Name))
	absOut := outPath
	if ap, err := filepath.Abs(outPath); err == nil {
		absOut = ap
	}
	folders, items := collection.Counts()

	if cfg.DryRun {
		fmt.Fprintf(os.Stdout, "Planned write to %s (%d folders, %d requests)\n", absOut, folders, items)
		for _, f := range collection.Folders {
			fmt.Fprintf(os.Stdout, "- %s (%d)\n", f.Name, len(f.Items))
		}
		return nil
	}

	if err := postman.Write(outPath, collection); err != nil {
		return wrapOutputError(err, absOut)
	}
	slog.Info("collection written", "path", absOut, "folders", folders, "requests", items)
	fmt.Fprintf(os.Stdout, "Postman Collection saved to %s\n", absOut)
	return nil
}

// specUsageError maps structured spec errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func wrapOutputError(err error, outPath string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out-dir.", outPath, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
