package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2postman/internal/atomicfile"
)

const defaultConfigName = "swagger2postman.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	// Out receives the confirmation line; nil means stdout.
	Out io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2postman configuration file",
		Long:  "Scaffold a commented swagger2postman configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force, Out: cmd.OutOrStdout()})
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := filepath.Abs(cmp.Or(strings.TrimSpace(cfg.OutputPath), defaultConfigName))
	if err != nil {
		return newUsageError(fmt.Sprintf("init: bad --out path: %v", err))
	}

	switch info, err := os.Stat(target); {
	case err == nil && info.IsDir():
		return newUsageError(fmt.Sprintf("init: %s is a directory; pass a file path to --out", target))
	case err == nil && !cfg.Force:
		return newUsageError(fmt.Sprintf("init: refusing to replace %s; rerun with --force", target))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return newUsageError(fmt.Sprintf("init: cannot inspect %s: %v", target, err))
	}

	sample := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := atomicfile.Write(target, []byte(sample), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: %v", err))
	}
	slog.Debug("sample config written", "path", target, "replaced", cfg.Force)

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Sample config written to %s\n", target)
	return nil
}

// sampleConfigYAML documents every key accepted by --config.
const sampleConfigYAML = `# swagger2postman configuration (YAML or JSON)
# All fields are optional. Precedence, lowest first: defaults, environment
# (SWAGGER2POSTMAN_URL, SWAGGER2POSTMAN_NAME, SWAGGER2POSTMAN_OUT_DIR, also
# read from .env), this file, command-line flags and arguments.

# Swagger documentation URL. A trailing index.html is replaced by v1/docs.json.
# A local file path is accepted as well.
# url: https://api.example.com/swagger/index.html

# Short API name. The collection is written to <name>_collection.json.
# name: users

# Directory the collection file is written into.
# outDir: .

# Only keep folders with these names (comma-separated or list).
# includeTags: [users, auth]

# Drop folders with these names (comma-separated or list).
# excludeTags: [internal]

# Path segment that names the folder of an untagged operation, counted from 0
# after the leading slash: /v1/<service>/<resource> uses 2.
# folderSegment: 2

# HTTP timeout for fetching the document (duration or seconds, 0 disables).
# timeout: 30s

# Print the planned output without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false
`
