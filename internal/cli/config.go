package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envURL    = "SWAGGER2POSTMAN_URL"
	envName   = "SWAGGER2POSTMAN_NAME"
	envOutDir = "SWAGGER2POSTMAN_OUT_DIR"
)

// dotEnvPath is read before the process environment; a missing file is not
// an error.
var dotEnvPath = ".env"

// lookupEnv returns key from the process environment, falling back to the
// .env file.
func lookupEnv(dotEnv map[string]string, key string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(dotEnv[key])
}

func readDotEnv() (map[string]string, error) {
	values, err := godotenv.Read(dotEnvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, newUsageError(fmt.Sprintf("read env file %q: %v", dotEnvPath, err))
	}
	return values, nil
}

func applyConvertEnv(cfg *ConvertConfig) error {
	dotEnv, err := readDotEnv()
	if err != nil {
		return err
	}
	if v := lookupEnv(dotEnv, envURL); v != "" {
		cfg.URL = v
	}
	if v := lookupEnv(dotEnv, envName); v != "" {
		cfg.Name = v
	}
	if v := lookupEnv(dotEnv, envOutDir); v != "" {
		cfg.OutDir = v
	}
	return nil
}

func applyConvertConfigFromFile(cfg *ConvertConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "url":
			cfg.URL, err = valueAsString(value)
		case "name":
			cfg.Name, err = valueAsString(value)
		case "outdir":
			cfg.OutDir, err = valueAsString(value)
		case "includetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.ExcludeTags = sanitizeTags(list)
		case "foldersegment":
			cfg.FolderSegment, err = valueAsInt(value)
		case "timeout":
			cfg.Timeout, err = valueAsDuration(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("expected integer, got %v", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("45s") or a plain number of
// seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
