package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var configFilePath = flag.String("config_file", "dequed.txtpb", "Path to the configuration file.")

// LoadConfigFile applies the .txtpb config at `path` to the flags, leaving the flags in `skipped` untouched.
func LoadConfigFile(path string, skipped map[ /*flagName*/ string]bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	conf, err := parseConfig(content)
	if err != nil {
		return err
	}
	if err := setConfigFlags(conf, skipped); err != nil {
		return fmt.Errorf("failed to set flags from config file: %w", err)
	}
	return nil
}

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them. Flags given on the command line take
// precedence over the config file.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}

	explicitFlags := make(map[ /*flagName*/ string]bool)
	flag.Visit(func(f *flag.Flag) { explicitFlags[f.Name] = true })

	err := LoadConfigFile(*configFilePath, explicitFlags)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Config file does not exist.", "path", *configFilePath, "error", err)
		return
	}
	if err != nil { // If the config file cannot be applied, we use the flag values.
		slog.Error("Failed to load config file.", "path", *configFilePath, "error", err)
		return
	}
	slog.Debug("Config file loaded.", "path", *configFilePath)
}

// SetTestFlag sets a flag to a specific value for the duration of the test.
func SetTestFlag(t *testing.T, name, value string) {
	t.Helper()
	flagHolder := flag.Lookup(name)
	require.NotNil(t, flagHolder, "Flag %s not found", name)
	if flagHolder != nil { // Revert the flag value back to its original when the test is done.
		prevValue := flagHolder.Value.String()
		t.Cleanup(func() { require.NoError(t, flag.Set(name, prevValue)) })
	}
	require.NoError(t, flag.Set(name, value))
}
