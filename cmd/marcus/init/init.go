// Package initcmder provides the init command for initializing a local
// .marcus directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
)

const (
	dirName = ".marcus"

	remoteConfigTimeout = 10 * time.Second
	maxRemoteConfigSize = 1 << 20
)

const initLongDesc string = `Initialize a new .marcus/ directory in the current working directory.

Creates a local .marcus/ directory that takes precedence over the default
~/.marcus/ directory for configuration and the saved chat conversation.

A config.toml with default values is written unless one exists. With
--preset, config.toml is replaced by a known preset or by a config.toml
fetched from an http(s) URL:
  mock          The local mock service on :7777 (the defaults)
  llama-stack   A llama-stack server on :8321
  ollama        A llama-stack server on :8321 serving Ollama models

Examples:
  marcus init
  marcus init --preset ollama
  marcus init --preset https://example.com/marcus/config.toml`

const initShortDesc string = "Initialize a local .marcus/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Preset name ("+strings.Join(config.ValidPresetNames(), ", ")+") or URL of a config.toml")

	return cmd
}

func runInit(w io.Writer, preset string) error {
	// Resolve the preset first so a typo leaves nothing behind.
	var cfg *config.Config
	var err error
	switch {
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		err = cliui.Step(w, "Fetching remote config", func() error {
			var fetchErr error
			cfg, fetchErr = fetchRemoteConfig(preset)
			return fetchErr
		})
	case preset != "":
		cfg, err = config.PresetConfig(preset)
	}
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .marcus directory: %w", err)
		}
		fmt.Fprintf(w, "Initialized .marcus directory: %s\n", dir)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	if cfg == nil {
		// Without a preset an existing config is kept.
		if _, err := os.Stat(cfger.GetTarget()); err == nil {
			return nil
		}
		cfg = config.NewDefaultConfig()
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote config: %s\n", cfger.GetTarget())
	return nil
}

// fetchRemoteConfig downloads and validates a config.toml from url.
func fetchRemoteConfig(url string) (*config.Config, error) {
	client := &http.Client{Timeout: remoteConfigTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteConfigSize))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
