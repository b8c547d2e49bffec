// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcnksm/go-input"

	"github.com/pdiddy/notion-math/internal/httputil"
	"github.com/pdiddy/notion-math/pkg/types"
)

var errNotInteractive = errors.New("stdin is not a terminal")

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptUI opens the UI used for interactive prompts. Tests replace it.
var promptUI = newUI

// newUI returns a prompt UI on the process's terminal, or errNotInteractive.
func newUI() (*input.UI, error) {
	if !isTerminal(os.Stdin.Fd()) {
		return nil, errNotInteractive
	}
	return &input.UI{Writer: os.Stderr, Reader: os.Stdin}, nil
}

// resolvePageID returns the page id from args, or asks for it together with
// the retry count when none was given and stdin is a terminal.
func resolvePageID(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	ui, err := promptUI()
	if err != nil {
		return "", fmt.Errorf("page id required: pass it as an argument")
	}

	id, err := askPageID(ui)
	if err != nil {
		return "", err
	}
	if f := cmd.Flags().Lookup("max-retries"); f != nil && !f.Changed {
		viper.Set("fetch.max_retries", askRetries(ui))
	}
	return id, nil
}

// pageConfig resolves the page id, prompting if needed, and only then
// loads the configuration so answers given at the prompt take effect.
func pageConfig(cmd *cobra.Command, args []string) (string, types.Config, error) {
	pageID, err := resolvePageID(cmd, args)
	if err != nil {
		return "", types.Config{}, err
	}
	return pageID, loadConfig(), nil
}

func askPageID(ui *input.UI) (string, error) {
	answer, err := ui.Ask("Notion page id", &input.Options{
		Required:  true,
		Loop:      true,
		HideOrder: true,
	})
	if err != nil {
		return "", fmt.Errorf("reading page id: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func askRetries(ui *input.UI) int {
	answer, err := ui.Ask("Max retries per request", &input.Options{
		Default:   strconv.Itoa(httputil.DefaultMaxAttempts),
		HideOrder: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not read retry count, using default")
		return httputil.DefaultMaxAttempts
	}
	return parseRetries(answer)
}

// parseRetries converts a typed retry count. Anything that is not a
// positive integer falls back to the default with a warning.
func parseRetries(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return httputil.DefaultMaxAttempts
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Warn().Str("input", s).Int("default", httputil.DefaultMaxAttempts).
			Msg("invalid retry count, using default")
		return httputil.DefaultMaxAttempts
	}
	return n
}

// confirmCleared asks the user to clear the target page before blocks are
// appended to it.
func confirmCleared(ui *input.UI, pageID string) (bool, error) {
	query := fmt.Sprintf("\nClear the contents of page %s in Notion, then continue? [y/n]", pageID)
	answer, err := ui.Ask(query, &input.Options{
		Default:   "y",
		Required:  true,
		Loop:      true,
		HideOrder: true,
		ValidateFunc: func(answer string) error {
			switch answer {
			case "y", "Y", "n", "N":
				return nil
			default:
				return fmt.Errorf("please enter 'y' or 'n'")
			}
		},
	})
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return answer == "y" || answer == "Y", nil
}
