package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"Yui-Editor/studio/internal/client"
	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	quiet      bool

	client interfaces.StoryClient
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "storyctl",
		Short:        "Manage visual-novel projects on the authoring backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "HTTP timeout (overrides config)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "do not log request failures")

	root.AddCommand(
		newProjectCmd(a),
		newResourceCmd(a),
		newChapterCmd(a),
		newFrameCmd(a),
		newCommitCmd(a),
		newStructCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Read(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Client.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Client.Timeout = a.timeout
	}
	if a.quiet {
		cfg.Logging.Quiet = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.client = client.New(cfg.Client, client.WithLogger(cfg.Logging.NewLogger()))
	return nil
}

// printLines writes one value per line
func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// okOrFail turns a false result without an error into one
func okOrFail(ok bool, err error, what string) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: backend did not accept the request", what)
	}
	return nil
}
