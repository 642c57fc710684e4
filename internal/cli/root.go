// Package cli implements the mendel command line: one-shot engine commands
// and the HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"mendel/internal/config"
	"mendel/internal/core"
	"mendel/internal/i18n"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	translator *i18n.Translator
	tag        language.Tag

	logLevel string
	lang     string
	trace    bool
	jsonOut  bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mendel",
		Short: "Mendelian cross calculator",
		Long: `Compute genotype and phenotype distributions for mono-, di- and
poly-hybrid crosses, and serve the same engine over HTTP.

Examples:
  mendel validate --arity di AaBb AaBB
  mendel gametes AaBbCc
  mendel cross --arity mono Aa Aa
  mendel probability genotype --parent1 AaBbCc --parent2 AaBbCc aabbcc
  mendel serve --addr :8080`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides MENDEL_LOG_LEVEL")
	root.PersistentFlags().StringVar(&a.lang, "lang", "", "Message language (en-US, pt-BR); overrides MENDEL_DEFAULT_LOCALE")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "Write operation spans as JSON lines to stderr")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newValidateCmd(a),
		newGametesCmd(a),
		newCrossCmd(a),
		newProbabilityCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, level)

	a.translator, err = i18n.Default(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	a.tag = a.translator.Match(a.lang, "")
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// engineService returns an ephemeral in-memory service for one-shot commands.
func (a *app) engineService(cmd *cobra.Command) *core.Service {
	opts := []core.Option{core.WithLogger(a.logger)}
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(cmd.ErrOrStderr())))
	}
	return core.NewInMemoryService(opts...)
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command with ctx, returning the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}
