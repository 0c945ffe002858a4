// Package commands holds the statement-scanner CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-scanner/internal/categorizer"
	"github.com/insightdelivered/statement-scanner/internal/config"
	"github.com/insightdelivered/statement-scanner/internal/extractor"
	"github.com/insightdelivered/statement-scanner/internal/logging"
	"github.com/insightdelivered/statement-scanner/internal/models"
	"github.com/insightdelivered/statement-scanner/internal/scanner"
	"github.com/insightdelivered/statement-scanner/internal/writer"
)

// Version is set at build time.
var Version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	locale     string
	format     string
	output     string
	debug      bool
}

// app is the state built once per invocation in PersistentPreRunE.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger logging.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statement-scanner",
		Short: "Turn photos of bank statements into budget transactions",
		Long: `statement-scanner reads OCR text from photographed or exported bank
statements (Norwegian, Swedish, Danish or English), pairs each merchant with
its amount and suggests a budget category for every transaction.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.flags.configFile, "config", "", "config file (default $HOME/.statement-scanner/config.yaml or ./config.yaml)")
	f.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file with API keys")
	f.StringVar(&a.flags.locale, "locale", "", "statement language: auto, no, sv, da or en (overrides parser.locale)")
	f.StringVarP(&a.flags.format, "format", "f", writer.FormatTable, "output format: table, csv or json")
	f.StringVarP(&a.flags.output, "output", "o", "", "write output to this file instead of stdout")
	f.BoolVar(&a.flags.debug, "debug", false, "include per-line parser decisions in the output")

	rootCmd.AddCommand(
		newParseCommand(a),
		newScanCommand(a),
		newServeCommand(a),
		newLearnCommand(a),
		newCategoriesCommand(a),
	)

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadEnv(a.flags.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logger.SetOutput(cmd.ErrOrStderr())
	a.logger = logger
	return nil
}

// service wires the scanner. Text-only commands pass withOCR false so no
// provider clients are built.
func (a *app) service(withOCR bool) (*scanner.Service, error) {
	store, err := categorizer.OpenStore(a.cfg.Categories.File, a.logger)
	if err != nil {
		return nil, err
	}
	var chain *extractor.Chain
	if withOCR {
		chain = extractor.NewChain(a.cfg, a.logger)
	}
	return scanner.New(a.cfg, chain, categorizer.New(store, a.logger), a.logger), nil
}

// render writes results with the selected writer, to --output when set.
func (a *app) render(cmd *cobra.Command, results ...*models.ScanResult) error {
	w, err := writer.New(a.flags.format, a.flags.debug)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.flags.output != "" {
		f, err := os.Create(a.flags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", a.flags.output, err)
		}
		defer f.Close()
		out = f
	}

	for i, res := range results {
		if i > 0 {
			io.WriteString(out, "\n")
		}
		if err := w.Write(out, res); err != nil {
			return err
		}
	}
	return nil
}
