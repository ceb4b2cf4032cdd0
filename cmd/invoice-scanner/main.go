package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/invoice-scanner/internal/config"
	"github.com/example/invoice-scanner/internal/llm"
	"github.com/example/invoice-scanner/internal/llm/openai"
	"github.com/example/invoice-scanner/internal/pdftext"
	"github.com/example/invoice-scanner/internal/scanner"
	"github.com/example/invoice-scanner/pkg/invoice"
)

const version = "1.0.0"

func main() {
	os.Exit(run(rootCmd, os.Args[1:], os.Stdout, os.Stderr))
}

var rootCmd = newRootCmd()

// newCompleter builds the model client from the resolved configuration.
var newCompleter = func(cfg *config.Config, logger *logrus.Logger) llm.Completer {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)
}

type options struct {
	output     string
	pretty     bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "invoice-scanner <pdf_file>",
		Short: "Parse PDF invoices to JSON using OpenAI",
		Long: `Invoice Scanner extracts the text of a PDF invoice and asks an OpenAI model
to return its invoice number, date, seller, buyer, line items, totals and taxes as JSON.

Environment:
  OPENAI_API_KEY    OpenAI API key (required unless --api-key is given)
  OPENAI_BASE_URL   API base URL (default ` + config.DefaultBaseURL + `)
  OPENAI_MODEL      model name (default ` + config.DefaultModel + `)
  LOG_LEVEL         debug, info, warn or error (default warn)

Variables may also be set in a .env file in the working directory.`,
		Example: `  invoice-scanner invoice.pdf
  invoice-scanner invoice.pdf -o output.json
  invoice-scanner invoice.pdf --pretty`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return scan(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output JSON file path (prints to stdout when omitted)")
	flags.BoolVar(&opts.pretty, "pretty", false, "pretty print JSON output")
	flags.StringVar(&opts.configPath, "config", "", "TOML config file")
	flags.String("api-key", "", "OpenAI API key (alternatively set OPENAI_API_KEY)")
	flags.String("base-url", "", "OpenAI API base URL")
	flags.String("model", "", "model used for extraction")
	flags.Bool("strict-pdf", false, "reject PDFs that fail strict structural validation")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	return cmd
}

// run executes cmd with args and returns the process exit status
func run(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "\n%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		return 1
	}
	return 0
}

func scan(cmd *cobra.Command, opts *options, path string) error {
	if err := pdftext.CheckFile(path); err != nil {
		return err
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	s := scanner.New(
		pdftext.NewExtractor(pdftext.Options{Strict: cfg.StrictPDF}, logger),
		llm.NewExtractor(newCompleter(cfg, logger), logger),
		cmd.OutOrStdout(),
		logger,
	)

	result, err := s.Scan(cmd.Context(), path)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), result, opts)
}

func writeResult(out io.Writer, result invoice.Result, opts *options) error {
	if opts.output != "" {
		if err := invoice.WriteFile(opts.output, result, opts.pretty); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s Invoice data saved to: %s\n", color.GreenString("Success!"), opts.output)
		return nil
	}

	data, err := invoice.Marshal(result, opts.pretty)
	if err != nil {
		return err
	}
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(out, "\n%s\n%s\n%s\n%s\n", rule, color.New(color.Bold).Sprint("INVOICE DATA (JSON)"), rule, data)
	return nil
}

func newLogger(level string, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(parseLogLevel(level))
	return logger
}

// parseLogLevel defaults to warn for empty or unknown values
func parseLogLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}
