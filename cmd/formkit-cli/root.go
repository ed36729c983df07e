package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/internal/config"
	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/catalog"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/orchestrator"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/schema"
)

const remoteTimeout = 30 * time.Second

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Configuration
	logger   *slog.Logger
	closeLog func() error
	loader   schema.Loader
	orch     *orchestrator.Orchestrator

	// driver replaces the survey prompts; tests set it.
	driver tui.PromptDriver
	// now stamps submissions; tests set it.
	now func() time.Time
}

type status struct {
	ok   func(a ...any) string
	warn func(a ...any) string
	bad  func(a ...any) string
	id   func(a ...any) string
}

var colors = status{
	ok:   color.New(color.FgGreen).SprintFunc(),
	warn: color.New(color.FgYellow).SprintFunc(),
	bad:  color.New(color.FgRed, color.Bold).SprintFunc(),
	id:   color.New(color.FgCyan, color.Bold).SprintFunc(),
}

func newRootCmd(a *app) *cobra.Command {
	if a == nil {
		a = &app{}
	}
	root := &cobra.Command{
		Use:   "formkit",
		Short: "Build, fill and review conditional forms",
		Long: `formkit works with form definitions: JSON or YAML documents listing
typed fields whose visibility can depend on earlier answers.

Definitions come from the template catalog, a free-text description, a file
or URL, or the request body of an OpenAPI operation.`,
		Example: `  # Browse the catalog
  formkit templates consent

  # Draft a form from a description
  formkit generate "ABA therapy intake" -o aba.json

  # Fill it in the terminal and save the submission
  formkit fill aba.json --save

  # Print a review page
  formkit review aba.json aba-assessment-submission.json --renderer html`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "formkit.json", "path to the JSON config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")

	root.AddCommand(
		newTemplatesCmd(a),
		newGenerateCmd(a),
		newSuggestCmd(a),
		newImportOpenAPICmd(a),
		newLintCmd(a),
		newValidateCmd(a),
		newFillCmd(a),
		newReviewCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger, a.closeLog = logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})

	a.loader = formkit.NewLoader(a.logger, schema.WithHTTPFallback(remoteTimeout))
	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithLoader(a.loader),
	}
	if cfg.CatalogDir != "" {
		c, err := catalog.Load(os.DirFS(cfg.CatalogDir))
		if err != nil {
			return fmt.Errorf("catalog_dir %s: %w", cfg.CatalogDir, err)
		}
		options = append(options, orchestrator.WithCatalog(c))
	}
	a.orch = orchestrator.New(options...)
	if a.now == nil {
		a.now = time.Now
	}
	return nil
}

func (a *app) load(cmd *cobra.Command, location string) (schema.Document, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return schema.Document{}, err
	}
	return a.loader.Load(cmd.Context(), src)
}

// resolve loads the schema named by a positional location or a template id.
func (a *app) resolve(cmd *cobra.Command, location, templateID string) (model.FormSchema, error) {
	req := orchestrator.Request{TemplateID: templateID}
	if location != "" {
		src, err := schema.ParseSource(location)
		if err != nil {
			return model.FormSchema{}, err
		}
		req.Source = src
	}
	return a.orch.Resolve(cmd.Context(), req)
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(out, "\n")
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", colors.ok("wrote"), path)
	return nil
}
