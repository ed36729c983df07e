package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <definition> <answers>",
		Short: "Validate answers (a submission file or an id-to-answer object) against a form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.resolve(cmd, args[0], "")
			if err != nil {
				return err
			}
			data, err := a.answers(cmd, form, args[1])
			if err != nil {
				return err
			}

			result := validation.ValidateAll(form, data, validation.WithLogger(a.logger))
			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				if err := writeOutput(cmd, "", encoded); err != nil {
					return err
				}
			} else {
				messages := render.ErrorMessages(form, result, render.RenderOptions{})
				for _, id := range result.Order {
					field, _ := form.Field(id)
					fmt.Fprintf(out, "%s %s: %s\n", colors.bad("x"), field.Label, strings.Join(messages.Fields[id], "; "))
				}
				if result.Valid {
					fmt.Fprintf(out, "%s %s\n", colors.ok("valid"), form.Title)
				}
			}
			if !result.Valid {
				return fmt.Errorf("%d fields failed validation, first: %s", len(result.Order), result.Focus)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var (
		templateID string
		format     string
		dataPath   string
		output     string
		save       bool
		confirm    bool
	)
	cmd := &cobra.Command{
		Use:   "fill [definition]",
		Short: "Fill a form interactively in the terminal",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("at most one definition may be given")
			}
			if (len(args) == 1) == (templateID != "") {
				return errors.New("give either a definition or --template")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) == 1 {
				location = args[0]
			}
			form, err := a.resolve(cmd, location, templateID)
			if err != nil {
				return err
			}

			var prefill model.FormData
			if dataPath != "" {
				if prefill, err = a.answers(cmd, form, dataPath); err != nil {
					return err
				}
			}

			if format == "" {
				format = a.cfg.OutputFormat
			}
			options := []tui.Option{
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithMaxAttempts(a.cfg.MaxAttempts),
				tui.WithConfirmSubmit(confirm),
				tui.WithOutput(cmd.ErrOrStderr()),
				tui.WithLogger(a.logger),
				tui.WithClock(a.now),
				tui.WithTheme(tui.Theme{InfoPrefix: colors.warn("i") + " ", ErrorPrefix: colors.bad("!") + " "}),
			}
			if a.driver != nil {
				options = append(options, tui.WithPromptDriver(a.driver))
			}
			renderer, err := tui.New(options...)
			if err != nil {
				return err
			}

			result, err := renderer.Render(cmd.Context(), form, render.RenderOptions{Values: prefill})
			if err != nil {
				return err
			}
			if save && output == "" {
				output = filepath.Join(a.cfg.OutputDir, saveName(form.Title, tui.OutputFormat(format)))
			}
			return writeOutput(cmd, output, result)
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "fill a catalog template")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, form or pretty (default from config)")
	cmd.Flags().StringVar(&dataPath, "data", "", "prefill answers from a JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file")
	cmd.Flags().BoolVar(&save, "save", false, "write the result to output_dir under the download name")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "ask before submitting")
	return cmd
}

// saveName derives the file name of a saved fill result.
func saveName(title string, format tui.OutputFormat) string {
	name := render.DownloadName(title)
	if format == tui.OutputFormatJSON {
		return name
	}
	return strings.TrimSuffix(name, ".json") + ".txt"
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		rendererName string
		output       string
		errorsPath   string
	)
	cmd := &cobra.Command{
		Use:   "review <definition> <submission>",
		Short: "Render a printable review of a submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.resolve(cmd, args[0], "")
			if err != nil {
				return err
			}
			doc, err := a.load(cmd, args[1])
			if err != nil {
				return err
			}
			submission, err := render.ParseSubmission(form, doc.Raw())
			if err != nil {
				return err
			}

			opts := render.RenderOptions{
				Values:      submission.Responses,
				SubmittedAt: submission.SubmittedAt,
				Now:         a.now,
			}
			result := validation.ValidateAll(form, submission.Responses, validation.WithLogger(a.logger))
			opts.Errors = render.ErrorMessages(form, result, opts).Fields
			if errorsPath != "" {
				if err := a.mergeErrorPayload(cmd, form, errorsPath, &opts); err != nil {
					return err
				}
			}

			out, err := a.orch.Render(cmd.Context(), form, rendererName, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", html.Name, "renderer: html, text or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the review to a file")
	cmd.Flags().StringVar(&errorsPath, "errors", "", "merge a server error payload: a JSON object mapping field paths to messages")
	return cmd
}

// mergeErrorPayload folds an external {"path": ["message"]} document into
// the review messages.
func (a *app) mergeErrorPayload(cmd *cobra.Command, form model.FormSchema, location string, opts *render.RenderOptions) error {
	doc, err := a.load(cmd, location)
	if err != nil {
		return err
	}
	var payload map[string][]string
	if err := json.Unmarshal(doc.Raw(), &payload); err != nil {
		return fmt.Errorf("decode error payload %s: %w", location, err)
	}
	external := render.MapErrorPayload(form, payload)
	if opts.Errors == nil {
		opts.Errors = make(map[string][]string, len(external.Fields))
	}
	for id, messages := range external.Fields {
		opts.Errors[id] = render.MergeFormErrors(opts.Errors[id], messages...)
	}
	opts.FormErrors = render.MergeFormErrors(opts.FormErrors, external.Form...)
	return nil
}

func (a *app) answers(cmd *cobra.Command, form model.FormSchema, location string) (model.FormData, error) {
	doc, err := a.load(cmd, location)
	if err != nil {
		return nil, err
	}
	return formkit.DecodeData(form, doc.Raw())
}
