package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/orchestrator"
	"github.com/goliatone/go-formkit/pkg/schema"
)

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates [query]",
		Short: "List catalog templates, optionally filtered by a search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			templates := a.orch.Catalog().Search(query)
			if len(templates) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s no templates match %q\n", colors.warn("!"), query)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tpl := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d fields\n", colors.id(tpl.ID), tpl.Category, tpl.Title, len(tpl.Fields))
			}
			return tw.Flush()
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		output     string
		templateID string
	)
	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Draft a form definition from a description or a catalog template",
		Args: func(cmd *cobra.Command, args []string) error {
			if templateID == "" && len(args) == 0 {
				return errors.New("a description or --template is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := orchestrator.Request{TemplateID: templateID, Description: strings.Join(args, " ")}
			form, err := a.orch.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}
			data, err := schema.Export(form)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the definition to a file instead of stdout")
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "start from a catalog template id")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <title>",
		Short: "Suggest extra fields for a form title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := a.orch.Catalog().Suggest(strings.Join(args, " "), a.now())
			data, err := json.MarshalIndent(fields, "", "  ")
			if err != nil {
				return fmt.Errorf("encode suggestions: %w", err)
			}
			return writeOutput(cmd, "", data)
		},
	}
}

func newImportOpenAPICmd(a *app) *cobra.Command {
	var (
		operationID string
		output      string
		list        bool
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <document>",
		Short: "Build a form definition from the request body of an OpenAPI operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			if list {
				ops, err := openapi.NewImporter(openapi.WithLogger(a.logger)).Operations(cmd.Context(), doc.Raw())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, op := range ops {
					body := ""
					if op.HasBody {
						body = "body"
					}
					fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", colors.id(op.ID), op.Method, op.Path, body, op.Summary)
				}
				return tw.Flush()
			}

			form, err := a.orch.Resolve(cmd.Context(), orchestrator.Request{
				OpenAPI: &orchestrator.OpenAPIRequest{Raw: doc.Raw(), OperationID: operationID},
			})
			if err != nil {
				return err
			}
			data, err := schema.Export(form)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id (optional when one operation has a body)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the definition to a file instead of stdout")
	cmd.Flags().BoolVar(&list, "list", false, "list operations instead of importing")
	return cmd
}

func newLintCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "lint <definition>",
		Short: "Check a form definition for errors and authoring problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			form, err := doc.Schema()
			if err != nil {
				return err
			}
			if err := model.ValidateSchema(form); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := model.Lint(form)
			for _, issue := range issues {
				fmt.Fprintf(out, "%s %s [%s] %s\n", colors.warn("warn"), issue.FieldID, issue.Kind, issue.Message)
			}
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s %s: %d fields\n", colors.ok("ok"), form.Title, len(form.Fields))
				return nil
			}
			if strict {
				return fmt.Errorf("%d lint issues", len(issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when lint reports any issue")
	return cmd
}
