package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/internal/report"
)

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"doctor"},
	Short:   "Check client configs, the disabled store and presets",
	Long: `Parse every client config file and check each server definition, then do
the same for the disabled store and the preset file. Nothing is written.

Exits non-zero when any error is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format := report.FormatText
		if validateJSON {
			format = report.FormatJSON
		}
		return runValidateWithIO(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), format)
	},
}

// runValidateWithIO allows injecting a writer for testing.
func runValidateWithIO(ctx context.Context, w io.Writer, a *app, format report.Format) error {
	result := &report.Result{}
	v := validator.New(validator.WithAllowEmpty(true))

	for _, d := range platform.DetectAll(a.session.Registry(), a.session.PathFor) {
		if err := ctx.Err(); err != nil {
			return err
		}
		source := string(d.Adapter.Client())
		pathCtx := map[string]string{"path": d.Path}

		if d.Status != platform.StatusInstalled {
			result.AddInfo(source, "no config file ("+string(d.Status)+")", pathCtx)
			continue
		}
		cfg, err := d.Adapter.Parse(d.Path)
		if err != nil {
			result.AddError(source, err.Error(), pathCtx)
			continue
		}
		result.AddValidation(source, v.Validate(cfg), pathCtx)
	}

	st, err := a.session.Load(ctx)
	if st != nil {
		for _, name := range st.Disabled.Names() {
			entry := st.Disabled[name]
			result.AddValidation("store", v.ValidateDefinition(name, entry.Config), nil)
		}
	} else if err != nil {
		return errors.NewSystemError(err, "")
	}

	if err := a.presets.Load(); err != nil {
		result.AddError("presets", err.Error(), map[string]string{"path": a.presets.Path()})
	} else {
		for _, name := range a.presets.List() {
			p, ok := a.presets.Get(name)
			if !ok {
				continue
			}
			for _, server := range p.Names() {
				result.AddValidation("presets/"+name, v.ValidateDefinition(server, p.Servers[server]), nil)
			}
		}
	}

	if err := report.NewReporter(w, format).Report(result); err != nil {
		return err
	}
	if result.HasErrors() {
		return errors.NewUserError(errors.Wrap(errors.ErrInvalidConfig, "validation failed"), "")
	}
	return nil
}
