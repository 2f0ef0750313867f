package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// Sentinel errors for add.
var (
	errAddMissingCommandOrURL = errors.New("either command or --url is required")
	errAddBothCommandAndURL   = errors.New("cannot specify both command and --url")
	errAddJSONWithFields      = errors.New("--json cannot be combined with a command or --url")
	errAddExists              = errors.New("server already exists")
)

// addOptions holds the add command flags.
type addOptions struct {
	url       string
	transport string
	env       []string
	headers   []string
	json      string
	force     bool
}

var addOpts addOptions

func init() {
	addCmd.Flags().StringVar(&addOpts.url, "url", "",
		"remote server endpoint")
	addCmd.Flags().StringVar(&addOpts.transport, "type", "",
		"transport type: stdio, http, sse (default stdio, or http with --url)")
	addCmd.Flags().StringArrayVar(&addOpts.env, "env", nil,
		"environment variables in KEY=VALUE format (repeatable)")
	addCmd.Flags().StringArrayVar(&addOpts.headers, "header", nil,
		"HTTP headers in KEY=VALUE format (repeatable)")
	addCmd.Flags().StringVar(&addOpts.json, "json", "",
		"full server definition as a JSON object")
	addCmd.Flags().BoolVarP(&addOpts.force, "force", "f", false,
		"overwrite if the server already exists")
	addCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <name> [command] [args...]",
	Short: "Add an MCP server to the selected clients",
	Long: `Add an MCP server to every client selected by --mode.

For local stdio servers, provide a command and optional arguments after the
flags:
  mcpswitch add --env GITHUB_TOKEN=ghp_xxx github npx -y @modelcontextprotocol/server-github

For remote servers, use --url:
  mcpswitch add --url https://api.example.com/mcp --header "Authorization=Bearer t" api

Any definition can be given verbatim with --json. Adding a server that was
disabled for a client enables it there.`,
	Example: `  mcpswitch add fs npx -y @modelcontextprotocol/server-filesystem /tmp
  mcpswitch add --mode codex --url https://api.example.com/mcp api
  mcpswitch add --json '{"command":"uvx","args":["mcp-server-git"]}' git

  See Also:
    mcpswitch remove  - Remove a server
    mcpswitch list    - List servers`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runAddWithIO(cmd.Context(), cmd.OutOrStdout(), a, args, a.mode(modeFlag), addOpts)
	},
}

// runAddWithIO allows injecting a writer for testing.
func runAddWithIO(ctx context.Context, w io.Writer, a *app, args []string, mode reconcile.Mode, opts addOptions) error {
	name := args[0]

	def, err := buildDefinition(args[1:], opts)
	if err != nil {
		return errors.NewUserError(err, "Run: mcpswitch add --help")
	}

	issues := validator.New().ValidateDefinition(name, def)
	for _, warn := range validator.Warnings(issues) {
		fmt.Fprintf(w, "  %s\n", dim(warn.Error()))
	}
	if validator.HasErrors(issues) {
		return errors.NewUserError(validator.Errors(issues)[0], "Run: mcpswitch add --help")
	}

	clients := a.engine.Clients(mode)
	st, err := a.load(ctx, clients)
	if err != nil {
		return err
	}

	if !opts.force {
		if v, ok := a.engine.Unify(st)[name]; ok && v.ActiveIn(clients) {
			return errors.NewUserError(
				errors.Wrapf(errAddExists, "%q is enabled for %s", name, clientList(v.EnabledClients())),
				"Use --force to overwrite",
			)
		}
	}

	if !a.engine.Add(st, name, def, mode) {
		return errors.NewUserError(errors.Newf("cannot add %q", name), "")
	}
	if err := a.save(ctx, st); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Added %s to %s\n", okMark, name, clientList(clients))
	return nil
}

// buildDefinition turns the add arguments into a definition.
func buildDefinition(command []string, opts addOptions) (*mcp.Definition, error) {
	if opts.json != "" {
		if len(command) > 0 || opts.url != "" {
			return nil, errAddJSONWithFields
		}
		def := mcp.NewDefinition()
		if err := json.Unmarshal([]byte(opts.json), def); err != nil {
			return nil, errors.Wrap(err, "parsing --json")
		}
		return def, nil
	}

	if len(command) == 0 && opts.url == "" {
		return nil, errAddMissingCommandOrURL
	}
	if len(command) > 0 && opts.url != "" {
		return nil, errAddBothCommandAndURL
	}

	env, err := parseKeyValues(opts.env, "--env")
	if err != nil {
		return nil, err
	}
	headers, err := parseKeyValues(opts.headers, "--header")
	if err != nil {
		return nil, err
	}

	def := mcp.NewDefinition()
	transport := strings.ToLower(opts.transport)
	if opts.url != "" {
		if transport == "" {
			transport = mcp.TransportHTTP
		}
		def.Set(mcp.KeyType, transport)
		def.Set(mcp.KeyURL, opts.url)
		if headers != nil {
			def.Set(mcp.KeyHeaders, headers)
		}
	} else {
		if transport != "" {
			def.Set(mcp.KeyType, transport)
		}
		def.Set(mcp.KeyCommand, command[0])
		args := make([]any, 0, len(command)-1)
		for _, a := range command[1:] {
			args = append(args, a)
		}
		if len(args) > 0 {
			def.Set(mcp.KeyArgs, args)
		}
	}
	if env != nil {
		def.Set(mcp.KeyEnv, env)
	}
	return def, nil
}

// parseKeyValues parses KEY=VALUE entries into a definition mapping.
func parseKeyValues(entries []string, flagName string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	result := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, errors.Newf("invalid %s format %q: expected KEY=VALUE", flagName, entry)
		}
		result[key] = value
	}
	return result, nil
}
