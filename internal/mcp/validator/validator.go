package validator

import (
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// validTypes is the set of accepted "type" values. Empty means stdio.
var validTypes = []string{"", mcp.TransportStdio, mcp.TransportHTTP, mcp.TransportSSE}

// Option configures a Validator.
type Option func(*Validator)

// Validator validates MCP server definitions structurally. It never
// launches or connects to a server.
type Validator struct {
	// allowEmpty permits configs with no servers.
	// Default is true: a client without servers is a valid client.
	allowEmpty bool
}

// New creates a new Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{
		allowEmpty: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithAllowEmpty configures whether empty configs (no servers) are allowed.
func WithAllowEmpty(allow bool) Option {
	return func(v *Validator) {
		v.allowEmpty = allow
	}
}

// Valid reports whether cfg has no error-severity issues.
func Valid(cfg *mcp.Config) bool {
	return !HasErrors(New().Validate(cfg))
}

// Validate checks a Config for issues.
// Returns a slice of validation errors/warnings, or nil if valid.
// Use [HasErrors] to check if any errors (vs warnings) were found.
// Servers are checked in name order so reports are stable.
func (v *Validator) Validate(cfg *mcp.Config) []*ValidationError {
	if cfg == nil {
		return []*ValidationError{{
			Message:  "config is nil",
			Severity: SeverityError,
		}}
	}

	var errs []*ValidationError

	if !v.allowEmpty && len(cfg.Servers) == 0 {
		errs = append(errs, &ValidationError{
			Message:  "config has no servers",
			Severity: SeverityError,
			Err:      ErrEmptyConfig,
		})
	}

	for _, name := range cfg.Names() {
		errs = append(errs, v.ValidateDefinition(name, cfg.Servers[name])...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateDefinition checks a single server definition.
func (v *Validator) ValidateDefinition(name string, def *mcp.Definition) []*ValidationError {
	var errs []*ValidationError

	if name == "" {
		errs = append(errs, &ValidationError{
			Field:    "name",
			Message:  "server name is required",
			Severity: SeverityError,
			Err:      ErrMissingServerName,
		})
	}

	if def == nil {
		return append(errs, &ValidationError{
			ServerName: name,
			Message:    "server definition is empty",
			Severity:   SeverityError,
			Err:        ErrNilDefinition,
		})
	}

	errs = append(errs, v.validateType(name, def)...)
	errs = append(errs, v.validateArgs(name, def)...)
	errs = append(errs, v.validateMapping(name, def, mcp.KeyEnv, ErrInvalidEnv, ErrEmptyEnvKey)...)
	errs = append(errs, v.validateMapping(name, def, mcp.KeyHeaders, ErrInvalidHeaders, ErrEmptyHeaderKey)...)

	return errs
}

// validateType checks the declared type and the fields that type requires.
func (v *Validator) validateType(name string, def *mcp.Definition) []*ValidationError {
	var errs []*ValidationError

	raw, hasType := def.Get(mcp.KeyType)
	typ, isString := raw.(string)
	if hasType && (!isString || !slices.Contains(validTypes, typ)) {
		return append(errs, &ValidationError{
			ServerName: name,
			Field:      mcp.KeyType,
			Message:    "type must be 'stdio', 'http', 'sse', or omitted",
			Severity:   SeverityError,
			Err:        ErrInvalidType,
		})
	}

	switch typ {
	case "", mcp.TransportStdio:
		if def.Command() == "" {
			errs = append(errs, &ValidationError{
				ServerName: name,
				Field:      mcp.KeyCommand,
				Message:    "stdio server requires command",
				Severity:   SeverityError,
				Err:        ErrMissingCommand,
			})
		}
	case mcp.TransportHTTP, mcp.TransportSSE:
		if def.URL() == "" {
			errs = append(errs, &ValidationError{
				ServerName: name,
				Field:      mcp.KeyURL,
				Message:    typ + " server requires URL",
				Severity:   SeverityError,
				Err:        ErrMissingURL,
			})
		}
	}

	if def.Command() != "" && def.URL() != "" {
		msg := "server has both command and URL"
		if def.IsRemote() {
			msg += "; type=" + typ + " means URL will be used"
		} else {
			msg += "; command will be used"
		}
		errs = append(errs, &ValidationError{
			ServerName: name,
			Message:    msg,
			Severity:   SeverityWarning,
		})
	}

	return errs
}

// validateArgs checks that args, when present, is a list.
func (v *Validator) validateArgs(name string, def *mcp.Definition) []*ValidationError {
	raw, ok := def.Get(mcp.KeyArgs)
	if !ok {
		return nil
	}
	switch raw.(type) {
	case []any, []string:
		return nil
	}
	return []*ValidationError{{
		ServerName: name,
		Field:      mcp.KeyArgs,
		Message:    "args must be a list",
		Severity:   SeverityError,
		Err:        ErrInvalidArgs,
	}}
}

// validateMapping checks that key, when present, is a mapping without empty keys.
func (v *Validator) validateMapping(name string, def *mcp.Definition, key string, shapeErr, emptyKeyErr error) []*ValidationError {
	raw, ok := def.Get(key)
	if !ok {
		return nil
	}

	var keys []string
	switch m := raw.(type) {
	case map[string]any:
		for k := range m {
			keys = append(keys, k)
		}
	case map[string]string:
		for k := range m {
			keys = append(keys, k)
		}
	default:
		return []*ValidationError{{
			ServerName: name,
			Field:      key,
			Message:    key + " must be a mapping",
			Severity:   SeverityError,
			Err:        shapeErr,
		}}
	}

	if slices.Contains(keys, "") {
		return []*ValidationError{{
			ServerName: name,
			Field:      key,
			Message:    key + " key cannot be empty",
			Severity:   SeverityError,
			Err:        emptyKeyErr,
		}}
	}
	return nil
}
