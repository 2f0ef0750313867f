package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{SeverityInfo, "info"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.String())
		})
	}
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(Issue{Severity: SeverityWarning, Message: "m"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"warning"`)

	var back Issue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SeverityWarning, back.Severity)

	var bad Severity
	assert.Error(t, bad.UnmarshalText([]byte("fatal")))
}

func TestIssue_Error(t *testing.T) {
	tests := []struct {
		name string
		i    Issue
		want string
	}{
		{
			name: "server and field",
			i:    Issue{Severity: SeverityError, Source: "codex", Server: "git", Field: "url", Message: "is required"},
			want: `error: codex: server "git": field "url": is required`,
		},
		{
			name: "source only",
			i:    Issue{Severity: SeverityInfo, Source: "gemini", Message: "not installed"},
			want: "info: gemini: not installed",
		},
		{
			name: "bare message",
			i:    Issue{Severity: SeverityWarning, Message: "odd"},
			want: "warning: odd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.i.Error())
		})
	}
}

func TestResult_AddValidation(t *testing.T) {
	r := &Result{}
	r.AddValidation("claude", []*validator.ValidationError{
		{ServerName: "a", Field: "command", Message: "command is required", Severity: validator.SeverityError},
		{ServerName: "b", Field: "type", Message: "unknown type", Severity: validator.SeverityWarning},
	}, map[string]string{"path": "/x"})
	r.AddInfo("codex", "not installed", nil)

	require.Len(t, r.Issues, 3)
	assert.True(t, r.HasErrors())
	assert.True(t, r.HasWarnings())
	assert.Len(t, r.Errors(), 1)
	assert.Equal(t, "b", r.Warnings()[0].Server)
	assert.Equal(t, "/x", r.Errors()[0].Context["path"])
	assert.Len(t, r.Infos(), 1)
}

func TestResult_Nil(t *testing.T) {
	var r *Result
	assert.False(t, r.HasErrors())
	assert.Nil(t, r.Warnings())
}
