package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", true, ModeText},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{"bogus", false, ModeMarkdown},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_NoColorWithoutTTY(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeText)

	r.Println(r.Styles().Error.Render("boom"))
	assert.Equal(t, "boom\n", out.String())
	assert.Equal(t, "oops", r.Styles().Severity(core.SeverityWarning).Render("oops"))
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	var text bytes.Buffer
	NewRendererWithTTY(&text, &bytes.Buffer{}, false, ModeText).
		Table(table.Row{"ID", "Count"}, []table.Row{{"HIDE_FOREIGN_KEYS", 3}})
	assert.Contains(t, text.String(), "┌")
	assert.Contains(t, text.String(), "HIDE_FOREIGN_KEYS")

	var md bytes.Buffer
	NewRendererWithTTY(&md, &bytes.Buffer{}, false, ModeMarkdown).
		Table(table.Row{"ID", "Count"}, []table.Row{{"HIDE_FOREIGN_KEYS", 3}})
	assert.True(t, strings.HasPrefix(md.String(), "| ID | Count |"), md.String())
	assert.Contains(t, md.String(), "| HIDE_FOREIGN_KEYS | 3 |")
}

func TestRenderer_StatusMessages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Success("report written")
	r.Warning("explanations disabled")

	assert.Empty(t, out.String())
	assert.Equal(t, "✓ report written\n! explanations disabled\n", errOut.String())
}
