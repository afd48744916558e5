package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityFromLevel(t *testing.T) {
	tests := []struct {
		level   int
		want    Severity
		wantErr bool
	}{
		{level: 1, want: SeverityInfo},
		{level: 2, want: SeverityWarning},
		{level: 3, want: SeverityError},
		{level: 0, wantErr: true},
		{level: 4, wantErr: true},
		{level: -1, wantErr: true},
	}

	for _, tt := range tests {
		got, err := SeverityFromLevel(tt.level)
		if tt.wantErr {
			assert.Error(t, err, "level %d", tt.level)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, name := range []string{"info", "INFO", " Warning ", "error"} {
		_, err := ParseSeverity(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseSeverity("hint")
	assert.Error(t, err)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "Severity(7)", Severity(7).String())
}

func TestSeverity_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(map[string]Severity{"s": SeverityWarning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"WARNING"}`, string(data))

	var decoded map[string]Severity
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, SeverityWarning, decoded["s"])

	_, err = json.Marshal(Severity(9))
	assert.Error(t, err)
}
