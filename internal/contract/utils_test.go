package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		signal   schema.Signal
		emoji    bool
		expected string
	}{
		{"spike plain", schema.StrategicSpike, false, "Strategic Spike"},
		{"spike emoji", schema.StrategicSpike, true, "Strategic Spike 🔴"},
		{"emerging emoji", schema.EmergingSignal, true, "Emerging Signal 🟡"},
		{"normal emoji", schema.NormalSignal, true, "Normal ⚪"},
		{"new activity emoji", schema.NewActivity, true, "New Activity 🔵"},
		{"unknown emoji", schema.Signal("Other"), true, "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.signal, tt.emoji))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	for _, s := range schema.AllSignals {
		label := GetColorLabel(s, false)
		assert.Contains(t, label, string(s))
		assert.True(t, strings.HasPrefix(label, "\x1b["), "label for %s should be colored", s)
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.json")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)

	_, err = SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Error(t, err)
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".patentspike_cache.db"))
	assert.True(t, strings.HasSuffix(GetAnalysisDBFilePath(), ".patentspike_analysis.db"))
	assert.NotEqual(t, GetCacheDBFilePath(), GetAnalysisDBFilePath())
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "반도체...", TruncateText("반도체 소자 및 그 제조 방법", 6))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, SplitList(" a@x.com, ,b@y.com ,"))
	assert.Nil(t, SplitList(""))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
