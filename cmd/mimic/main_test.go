package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

func TestReplyCommand_TemplatesWithoutBackends(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"reply", "--post", "Just launched our new pricing page today", "--json"})
	require.NoError(t, rootCmd.Execute())

	var got synth.Outcome
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, synth.SourceTemplate, got.Source)
	assert.True(t, got.Advisory)
	assert.NotEmpty(t, got.Text)
}

func TestReplyCommand_EmptyPost(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	rootCmd.SetIn(strings.NewReader("   "))
	rootCmd.SetArgs([]string{"reply", "--post", ""})
	assert.Error(t, rootCmd.Execute())
}

func TestPrintOutcome(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printOutcome(&buf, synth.Outcome{
		Text:     synth.StaticReply,
		Source:   synth.SourceStaticFallback,
		Advisory: true,
		Warning:  synth.WarningFallback,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, synth.StaticReply, lines[0])
	assert.Contains(t, lines[1], "[static_fallback]")
	assert.Equal(t, synth.WarningFallback, lines[2])
}

func TestReadExemplars(t *testing.T) {
	got, err := readExemplars(strings.NewReader("Love this!\n\n  So true.  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Love this!", "So true."}, got)
}
