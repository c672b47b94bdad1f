package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every default path at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"STUDYTRACK_DATA", "STUDYTRACK_BACKEND", "STUDYTRACK_BANK", "STUDYTRACK_LOG_LEVEL", "STUDYTRACK_KEEP_SNAPSHOTS"} {
		t.Setenv(k, "")
	}
	return dir
}

// run executes the root command. Flags persist between runs on the shared
// command tree, so callers pass every flag they depend on.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "", "version")
	assert.Equal(t, "studytrack (devel)\n", out)
}

func TestDisplayVersion(t *testing.T) {
	tests := map[string]string{
		"v1.2.3":  "v1.2.3",
		"1.2":     "v1.2.0",
		"(devel)": "(devel)",
		"v2":      "v2.0.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, displayVersion(in), in)
	}
}

func TestFlashcardsThenStats(t *testing.T) {
	dir := isolate(t)
	data := filepath.Join(dir, "progress.json")
	metrics := filepath.Join(dir, "metrics.prom")

	// Know the first card, miss the second, then close input on the third.
	out := mustRun(t, "\ny\n\nn\n",
		"flashcards", "--data", data, "--backend", "file", "--mode", "all", "--metrics-file", metrics)
	assert.Contains(t, out, "Summary: 1/2 known (50%)")
	assert.FileExists(t, data)

	raw, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "studytrack_sessions_started_total 1")
	assert.Contains(t, string(raw), `studytrack_flashcard_reviews_total{result="correct"} 1`)

	out = mustRun(t, "", "stats", "--data", data, "--backend", "file", "--metrics-file", "")
	assert.Contains(t, out, "Sessions:            1")
	assert.Contains(t, out, "Flashcards studied:  2")
	assert.Contains(t, out, "Study streak:        1 day(s)")

	out = mustRun(t, "", "sessions", "--data", data, "--backend", "file", "--limit", "10", "--all=false")
	assert.Contains(t, out, "session_")
}

func TestTopicTestIsRecorded(t *testing.T) {
	dir := isolate(t)
	data := filepath.Join(dir, "progress.db")

	out := mustRun(t, "z\nq\n",
		"test", "topic", "Graphiti", "-n", "2", "--data", data, "--backend", "sqlite", "--metrics-file", "")
	assert.Contains(t, out, "Answer A, B, C or D.")
	assert.Contains(t, out, "Score: 0/2 (0.0%)")

	out = mustRun(t, "", "topic", "Graphiti", "--data", data, "--backend", "sqlite")
	assert.Contains(t, out, "Tests:          1")
	assert.Contains(t, out, "Best score:     0.0%")

	out = mustRun(t, "", "performance", "--data", data, "--backend", "sqlite")
	assert.Contains(t, out, "Difficulty")
}

func TestTestTopic_Unknown(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "", "test", "topic", "Cooking", "-n", "1",
		"--data", filepath.Join(dir, "p.json"), "--backend", "file")
	assert.ErrorContains(t, err, `unknown topic "Cooking"`)
}

func TestBank(t *testing.T) {
	dir := isolate(t)
	out := mustRun(t, "", "bank", "--data", filepath.Join(dir, "p.json"), "--backend", "file", "--bank", "")
	assert.Contains(t, out, "Graphiti")
	assert.Contains(t, out, "Frameworks:")
	assert.Contains(t, out, "God Level")
}

func TestReset(t *testing.T) {
	dir := isolate(t)
	data := filepath.Join(dir, "progress.json")
	flags := []string{"--data", data, "--backend", "file"}

	mustRun(t, "\ny\n", append([]string{"flashcards", "--mode", "random", "-n", "1"}, flags...)...)

	out := mustRun(t, "no\n", append([]string{"reset", "--yes=false"}, flags...)...)
	assert.Contains(t, out, "Aborted.")
	out = mustRun(t, "", append([]string{"stats"}, flags...)...)
	assert.Contains(t, out, "Sessions:            1")

	out = mustRun(t, "", append([]string{"reset", "--yes"}, flags...)...)
	assert.Contains(t, out, "Progress reset.")
	out = mustRun(t, "", append([]string{"stats"}, flags...)...)
	assert.Contains(t, out, "Sessions:            0")
	assert.Contains(t, out, "Last studied:        never")
}

func TestInvalidBackend(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "stats", "--backend", "postgres")
	assert.ErrorContains(t, err, "unknown backend")
	// Later tests pass --backend explicitly; restore a valid value anyway.
	_ = rootCmd.PersistentFlags().Set("backend", "")
}
