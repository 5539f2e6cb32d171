package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("DEFAULT_SCOPE", "page")
	t.Setenv("FONTS_DIR", "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Stdin(t *testing.T) {
	code, out, errOut := runCLI(t, "Я был в доме", "-lang", "en")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Я\u00a0был в\u00a0доме", out)
	assert.Contains(t, errOut, "2 non-breaking spaces were added")
}

func TestRun_StdinBlank(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		summary string
	}{
		{name: "empty", in: "", want: "", summary: "No spaces need replacement"},
		{name: "double space", in: "  ", want: " ", summary: "Double spaces were removed. No need for non-breaking spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.in, "-lang", "en")

			assert.Equal(t, exitOK, code)
			assert.Equal(t, tt.want, out)
			assert.Contains(t, errOut, tt.summary)
			assert.NotContains(t, errOut, "No text nodes found")
		})
	}
}

func TestRun_Verbose(t *testing.T) {
	code, _, errOut := runCLI(t, "№ 5", "-v", "-lang", "ru")

	assert.Equal(t, exitOK, code)
	assert.Regexp(t, `(?m)^after-words\s+1$`, errOut)
}

func TestRun_FileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "currentPage": "1:0",
  "pages": [{"id": "1:0", "type": "PAGE", "children": [
    {"id": "1:1", "type": "TEXT", "characters": "на столе"}
  ]}]
}`), 0o600))

	code, out, _ := runCLI(t, "", "-w", "-scope", "file", path)
	require.Equal(t, exitOK, code)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "на\u00a0столе")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_OutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	out := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(in, []byte(`<html><body><p class="lead">в доме</p><p>в саду</p></body></html>`), 0o644))

	code, stdout, _ := runCLI(t, "", "-scope", "selection", "-selector", ".lead", "-o", out, in)
	require.Equal(t, exitOK, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "в\u00a0доме")
	assert.Contains(t, string(data), "<p>в саду</p>")
}

func TestRun_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	code, _, errOut := runCLI(t, "", path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "malformed document")
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown scope", []string{"-scope", "everything"}},
		{"in place without file", []string{"-w"}},
		{"two files", []string{"a.txt", "b.txt"}},
		{"unknown flag", []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestSummaryLanguage(t *testing.T) {
	t.Setenv("LANG", "ru_RU.UTF-8")
	assert.Equal(t, "ru-RU", summaryLanguage(""))
	assert.Equal(t, "en", summaryLanguage("en"))

	t.Setenv("LANG", "C")
	assert.Equal(t, "", summaryLanguage(""))
}
