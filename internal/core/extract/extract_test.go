package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type stubRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.name, s.args = name, args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestPdftotext_Extract(t *testing.T) {
	r := &stubRunner{stdout: "Invoice No: 1234  \r\nDescription   SKU\n\fPage two\n\f"}
	p := NewPdftotext("", r, nil)

	res := p.Extract(context.Background(), "/in/a.pdf")

	assert.Equal(t, "pdftotext", r.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "/in/a.pdf", "-"}, r.args)
	assert.Equal(t, "Invoice No: 1234\nDescription   SKU\nPage two\n", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "pdftotext", res.Engine)
	assert.Empty(t, res.Warnings)
}

func TestPdftotext_FailureYieldsEmptyText(t *testing.T) {
	r := &stubRunner{stdout: "partial", stderr: "Syntax Error: Couldn't read xref table", err: errors.New("exit status 1")}
	p := NewPdftotext("/usr/bin/pdftotext", r, nil)

	res := p.Extract(context.Background(), "/in/broken.pdf")

	assert.Equal(t, "/usr/bin/pdftotext", r.name)
	assert.Empty(t, res.Text)
	assert.Zero(t, res.Pages)
	assert.Equal(t, []string{"Syntax Error: Couldn't read xref table"}, res.Warnings)
}

func TestPdftotext_SilentFailureStillWarns(t *testing.T) {
	r := &stubRunner{err: errors.New("exec: \"pdftotext\": executable file not found in $PATH")}

	res := NewPdftotext("", r, nil).Extract(context.Background(), "/in/a.pdf")

	assert.Empty(t, res.Text)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "executable file not found")
}

func TestNative_UnreadableFileYieldsEmptyText(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a pdf"), 0o644))

	n := NewNative(nil)
	for _, path := range []string{garbage, filepath.Join(dir, "missing.pdf")} {
		res := n.Extract(context.Background(), path)
		assert.Empty(t, res.Text)
		assert.Equal(t, "native", res.Engine)
		assert.NotEmpty(t, res.Warnings)
	}
}

func TestNew(t *testing.T) {
	x, err := New(common.TextConfig{Engine: common.TextEnginePdftotext}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Pdftotext{}, x)

	x, err = New(common.TextConfig{Engine: common.TextEngineNative}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Native{}, x)

	_, err = New(common.TextConfig{Engine: "tika"}, nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
