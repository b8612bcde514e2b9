package ocr

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// mockRunner records the invocation and runs fn in place of the command.
type mockRunner struct {
	name string
	args []string
	fn   func(ctx context.Context, args []string) ([]byte, []byte, error)
}

func (m *mockRunner) Run(ctx context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	m.name = name
	m.args = args
	if m.fn == nil {
		return nil, nil, nil
	}
	return m.fn(ctx, args)
}

// writeOutput creates the last argument, as ocrmypdf does on success.
func writeOutput(_ context.Context, args []string) ([]byte, []byte, error) {
	return []byte("done"), nil, os.WriteFile(args[len(args)-1], []byte("%PDF-1.4"), 0o644)
}

func TestOCRmyPDF_Args(t *testing.T) {
	o := NewOCRmyPDF(Config{}, &mockRunner{}, nil)
	assert.Equal(t, []string{
		"--force-ocr", "--optimize", "3", "--deskew", "--clean", "--output-type", "pdf",
		"in.pdf", "out.pdf",
	}, o.Args("in.pdf", "out.pdf"))

	o = NewOCRmyPDF(Config{Language: "eng+deu"}, &mockRunner{}, nil)
	args := o.Args("in.pdf", "out.pdf")
	assert.Equal(t, []string{"-l", "eng+deu", "in.pdf", "out.pdf"}, args[len(args)-4:])
}

func TestOCRmyPDF_Success(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out.pdf")
	r := &mockRunner{fn: writeOutput}
	o := NewOCRmyPDF(Config{Command: "/opt/bin/ocrmypdf", Timeout: time.Minute}, r, nil)

	require.NoError(t, o.Run(context.Background(), "in.pdf", out))
	assert.Equal(t, "/opt/bin/ocrmypdf", r.name)
	assert.Equal(t, []string{"in.pdf", out}, r.args[len(r.args)-2:])
	assert.FileExists(t, out)
}

func TestOCRmyPDF_DefaultCommand(t *testing.T) {
	r := &mockRunner{fn: writeOutput}
	o := NewOCRmyPDF(Config{}, r, nil)

	require.NoError(t, o.Run(context.Background(), "in.pdf", filepath.Join(t.TempDir(), "out.pdf")))
	assert.Equal(t, "ocrmypdf", r.name)
}

func TestOCRmyPDF_NonZeroExit(t *testing.T) {
	exitErr := errors.New("exit status 6")
	r := &mockRunner{fn: func(context.Context, []string) ([]byte, []byte, error) {
		return nil, []byte("PriorOcrFoundError"), exitErr
	}}
	o := NewOCRmyPDF(Config{}, r, nil)

	err := o.Run(context.Background(), "in.pdf", filepath.Join(t.TempDir(), "out.pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCR)
	assert.ErrorIs(t, err, exitErr)
	assert.Equal(t, common.CodeOCRFailed, common.ErrorCode(err))
}

func TestOCRmyPDF_Timeout(t *testing.T) {
	r := &mockRunner{fn: func(ctx context.Context, _ []string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}}
	o := NewOCRmyPDF(Config{Timeout: 10 * time.Millisecond}, r, nil)

	err := o.Run(context.Background(), "in.pdf", filepath.Join(t.TempDir(), "out.pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCR)
	assert.ErrorIs(t, err, common.ErrOCRTimeout)
	assert.Equal(t, common.CodeOCRTimeout, common.ErrorCode(err))
}

func TestOCRmyPDF_MissingOutput(t *testing.T) {
	o := NewOCRmyPDF(Config{}, &mockRunner{}, nil)

	err := o.Run(context.Background(), "in.pdf", filepath.Join(t.TempDir(), "out.pdf"))

	assert.ErrorIs(t, err, common.ErrOCR)
}
