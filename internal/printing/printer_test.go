package printing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func newTestPrinter(t *testing.T, cfg Config, runErr error, archiver Archiver) (*Printer, *[]call) {
	t.Helper()
	cfg.SpoolDir = t.TempDir()
	p := New(cfg, archiver)
	calls := &[]call{}
	p.run = func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return runErr
	}
	return p, calls
}

func TestPrintSpoolsAndRunsCommand(t *testing.T) {
	p, calls := newTestPrinter(t, Config{Command: "lp", Printer: "ticket", Copies: 2}, nil, nil)

	res, err := p.Print(context.Background(), "depot_12", "TICKET DEPOT")
	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.True(t, strings.HasSuffix(res.Path, ".txt"))
	assert.True(t, strings.HasPrefix(filepath.Base(res.Path), "depot_12_"))

	body, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "TICKET DEPOT", string(body))

	require.Len(t, *calls, 1)
	assert.Equal(t, "lp", (*calls)[0].name)
	assert.Equal(t, []string{"-d", "ticket", "-n", "2", res.Path}, (*calls)[0].args)
}

func TestPrintFallsBackToPathWhenCommandFails(t *testing.T) {
	p, _ := newTestPrinter(t, Config{Command: "lp"}, errors.New("no printer"), nil)

	res, err := p.Print(context.Background(), "vente", "x")
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.FileExists(t, res.Path)
}

func TestPrintWithoutCommandOnlySpools(t *testing.T) {
	p, calls := newTestPrinter(t, Config{}, nil, nil)

	res, err := p.Print(context.Background(), "", "x")
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Empty(t, *calls)
	assert.True(t, strings.HasPrefix(filepath.Base(res.Path), "document_"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "facture_N_12", sanitize("facture N°12"))
	assert.Equal(t, "a_b", sanitize("a/b"))
}

type fakeArchiver struct {
	name string
	body []byte
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, name string, body []byte) (string, error) {
	f.name, f.body = name, body
	if f.err != nil {
		return "", f.err
	}
	return "documents/" + name, nil
}

func TestPrintArchivesCopy(t *testing.T) {
	arch := &fakeArchiver{}
	p, _ := newTestPrinter(t, Config{}, nil, arch)

	res, err := p.Print(context.Background(), "fiche", "FICHE")
	require.NoError(t, err)
	assert.Equal(t, "documents/"+filepath.Base(res.Path), res.ArchiveKey)
	assert.Equal(t, []byte("FICHE"), arch.body)
}

func TestPrintIgnoresArchiveFailure(t *testing.T) {
	p, _ := newTestPrinter(t, Config{}, nil, &fakeArchiver{err: errors.New("offline")})

	res, err := p.Print(context.Background(), "fiche", "FICHE")
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveKey)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3ArchiverKey(t *testing.T) {
	put := &fakePutter{}
	a := &S3Archiver{client: put, bucket: "docs", prefix: "shop/documents"}

	key, err := a.Archive(context.Background(), "vente_1.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "shop/documents/vente_1.txt", key)
	assert.Equal(t, "docs", *put.input.Bucket)
	assert.Equal(t, "hello", put.body)
}

func TestNewS3ArchiverNeedsBucket(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), ArchiveConfig{})
	assert.Error(t, err)
}
