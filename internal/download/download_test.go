package download

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfref/pdfref/internal/document"
)

type fakeSource struct {
	name string
	data []byte
	refs []string
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Summary(sorted bool) document.Summary {
	return document.Summary{
		Source:     document.SourceInfo{Type: "file", Location: "/x/" + s.name, Filename: s.name},
		Metadata:   map[string]any{"Title": "fake"},
		References: map[string][]string{"scrape": s.refs},
	}
}

func (s *fakeSource) References(sorted bool) []string { return s.refs }

func (s *fakeSource) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.data)
	return int64(n), err
}

func TestNewRejectsEmptyAndFileTargets(t *testing.T) {
	_, err := New("", nil, nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err = New(path, nil, nil)
	assert.Error(t, err)
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	_, err := New(dir, nil, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveWritesDocumentAndSummary(t *testing.T) {
	dir := t.TempDir()
	d, err := New(dir, nil, nil)
	require.NoError(t, err)

	src := &fakeSource{
		name: "paper.pdf",
		data: []byte("%PDF-1.4 content"),
		refs: []string{"https://example.com/a"},
	}
	require.NoError(t, d.Save(src))

	saved, err := os.ReadFile(filepath.Join(dir, "paper.pdf"))
	require.NoError(t, err)
	assert.Equal(t, src.data, saved)

	raw, err := os.ReadFile(filepath.Join(dir, "paper.pdf.infos.json"))
	require.NoError(t, err)

	var s document.Summary
	require.NoError(t, sonic.Unmarshal(raw, &s))
	assert.Equal(t, "paper.pdf", s.Source.Filename)
	assert.Equal(t, []string{"https://example.com/a"}, s.References["scrape"])
}

func TestDownloadReferencedFiltersAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	var fetched []string
	d, err := New(dir, func(url string) ([]byte, error) {
		fetched = append(fetched, url)
		return []byte("pdf bytes"), nil
	}, nil)
	require.NoError(t, err)

	src := &fakeSource{
		name: "paper.pdf",
		refs: []string{
			"https://example.com/one.pdf",
			"https://example.com/one.pdf", // duplicate
			"https://example.com/page.html",
			"doi:10.1000/xyz",
			"local-file.pdf", // not a URL
			"https://example.com/two.PDF",
		},
	}
	require.NoError(t, d.DownloadReferenced(src))

	assert.ElementsMatch(t, []string{
		"https://example.com/one.pdf",
		"https://example.com/two.PDF",
	}, fetched)

	subdir := filepath.Join(dir, "paper.pdf-referenced-pdfs")
	for _, name := range []string{"one.pdf", "two.PDF"} {
		data, err := os.ReadFile(filepath.Join(subdir, name))
		require.NoError(t, err, name)
		assert.Equal(t, []byte("pdf bytes"), data)
	}
}

func TestDownloadReferencedSkipsFailedFetches(t *testing.T) {
	dir := t.TempDir()
	d, err := New(dir, func(url string) ([]byte, error) {
		if url == "https://example.com/bad.pdf" {
			return nil, errors.New("404")
		}
		return []byte("ok"), nil
	}, nil)
	require.NoError(t, err)

	src := &fakeSource{
		name: "paper.pdf",
		refs: []string{
			"https://example.com/bad.pdf",
			"https://example.com/good.pdf",
		},
	}
	require.NoError(t, d.DownloadReferenced(src))

	subdir := filepath.Join(dir, "paper.pdf-referenced-pdfs")
	_, err = os.Stat(filepath.Join(subdir, "good.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(subdir, "bad.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadReferencedNoPDFsIsNoop(t *testing.T) {
	dir := t.TempDir()
	d, err := New(dir, nil, nil)
	require.NoError(t, err)

	src := &fakeSource{name: "paper.pdf", refs: []string{"https://example.com/page.html"}}
	require.NoError(t, d.DownloadReferenced(src))

	_, err = os.Stat(filepath.Join(dir, "paper.pdf-referenced-pdfs"))
	assert.True(t, os.IsNotExist(err))
}

func TestReferencedFilename(t *testing.T) {
	assert.Equal(t, "a.pdf", referencedFilename("https://h.example.com/x/a.pdf", 0))
	assert.Equal(t, "download-3.pdf", referencedFilename("https://h.example.com/", 3))
}
