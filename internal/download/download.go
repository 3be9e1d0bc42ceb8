// Package download persists an opened document to a target directory:
// the original bytes, a JSON summary, and optionally every referenced
// PDF.
package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/pdfref/pdfref/internal/document"
	"github.com/pdfref/pdfref/internal/extractor"
)

const dirPerm = 0o750

// Source is the slice of a document the downloader needs.
type Source interface {
	Name() string
	Summary(sorted bool) document.Summary
	References(sorted bool) []string
	WriteTo(w io.Writer) (int64, error)
}

// Downloader writes documents and their summaries under a base
// directory.
type Downloader struct {
	dir   string
	log   *zap.Logger
	fetch func(url string) ([]byte, error)
}

// New returns a Downloader rooted at dir. fetch retrieves referenced
// URLs; it is required only when DownloadReferenced is used.
func New(dir string, fetch func(url string) ([]byte, error), log *zap.Logger) (*Downloader, error) {
	if dir == "" {
		return nil, fmt.Errorf("download directory is required")
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("download directory %s is a file", dir)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{dir: dir, log: log, fetch: fetch}, nil
}

// Save writes the original document bytes as <name> and the summary as
// <name>.infos.json.
func (d *Downloader) Save(src Source) error {
	path := filepath.Join(d.dir, src.Name())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if _, err := src.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("saving document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	d.log.Debug("saved original document", zap.String("path", path))

	data, err := sonic.ConfigDefault.MarshalIndent(src.Summary(true), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	jsonPath := path + ".infos.json"
	if err := os.WriteFile(jsonPath, data, 0o600); err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	d.log.Debug("saved summary", zap.String("path", jsonPath))
	return nil
}

// DownloadReferenced fetches every referenced PDF URL into
// <name>-referenced-pdfs/, skipping duplicates. Individual fetch
// failures are logged and skipped; only filesystem errors abort.
func (d *Downloader) DownloadReferenced(src Source) error {
	urls := pdfURLs(src.References(true))
	if len(urls) == 0 {
		return nil
	}

	subdir := filepath.Join(d.dir, src.Name()+"-referenced-pdfs")
	if err := os.MkdirAll(subdir, dirPerm); err != nil {
		return fmt.Errorf("creating referenced-pdfs directory: %w", err)
	}
	d.log.Debug("downloading referenced pdfs", zap.Int("count", len(urls)))

	for i, url := range urls {
		data, err := d.fetch(url)
		if err != nil {
			d.log.Warn("referenced pdf fetch failed", zap.String("url", url), zap.Error(err))
			continue
		}
		path := filepath.Join(subdir, referencedFilename(url, i))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("saving %s: %w", path, err)
		}
		d.log.Debug("saved referenced pdf", zap.String("url", url), zap.String("path", path))
	}
	return nil
}

// pdfURLs filters references down to deduplicated URLs that point at a
// PDF.
func pdfURLs(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	var urls []string
	for _, ref := range refs {
		if !strings.HasSuffix(strings.ToLower(ref), ".pdf") {
			continue
		}
		if len(extractor.URLs(ref)) == 0 {
			continue
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		urls = append(urls, ref)
	}
	return urls
}

// referencedFilename derives a local filename from the URL's last
// segment, falling back to an index-based name for unusable segments.
func referencedFilename(url string, i int) string {
	segments := strings.Split(url, "/")
	name := segments[len(segments)-1]
	if name == "" || name == "." {
		return fmt.Sprintf("download-%d.pdf", i)
	}
	return name
}
