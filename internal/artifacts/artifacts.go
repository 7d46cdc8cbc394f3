package artifacts

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"
)

// Limits bounds how much of an artifact is listed.
type Limits struct {
	MaxEntries      int
	MaxDepth        int
	MaxArchiveBytes int64 // bytes buffered for nested archives
	TimeBudget      time.Duration
}

// Stats counts listed entries and the reasons listings stopped early.
type Stats struct {
	Entries          int
	AbortedByEntries int
	AbortedByBytes   int
	AbortedByDepth   int
	AbortedByTime    int
}

func (s *Stats) add(reason string) {
	if s == nil {
		return
	}
	switch reason {
	case "entries":
		s.AbortedByEntries++
	case "bytes":
		s.AbortedByBytes++
	case "depth":
		s.AbortedByDepth++
	case "time":
		s.AbortedByTime++
	}
}

// EmitFunc receives one listed file path, slash separated and relative to
// the artifact root.
type EmitFunc func(path string)

// IsArchivePath reports whether p names a listable archive.
func IsArchivePath(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".tar") ||
		strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz")
}

type lister struct {
	ctx      context.Context
	limits   Limits
	deadline time.Time
	buffered int64
	stats    *Stats
	emit     EmitFunc
	stopped  bool
}

func newLister(ctx context.Context, limits Limits, emit EmitFunc, stats *Stats) *lister {
	if ctx == nil {
		ctx = context.Background()
	}
	l := &lister{ctx: ctx, limits: limits, emit: emit, stats: stats}
	if limits.TimeBudget > 0 {
		l.deadline = time.Now().Add(limits.TimeBudget)
	}
	return l
}

// exceeded returns the reason listing must stop, or "" to continue.
func (l *lister) exceeded() string {
	if l.limits.MaxEntries > 0 && l.count() >= l.limits.MaxEntries {
		return "entries"
	}
	if !l.deadline.IsZero() && time.Now().After(l.deadline) {
		return "time"
	}
	if l.ctx.Err() != nil {
		return "time"
	}
	return ""
}

func (l *lister) count() int {
	if l.stats == nil {
		return 0
	}
	return l.stats.Entries
}

// check records an abort once and reports whether listing should stop.
func (l *lister) check() bool {
	if l.stopped {
		return true
	}
	if r := l.exceeded(); r != "" {
		l.stats.add(r)
		l.stopped = true
	}
	return l.stopped
}

func (l *lister) put(p string) {
	if l.stats != nil {
		l.stats.Entries++
	}
	l.emit(p)
}

// ListArchive emits the file entries of the zip or tar(.gz) archive at p.
// Entries of nested archives are emitted under the nested archive's path,
// up to Limits.MaxDepth levels deep. Reaching a limit stops the listing
// without error and is recorded in stats.
func ListArchive(ctx context.Context, p string, limits Limits, emit EmitFunc, stats *Stats) error {
	if stats == nil {
		stats = &Stats{}
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	l := newLister(ctx, limits, emit, stats)

	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		fi, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat archive: %w", err)
		}
		return l.zip("", f, fi.Size(), 0)
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		defer gz.Close()
		return l.tar("", gz, 0)
	case strings.HasSuffix(lower, ".tar"):
		return l.tar("", f, 0)
	default:
		return fmt.Errorf("unsupported archive type: %s", p)
	}
}

func (l *lister) zip(prefix string, r io.ReaderAt, size int64, depth int) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("read zip %s: %w", displayName(prefix), err)
	}
	for _, f := range zr.File {
		if l.check() {
			return nil
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := joinEntry(prefix, f.Name)
		l.put(name)
		if IsArchivePath(name) {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			l.nested(name, rc, depth)
			_ = rc.Close()
		}
	}
	return nil
}

func (l *lister) tar(prefix string, r io.Reader, depth int) error {
	return l.tarFilter(prefix, r, depth, nil)
}

// tarFilter walks a tar stream; skip, when set, drops entries by name.
func (l *lister) tarFilter(prefix string, r io.Reader, depth int, skip func(string) bool) error {
	tr := tar.NewReader(r)
	for {
		if l.check() {
			return nil
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar %s: %w", displayName(prefix), err)
		}
		if hdr.FileInfo().IsDir() {
			continue
		}
		name := joinEntry(prefix, hdr.Name)
		if name == "" || (skip != nil && skip(name)) {
			continue
		}
		l.put(name)
		if IsArchivePath(name) {
			l.nested(name, tr, depth)
		}
	}
}

// nested lists an archive found inside another one. Failures inside nested
// archives are not fatal to the outer listing.
func (l *lister) nested(name string, r io.Reader, depth int) {
	if depth >= l.limits.MaxDepth {
		if l.limits.MaxDepth > 0 {
			l.stats.add("depth")
		}
		return
	}
	blob, err := l.readBounded(r)
	if err != nil {
		return
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		_ = l.zip(name, bytes.NewReader(blob), int64(len(blob)), depth+1)
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(bytes.NewReader(blob))
		if err != nil {
			return
		}
		defer gz.Close()
		_ = l.tar(name, gz, depth+1)
	case strings.HasSuffix(lower, ".tar"):
		_ = l.tar(name, bytes.NewReader(blob), depth+1)
	}
}

func (l *lister) readBounded(r io.Reader) ([]byte, error) {
	limit := int64(1 << 62)
	if l.limits.MaxArchiveBytes > 0 {
		limit = l.limits.MaxArchiveBytes - l.buffered
		if limit <= 0 {
			l.stats.add("bytes")
			return nil, errors.New("byte budget exceeded")
		}
	}
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, limit+1)
	l.buffered += n
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n > limit {
		l.stats.add("bytes")
		return nil, errors.New("byte budget exceeded")
	}
	return buf.Bytes(), nil
}

func joinEntry(prefix, name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	if prefix == "" {
		return path.Clean(name)
	}
	return prefix + "/" + path.Clean(name)
}

func displayName(prefix string) string {
	if prefix == "" {
		return "archive"
	}
	return prefix
}
