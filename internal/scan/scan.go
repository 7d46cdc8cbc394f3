package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enginesniff/enginesniff/internal/artifacts"
	"github.com/enginesniff/enginesniff/internal/cache"
	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/config"
	"github.com/enginesniff/enginesniff/internal/git"
	"github.com/enginesniff/enginesniff/internal/ignore"
	"github.com/enginesniff/enginesniff/internal/types"
)

// IgnoreFile is read from the scan root when present.
const IgnoreFile = ".enginesniffignore"

// Source identifies where a listing came from.
type Source string

const (
	SourceDir      Source = "dir"
	SourceArchive  Source = "archive"
	SourceRevision Source = "revision"
	SourceImage    Source = "image"
)

// ErrConflictingSources is returned when more than one of Revision and Image is set.
var ErrConflictingSources = errors.New("only one of revision or image may be set")

// Config controls which listing is collected and how it is classified.
type Config struct {
	// Root is a directory or an archive file. For revisions it locates the repository.
	Root     string
	Revision string
	Image    string

	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool

	MaxEntries      int
	MaxDepth        int
	MaxArchiveBytes int64
	TimeBudget      time.Duration

	// Engines defaults to the embedded set when nil.
	Engines []types.EngineConfig
	// Cache enables the on-disk result cache for directory and revision sources.
	Cache bool
	// Explain forces a full evaluation so per-engine scores are available.
	Explain bool
}

// Result carries the classification together with listing statistics.
type Result struct {
	Source        Source
	Target        string
	Report        classify.Report
	FilesListed   int
	Duration      time.Duration
	ArtifactStats artifacts.Stats
	Cached        bool
}

// Detection is shorthand for r.Report.Result.
func (r Result) Detection() types.DetectionResult { return r.Report.Result }

type collector struct {
	ctx             context.Context
	globs           globs
	ign             ignore.Matcher
	defaultExcludes bool
	max             int
	stats           *artifacts.Stats
	files           []string
	done            bool
}

func (c *collector) add(rel string) bool {
	if c.done {
		return false
	}
	if c.ctx.Err() != nil {
		c.stats.AbortedByTime++
		c.done = true
		return false
	}
	if rel == IgnoreFile || rel == cache.FileName {
		return true
	}
	if c.defaultExcludes && (underExcludedDir(rel) || isDefaultFileExcluded(strings.ToLower(rel))) {
		return true
	}
	if !c.globs.allowed(rel) || c.ign.Match(rel) {
		return true
	}
	if c.max > 0 && len(c.files) >= c.max {
		c.stats.AbortedByEntries++
		c.done = true
		return false
	}
	c.files = append(c.files, rel)
	return true
}

// List collects the filtered listing described by cfg.
func List(ctx context.Context, cfg Config) ([]string, Source, artifacts.Stats, error) {
	var stats artifacts.Stats
	if cfg.Revision != "" && cfg.Image != "" {
		return nil, "", stats, ErrConflictingSources
	}
	if cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TimeBudget)
		defer cancel()
	}
	c := &collector{
		ctx:             ctx,
		globs:           newGlobs(cfg.IncludeGlobs, cfg.ExcludeGlobs),
		defaultExcludes: cfg.DefaultExcludes,
		max:             cfg.MaxEntries,
		stats:           &stats,
		files:           []string{},
	}
	limits := artifacts.Limits{
		MaxEntries:      cfg.MaxEntries,
		MaxDepth:        cfg.MaxDepth,
		MaxArchiveBytes: cfg.MaxArchiveBytes,
	}
	emit := func(p string) { c.add(p) }

	if cfg.Image != "" {
		if err := artifacts.ListRegistryImage(ctx, cfg.Image, limits, emit, &stats); err != nil {
			return nil, SourceImage, stats, err
		}
		return c.files, SourceImage, stats, nil
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}
	if cfg.Revision != "" {
		c.ign, _ = ignore.Load(filepath.Join(root, IgnoreFile))
		if err := git.ListRevision(root, cfg.Revision, emit); err != nil {
			return nil, SourceRevision, stats, err
		}
		stats.Entries = len(c.files)
		return c.files, SourceRevision, stats, nil
	}

	fi, err := os.Stat(root)
	if err != nil {
		return nil, "", stats, fmt.Errorf("scan target: %w", err)
	}
	if !fi.IsDir() {
		if !artifacts.IsArchivePath(root) {
			return nil, SourceArchive, stats, fmt.Errorf("%s is neither a directory nor a supported archive", root)
		}
		if err := artifacts.ListArchive(ctx, root, limits, emit, &stats); err != nil {
			return nil, SourceArchive, stats, err
		}
		return c.files, SourceArchive, stats, nil
	}
	c.ign, _ = ignore.Load(filepath.Join(root, IgnoreFile))
	if err := Walk(root, cfg.DefaultExcludes, c.add); err != nil {
		return nil, SourceDir, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	stats.Entries = len(c.files)
	return c.files, SourceDir, stats, nil
}

// Scan lists the target and classifies the listing.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	start := time.Now()
	engines := cfg.Engines
	if engines == nil {
		engines = config.DefaultEngines()
	}
	files, src, stats, err := List(ctx, cfg)
	res := Result{Source: src, Target: target(cfg), ArtifactStats: stats}
	if err != nil {
		return res, err
	}
	res.FilesListed = len(files)

	// results are cached alongside a local root only
	useCache := cfg.Cache && !cfg.Explain && (src == SourceDir || src == SourceRevision)
	var db cache.DB
	var key string
	if useCache {
		db, _ = cache.Load(cacheRoot(cfg.Root))
		key = cache.Fingerprint(files, engines)
		if hit, ok := db.Get(key); ok {
			res.Report = classify.Report{Result: hit}
			res.Cached = true
			res.Duration = time.Since(start)
			return res, nil
		}
	}

	res.Report = classify.Evaluate(files, engines)
	if useCache {
		db.Put(key, res.Report.Result)
		_ = cache.Save(cacheRoot(cfg.Root), db)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func cacheRoot(root string) string {
	if root == "" {
		return "."
	}
	return root
}

func target(cfg Config) string {
	switch {
	case cfg.Image != "":
		return cfg.Image
	case cfg.Revision != "":
		return cfg.Root + "@" + cfg.Revision
	case cfg.Root == "":
		return "."
	default:
		return cfg.Root
	}
}
