// Package content builds and serves the in-memory index of the markdown tree.
//
// A build walks the whole content root into a fresh Snapshot and publishes it
// with a single atomic swap. Readers always see one complete snapshot, never a
// partially built one.
package content

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

const markdownExt = ".md"

// DefaultNavFile is the per-folder navigation override file name.
const DefaultNavFile = "toc.yml"

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithNavFile overrides the navigation override file name. Empty disables it.
func WithNavFile(name string) Option {
	return func(ix *Index) { ix.navFile = strings.TrimSpace(name) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(ix *Index) {
		if r != nil {
			ix.recorder = r
		}
	}
}

// Index owns the active Snapshot.
type Index struct {
	mapper   *slug.Mapper
	navFile  string
	logger   *slog.Logger
	recorder metrics.Recorder

	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewIndex creates an index over the mapper's root. It starts empty; call Build.
func NewIndex(m *slug.Mapper, opts ...Option) *Index {
	ix := &Index{
		mapper:   m,
		navFile:  DefaultNavFile,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.current.Store(emptySnapshot(m.Root()))
	return ix
}

// Mapper returns the slug mapper the index was built with.
func (ix *Index) Mapper() *slug.Mapper { return ix.mapper }

// Snapshot returns the active snapshot. It is never nil.
func (ix *Index) Snapshot() *Snapshot { return ix.current.Load() }

// TryResolve resolves a slug against the active snapshot.
func (ix *Index) TryResolve(s string) (Entry, bool) { return ix.Snapshot().TryResolve(s) }

// EnumerateAll lists the documents of the active snapshot.
func (ix *Index) EnumerateAll() []Document { return ix.Snapshot().EnumerateAll() }

// Lookup is TryResolve with a classified not-found error.
func (ix *Index) Lookup(s string) (Entry, error) {
	if e, ok := ix.TryResolve(s); ok {
		return e, nil
	}
	return Entry{}, ferrors.NotFoundError("document not found").
		WithContext("slug", slug.Normalize(s)).
		Build()
}

// Build walks the content root and atomically replaces the active snapshot.
// Builds are serialised. On error the previous snapshot stays active. A missing
// root produces an empty snapshot.
func (ix *Index) Build(ctx context.Context) (*Snapshot, error) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	start := time.Now()
	snap, err := ix.scan(ctx)
	if err != nil {
		return nil, err
	}
	ix.current.Store(snap)

	elapsed := time.Since(start)
	ix.recorder.ObserveIndexBuild(elapsed, snap.Len())
	ix.logger.Info("Content index built",
		logfields.Count(snap.Len()),
		slog.Int("folders", len(snap.folders)),
		slog.Int("conflicts", len(snap.conflicts)),
		logfields.DurationMS(elapsed))
	return snap, nil
}

func (ix *Index) scan(ctx context.Context) (*Snapshot, error) {
	root := ix.mapper.Root()
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ix.logger.Warn("Content root not found; serving an empty index", logfields.Path(root))
		return emptySnapshot(root), nil
	case err != nil:
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat content root").
			Retryable().
			WithContext("path", root).
			Build()
	case !info.IsDir():
		return nil, ferrors.FileSystemError("content root is not a directory").
			WithContext("path", root).
			Build()
	}

	b := newSnapshotBuilder(ix.mapper)
	b.folder("")

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			b.folder(ix.relSlug(path))
			return nil
		}
		if ix.navFile != "" && strings.EqualFold(name, ix.navFile) {
			ix.attachToc(b, path)
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), markdownExt) {
			return nil
		}
		return ix.addFile(b, path, name)
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, ferrors.WrapError(walkErr, ferrors.CategoryFileSystem, "walk content root").
			Retryable().
			WithContext("path", root).
			Build()
	}

	snap := b.freeze()
	for _, c := range snap.conflicts {
		ix.logger.Warn("Duplicate document for slug",
			logfields.Slug(c.Slug),
			slog.String("winner", c.Winner),
			slog.String("ignored", c.Loser))
	}
	return snap, nil
}

func (ix *Index) addFile(b *snapshotBuilder, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed between readdir and stat, or a dangling symlink.
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	rel := ix.relSlug(path)
	key := strings.ToLower(rel[:len(rel)-len(markdownExt)])
	dir := ix.relSlug(filepath.Dir(path))

	b.addDocument(dir, Entry{
		Slug:    ix.mapper.PathToSlug(path),
		Key:     key,
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
		IsIndex: ix.mapper.IsDefaultDocument(name),
	})
	return nil
}

func (ix *Index) attachToc(b *snapshotBuilder, path string) {
	f := b.folder(ix.relSlug(filepath.Dir(path)))
	f.NavFile = path
	items, err := LoadToc(path, f.Slug)
	if err != nil {
		ix.logger.Warn("Navigation file ignored", logfields.Path(path), logfields.Error(err))
		return
	}
	f.Toc = items
}

// relSlug is the slash separated path of p relative to the root.
func (ix *Index) relSlug(p string) string {
	rel, err := filepath.Rel(ix.mapper.Root(), p)
	if err != nil || rel == "." {
		return ""
	}
	return strings.Trim(filepath.ToSlash(rel), "/")
}
