// Package tagservice answers vault-wide tag queries and performs tag
// deletions on top of an index snapshot.
//
// A Service is not safe for concurrent use: it assumes a single caller
// that issues one operation at a time. Wrap it in a Serial when several
// goroutines (HTTP handlers, the watcher, MCP) share one vault.
package tagservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/tagvault/internal/apperr"
	"github.com/starford/tagvault/internal/checksum"
	"github.com/starford/tagvault/internal/index"
	"github.com/starford/tagvault/internal/models"
	"github.com/starford/tagvault/internal/search"
	"github.com/starford/tagvault/internal/tags"
)

// Store reads and replaces whole documents.
type Store interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
}

// Recorder keeps a history of destructive edits.
type Recorder interface {
	// Snapshot records the vault as it is before an edit.
	Snapshot(message string) (string, error)
	// Commit records the edited paths.
	Commit(paths []string, message string) (string, error)
}

// Searcher mirrors snapshots for full-text search.
type Searcher interface {
	Sync(ix *index.TagIndex) error
	Search(query string, limit int) ([]search.Result, error)
}

// NoteDetail is the parsed view of one document.
type NoteDetail struct {
	tags.ParsedNote
	Tags     []tags.Tag `json:"tags"`
	Checksum string     `json:"checksum"`
}

// Vault is the operation set shared by Service and Serial.
type Vault interface {
	Refresh(ctx context.Context) error
	ListTags(ctx context.Context) ([]tags.Tag, error)
	Summaries(ctx context.Context) ([]models.TagSummary, error)
	GetContent(ctx context.Context, tag string) ([]models.TagContent, error)
	DeleteContent(ctx context.Context, tag string) (models.DeleteReport, error)
	Note(ctx context.Context, path string) (*NoteDetail, error)
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

var (
	_ Vault = (*Service)(nil)
	_ Vault = (*Serial)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards nothing and uses slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder records every deletion in r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithSearcher mirrors each snapshot into sr and enables Search.
func WithSearcher(sr Searcher) Option {
	return func(s *Service) { s.searcher = sr }
}

// OnRebuild registers fn to run after every snapshot swap.
func OnRebuild(fn func(ix *index.TagIndex)) Option {
	return func(s *Service) { s.onRebuild = append(s.onRebuild, fn) }
}

// Service holds the current index snapshot of a vault.
type Service struct {
	source    index.Source
	store     Store
	logger    *slog.Logger
	recorder  Recorder
	searcher  Searcher
	onRebuild []func(ix *index.TagIndex)

	snap  *index.TagIndex
	stale bool
}

// New creates a Service. The first read builds the index.
func New(source index.Source, store Store, opts ...Option) *Service {
	s := &Service{
		source: source,
		store:  store,
		logger: slog.Default(),
		snap:   index.Empty(),
		stale:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh rebuilds the index from the vault. If any document cannot be
// read the previous snapshot stays in place and the error is returned.
func (s *Service) Refresh(ctx context.Context) error {
	docs, err := s.source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("tagservice: refresh: %w", err)
	}
	s.swap(index.Build(docs))
	return nil
}

func (s *Service) swap(ix *index.TagIndex) {
	s.snap = ix
	s.stale = false
	s.logger.Debug("tagservice: index rebuilt",
		slog.Int("documents", len(ix.Documents())),
		slog.Int("tags", ix.Len()))

	if s.searcher != nil {
		if err := s.searcher.Sync(ix); err != nil {
			s.logger.Warn("tagservice: search sync failed", slog.String("error", err.Error()))
		}
	}
	for _, fn := range s.onRebuild {
		fn(ix)
	}
}

// current returns the snapshot, rebuilding it first when it is stale.
func (s *Service) current(ctx context.Context) (*index.TagIndex, error) {
	if s.stale {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.snap, nil
}

// ListTags returns every tag with at least one section, in first-seen order.
func (s *Service) ListTags(ctx context.Context) ([]tags.Tag, error) {
	ix, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Tags(), nil
}

// Summaries returns ListTags with section and file counts.
func (s *Service) Summaries(ctx context.Context) ([]models.TagSummary, error) {
	ix, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TagSummary, 0, ix.Len())
	for _, tag := range ix.Tags() {
		hits := ix.Hits(tag)
		files := make(map[string]struct{})
		for _, h := range hits {
			files[h.FilePath] = struct{}{}
		}
		out = append(out, models.TagSummary{Tag: tag.String(), Sections: len(hits), Files: len(files)})
	}
	return out, nil
}

// GetContent returns every section tagged raw across the vault, in index
// order. An invalid tag fails with apperr.ErrInvalidTag; a valid tag with
// no sections yields an empty slice.
func (s *Service) GetContent(ctx context.Context, raw string) ([]models.TagContent, error) {
	tag, err := tags.ParseTag(raw)
	if err != nil {
		return nil, err
	}
	ix, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	hits := ix.Hits(tag)
	out := make([]models.TagContent, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.TagContent{
			Date:     h.Date,
			FilePath: h.FilePath,
			Content:  h.Section.Content,
		})
	}
	return out, nil
}

type edit struct {
	path     string
	checksum string // of the content the edit was planned from
	content  string
	sections int
}

// ErrChangedOnDisk marks a document that changed between planning and
// writing a deletion.
var ErrChangedOnDisk = errors.New("tagservice: document changed on disk")

// write replaces e.path with the edited content unless the document no
// longer matches what the edit was planned from.
func (s *Service) write(e edit) error {
	current, err := s.store.Read(e.path)
	if err != nil {
		return err
	}
	if checksum.Sum(current) != e.checksum {
		return ErrChangedOnDisk
	}
	return s.store.Write(e.path, []byte(e.content))
}

// DeleteContent removes every section tagged raw, and its tag line, from
// every document of the vault. The plan is made from a fresh read of the
// vault, each affected document is written once, and the index is rebuilt
// before returning.
//
// A document whose write fails, or that changed on disk after it was read,
// is listed in FilesFailed and left out of FilesModified and
// SectionsDeleted; the other writes are kept. If the
// rebuild afterwards fails the error is returned with the report and the
// snapshot is marked stale, so the next read rebuilds or fails rather than
// serve deleted sections.
func (s *Service) DeleteContent(ctx context.Context, raw string) (models.DeleteReport, error) {
	report := models.DeleteReport{FilesModified: []string{}}

	tag, err := tags.ParseTag(raw)
	if err != nil {
		return report, err
	}

	docs, err := s.source.Documents(ctx)
	if err != nil {
		return report, fmt.Errorf("tagservice: delete %s: %w", tag, err)
	}

	var edits []edit
	for _, doc := range docs {
		content, n := tags.Excise(doc.Content, tag)
		if n == 0 {
			continue
		}
		edits = append(edits, edit{
			path:     doc.Path,
			checksum: checksum.String(doc.Content),
			content:  content,
			sections: n,
		})
	}
	if len(edits) == 0 {
		s.swap(index.Build(docs))
		return report, nil
	}

	if s.recorder != nil {
		if _, err := s.recorder.Snapshot(fmt.Sprintf("tagvault: snapshot before deleting %s", tag)); err != nil {
			s.logger.Warn("tagservice: history snapshot failed", slog.String("error", err.Error()))
		}
	}

	for _, e := range edits {
		if err := s.write(e); err != nil {
			s.logger.Warn("tagservice: write-back failed",
				slog.String("path", e.path),
				slog.String("tag", tag.String()),
				slog.String("error", err.Error()))
			report.FilesFailed = append(report.FilesFailed, e.path)
			continue
		}
		report.FilesModified = append(report.FilesModified, e.path)
		report.SectionsDeleted += e.sections
	}

	s.logger.Info("tagservice: tag deleted",
		slog.String("tag", tag.String()),
		slog.Int("files_modified", len(report.FilesModified)),
		slog.Int("files_failed", len(report.FilesFailed)),
		slog.Int("sections_deleted", report.SectionsDeleted))

	if len(report.FilesModified) == 0 {
		return report, nil
	}

	if s.recorder != nil {
		msg := fmt.Sprintf("tagvault: delete %s (%d sections)", tag, report.SectionsDeleted)
		if _, err := s.recorder.Commit(report.FilesModified, msg); err != nil {
			s.logger.Warn("tagservice: history commit failed", slog.String("error", err.Error()))
		}
	}

	if err := s.Refresh(ctx); err != nil {
		s.stale = true
		return report, fmt.Errorf("tagservice: rebuild after delete: %w", err)
	}
	return report, nil
}

// Note reads and parses a single document.
func (s *Service) Note(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	content := string(data)
	note := tags.ParseTaggedSections(content, path)
	note.Sections = nonNilSlice(note.Sections)
	return &NoteDetail{
		ParsedNote: note,
		Tags:       nonNilSlice(tags.ExtractTags(content)),
		Checksum:   checksum.Sum(data),
	}, nil
}

// ErrSearchDisabled is returned by Search when no Searcher is configured.
var ErrSearchDisabled = errors.New("tagservice: search is not configured")

// Search runs a full-text query over the sections of the current snapshot.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if s.searcher == nil {
		return nil, ErrSearchDisabled
	}
	if _, err := s.current(ctx); err != nil {
		return nil, err
	}
	results, err := s.searcher.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(results), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
