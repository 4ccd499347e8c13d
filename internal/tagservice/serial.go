package tagservice

import (
	"context"
	"sync"

	"github.com/starford/tagvault/internal/models"
	"github.com/starford/tagvault/internal/search"
	"github.com/starford/tagvault/internal/tags"
)

// Serial runs Service operations one at a time. A deletion, including its
// rebuild, completes before any other read or write starts.
type Serial struct {
	mu  sync.Mutex
	svc *Service
}

// NewSerial wraps svc.
func NewSerial(svc *Service) *Serial {
	return &Serial{svc: svc}
}

func (s *Serial) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.Refresh(ctx)
}

func (s *Serial) ListTags(ctx context.Context) ([]tags.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.ListTags(ctx)
}

func (s *Serial) Summaries(ctx context.Context) ([]models.TagSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.Summaries(ctx)
}

func (s *Serial) GetContent(ctx context.Context, tag string) ([]models.TagContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.GetContent(ctx, tag)
}

func (s *Serial) DeleteContent(ctx context.Context, tag string) (models.DeleteReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.DeleteContent(ctx, tag)
}

func (s *Serial) Note(ctx context.Context, path string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.Note(ctx, path)
}

func (s *Serial) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.Search(ctx, query, limit)
}
