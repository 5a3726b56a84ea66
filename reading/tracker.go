// Package reading tracks a customer's progress through one purchased e-book.
// Progress and bookmarks are owned by the backend; the tracker keeps a
// read-through copy that is refetched after every progress mutation.
package reading

import (
	"context"
	"math"
	"sync"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client the tracker calls.
type Backend interface {
	EbookStructure(ctx context.Context, productID string) (*api.EbookStructure, error)
	SectionContent(ctx context.Context, sectionID string) (*api.Section, error)
	UpdateProgress(ctx context.Context, in api.ProgressUpdate) (*api.Progress, error)
	ProductProgress(ctx context.Context, productID string) ([]api.Progress, error)
	CreateBookmark(ctx context.Context, in api.BookmarkInput) (*api.Bookmark, error)
	ProductBookmarks(ctx context.Context, productID string) ([]api.Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID string) error
}

var _ Backend = (*api.Client)(nil)

type SectionState int

const (
	Unvisited SectionState = iota
	Visited
	Completed
)

func (s SectionState) String() string {
	switch s {
	case Visited:
		return "visited"
	case Completed:
		return "completed"
	default:
		return "unvisited"
	}
}

func (s SectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SectionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unvisited":
		*s = Unvisited
	case "visited":
		*s = Visited
	case "completed":
		*s = Completed
	default:
		return errors.Errorf("unknown section state %q", text)
	}
	return nil
}

// Tracker is the reader state for one product. It is safe for concurrent
// use; remote calls are made without holding its lock, so concurrent
// mutations of one section resolve as last response wins.
type Tracker struct {
	backend   Backend
	productID string

	structure *api.EbookStructure
	sections  []api.Section
	progress  map[string]api.Progress
	bookmarks map[string]struct{}
	current   *api.Section
	lock      sync.RWMutex
}

func NewTracker(backend Backend, productID string) *Tracker {
	return &Tracker{
		backend:   backend,
		productID: productID,
		progress:  make(map[string]api.Progress),
		bookmarks: make(map[string]struct{}),
	}
}

func (t *Tracker) ProductID() string {
	return t.productID
}

// Load fetches the structure, progress and bookmarks together.
func (t *Tracker) Load(ctx context.Context) error {
	var (
		structure *api.EbookStructure
		progress  []api.Progress
		bookmarks []api.Bookmark
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		structure, err = t.backend.EbookStructure(gctx, t.productID)
		return err
	})
	g.Go(func() (err error) {
		progress, err = t.backend.ProductProgress(gctx, t.productID)
		return err
	})
	g.Go(func() (err error) {
		bookmarks, err = t.backend.ProductBookmarks(gctx, t.productID)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "[Tracker.Load] fetch reader state")
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.structure = structure
	t.sections = flatten(structure)
	t.setProgress(progress)
	t.bookmarks = make(map[string]struct{}, len(bookmarks))
	for _, b := range bookmarks {
		t.bookmarks[b.SectionID] = struct{}{}
	}
	return nil
}

// Open loads the reader and selects the first section of the first chapter.
// A book without sections opens with nothing selected.
func (t *Tracker) Open(ctx context.Context) (*api.Section, error) {
	if err := t.Load(ctx); err != nil {
		return nil, err
	}

	t.lock.RLock()
	var first string
	if chapters := t.structure.Chapters; len(chapters) > 0 && len(chapters[0].Sections) > 0 {
		first = chapters[0].Sections[0].ID
	}
	t.lock.RUnlock()

	if first == "" {
		return nil, nil
	}
	return t.SelectSection(ctx, first)
}

// SelectSection fetches the section's content, makes it current and records
// the visit. A completed record is left as it is; an existing record keeps
// its reading progress.
func (t *Tracker) SelectSection(ctx context.Context, sectionID string) (*api.Section, error) {
	if err := t.checkSection(sectionID); err != nil {
		return nil, err
	}

	section, err := t.backend.SectionContent(ctx, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "[Tracker.SelectSection] fetch content")
	}

	t.lock.Lock()
	t.current = section
	existing, visited := t.progress[sectionID]
	t.lock.Unlock()

	if visited && existing.IsCompleted {
		return section, nil
	}

	visit := api.ProgressUpdate{SectionID: sectionID, IsCompleted: false}
	if visited {
		visit.ReadingProgress = existing.ReadingProgress
	}
	if _, err := t.backend.UpdateProgress(ctx, visit); err != nil {
		return section, errors.Wrap(err, "[Tracker.SelectSection] record visit")
	}
	if err := t.refreshProgress(ctx); err != nil {
		return section, errors.Wrap(err, "[Tracker.SelectSection] refresh progress")
	}
	return section, nil
}

// ToggleCompletion flips the section between visited and completed and
// returns the new completion flag. An unvisited section is recorded as
// visited first.
func (t *Tracker) ToggleCompletion(ctx context.Context, sectionID string) (bool, error) {
	if err := t.checkSection(sectionID); err != nil {
		return false, err
	}

	t.lock.RLock()
	existing, visited := t.progress[sectionID]
	t.lock.RUnlock()

	if !visited {
		if _, err := t.backend.UpdateProgress(ctx, api.ProgressUpdate{SectionID: sectionID}); err != nil {
			return false, errors.Wrap(err, "[Tracker.ToggleCompletion] record visit")
		}
	}

	completed := !existing.IsCompleted
	update := api.ProgressUpdate{SectionID: sectionID, IsCompleted: completed}
	if completed {
		update.ReadingProgress = 100
	}
	if _, err := t.backend.UpdateProgress(ctx, update); err != nil {
		if !visited {
			// The visit was recorded; pick it up so the cache matches the server.
			if refreshErr := t.refreshProgress(ctx); refreshErr != nil {
				log.Err(refreshErr).Str("product", t.productID).Msg("Failed to refresh progress after a failed update")
			}
		}
		return existing.IsCompleted, errors.Wrap(err, "[Tracker.ToggleCompletion] update progress")
	}
	if err := t.refreshProgress(ctx); err != nil {
		return completed, errors.Wrap(err, "[Tracker.ToggleCompletion] refresh progress")
	}

	log.Debug().Str("product", t.productID).Str("section", sectionID).Bool("completed", completed).Msg("section completion toggled")
	return completed, nil
}

// ToggleBookmark creates or deletes the customer's bookmark on the section
// and returns whether it is bookmarked afterwards.
func (t *Tracker) ToggleBookmark(ctx context.Context, sectionID string) (bool, error) {
	if err := t.checkSection(sectionID); err != nil {
		return false, err
	}

	if !t.IsBookmarked(sectionID) {
		if _, err := t.backend.CreateBookmark(ctx, api.BookmarkInput{SectionID: sectionID}); err != nil {
			return false, errors.Wrap(err, "[Tracker.ToggleBookmark] create")
		}
		t.lock.Lock()
		t.bookmarks[sectionID] = struct{}{}
		t.lock.Unlock()
		return true, nil
	}

	bookmarkID, err := t.findBookmark(ctx, sectionID)
	switch {
	case errors.Is(err, sferrors.ErrBookmarkMissing):
		log.Warn().Str("product", t.productID).Str("section", sectionID).Msg("Bookmark already removed on the server")
	case err != nil:
		return true, errors.Wrap(err, "[Tracker.ToggleBookmark] look up")
	default:
		if err := t.backend.DeleteBookmark(ctx, bookmarkID); err != nil {
			return true, errors.Wrap(err, "[Tracker.ToggleBookmark] delete")
		}
	}

	t.lock.Lock()
	delete(t.bookmarks, sectionID)
	t.lock.Unlock()
	return false, nil
}

func (t *Tracker) findBookmark(ctx context.Context, sectionID string) (string, error) {
	bookmarks, err := t.backend.ProductBookmarks(ctx, t.productID)
	if err != nil {
		return "", err
	}
	for _, b := range bookmarks {
		if b.SectionID == sectionID {
			return b.ID, nil
		}
	}
	return "", sferrors.ErrBookmarkMissing
}

// CompletionPercentage is the rounded share of the book's sections that are
// completed. A book without sections is 0.
func (t *Tracker) CompletionPercentage() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	total := len(t.sections)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, s := range t.sections {
		if p, ok := t.progress[s.ID]; ok && p.IsCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func (t *Tracker) Structure() *api.EbookStructure {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.structure
}

// Sections lists every section in reading order.
func (t *Tracker) Sections() []api.Section {
	t.lock.RLock()
	defer t.lock.RUnlock()
	out := make([]api.Section, len(t.sections))
	copy(out, t.sections)
	return out
}

func (t *Tracker) Progress(sectionID string) (api.Progress, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	p, ok := t.progress[sectionID]
	return p, ok
}

func (t *Tracker) State(sectionID string) SectionState {
	p, ok := t.Progress(sectionID)
	switch {
	case !ok:
		return Unvisited
	case p.IsCompleted:
		return Completed
	default:
		return Visited
	}
}

func (t *Tracker) IsBookmarked(sectionID string) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	_, ok := t.bookmarks[sectionID]
	return ok
}

// Current is the selected section with its content, nil before a selection.
func (t *Tracker) Current() *api.Section {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.current
}

// Next is the section after the current one in reading order, nil at the end
// or before a selection.
func (t *Tracker) Next() *api.Section {
	return t.neighbour(1)
}

func (t *Tracker) Previous() *api.Section {
	return t.neighbour(-1)
}

func (t *Tracker) neighbour(step int) *api.Section {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.current == nil {
		return nil
	}
	for i, s := range t.sections {
		if s.ID != t.current.ID {
			continue
		}
		j := i + step
		if j < 0 || j >= len(t.sections) {
			return nil
		}
		next := t.sections[j]
		return &next
	}
	return nil
}

func (t *Tracker) checkSection(sectionID string) error {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.structure == nil {
		return sferrors.ErrNotLoaded
	}
	for _, s := range t.sections {
		if s.ID == sectionID {
			return nil
		}
	}
	return errors.Wrapf(sferrors.ErrUnknownSection, "section %q", sectionID)
}

func (t *Tracker) refreshProgress(ctx context.Context) error {
	progress, err := t.backend.ProductProgress(ctx, t.productID)
	if err != nil {
		return err
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.setProgress(progress)
	return nil
}

func (t *Tracker) setProgress(progress []api.Progress) {
	t.progress = make(map[string]api.Progress, len(progress))
	for _, p := range progress {
		t.progress[p.SectionID] = p
	}
}

func flatten(structure *api.EbookStructure) []api.Section {
	if structure == nil {
		return nil
	}
	var out []api.Section
	for _, c := range structure.Chapters {
		out = append(out, c.Sections...)
	}
	return out
}

// SectionView is one entry of a View.
type SectionView struct {
	ID         string       `json:"id" yaml:"id"`
	ChapterID  string       `json:"chapter_id" yaml:"chapter_id"`
	Title      string       `json:"title" yaml:"title"`
	State      SectionState `json:"state" yaml:"state"`
	Bookmarked bool         `json:"bookmarked" yaml:"bookmarked"`
}

// View is a snapshot of the reader for display.
type View struct {
	ProductID    string        `json:"product_id" yaml:"product_id"`
	ProductTitle string        `json:"product_title" yaml:"product_title"`
	Percentage   int           `json:"percentage" yaml:"percentage"`
	CurrentID    string        `json:"current_section_id,omitempty" yaml:"current_section_id,omitempty"`
	Sections     []SectionView `json:"sections" yaml:"sections"`
}

func (t *Tracker) View() View {
	view := View{ProductID: t.productID, Percentage: t.CompletionPercentage()}
	if s := t.Structure(); s != nil {
		view.ProductTitle = s.ProductTitle
	}
	if c := t.Current(); c != nil {
		view.CurrentID = c.ID
	}
	sections := t.Sections()
	view.Sections = make([]SectionView, 0, len(sections))
	for _, s := range sections {
		view.Sections = append(view.Sections, SectionView{
			ID:         s.ID,
			ChapterID:  s.ChapterID,
			Title:      s.Title,
			State:      t.State(s.ID),
			Bookmarked: t.IsBookmarked(s.ID),
		})
	}
	return view
}
