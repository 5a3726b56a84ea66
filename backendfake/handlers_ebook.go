package backendfake

import (
	"net/http"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/api"
)

const (
	detailNotPurchased    = "You need to purchase this product first"
	detailChapterNotFound = "Chapter not found"
	detailSectionNotFound = "Section not found"
)

// sectionsOf returns chapterID's sections in reading order.
func (b *Backend) sectionsOf(chapterID string, publishedOnly bool) []api.Section {
	out := make([]api.Section, 0)
	for _, s := range b.sections {
		if s.ChapterID == chapterID && (!publishedOnly || s.IsPublished) {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (b *Backend) chaptersOf(productID string, publishedOnly bool) []api.Chapter {
	out := make([]api.Chapter, 0)
	for _, c := range b.chapters {
		if c.ProductID == productID && (!publishedOnly || c.IsPublished) {
			chapter := *c
			chapter.Sections = b.sectionsOf(c.ID, publishedOnly)
			out = append(out, chapter)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (b *Backend) productOfSection(sectionID string) string {
	s := b.section(sectionID)
	if s == nil {
		return ""
	}
	if c := b.chapter(s.ChapterID); c != nil {
		return c.ProductID
	}
	return ""
}

func (b *Backend) handleEbookStructure(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	p := b.product(r.PathValue("id"))
	if p == nil {
		writeDetail(w, http.StatusNotFound, detailProductNotFound)
		return
	}
	if !b.hasPurchased(claimsFrom(r).Subject, p.ID) {
		writeDetail(w, http.StatusForbidden, detailNotPurchased)
		return
	}
	writeJSON(w, http.StatusOK, api.EbookStructure{
		ProductID:    p.ID,
		ProductTitle: p.Title,
		Chapters:     b.chaptersOf(p.ID, true),
	})
}

func (b *Backend) handleSectionContent(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	s := b.section(r.PathValue("id"))
	if s == nil {
		writeDetail(w, http.StatusNotFound, detailSectionNotFound)
		return
	}
	if !s.IsFree && !b.hasPurchased(claimsFrom(r).Subject, b.productOfSection(s.ID)) {
		writeDetail(w, http.StatusForbidden, detailNotPurchased)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleUpdateProgress overwrites the stored record unconditionally.
func (b *Backend) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var in api.ProgressUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	customerID := claimsFrom(r).Subject
	now := b.now()
	for _, p := range b.progress {
		if p.CustomerID == customerID && p.SectionID == in.SectionID {
			p.IsCompleted = in.IsCompleted
			p.ReadingProgress = in.ReadingProgress
			p.LastReadAt = now
			p.UpdatedAt = &now
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	record := &api.Progress{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		SectionID:       in.SectionID,
		IsCompleted:     in.IsCompleted,
		ReadingProgress: in.ReadingProgress,
		LastReadAt:      now,
		CreatedAt:       now,
	}
	b.progress = append(b.progress, record)
	writeJSON(w, http.StatusOK, record)
}

func (b *Backend) handleProductProgress(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	customerID := claimsFrom(r).Subject
	out := make([]api.Progress, 0)
	for _, p := range b.progress {
		if p.CustomerID == customerID && b.productOfSection(p.SectionID) == r.PathValue("id") {
			out = append(out, *p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var in api.BookmarkInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	bookmark := &api.Bookmark{
		ID:         uuid.NewString(),
		CustomerID: claimsFrom(r).Subject,
		SectionID:  in.SectionID,
		Note:       in.Note,
		Position:   in.Position,
		CreatedAt:  b.now(),
	}
	b.bookmarks = append(b.bookmarks, bookmark)
	writeJSON(w, http.StatusOK, bookmark)
}

func (b *Backend) handleProductBookmarks(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	customerID := claimsFrom(r).Subject
	out := make([]api.Bookmark, 0)
	for _, bm := range b.bookmarks {
		if bm.CustomerID == customerID && b.productOfSection(bm.SectionID) == r.PathValue("id") {
			out = append(out, *bm)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	customerID := claimsFrom(r).Subject
	before := len(b.bookmarks)
	b.bookmarks = slices.DeleteFunc(b.bookmarks, func(bm *api.Bookmark) bool {
		return bm.ID == r.PathValue("id") && bm.CustomerID == customerID
	})
	if len(b.bookmarks) == before {
		writeDetail(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) ownsProduct(r *http.Request, productID string) bool {
	p := b.product(productID)
	return p != nil && p.InstructorID == claimsFrom(r).Subject
}

func (b *Backend) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	var in api.ChapterInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.ownsProduct(r, in.ProductID) {
		writeDetail(w, http.StatusNotFound, "Product not found or not owned by instructor")
		return
	}
	chapter := &api.Chapter{
		ID:          uuid.NewString(),
		ProductID:   in.ProductID,
		IsPublished: true,
		CreatedAt:   b.now(),
	}
	applyChapterInput(chapter, in)
	b.chapters = append(b.chapters, chapter)
	writeJSON(w, http.StatusOK, chapter)
}

func applyChapterInput(c *api.Chapter, in api.ChapterInput) {
	setIf(&c.Title, in.Title)
	setIf(&c.OrderIndex, in.OrderIndex)
	setIf(&c.IsPublished, in.IsPublished)
	setPtrIf(&c.Description, in.Description)
}

func (b *Backend) handleProductChapters(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if !b.ownsProduct(r, r.PathValue("id")) {
		writeDetail(w, http.StatusNotFound, "Product not found or not owned by instructor")
		return
	}
	writeJSON(w, http.StatusOK, b.chaptersOf(r.PathValue("id"), false))
}

func (b *Backend) ownedChapter(w http.ResponseWriter, r *http.Request, chapterID string) *api.Chapter {
	c := b.chapter(chapterID)
	if c == nil || !b.ownsProduct(r, c.ProductID) {
		writeDetail(w, http.StatusNotFound, detailChapterNotFound)
		return nil
	}
	return c
}

func (b *Backend) handleUpdateChapter(w http.ResponseWriter, r *http.Request) {
	var in api.ChapterInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	c := b.ownedChapter(w, r, r.PathValue("id"))
	if c == nil {
		return
	}
	applyChapterInput(c, in)
	updated := b.now()
	c.UpdatedAt = &updated
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	c := b.ownedChapter(w, r, r.PathValue("id"))
	if c == nil {
		return
	}
	b.chapters = slices.DeleteFunc(b.chapters, func(candidate *api.Chapter) bool { return candidate.ID == c.ID })
	b.sections = slices.DeleteFunc(b.sections, func(s *api.Section) bool { return s.ChapterID == c.ID })
	w.WriteHeader(http.StatusNoContent)
}

func applySectionInput(s *api.Section, in api.SectionInput) {
	setIf(&s.Title, in.Title)
	setIf(&s.OrderIndex, in.OrderIndex)
	setIf(&s.IsPublished, in.IsPublished)
	setIf(&s.IsFree, in.IsFree)
	setPtrIf(&s.ContentHTML, in.ContentHTML)
	setPtrIf(&s.ReadingTime, in.ReadingTime)
	if in.Content != nil {
		s.Content = in.Content
	}
}

func (b *Backend) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var in api.SectionInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if b.ownedChapter(w, r, in.ChapterID) == nil {
		return
	}
	section := &api.Section{
		ID:          uuid.NewString(),
		ChapterID:   in.ChapterID,
		IsPublished: true,
		CreatedAt:   b.now(),
	}
	applySectionInput(section, in)
	b.sections = append(b.sections, section)
	writeJSON(w, http.StatusOK, section)
}

func (b *Backend) ownedSection(w http.ResponseWriter, r *http.Request) *api.Section {
	s := b.section(r.PathValue("id"))
	if s == nil || !b.ownsProduct(r, b.productOfSection(s.ID)) {
		writeDetail(w, http.StatusNotFound, detailSectionNotFound)
		return nil
	}
	return s
}

func (b *Backend) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var in api.SectionInput
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	s := b.ownedSection(w, r)
	if s == nil {
		return
	}
	applySectionInput(s, in)
	updated := b.now()
	s.UpdatedAt = &updated
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	s := b.ownedSection(w, r)
	if s == nil {
		return
	}
	b.sections = slices.DeleteFunc(b.sections, func(candidate *api.Section) bool { return candidate.ID == s.ID })
	w.WriteHeader(http.StatusNoContent)
}
