package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is an ordered, mutable collection of captured pages. Page order is
// significant: it defines page numbering and export order. The document is a
// single-writer structure; callers must not mutate it from multiple
// goroutines concurrently.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Pages []*Page `json:"pages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument creates an empty document.
func NewDocument(name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendPage adds a page at the end and assigns it the next page number.
func (d *Document) AppendPage(p *Page) {
	p.PageNumber = len(d.Pages) + 1
	d.Pages = append(d.Pages, p)
	d.touch()
}

// Reorder moves the page at index from to index to and renumbers every page.
// Out-of-range or equal indices leave the document unchanged.
func (d *Document) Reorder(from, to int) {
	if from == to {
		return
	}
	if from < 0 || from >= len(d.Pages) || to < 0 || to >= len(d.Pages) {
		return
	}
	page := d.Pages[from]
	d.Pages = append(d.Pages[:from], d.Pages[from+1:]...)

	rest := append([]*Page(nil), d.Pages[to:]...)
	d.Pages = append(d.Pages[:to], page)
	d.Pages = append(d.Pages, rest...)

	d.renumber()
	d.touch()
}

// RemovePage removes the page with the given id and renumbers the remainder.
// Removing an unknown id is a no-op.
func (d *Document) RemovePage(pageID string) {
	for i, p := range d.Pages {
		if p.ID == pageID {
			d.Pages = append(d.Pages[:i], d.Pages[i+1:]...)
			d.renumber()
			d.touch()
			return
		}
	}
}

// PageByID returns the page with the given id, or nil.
func (d *Document) PageByID(pageID string) *Page {
	for _, p := range d.Pages {
		if p.ID == pageID {
			return p
		}
	}
	return nil
}

// Clear removes every page.
func (d *Document) Clear() {
	d.Pages = nil
	d.touch()
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

func (d *Document) renumber() {
	for i, p := range d.Pages {
		p.PageNumber = i + 1
	}
}

func (d *Document) touch() {
	d.UpdatedAt = time.Now().UTC()
}
