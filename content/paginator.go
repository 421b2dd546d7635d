package content

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	ProjectsPerPage = 6
	BlogsPerPage    = 6
	GalleryPerPage  = 12
)

// Paginator splits Count rows into pages of PerPage rows.
type Paginator struct {
	Count   int64
	PerPage int
}

// NumPages is never below 1, an empty result still has one (empty) page.
func (p Paginator) NumPages() int {
	if p.Count <= 0 || p.PerPage <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Number turns a raw page parameter into a valid page number. Anything that
// does not parse is page 1, out of range values snap to the nearest page.
func (p Paginator) Number(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return 1
		}
		return p.NumPages()
	}
	if err != nil || n < 1 {
		return 1
	}
	if last := p.NumPages(); n > last {
		return last
	}
	return n
}

// Page is one page of a listing together with its pagination metadata.
type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	Count    int64
	NumPages int
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for page links.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// StartIndex is the 1-based position of the first item on the page, 0 when
// the listing is empty.
func (p *Page[T]) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64(p.Number-1)*int64(p.PerPage) + 1
}

func (p *Page[T]) EndIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return p.StartIndex() + int64(len(p.Items)) - 1
}

func paginate[T any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, order string, perPage int, raw string, preloads ...string) (*Page[T], error) {
	var count int64
	if err := db.Model(new(T)).Scopes(scope).Count(&count).Error; err != nil {
		return nil, err
	}

	paginator := Paginator{Count: count, PerPage: perPage}
	number := paginator.Number(raw)

	q := db.Model(new(T)).Scopes(scope)
	for _, name := range preloads {
		q = q.Preload(name)
	}

	var items []T
	err := q.Order(order).
		Limit(perPage).
		Offset((number - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		PerPage:  perPage,
		Count:    count,
		NumPages: paginator.NumPages(),
	}, nil
}
