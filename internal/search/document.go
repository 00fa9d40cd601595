// Package search provides full-text search over the book catalog using
// Bleve. The catalog is small and reloaded wholesale, so the index lives
// entirely in memory and is rebuilt on every catalog change.
package search

import (
	"strconv"

	"github.com/polkabooks/polka-server/internal/domain"
)

// Document is the indexed representation of one book.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	MainGenre   string   `json:"main_genre,omitempty"`
	SubGenre    string   `json:"sub_genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve would otherwise index Go field names.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":     d.ID,
		"title":  d.Title,
		"author": d.Author,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.MainGenre != "" {
		m["main_genre"] = d.MainGenre
	}
	if d.SubGenre != "" {
		m["sub_genre"] = d.SubGenre
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// FromBook converts a catalog book to its indexed form.
func FromBook(book *domain.Book) *Document {
	return &Document{
		ID:          strconv.FormatInt(book.ID, 10),
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		MainGenre:   book.MainGenre,
		SubGenre:    book.SubGenre,
		Tags:        book.Tags,
		Year:        book.Year,
		Rating:      book.Rating,
	}
}
