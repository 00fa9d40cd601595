// Package catalog provides the in-memory, read-only book catalog that feeds
// the filter engine, the search index, and the recommender.
package catalog

import (
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/polkabooks/polka-server/internal/domain"
	"github.com/polkabooks/polka-server/internal/media/covers"
)

//go:embed seed.json
var seedData []byte

// Catalog is a fixed-schema table of book records. It is immutable after
// load; all accessors are safe for concurrent readers.
type Catalog struct {
	books    []*domain.Book
	byID     map[int64]*domain.Book
	byGenre  map[string][]*domain.Book
	byAuthor map[string][]*domain.Book
}

// Options configures catalog loading.
type Options struct {
	// Path to a catalog JSON file. Empty means the embedded demo seed.
	Path string
	// CoverDir is the directory holding cover images. When set, a BlurHash
	// placeholder is computed for every cover that resolves on disk.
	CoverDir string
	Logger   *slog.Logger
}

// Load builds a catalog from the configured source.
// Rows without a positive unique id are dropped rather than failing the load.
func Load(opts Options) (*Catalog, error) {
	data := seedData
	source := "embedded seed"
	if opts.Path != "" {
		fileData, err := os.ReadFile(opts.Path) //#nosec G304 -- operator-supplied catalog path
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		data = fileData
		source = opts.Path
	}

	var books []*domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		byID:     make(map[int64]*domain.Book, len(books)),
		byGenre:  make(map[string][]*domain.Book),
		byAuthor: make(map[string][]*domain.Book),
	}

	dropped := 0
	for _, book := range books {
		if book.ID <= 0 || c.byID[book.ID] != nil {
			dropped++
			continue
		}
		c.books = append(c.books, book)
		c.byID[book.ID] = book
		if book.MainGenre != "" {
			c.byGenre[book.MainGenre] = append(c.byGenre[book.MainGenre], book)
		}
		if book.Author != "" {
			c.byAuthor[book.Author] = append(c.byAuthor[book.Author], book)
		}
	}

	// Natural catalog order is ascending id.
	slices.SortFunc(c.books, func(a, b *domain.Book) int {
		return int(a.ID - b.ID)
	})

	if opts.CoverDir != "" {
		resolver := covers.NewResolver(opts.CoverDir)
		for _, book := range c.books {
			book.CoverBlurhash = resolver.BlurHash(book.Cover)
		}
	}

	if opts.Logger != nil {
		opts.Logger.Info("catalog loaded",
			"source", source,
			"books", len(c.books),
			"dropped", dropped,
		)
	}
	return c, nil
}

// List returns all books in natural catalog order (ascending id).
// The returned slice must not be modified.
func (c *Catalog) List() []*domain.Book {
	return c.books
}

// Get returns the book with the given id, or nil if absent.
func (c *Catalog) Get(id int64) *domain.Book {
	return c.byID[id]
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}

// ByGenre returns the books of one main genre in catalog order.
// Index lookup, no scan; used by the recommender's inner loop.
func (c *Catalog) ByGenre(genre string) []*domain.Book {
	return c.byGenre[genre]
}

// ByAuthor returns the books of one author in catalog order.
func (c *Catalog) ByAuthor(author string) []*domain.Book {
	return c.byAuthor[author]
}
