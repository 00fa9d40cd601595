// Package filter implements the hierarchical book filter engine: a dependent
// filter-option tree derived from the catalog plus predicate evaluation over
// a set of active selections. The engine never fails on malformed data;
// malformed rows simply drop out of the affected predicate or option set.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/polkabooks/polka-server/internal/domain"
)

// Engine evaluates filters against a fixed catalog snapshot. The only
// mutable state is the option cache inside the filter tree, updated by
// Refine; Apply and Describe are pure. The engine itself is not safe for
// concurrent Refine calls - callers serialize access (see service layer).
type Engine struct {
	books []*domain.Book
	tree  []*FilterNode
	coll  *collate.Collator
}

// New builds an engine over the catalog rows. The hierarchy is constructed
// once with the full option set for the root genre node and empty dependent
// nodes, then refined with no active selections so every node starts with
// its widest options.
func New(books []*domain.Book) *Engine {
	e := &Engine{
		books: books,
		tree:  newHierarchy(),
		// Option labels are Russian; code-point order misplaces ё.
		coll: collate.New(language.Russian),
	}

	root := findNode(e.tree, KeyMainGenre)
	root.Options = e.distinctScalar(books, KeyMainGenre)

	e.Refine(NewSelections())
	return e
}

// Tree returns the filter hierarchy with its current option sets.
// The returned nodes must not be modified by callers.
func (e *Engine) Tree() []*FilterNode {
	return e.tree
}

// Refine recomputes the option sets of every dependent node from the full
// catalog narrowed by the currently active scalar and multi selections.
// Min-rating and age-range selections are not catalog columns and never
// narrow options. Because refinement always starts from the full catalog,
// dropping a selection widens the resulting option sets.
func (e *Engine) Refine(sel Selections) {
	rows := e.applyColumns(e.books, sel)

	walk(e.tree, func(n *FilterNode) {
		if !n.dependent {
			return
		}
		if n.Key == KeyCharacterAge {
			n.AgeOptions = extractAgeOptions(rows)
			return
		}
		if isListKey(n.Key) {
			n.Options = e.distinctListElements(rows, n.Key)
			return
		}
		n.Options = e.distinctScalar(rows, n.Key)
	})
}

// Apply evaluates each selection independently and intersects the results
// (AND across keys). The result preserves catalog order and is always a
// subset of the input rows; empty selections return the catalog unchanged.
func (e *Engine) Apply(sel Selections) []*domain.Book {
	rows := e.applyColumns(e.books, sel)

	if sel.MinRating > 0 {
		rows = keep(rows, func(b *domain.Book) bool {
			return b.Rating >= sel.MinRating
		})
	}

	if sel.AgeRange != nil {
		lo, hi := sel.AgeRange.Min, sel.AgeRange.Max
		rows = keep(rows, func(b *domain.Book) bool {
			interval, ok := domain.ParseAgeInterval(b.CharacterAge)
			// Unparsable or missing ages never match a range filter.
			return ok && interval.Intersects(lo, hi)
		})
	}

	return rows
}

// applyColumns narrows rows by the scalar and multi selections only.
// Unknown keys and empty values are ignored (no constraint).
func (e *Engine) applyColumns(rows []*domain.Book, sel Selections) []*domain.Book {
	for key, value := range sel.Scalar {
		if value == "" {
			continue
		}
		if !isScalarKey(key) {
			continue
		}
		k, v := key, value
		rows = keep(rows, func(b *domain.Book) bool {
			got, _ := scalarField(b, k)
			return got == v
		})
	}

	for key, values := range sel.Multi {
		if len(values) == 0 {
			continue
		}
		k, vs := key, values
		if isListKey(key) {
			rows = keep(rows, func(b *domain.Book) bool {
				list, _ := listField(b, k)
				return domain.HasAnyOf(list, vs)
			})
			continue
		}
		if isScalarKey(key) {
			rows = keep(rows, func(b *domain.Book) bool {
				got, _ := scalarField(b, k)
				return slices.Contains(vs, got)
			})
		}
		// Unknown key: ignored.
	}

	return rows
}

// Describe renders a stable, human-readable summary of the active filters,
// one fragment per recognized key joined by " | ". Unrecognized keys are
// silently omitted; empty selections produce an empty string.
func (e *Engine) Describe(sel Selections) string {
	var fragments []string
	add := func(label string, key Key) {
		if v := sel.Scalar[key]; v != "" {
			fragments = append(fragments, label+": "+v)
		}
	}

	add("Жанр", KeyMainGenre)
	add("Поджанр", KeySubGenre)

	if sel.AgeRange != nil {
		fragments = append(fragments,
			fmt.Sprintf("Возраст героя: %d-%d лет", sel.AgeRange.Min, sel.AgeRange.Max))
	} else {
		add("Возраст героя", KeyCharacterAge)
	}

	add("Пол", KeyCharacterGender)
	add("Профессия", KeyCharacterProfession)
	add("Место", KeySettingLocation)
	add("Время", KeySettingTimePeriod)

	return strings.Join(fragments, " | ")
}

// distinctScalar collects the sorted distinct non-empty values of a scalar
// column across rows.
func (e *Engine) distinctScalar(rows []*domain.Book, key Key) []string {
	seen := make(map[string]bool)
	var options []string
	for _, b := range rows {
		v, _ := scalarField(b, key)
		if v != "" && !seen[v] {
			seen[v] = true
			options = append(options, v)
		}
	}
	e.coll.SortStrings(options)
	return options
}

// distinctListElements collects the sorted union of elements of a
// list-valued column across rows.
func (e *Engine) distinctListElements(rows []*domain.Book, key Key) []string {
	seen := make(map[string]bool)
	var options []string
	for _, b := range rows {
		list, _ := listField(b, key)
		for _, v := range list {
			if v != "" && !seen[v] {
				seen[v] = true
				options = append(options, v)
			}
		}
	}
	e.coll.SortStrings(options)
	return options
}

// extractAgeOptions builds the numeric slider scale from the parseable ages
// of the surviving rows, falling back to the default ladder when none parse.
func extractAgeOptions(rows []*domain.Book) []int {
	seen := make(map[int]bool)
	var ages []int
	for _, b := range rows {
		interval, ok := domain.ParseAgeInterval(b.CharacterAge)
		if !ok {
			continue
		}
		for _, age := range interval.OptionPoints() {
			if !seen[age] {
				seen[age] = true
				ages = append(ages, age)
			}
		}
	}
	if len(ages) == 0 {
		return slices.Clone(domain.DefaultAgeOptions)
	}
	slices.Sort(ages)
	return ages
}

// keep filters rows by a predicate preserving order.
func keep(rows []*domain.Book, pred func(*domain.Book) bool) []*domain.Book {
	var out []*domain.Book
	for _, b := range rows {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}
