package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for book documents.
// The catalog is Russian-language, so text fields use the Russian analyzer
// for stemming; tags and genres are kept as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = ru.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Title is the primary search target.
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = ru.AnalyzerName
	titleField.Store = true
	titleField.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleField)

	authorField := bleve.NewTextFieldMapping()
	authorField.Analyzer = ru.AnalyzerName
	authorField.Store = true
	authorField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorField)

	// Description is searchable but not stored.
	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = ru.AnalyzerName
	descField.Store = false
	docMapping.AddFieldMappingsAt("description", descField)

	// ID is stored but not analyzed.
	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	idField.Store = true
	docMapping.AddFieldMappingsAt("id", idField)

	// Tags are exact-match keywords; the keyword analyzer keeps compound
	// values like "становление героя" intact.
	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = keyword.Name
	tagsField.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsField)

	mainGenreField := bleve.NewTextFieldMapping()
	mainGenreField.Analyzer = keyword.Name
	mainGenreField.Store = true
	docMapping.AddFieldMappingsAt("main_genre", mainGenreField)

	subGenreField := bleve.NewTextFieldMapping()
	subGenreField.Analyzer = keyword.Name
	subGenreField.Store = true
	docMapping.AddFieldMappingsAt("sub_genre", subGenreField)

	yearField := bleve.NewNumericFieldMapping()
	yearField.Store = true
	docMapping.AddFieldMappingsAt("year", yearField)

	ratingField := bleve.NewNumericFieldMapping()
	ratingField.Store = true
	docMapping.AddFieldMappingsAt("rating", ratingField)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
