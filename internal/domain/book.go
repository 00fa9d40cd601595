// Package domain contains the core business entities and domain logic for the Polka book-discovery server.
package domain

import "slices"

// Book represents one catalog entry. Books are immutable after catalog load;
// ID is the only stable join key across the catalog, reading lists, and reviews.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	MainGenre   string  `json:"main_genre"`
	SubGenre    string  `json:"sub_genre"`
	Rating      float64 `json:"rating"`
	Year        int     `json:"year"`
	Pages       int     `json:"pages"`
	Description string  `json:"description"`

	// Cover is a relative path into the cover directory. The file may not
	// exist; callers must degrade gracefully (see media/covers).
	Cover         string `json:"cover_image,omitempty"`
	CoverBlurhash string `json:"cover_blurhash,omitempty"`

	Tags       []string `json:"tags,omitempty"`
	PlotTropes []string `json:"plot_tropes,omitempty"`
	Mood       []string `json:"mood,omitempty"`
	Themes     []string `json:"themes,omitempty"`
	Style      []string `json:"style,omitempty"`

	// Character and setting attributes. Empty string means absent.
	// CharacterAge is free text: a bare age ("25"), a range ("20-30"),
	// or an open-ended token ("40+"). See ParseAgeInterval.
	CharacterAge        string `json:"character_age,omitempty"`
	CharacterGender     string `json:"character_gender,omitempty"`
	CharacterProfession string `json:"character_profession,omitempty"`
	SettingLocation     string `json:"setting_location,omitempty"`
	SettingTimePeriod   string `json:"setting_time_period,omitempty"`
	SettingType         string `json:"setting_type,omitempty"`
	Pacing              string `json:"pacing,omitempty"`
}

// HasAnyOf reports whether list shares at least one element with want.
func HasAnyOf(list, want []string) bool {
	for _, w := range want {
		if slices.Contains(list, w) {
			return true
		}
	}
	return false
}

// Intersection returns the elements of list that are also in other,
// preserving list order. Nil and empty inputs yield an empty result.
func Intersection(list, other []string) []string {
	var common []string
	for _, v := range list {
		if slices.Contains(other, v) {
			common = append(common, v)
		}
	}
	return common
}
