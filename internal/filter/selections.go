package filter

import "github.com/polkabooks/polka-server/internal/domain"

// Key identifies one filterable catalog column.
type Key string

// Filterable columns. KeyCharacterAge doubles as the legacy single-value age
// filter; range filtering goes through Selections.AgeRange instead.
const (
	KeyMainGenre           Key = "main_genre"
	KeySubGenre            Key = "sub_genre"
	KeyCharacterAge        Key = "character_age"
	KeyCharacterGender     Key = "character_gender"
	KeyCharacterProfession Key = "character_profession"
	KeySettingLocation     Key = "setting_location"
	KeySettingTimePeriod   Key = "setting_time_period"
	KeySettingType         Key = "setting_type"
	KeyPacing              Key = "pacing"
	KeyTags                Key = "tags"
	KeyPlotTropes          Key = "plot_tropes"
	KeyMood                Key = "mood"
	KeyThemes              Key = "themes"
	KeyStyle               Key = "style"
)

// AgeRange is the inclusive slider range selected by the user.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Selections is the set of active filters for one query. It is transient:
// owned by the calling session and passed into the engine per call, the
// engine keeps no per-session state.
//
// Scalar keys match exactly; Multi keys match any of the selected values
// (OR within the key, AND across keys). Zero MinRating and nil AgeRange
// mean "no constraint".
type Selections struct {
	Scalar    map[Key]string   `json:"scalar,omitempty"`
	Multi     map[Key][]string `json:"multi,omitempty"`
	MinRating float64          `json:"min_rating,omitempty"`
	AgeRange  *AgeRange        `json:"character_age_range,omitempty"`
}

// NewSelections returns an empty selection set.
func NewSelections() Selections {
	return Selections{
		Scalar: make(map[Key]string),
		Multi:  make(map[Key][]string),
	}
}

// IsEmpty reports whether no filter is active.
func (s Selections) IsEmpty() bool {
	for _, v := range s.Scalar {
		if v != "" {
			return false
		}
	}
	for _, vs := range s.Multi {
		if len(vs) > 0 {
			return false
		}
	}
	return s.MinRating <= 0 && s.AgeRange == nil
}

// isScalarKey reports whether the key names a scalar catalog column.
func isScalarKey(key Key) bool {
	_, ok := scalarField(&domain.Book{}, key)
	return ok
}

// isListKey reports whether the key names a list-valued catalog column.
func isListKey(key Key) bool {
	_, ok := listField(&domain.Book{}, key)
	return ok
}

// scalarField returns the value of a scalar column, or ok=false for keys
// that are not scalar columns (unknown keys, list columns, pseudo-keys).
func scalarField(b *domain.Book, key Key) (string, bool) {
	switch key {
	case KeyMainGenre:
		return b.MainGenre, true
	case KeySubGenre:
		return b.SubGenre, true
	case KeyCharacterAge:
		return b.CharacterAge, true
	case KeyCharacterGender:
		return b.CharacterGender, true
	case KeyCharacterProfession:
		return b.CharacterProfession, true
	case KeySettingLocation:
		return b.SettingLocation, true
	case KeySettingTimePeriod:
		return b.SettingTimePeriod, true
	case KeySettingType:
		return b.SettingType, true
	case KeyPacing:
		return b.Pacing, true
	default:
		return "", false
	}
}

// listField returns the value of a list-valued column, or ok=false for keys
// that are not list columns.
func listField(b *domain.Book, key Key) ([]string, bool) {
	switch key {
	case KeyTags:
		return b.Tags, true
	case KeyPlotTropes:
		return b.PlotTropes, true
	case KeyMood:
		return b.Mood, true
	case KeyThemes:
		return b.Themes, true
	case KeyStyle:
		return b.Style, true
	default:
		return nil, false
	}
}
