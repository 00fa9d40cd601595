package domain

// Candidate is one scored recommendation entry. Candidates are created fresh
// per request and never persisted. The matched attribute sets explain why the
// book scored (shown as "recommended because ..." chips in the client).
type Candidate struct {
	Book  *Book   `json:"book"`
	Score float64 `json:"score"`

	MatchedTags   []string `json:"matched_tags,omitempty"`
	MatchedTropes []string `json:"matched_tropes,omitempty"`
	MatchedMoods  []string `json:"matched_moods,omitempty"`
}
