package domain

// Mood is the heuristic vibe classification derived from social tags. It
// substitutes for direct audio analysis.
type Mood string

const (
	MoodMelancholic Mood = "melancholic"
	MoodParty       Mood = "party"
	MoodChill       Mood = "chill"
	MoodUpbeat      Mood = "upbeat"
	MoodAggressive  Mood = "aggressive"
	MoodNeutral     Mood = "neutral"
)

// VibeProfile is the mood/tag profile inferred from one or more seed tracks.
// Built once per request and read-only after.
type VibeProfile struct {
	Mood           Mood     `json:"mood"`
	SubMood        string   `json:"sub_mood,omitempty"`
	Tags           []string `json:"tags"` // ranked by frequency
	IsAcoustic     bool     `json:"is_acoustic"`
	IsFast         bool     `json:"is_fast"`
	IsLoud         bool     `json:"is_loud"`
	IsVocal        bool     `json:"is_vocal"`
	IsInstrumental bool     `json:"is_instrumental"`
	Confidence     int      `json:"confidence"` // 20-90
}

// VibeSubgroup clusters seeds sharing a mood (and sub-mood). Only produced
// when the seed set is mood-heterogeneous.
type VibeSubgroup struct {
	Label       string   `json:"label"`
	Mood        Mood     `json:"mood"`
	SubMood     string   `json:"sub_mood,omitempty"`
	SeedIDs     []string `json:"seed_ids"`
	SeedArtists []string `json:"seed_artists"`
	Tags        []string `json:"tags"`
	Weight      float64  `json:"weight"` // seedsInGroup / totalSeeds
	MinYear     int      `json:"min_year"`
	MaxYear     int      `json:"max_year"`
}

// moodAdjacency lists, per mood, the moods considered compatible with it.
// A candidate whose inferred mood is outside the seed mood's row is treated
// as incompatible by the coarse scoring fallback and by section filtering.
var moodAdjacency = map[Mood][]Mood{
	MoodMelancholic: {MoodMelancholic, MoodChill, MoodNeutral},
	MoodParty:       {MoodParty, MoodUpbeat, MoodNeutral},
	MoodChill:       {MoodChill, MoodMelancholic, MoodNeutral},
	MoodUpbeat:      {MoodUpbeat, MoodParty, MoodChill, MoodNeutral},
	MoodAggressive:  {MoodAggressive, MoodParty, MoodNeutral},
	MoodNeutral:     {MoodMelancholic, MoodParty, MoodChill, MoodUpbeat, MoodAggressive, MoodNeutral},
}

// MoodsCompatible reports whether candidate mood b is adjacent to seed mood a.
func MoodsCompatible(a, b Mood) bool {
	for _, m := range moodAdjacency[a] {
		if m == b {
			return true
		}
	}
	return false
}
