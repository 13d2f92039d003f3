package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// moodKeywords are evaluated in fixed priority order: the first set with a
// hit among the top tags wins. A track tagged both "sad" and "party" always
// resolves to melancholic; the ordering is deliberate and load-bearing.
var moodOrder = []domain.Mood{
	domain.MoodMelancholic,
	domain.MoodParty,
	domain.MoodChill,
	domain.MoodUpbeat,
	domain.MoodAggressive,
}

var moodKeywords = map[domain.Mood][]string{
	domain.MoodMelancholic: {"sad", "melancholy", "melancholic", "heartbreak", "sorrow", "somber", "slowcore", "depressive", "lonely", "bittersweet"},
	domain.MoodParty:       {"party", "dance", "club", "edm", "festival", "anthem", "banger"},
	domain.MoodChill:       {"chill", "chillout", "mellow", "relaxing", "ambient", "lofi", "downtempo", "dreamy"},
	domain.MoodUpbeat:      {"happy", "upbeat", "feel good", "feelgood", "summer", "energetic", "fun"},
	domain.MoodAggressive:  {"aggressive", "angry", "heavy", "hardcore", "metal", "punk", "intense"},
}

// subMoodKeywords is a secondary, mood-conditioned check over the same tags.
var subMoodKeywords = map[domain.Mood][]struct {
	name     string
	keywords []string
}{
	domain.MoodMelancholic: {
		{"dreamy", []string{"dream pop", "shoegaze", "ethereal", "atmospheric"}},
		{"dark", []string{"dark", "darkwave", "gothic", "doom"}},
	},
	domain.MoodParty: {
		{"electronic", []string{"edm", "house", "techno", "electro"}},
		{"retro", []string{"disco", "funk", "80s"}},
	},
	domain.MoodChill: {
		{"acoustic", []string{"acoustic", "folk", "singer-songwriter"}},
		{"electronic", []string{"ambient", "downtempo", "trip-hop"}},
	},
	domain.MoodUpbeat: {
		{"pop", []string{"pop", "synthpop", "indie pop"}},
	},
	domain.MoodAggressive: {
		{"metal", []string{"metal", "thrash", "doom"}},
		{"punk", []string{"punk", "hardcore"}},
	},
}

var profileFlagKeywords = map[string][]string{
	"acoustic":     {"acoustic", "unplugged", "folk", "singer-songwriter"},
	"fast":         {"fast", "uptempo", "speed", "dance", "punk"},
	"loud":         {"loud", "heavy", "noise", "metal"},
	"vocal":        {"vocal", "vocals", "soul", "singer", "a cappella"},
	"instrumental": {"instrumental", "post-rock", "ambient", "soundtrack"},
}

// VibeEngine derives a mood/sub-mood/tag profile from seed tracks using
// social tags as a heuristic substitute for audio analysis.
type VibeEngine struct {
	tags *tagSource
	log  zerolog.Logger
}

func NewVibeEngine(tags *tagSource, logger zerolog.Logger) *VibeEngine {
	return &VibeEngine{
		tags: tags,
		log:  logger.With().Str("component", "vibe").Logger(),
	}
}

// InferVibe builds a VibeProfile from one or more tracks. Single-track mode
// uses that track's top tags; playlist mode pools tags from up to the first
// three tracks. Tag lookups that fail degrade to "no tags for this track".
func (e *VibeEngine) InferVibe(ctx context.Context, tracks []domain.SeedTrack) domain.VibeProfile {
	pool := tracks
	if len(pool) > 3 {
		pool = pool[:3]
	}

	counts := make(map[string]int)
	total := 0
	for _, t := range pool {
		tags, err := e.tags.TopTags(ctx, t.PrimaryArtist().Name, t.Name)
		if err != nil {
			e.log.Debug().Err(err).Str("track", t.Name).Msg("tag lookup failed, skipping")
			continue
		}
		for _, tag := range tags {
			counts[tag]++
			total++
		}
	}

	if total == 0 {
		return domain.VibeProfile{Mood: domain.MoodNeutral, Confidence: 20}
	}

	ranked := rankTags(counts)
	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}

	mood := detectMood(top)
	profile := domain.VibeProfile{
		Mood:           mood,
		SubMood:        detectSubMood(mood, ranked),
		Tags:           ranked,
		IsAcoustic:     anyTagMatches(ranked, profileFlagKeywords["acoustic"]),
		IsFast:         anyTagMatches(ranked, profileFlagKeywords["fast"]),
		IsLoud:         anyTagMatches(ranked, profileFlagKeywords["loud"]),
		IsVocal:        anyTagMatches(ranked, profileFlagKeywords["vocal"]),
		IsInstrumental: anyTagMatches(ranked, profileFlagKeywords["instrumental"]),
		Confidence:     clampConfidence(total * 15),
	}

	e.log.Debug().
		Str("mood", string(profile.Mood)).
		Str("sub_mood", profile.SubMood).
		Int("confidence", profile.Confidence).
		Int("tags", total).
		Msg("vibe inferred")
	return profile
}

// rankTags orders tags by descending frequency, ties alphabetically so the
// ranking is stable across runs.
func rankTags(counts map[string]int) []string {
	ranked := make([]string, 0, len(counts))
	for tag := range counts {
		ranked = append(ranked, tag)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// detectMood runs the sequential keyword-set membership tests. First
// matching set wins; no weighted voting.
func detectMood(topTags []string) domain.Mood {
	for _, mood := range moodOrder {
		if anyTagMatches(topTags, moodKeywords[mood]) {
			return mood
		}
	}
	return domain.MoodNeutral
}

func detectSubMood(mood domain.Mood, tags []string) string {
	for _, sub := range subMoodKeywords[mood] {
		if anyTagMatches(tags, sub.keywords) {
			return sub.name
		}
	}
	return ""
}

// anyTagMatches reports whether any tag contains any of the keywords.
func anyTagMatches(tags, keywords []string) bool {
	for _, tag := range tags {
		for _, kw := range keywords {
			if strings.Contains(tag, kw) {
				return true
			}
		}
	}
	return false
}

func clampConfidence(v int) int {
	if v < 20 {
		return 20
	}
	if v > 90 {
		return 90
	}
	return v
}
