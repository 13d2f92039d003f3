package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

func seedTrack(id, name, artistName string) domain.SeedTrack {
	return domain.SeedTrack{
		ID:      id,
		URI:     "uri:" + id,
		Name:    name,
		Artists: []domain.ArtistRef{{ID: "art-" + id, Name: artistName}},
	}
}

func TestVibeEngine_InferVibe(t *testing.T) {
	tests := []struct {
		name        string
		tags        map[string][]string
		tracks      []domain.SeedTrack
		wantMood    domain.Mood
		wantSubMood string
	}{
		{
			name:     "melancholic from sad tags",
			tags:     map[string][]string{"artist a|song one": {"sad", "indie", "melancholy"}},
			tracks:   []domain.SeedTrack{seedTrack("t1", "Song One", "Artist A")},
			wantMood: domain.MoodMelancholic,
		},
		{
			name:     "melancholic outranks party when both present",
			tags:     map[string][]string{"artist a|song one": {"party", "sad", "dance"}},
			tracks:   []domain.SeedTrack{seedTrack("t1", "Song One", "Artist A")},
			wantMood: domain.MoodMelancholic,
		},
		{
			name:     "party without sadness",
			tags:     map[string][]string{"artist a|song one": {"club", "dance", "edm"}},
			tracks:   []domain.SeedTrack{seedTrack("t1", "Song One", "Artist A")},
			wantMood: domain.MoodParty,
		},
		{
			name:        "sub mood detected inside winning mood",
			tags:        map[string][]string{"artist a|song one": {"sad", "shoegaze", "dream pop"}},
			tracks:      []domain.SeedTrack{seedTrack("t1", "Song One", "Artist A")},
			wantMood:    domain.MoodMelancholic,
			wantSubMood: "dreamy",
		},
		{
			name:     "no keyword hit stays neutral",
			tags:     map[string][]string{"artist a|song one": {"seen live", "favorites"}},
			tracks:   []domain.SeedTrack{seedTrack("t1", "Song One", "Artist A")},
			wantMood: domain.MoodNeutral,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewVibeEngine(newTestTagSource(&mockTagGateway{topTags: tc.tags}), nopLogger())
			got := engine.InferVibe(context.Background(), tc.tracks)
			assert.Equal(t, tc.wantMood, got.Mood)
			assert.Equal(t, tc.wantSubMood, got.SubMood)
		})
	}
}

func TestVibeEngine_InferVibe_NoTags(t *testing.T) {
	engine := NewVibeEngine(newTestTagSource(&mockTagGateway{}), nopLogger())
	got := engine.InferVibe(context.Background(), []domain.SeedTrack{seedTrack("t1", "Song", "Artist")})
	assert.Equal(t, domain.MoodNeutral, got.Mood)
	assert.Equal(t, 20, got.Confidence)
	assert.Empty(t, got.Tags)
}

func TestVibeEngine_InferVibe_GatewayFailureDegrades(t *testing.T) {
	engine := NewVibeEngine(newTestTagSource(&mockTagGateway{err: errors.New("down")}), nopLogger())
	got := engine.InferVibe(context.Background(), []domain.SeedTrack{seedTrack("t1", "Song", "Artist")})
	assert.Equal(t, domain.MoodNeutral, got.Mood)
	assert.Equal(t, 20, got.Confidence)
}

func TestVibeEngine_InferVibe_ConfidenceScalesWithTags(t *testing.T) {
	few := NewVibeEngine(newTestTagSource(&mockTagGateway{
		topTags: map[string][]string{"a|s": {"sad", "indie"}},
	}), nopLogger())
	many := NewVibeEngine(newTestTagSource(&mockTagGateway{
		topTags: map[string][]string{"a|s": {"sad", "indie", "rock", "slowcore", "90s", "alternative"}},
	}), nopLogger())

	track := []domain.SeedTrack{{ID: "t", Name: "S", Artists: []domain.ArtistRef{{Name: "A"}}}}
	pFew := few.InferVibe(context.Background(), track)
	pMany := many.InferVibe(context.Background(), track)

	assert.Equal(t, 30, pFew.Confidence)
	assert.Equal(t, 90, pMany.Confidence)
	assert.GreaterOrEqual(t, pFew.Confidence, 20)
	assert.LessOrEqual(t, pMany.Confidence, 90)
}

func TestVibeEngine_InferVibe_PoolsAtMostThreeTracks(t *testing.T) {
	tags := map[string][]string{
		"a1|s1": {"sad"},
		"a2|s2": {"sad"},
		"a3|s3": {"sad"},
		"a4|s4": {"party", "party", "party"},
	}
	engine := NewVibeEngine(newTestTagSource(&mockTagGateway{topTags: tags}), nopLogger())
	tracks := []domain.SeedTrack{
		{ID: "1", Name: "S1", Artists: []domain.ArtistRef{{Name: "A1"}}},
		{ID: "2", Name: "S2", Artists: []domain.ArtistRef{{Name: "A2"}}},
		{ID: "3", Name: "S3", Artists: []domain.ArtistRef{{Name: "A3"}}},
		{ID: "4", Name: "S4", Artists: []domain.ArtistRef{{Name: "A4"}}},
	}
	got := engine.InferVibe(context.Background(), tracks)
	assert.Equal(t, domain.MoodMelancholic, got.Mood, "fourth track's tags must not participate")
}

func TestRankTags(t *testing.T) {
	ranked := rankTags(map[string]int{"indie": 2, "rock": 3, "ambient": 2, "pop": 1})
	assert.Equal(t, []string{"rock", "ambient", "indie", "pop"}, ranked)
}

func TestVibeEngine_FlagDetection(t *testing.T) {
	engine := NewVibeEngine(newTestTagSource(&mockTagGateway{
		topTags: map[string][]string{"a|s": {"acoustic", "folk", "instrumental"}},
	}), nopLogger())
	got := engine.InferVibe(context.Background(), []domain.SeedTrack{
		{ID: "t", Name: "S", Artists: []domain.ArtistRef{{Name: "A"}}},
	})
	assert.True(t, got.IsAcoustic)
	assert.True(t, got.IsInstrumental)
	assert.False(t, got.IsLoud)
}
