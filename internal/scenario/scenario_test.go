package scenario

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/robalobadob/overland/apps/go-server/internal/atlas"
)

func worldIndex(t testing.TB) *atlas.Index {
	t.Helper()
	g, err := atlas.Load("", atlas.Options{})
	require.NoError(t, err)
	return atlas.NewIndex(g)
}

func TestRandom_SolvableOnWorld(t *testing.T) {
	ix := worldIndex(t)

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		gen := NewWithRand(ix, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))

		sc, err := gen.Random()
		if err != nil {
			t.Fatalf("random: %v", err)
		}
		if sc.Start == sc.Goal {
			t.Fatalf("start == goal == %s", sc.Start)
		}
		cs, _ := ix.ComponentOf(sc.Start)
		cg, _ := ix.ComponentOf(sc.Goal)
		if cs != cg {
			t.Fatalf("%s and %s are in different components", sc.Start, sc.Goal)
		}
		if !ix.IsPlayable(sc.Start) {
			t.Fatalf("start %s is not playable", sc.Start)
		}
	})
}

func TestRandom_NeverPicksIsland(t *testing.T) {
	g, err := atlas.NewGraph(map[string][]string{
		"GBR": {"IRL"},
		"IRL": {"GBR"},
		"JPN": {},
		"ISL": {},
	}, atlas.Options{})
	require.NoError(t, err)
	gen := NewWithRand(atlas.NewIndex(g), rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 50; i++ {
		sc, err := gen.Random()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GBR", "IRL"}, []string{sc.Start, sc.Goal})
	}
}

func TestRandom_NoPlayable(t *testing.T) {
	g, err := atlas.NewGraph(map[string][]string{"JPN": {}, "ISL": {}}, atlas.Options{})
	require.NoError(t, err)

	_, err = New(atlas.NewIndex(g)).Random()
	assert.ErrorIs(t, err, ErrNoPlayable)
}

// brokenIndex claims countries are playable but reports no peers.
type brokenIndex struct{ calls int }

func (b *brokenIndex) Playable() []string { return []string{"AAA", "BBB"} }
func (b *brokenIndex) Peers(string) []string {
	b.calls++
	return nil
}

func TestRandom_RetryCap(t *testing.T) {
	idx := &brokenIndex{}
	gen := NewWithRand(idx, rand.New(rand.NewPCG(7, 7)))
	gen.MaxAttempts = 4

	_, err := gen.Random()
	assert.ErrorIs(t, err, ErrNoScenario)
	assert.Equal(t, 4, idx.calls)
}

// flakyIndex has no peers for AAA only.
type flakyIndex struct{}

func (flakyIndex) Playable() []string { return []string{"AAA", "BBB", "CCC"} }
func (flakyIndex) Peers(id string) []string {
	switch id {
	case "BBB":
		return []string{"CCC"}
	case "CCC":
		return []string{"BBB"}
	}
	return nil
}

func TestRandom_RetriesPastBrokenStart(t *testing.T) {
	gen := NewWithRand(flakyIndex{}, rand.New(rand.NewPCG(3, 4)))
	gen.MaxAttempts = 200
	for i := 0; i < 30; i++ {
		sc, err := gen.Random()
		require.NoError(t, err)
		assert.NotEqual(t, "AAA", sc.Start)
		assert.NotEqual(t, sc.Start, sc.Goal)
	}
}
