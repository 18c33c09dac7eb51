// services/ranks_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want string
	}{
		{-50, "Germoglio"},
		{0, "Germoglio"},
		{199, "Germoglio"},
		{200, "Cadetto"},
		{999, "Cadetto"},
		{1000, "Cavaliere"},
		{2200, "Guardiano"},
		{3800, "Campione"},
		{6000, "Leggenda"},
		{9000, "Maestro"},
		{13000, "GranMaestro"},
		{17999, "GranMaestro"},
		{18000, "Immortale"},
		{250000, "Immortale"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RankForXP(tc.xp).Name, "xp=%d", tc.xp)
	}
}

func TestNextRank(t *testing.T) {
	next := NextRank(0)
	require.NotNil(t, next)
	assert.Equal(t, "Cadetto", next.Name)

	next = NextRank(1000)
	require.NotNil(t, next)
	assert.Equal(t, "Guardiano", next.Name)

	assert.Nil(t, NextRank(18000))
}

func TestRankProgress(t *testing.T) {
	assert.InDelta(t, 0.0, RankProgress(0), 0.001)
	assert.InDelta(t, 0.5, RankProgress(100), 0.001)
	assert.InDelta(t, 1.0, RankProgress(18000), 0.001)
	assert.InDelta(t, 1.0, RankProgress(99999), 0.001)
}

func TestRankLadderMonotonic(t *testing.T) {
	ranks := AllRanks()
	require.NotEmpty(t, ranks)
	for i := 1; i < len(ranks); i++ {
		assert.Greater(t, ranks[i].MinXP, ranks[i-1].MinXP, "ladder must strictly increase")
	}
}

func TestRankIndexOrdersNames(t *testing.T) {
	assert.Less(t, rankIndex("Germoglio"), rankIndex("Immortale"))
	assert.Equal(t, -1, rankIndex("Stregone"))
}
