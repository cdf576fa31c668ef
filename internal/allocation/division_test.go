package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func divisionCounts(res DivisionResult) map[uint]int {
	counts := make(map[uint]int)
	for _, d := range res.Assignments {
		counts[d]++
	}
	return counts
}

func TestAllocateDivisionsHonoursPreferences(t *testing.T) {
	divisions := []DivisionSlot{
		{ID: 1, VenueGroupID: 10, Capacity: 4},
		{ID: 2, VenueGroupID: 20, Capacity: 4},
	}
	teams := []DivisionTeam{
		{ID: 1, Preferences: []uint{10}},
		{ID: 2, Preferences: []uint{20}},
		{ID: 3, Preferences: []uint{10, 20}},
		{ID: 4, Preferences: []uint{20, 10}},
	}

	res := AllocateDivisions(teams, divisions)
	require.True(t, res.Success)

	assert.Equal(t, uint(1), res.Assignments[1])
	assert.Equal(t, uint(2), res.Assignments[2])
	assert.Equal(t, uint(1), res.Assignments[3])
	assert.Equal(t, uint(2), res.Assignments[4])
	assert.Equal(t, 4, res.PreferenceHits)
}

func TestAllocateDivisionsBalancesSizes(t *testing.T) {
	divisions := []DivisionSlot{
		{ID: 1, VenueGroupID: 10, Capacity: 6},
		{ID: 2, VenueGroupID: 10, Capacity: 6},
		{ID: 3, VenueGroupID: 20, Capacity: 6},
	}
	var teams []DivisionTeam
	for i := 1; i <= 6; i++ {
		teams = append(teams, DivisionTeam{ID: uint(i), Preferences: []uint{10}})
	}

	res := AllocateDivisions(teams, divisions)
	require.True(t, res.Success)

	counts := divisionCounts(res)
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, 2, counts[2])
	assert.Equal(t, 2, counts[3])
	assert.Equal(t, 4, res.PreferenceHits)
}

func TestAllocateDivisionsFallsBackWhenPreferredGroupIsFull(t *testing.T) {
	divisions := []DivisionSlot{
		{ID: 1, VenueGroupID: 10, Capacity: 1},
		{ID: 2, VenueGroupID: 20, Capacity: 2},
	}
	teams := []DivisionTeam{
		{ID: 1, Preferences: []uint{10}},
		{ID: 2, Preferences: []uint{10}},
		{ID: 3},
	}

	res := AllocateDivisions(teams, divisions)
	require.True(t, res.Success)

	assert.Equal(t, uint(1), res.Assignments[1])
	assert.Equal(t, uint(2), res.Assignments[2])
	assert.Equal(t, uint(2), res.Assignments[3])
	assert.Equal(t, 1, res.PreferenceHits)
}

func TestAllocateDivisionsNeverExceedsCapacity(t *testing.T) {
	divisions := []DivisionSlot{
		{ID: 1, VenueGroupID: 10, Capacity: 2},
		{ID: 2, VenueGroupID: 10, Capacity: 5},
		{ID: 3, VenueGroupID: 20, Capacity: 3},
	}
	var teams []DivisionTeam
	for i := 1; i <= 10; i++ {
		teams = append(teams, DivisionTeam{ID: uint(i), Preferences: []uint{10, 20}})
	}

	res := AllocateDivisions(teams, divisions)
	require.True(t, res.Success)
	assert.Len(t, res.Assignments, 10)

	counts := divisionCounts(res)
	for _, d := range divisions {
		assert.LessOrEqual(t, counts[d.ID], d.Capacity, "division %d over capacity", d.ID)
	}
}

func TestAllocateDivisionsInfeasible(t *testing.T) {
	divisions := []DivisionSlot{{ID: 1, VenueGroupID: 10, Capacity: 2}}
	teams := []DivisionTeam{{ID: 1}, {ID: 2}, {ID: 3}}

	res := AllocateDivisions(teams, divisions)
	assert.False(t, res.Success)
	assert.Nil(t, res.Assignments)

	res = AllocateDivisions(teams, nil)
	assert.False(t, res.Success)
}

func TestAllocateDivisionsNoTeams(t *testing.T) {
	res := AllocateDivisions(nil, nil)
	assert.True(t, res.Success)
	assert.Empty(t, res.Assignments)
}
