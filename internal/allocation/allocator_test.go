package allocation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraw(n int) []Debate {
	debates := make([]Debate, n)
	for i := range debates {
		aff := uint(100 + 2*i)
		neg := aff + 1
		debates[i] = Debate{
			ID:  uint(i + 1),
			Aff: Team{ID: aff, InstitutionID: 1000 + aff},
			Neg: Team{ID: neg, InstitutionID: 1000 + neg},
		}
	}
	return debates
}

func testPool(n int, score float64) []Adjudicator {
	adjs := make([]Adjudicator, n)
	for i := range adjs {
		adjs[i] = Adjudicator{ID: uint(i + 1), InstitutionID: uint(500 + i), Score: score}
	}
	return adjs
}

func chairs(res *Result) map[uint]uint {
	out := make(map[uint]uint)
	for _, p := range res.Panels {
		if p.Chair != nil {
			out[p.DebateID] = *p.Chair
		}
	}
	return out
}

func TestAllocateFourDebatesSixAdjudicators(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())

	res, err := alloc.Allocate(Input{
		Debates:      testDraw(4),
		Adjudicators: testPool(6, 3),
	})
	require.NoError(t, err)

	assert.Len(t, chairs(res), 4)
	assert.Empty(t, res.Unfilled)
	assert.Len(t, res.Unused, 2)
	for _, p := range res.Panels {
		assert.NotNil(t, p.Chair, "debate %d has no chair", p.DebateID)
		assert.Empty(t, p.Panelists)
	}
}

func TestAllocateFullPanels(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())

	res, err := alloc.Allocate(Input{
		Debates:      testDraw(4),
		Adjudicators: testPool(13, 3),
	})
	require.NoError(t, err)

	for _, p := range res.Panels {
		require.NotNil(t, p.Chair)
		assert.Len(t, p.Panelists, 2)
	}
	assert.Len(t, res.Unused, 1)
}

func TestAllocateGreedyPanelsFavourImportantDebates(t *testing.T) {
	opts := DefaultOptions()
	opts.UniformPanels = false
	alloc := NewHungarianAllocator(opts)

	debates := testDraw(4)
	debates[2].Importance = 2

	res, err := alloc.Allocate(Input{Debates: debates, Adjudicators: testPool(6, 3)})
	require.NoError(t, err)

	for _, p := range res.Panels {
		if p.DebateID == debates[2].ID {
			assert.Len(t, p.Panelists, 2)
		} else {
			assert.Empty(t, p.Panelists)
		}
	}
	assert.Empty(t, res.Unused)
}

func TestAllocateRespectsConflicts(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(2)
	adjs := []Adjudicator{
		{ID: 1, InstitutionID: 900, Score: 5},
		{ID: 2, InstitutionID: 901, Score: 1},
	}
	debates[1].Importance = 2

	res, err := alloc.Allocate(Input{
		Debates:       debates,
		Adjudicators:  adjs,
		TeamConflicts: []TeamConflict{{AdjudicatorID: 1, TeamID: debates[1].Neg.ID}},
	})
	require.NoError(t, err)

	got := chairs(res)
	assert.Equal(t, uint(1), got[debates[0].ID])
	assert.Equal(t, uint(2), got[debates[1].ID])
}

func TestAllocateRespectsInstitutionConflicts(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(1)

	res, err := alloc.Allocate(Input{
		Debates:      debates,
		Adjudicators: []Adjudicator{{ID: 1, InstitutionID: 900, Score: 4}},
		InstitutionConflicts: []InstitutionConflict{
			{AdjudicatorID: 1, InstitutionID: debates[0].Aff.InstitutionID},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, chairs(res))
	assert.Equal(t, []uint{debates[0].ID}, res.Unfilled)
	assert.Equal(t, []uint{1}, res.Unused)
}

func TestAllocateOwnInstitutionConflict(t *testing.T) {
	debates := testDraw(1)
	adjs := []Adjudicator{{ID: 1, InstitutionID: debates[0].Neg.InstitutionID, Score: 4}}

	res, err := NewHungarianAllocator(DefaultOptions()).Allocate(Input{Debates: debates, Adjudicators: adjs})
	require.NoError(t, err)
	assert.Equal(t, []uint{debates[0].ID}, res.Unfilled)

	opts := DefaultOptions()
	opts.OwnInstitutionConflict = false
	res, err = NewHungarianAllocator(opts).Allocate(Input{Debates: debates, Adjudicators: adjs})
	require.NoError(t, err)
	assert.Empty(t, res.Unfilled)
}

func TestAllocateShortageLeavesLeastImportantUnfilled(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(3)
	debates[0].Importance = 0
	debates[1].Importance = 2
	debates[2].Importance = 1

	res, err := alloc.Allocate(Input{Debates: debates, Adjudicators: testPool(2, 3)})
	require.NoError(t, err)

	assert.Equal(t, []uint{debates[0].ID}, res.Unfilled)
	assert.Len(t, chairs(res), 2)
	assert.Empty(t, res.Unused)
}

func TestAllocateMatchesQualityToImportance(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(2)
	debates[0].Importance = -2
	debates[1].Importance = 2
	adjs := []Adjudicator{
		{ID: 1, InstitutionID: 900, Score: 2},
		{ID: 2, InstitutionID: 901, Score: 4},
	}

	res, err := alloc.Allocate(Input{Debates: debates, Adjudicators: adjs})
	require.NoError(t, err)

	got := chairs(res)
	assert.Equal(t, uint(2), got[debates[1].ID])
	assert.Equal(t, uint(1), got[debates[0].ID])
}

func TestAllocateAvoidsRepeatPairings(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(2)

	res, err := alloc.Allocate(Input{
		Debates:      debates,
		Adjudicators: testPool(2, 3),
		History:      []Pairing{{AdjudicatorID: 1, TeamID: debates[0].Aff.ID}},
	})
	require.NoError(t, err)

	got := chairs(res)
	assert.Equal(t, uint(2), got[debates[0].ID])
	assert.Equal(t, uint(1), got[debates[1].ID])
}

func TestAllocateTrainees(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(2)
	adjs := []Adjudicator{
		{ID: 1, InstitutionID: 900, Score: 5, Trainee: true},
		{ID: 2, InstitutionID: 901, Score: 2},
		{ID: 3, InstitutionID: 902, Score: 2},
	}

	res, err := alloc.Allocate(Input{Debates: debates, Adjudicators: adjs})
	require.NoError(t, err)

	got := chairs(res)
	assert.Len(t, got, 2)
	for _, id := range got {
		assert.NotEqual(t, uint(1), id)
	}

	trainees := 0
	for _, p := range res.Panels {
		trainees += len(p.Trainees)
	}
	assert.Equal(t, 1, trainees)
	assert.Empty(t, res.Unused)
}

func TestAllocateMinVotingScoreDemotesToTrainee(t *testing.T) {
	opts := DefaultOptions()
	opts.MinVotingScore = 2.5
	alloc := NewHungarianAllocator(opts)

	res, err := alloc.Allocate(Input{
		Debates: testDraw(1),
		Adjudicators: []Adjudicator{
			{ID: 1, InstitutionID: 900, Score: 2},
			{ID: 2, InstitutionID: 901, Score: 3},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Panels[0].Chair)
	assert.Equal(t, uint(2), *res.Panels[0].Chair)
	assert.Equal(t, []uint{1}, res.Panels[0].Trainees)
}

func TestAllocateIsDeterministic(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())
	debates := testDraw(5)
	adjs := testPool(9, 3)
	adjs[4].Score = 4.5

	first, err := alloc.Allocate(Input{Debates: debates, Adjudicators: adjs})
	require.NoError(t, err)

	// Input order must not matter
	reversed := make([]Adjudicator, len(adjs))
	for i, a := range adjs {
		reversed[len(adjs)-1-i] = a
	}
	second, err := alloc.Allocate(Input{Debates: debates, Adjudicators: reversed})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAllocateRejectsDuplicates(t *testing.T) {
	alloc := NewHungarianAllocator(DefaultOptions())

	_, err := alloc.Allocate(Input{Debates: testDraw(1), Adjudicators: append(testPool(1, 3), testPool(1, 3)...)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	debates := testDraw(1)
	_, err = alloc.Allocate(Input{Debates: append(debates, debates...), Adjudicators: testPool(1, 3)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAllocateRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.PanelSize = 0

	_, err := NewHungarianAllocator(opts).Allocate(Input{Debates: testDraw(1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAllocateNoDebates(t *testing.T) {
	res, err := NewHungarianAllocator(DefaultOptions()).Allocate(Input{Adjudicators: testPool(3, 2)})
	require.NoError(t, err)
	assert.Empty(t, res.Panels)
	assert.Equal(t, []uint{1, 2, 3}, res.Unused)
}

func TestAllocateRandomisedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alloc := NewHungarianAllocator(DefaultOptions())

	for iter := 0; iter < 50; iter++ {
		debates := testDraw(1 + rng.Intn(8))
		for i := range debates {
			debates[i].Importance = rng.Intn(5) - 2
		}
		adjs := testPool(rng.Intn(20), 0)
		for i := range adjs {
			adjs[i].Score = float64(rng.Intn(50)) / 10
			adjs[i].Trainee = rng.Intn(6) == 0
		}

		var conflicts []TeamConflict
		for _, a := range adjs {
			if rng.Intn(3) == 0 {
				d := debates[rng.Intn(len(debates))]
				conflicts = append(conflicts, TeamConflict{AdjudicatorID: a.ID, TeamID: d.Aff.ID})
			}
		}

		res, err := alloc.Allocate(Input{Debates: debates, Adjudicators: adjs, TeamConflicts: conflicts})
		require.NoError(t, err)

		checker := NewConflictChecker(adjs, conflicts, nil, true)
		byID := make(map[uint]Debate)
		for _, d := range debates {
			byID[d.ID] = d
		}

		seen := make(map[uint]bool)
		mark := func(id uint) {
			require.False(t, seen[id], "adjudicator %d placed twice", id)
			seen[id] = true
		}

		for _, p := range res.Panels {
			members := append([]uint{}, p.Panelists...)
			members = append(members, p.Trainees...)
			if p.Chair != nil {
				members = append(members, *p.Chair)
			}
			for _, id := range members {
				mark(id)
				assert.False(t, checker.Conflicted(id, byID[p.DebateID]), "conflicted adjudicator %d on debate %d", id, p.DebateID)
			}
		}
		for _, id := range res.Unused {
			mark(id)
		}
		assert.Len(t, seen, len(adjs))
	}
}

func TestAllocateFullyResourcedWithoutConflictsChairsEveryDebate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alloc := NewHungarianAllocator(DefaultOptions())

	for iter := 0; iter < 30; iter++ {
		n := 1 + rng.Intn(10)
		adjs := testPool(n+rng.Intn(10), 0)
		for i := range adjs {
			adjs[i].Score = float64(rng.Intn(50)) / 10
		}

		res, err := alloc.Allocate(Input{Debates: testDraw(n), Adjudicators: adjs})
		require.NoError(t, err)
		assert.Empty(t, res.Unfilled)
		assert.Len(t, chairs(res), n)
	}
}

func TestAllocateConflictOnImportantDebateKeepsAdjudicatorForAnother(t *testing.T) {
	debates := testDraw(2)
	debates[0].Importance = 200

	res, err := NewHungarianAllocator(DefaultOptions()).Allocate(Input{
		Debates:       debates,
		Adjudicators:  []Adjudicator{{ID: 7, InstitutionID: 900, Score: 3}},
		TeamConflicts: []TeamConflict{{AdjudicatorID: 7, TeamID: debates[0].Aff.ID}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[uint]uint{debates[1].ID: 7}, chairs(res))
	assert.Equal(t, []uint{debates[0].ID}, res.Unfilled)
	assert.Empty(t, res.Unused)
}

func TestAllocateZeroConflictPenaltyStillAvoidsConflicts(t *testing.T) {
	opts := DefaultOptions()
	opts.ConflictPenalty = 0
	debates := testDraw(2)

	res, err := NewHungarianAllocator(opts).Allocate(Input{
		Debates: debates,
		Adjudicators: []Adjudicator{
			{ID: 7, InstitutionID: 900, Score: 5},
			{ID: 8, InstitutionID: 901, Score: 1},
		},
		TeamConflicts: []TeamConflict{{AdjudicatorID: 7, TeamID: debates[0].Neg.ID}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[uint]uint{debates[0].ID: 8, debates[1].ID: 7}, chairs(res))
	assert.Empty(t, res.Unfilled)
}

// maxChairs is the size of a maximum conflict-free matching of debates to
// voting adjudicators, found with augmenting paths.
func maxChairs(debates []Debate, voting []Adjudicator, checker *ConflictChecker) int {
	owner := make(map[uint]int)
	var try func(i int, seen map[uint]bool) bool
	try = func(i int, seen map[uint]bool) bool {
		for _, a := range voting {
			if seen[a.ID] || checker.Conflicted(a.ID, debates[i]) {
				continue
			}
			seen[a.ID] = true
			if o, ok := owner[a.ID]; !ok || try(o, seen) {
				owner[a.ID] = i
				return true
			}
		}
		return false
	}
	matched := 0
	for i := range debates {
		if try(i, make(map[uint]bool)) {
			matched++
		}
	}
	return matched
}

func TestAllocateChairsAsManyDebatesAsConflictsAllow(t *testing.T) {
	settings := map[string]func(*Options){
		"default":          func(*Options) {},
		"no conflict cost": func(o *Options) { o.ConflictPenalty = 0 },
		"no unfilled cost": func(o *Options) { o.UnfilledPenalty = 0 },
		"heavy history":    func(o *Options) { o.HistoryPenalty = 1e9 },
		"all zero": func(o *Options) {
			o.ConflictPenalty, o.HistoryPenalty, o.UnfilledPenalty = 0, 0, 0
		},
	}

	for name, apply := range settings {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			apply(&opts)
			alloc := NewHungarianAllocator(opts)
			rng := rand.New(rand.NewSource(11))

			for iter := 0; iter < 60; iter++ {
				debates := testDraw(1 + rng.Intn(7))
				for i := range debates {
					debates[i].Importance = rng.Intn(203) - 2
				}
				adjs := testPool(rng.Intn(12), 0)
				for i := range adjs {
					adjs[i].Score = float64(rng.Intn(50)) / 10
				}

				var conflicts []TeamConflict
				var history []Pairing
				for _, a := range adjs {
					for _, d := range debates {
						if rng.Intn(3) == 0 {
							conflicts = append(conflicts, TeamConflict{AdjudicatorID: a.ID, TeamID: d.Neg.ID})
						}
						if rng.Intn(4) == 0 {
							history = append(history, Pairing{AdjudicatorID: a.ID, TeamID: d.Aff.ID})
						}
					}
				}

				res, err := alloc.Allocate(Input{
					Debates:       debates,
					Adjudicators:  adjs,
					TeamConflicts: conflicts,
					History:       history,
				})
				require.NoError(t, err)

				checker := NewConflictChecker(adjs, conflicts, nil, true)
				byID := make(map[uint]Debate, len(debates))
				for _, d := range debates {
					byID[d.ID] = d
				}
				got := chairs(res)
				for debateID, adjID := range got {
					assert.False(t, checker.Conflicted(adjID, byID[debateID]), "conflicted chair %d on debate %d", adjID, debateID)
				}

				want := maxChairs(debates, adjs, checker)
				assert.Len(t, got, want, "iteration %d", iter)
				assert.Len(t, res.Unfilled, len(debates)-want, "iteration %d", iter)
				if want == len(debates) {
					assert.Empty(t, res.Unfilled, "iteration %d: fillable round left debates chairless", iter)
				}
			}
		})
	}
}
