package allocation

type pairKey struct {
	adjudicator uint
	other       uint
}

// ConflictChecker answers whether an adjudicator may judge a debate.
// All lookups are constant time after construction.
type ConflictChecker struct {
	teams        map[pairKey]struct{}
	institutions map[pairKey]struct{}
}

// NewConflictChecker indexes direct team conflicts and institution conflicts.
// With ownInstitution set, every adjudicator is also conflicted with the
// teams of their own institution.
func NewConflictChecker(
	adjudicators []Adjudicator,
	teamConflicts []TeamConflict,
	institutionConflicts []InstitutionConflict,
	ownInstitution bool,
) *ConflictChecker {
	c := &ConflictChecker{
		teams:        make(map[pairKey]struct{}, len(teamConflicts)),
		institutions: make(map[pairKey]struct{}, len(institutionConflicts)+len(adjudicators)),
	}

	for _, tc := range teamConflicts {
		c.teams[pairKey{tc.AdjudicatorID, tc.TeamID}] = struct{}{}
	}
	for _, ic := range institutionConflicts {
		c.institutions[pairKey{ic.AdjudicatorID, ic.InstitutionID}] = struct{}{}
	}
	if ownInstitution {
		for _, a := range adjudicators {
			if a.InstitutionID != 0 {
				c.institutions[pairKey{a.ID, a.InstitutionID}] = struct{}{}
			}
		}
	}

	return c
}

// ConflictedWithTeam reports whether the adjudicator may not judge the team
func (c *ConflictChecker) ConflictedWithTeam(adjudicatorID uint, team Team) bool {
	if _, ok := c.teams[pairKey{adjudicatorID, team.ID}]; ok {
		return true
	}
	if team.InstitutionID == 0 {
		return false
	}
	_, ok := c.institutions[pairKey{adjudicatorID, team.InstitutionID}]
	return ok
}

// Conflicted reports whether the adjudicator may not judge the debate
func (c *ConflictChecker) Conflicted(adjudicatorID uint, d Debate) bool {
	return c.ConflictedWithTeam(adjudicatorID, d.Aff) || c.ConflictedWithTeam(adjudicatorID, d.Neg)
}

// History counts prior pairings between adjudicators and teams
type History struct {
	counts map[pairKey]int
}

// NewHistory indexes the given pairings; repeated pairings are counted
func NewHistory(pairings []Pairing) *History {
	h := &History{counts: make(map[pairKey]int, len(pairings))}
	for _, p := range pairings {
		h.counts[pairKey{p.AdjudicatorID, p.TeamID}]++
	}
	return h
}

// Count returns how many times the adjudicator has already seen the debate's teams
func (h *History) Count(adjudicatorID uint, d Debate) int {
	return h.counts[pairKey{adjudicatorID, d.Aff.ID}] + h.counts[pairKey{adjudicatorID, d.Neg.ID}]
}
