package allocation

import "sort"

// DivisionTeam is a team with venue group preferences, most preferred first
type DivisionTeam struct {
	ID          uint
	Preferences []uint
}

// DivisionSlot is a division tied to a venue group with a declared capacity
type DivisionSlot struct {
	ID           uint
	VenueGroupID uint
	Capacity     int
}

// DivisionResult maps team IDs to division IDs. Assignments is nil when
// Success is false.
type DivisionResult struct {
	Assignments    map[uint]uint
	PreferenceHits int
	Success        bool
}

// AllocateDivisions places every team in exactly one division. Division
// sizes are kept as even as the declared capacities allow; teams get their
// preferred venue group in priority order while capacity remains and fall
// back to the least filled division otherwise.
func AllocateDivisions(teams []DivisionTeam, divisions []DivisionSlot) DivisionResult {
	if len(teams) == 0 {
		return DivisionResult{Assignments: map[uint]uint{}, Success: true}
	}

	slots := make([]DivisionSlot, 0, len(divisions))
	maxCapacity := 0
	declared := 0
	for _, d := range divisions {
		if d.Capacity <= 0 {
			continue
		}
		slots = append(slots, d)
		declared += d.Capacity
		if d.Capacity > maxCapacity {
			maxCapacity = d.Capacity
		}
	}
	if len(slots) == 0 || declared < len(teams) {
		return DivisionResult{}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })

	capacity := balancedCapacities(slots, len(teams), maxCapacity)
	filled := make([]int, len(slots))

	ordered := append([]DivisionTeam(nil), teams...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	maxPriority := 0
	for _, t := range ordered {
		if len(t.Preferences) > maxPriority {
			maxPriority = len(t.Preferences)
		}
	}

	result := DivisionResult{Assignments: make(map[uint]uint, len(teams))}

	for level := 0; level < maxPriority; level++ {
		for _, t := range ordered {
			if _, done := result.Assignments[t.ID]; done || level >= len(t.Preferences) {
				continue
			}
			group := t.Preferences[level]
			best := leastFilled(slots, filled, capacity, func(s DivisionSlot) bool {
				return s.VenueGroupID == group
			})
			if best < 0 {
				continue
			}
			result.Assignments[t.ID] = slots[best].ID
			filled[best]++
			result.PreferenceHits++
		}
	}

	for _, t := range ordered {
		if _, done := result.Assignments[t.ID]; done {
			continue
		}
		best := leastFilled(slots, filled, capacity, func(DivisionSlot) bool { return true })
		if best < 0 {
			return DivisionResult{}
		}
		result.Assignments[t.ID] = slots[best].ID
		filled[best]++
	}

	result.Success = true
	return result
}

// balancedCapacities caps each division at the smallest even share that
// still fits all teams.
func balancedCapacities(slots []DivisionSlot, teams, maxCapacity int) []int {
	target := (teams + len(slots) - 1) / len(slots)
	capacity := make([]int, len(slots))
	for ; ; target++ {
		total := 0
		for i, s := range slots {
			capacity[i] = min(s.Capacity, target)
			total += capacity[i]
		}
		if total >= teams || target >= maxCapacity {
			return capacity
		}
	}
}

func leastFilled(slots []DivisionSlot, filled, capacity []int, match func(DivisionSlot) bool) int {
	best := -1
	for i, s := range slots {
		if !match(s) || filled[i] >= capacity[i] {
			continue
		}
		if best < 0 || filled[i] < filled[best] {
			best = i
		}
	}
	return best
}
