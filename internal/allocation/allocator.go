package allocation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput is returned when the allocator input or options are malformed
var ErrInvalidInput = errors.New("invalid allocation input")

// Options tunes the cost function and panel shape of the HungarianAllocator
type Options struct {
	ConflictPenalty        float64 `yaml:"conflict_penalty"`
	HistoryPenalty         float64 `yaml:"history_penalty"`
	UnfilledPenalty        float64 `yaml:"unfilled_penalty"`
	MaxScore               float64 `yaml:"max_score"`
	MinVotingScore         float64 `yaml:"min_voting_score"`
	ImportanceOffset       int     `yaml:"importance_offset"`
	PanelSize              int     `yaml:"panel_size"`
	OddPanels              bool    `yaml:"odd_panels"`
	UniformPanels          bool    `yaml:"uniform_panels"`
	TraineesPerDebate      int     `yaml:"trainees_per_debate"`
	OwnInstitutionConflict bool    `yaml:"own_institution_conflict"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		ConflictPenalty:        1e7,
		HistoryPenalty:         1e3,
		UnfilledPenalty:        1e5,
		MaxScore:               5,
		MinVotingScore:         0,
		ImportanceOffset:       3,
		PanelSize:              3,
		OddPanels:              true,
		UniformPanels:          true,
		TraineesPerDebate:      1,
		OwnInstitutionConflict: true,
	}
}

// Validate checks that the options describe a usable allocator
func (o Options) Validate() error {
	if o.PanelSize < 1 {
		return fmt.Errorf("%w: panel size must be at least 1, got %d", ErrInvalidInput, o.PanelSize)
	}
	if o.TraineesPerDebate < 0 {
		return fmt.Errorf("%w: trainees per debate must not be negative", ErrInvalidInput)
	}
	if o.ConflictPenalty < 0 || o.HistoryPenalty < 0 || o.UnfilledPenalty < 0 {
		return fmt.Errorf("%w: penalties must not be negative", ErrInvalidInput)
	}
	return nil
}

// HungarianAllocator assigns chairs with a minimum-cost matching and fills
// panelists and trainees greedily afterwards.
type HungarianAllocator struct {
	opts Options
}

func NewHungarianAllocator(opts Options) *HungarianAllocator {
	return &HungarianAllocator{opts: opts}
}

// Options returns the options the allocator was created with
func (h *HungarianAllocator) Options() Options {
	return h.opts
}

type candidate struct {
	index int
	cost  float64
}

// Allocate computes panels for every debate in the input. Panels are returned
// ordered by debate ID. A shortage of adjudicators is not an error: debates
// without a chair are listed in Result.Unfilled.
func (h *HungarianAllocator) Allocate(in Input) (*Result, error) {
	if err := h.opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkUnique(in); err != nil {
		return nil, err
	}

	debates := append([]Debate(nil), in.Debates...)
	sort.Slice(debates, func(i, j int) bool { return debates[i].ID < debates[j].ID })

	adjudicators := append([]Adjudicator(nil), in.Adjudicators...)
	sort.Slice(adjudicators, func(i, j int) bool { return adjudicators[i].ID < adjudicators[j].ID })

	checker := NewConflictChecker(adjudicators, in.TeamConflicts, in.InstitutionConflicts, h.opts.OwnInstitutionConflict)
	history := NewHistory(in.History)

	var voting, trainees []Adjudicator
	for _, a := range adjudicators {
		if a.Trainee || a.Score < h.opts.MinVotingScore {
			trainees = append(trainees, a)
		} else {
			voting = append(voting, a)
		}
	}

	result := &Result{
		Panels:   make([]Panel, len(debates)),
		Unused:   []uint{},
		Unfilled: []uint{},
	}
	for i, d := range debates {
		result.Panels[i] = Panel{DebateID: d.ID, Panelists: []uint{}, Trainees: []uint{}}
	}
	if len(debates) == 0 {
		for _, a := range adjudicators {
			result.Unused = append(result.Unused, a.ID)
		}
		return result, nil
	}

	// Chairs: debates x (voting adjudicators + one unfilled slot per debate).
	// Unfilled slots are lifted by spread, which exceeds the cost difference
	// between any two matchings, so every extra chaired debate wins. A
	// conflicted cell costs more than any matching without one.
	nV := len(voting)
	n := len(debates)
	cost := make([][]float64, n)
	conflicted := make([][]bool, n)
	var lo, hi, sumUnfilled, maxUnfilled float64
	for i, d := range debates {
		row := make([]float64, nV+n)
		conflicted[i] = make([]bool, nV)
		for j, a := range voting {
			if checker.Conflicted(a.ID, d) {
				conflicted[i][j] = true
				continue
			}
			c := h.cost(d, a, history)
			row[j] = c
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		unfilled := h.opts.UnfilledPenalty * h.weight(d)
		sumUnfilled += unfilled
		maxUnfilled = math.Max(maxUnfilled, unfilled)
		for k := nV; k < len(row); k++ {
			row[k] = unfilled
		}
		cost[i] = row
	}
	spread := float64(n)*(hi-lo) + sumUnfilled + 1
	hard := float64(n)*(hi-lo+maxUnfilled+spread) + h.opts.ConflictPenalty + 1
	for i := range cost {
		for j := 0; j < nV; j++ {
			if conflicted[i][j] {
				cost[i][j] = hard
			}
		}
		for k := nV; k < len(cost[i]); k++ {
			cost[i][k] += spread
		}
	}

	assignment, _, err := MinCostAssignment(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to assign chairs: %w", err)
	}

	usedVoting := make([]bool, nV)
	for i, j := range assignment {
		if j < nV && !conflicted[i][j] {
			id := voting[j].ID
			result.Panels[i].Chair = &id
			usedVoting[j] = true
			result.Cost += cost[i][j]
			continue
		}
		result.Unfilled = append(result.Unfilled, debates[i].ID)
	}

	// Chaired debates, most important first
	order := make([]int, 0, len(debates))
	for i := range debates {
		if result.Panels[i].Chair != nil {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(x, y int) bool {
		return debates[order[x]].Importance > debates[order[y]].Importance
	})

	remaining := make([]Adjudicator, 0, nV)
	for j, a := range voting {
		if !usedVoting[j] {
			remaining = append(remaining, a)
		}
	}
	sortByScore(remaining)

	step := 1
	if h.opts.OddPanels {
		step = 2
	}
	remaining = h.fill(debates, order, remaining, step, h.opts.UniformPanels, checker, history, func(i int) int {
		return 1 + len(result.Panels[i].Panelists)
	}, h.opts.PanelSize, func(i int, id uint) {
		result.Panels[i].Panelists = append(result.Panels[i].Panelists, id)
	})

	traineePool := append([]Adjudicator(nil), trainees...)
	sortByScore(traineePool)
	traineePool = h.fill(debates, order, traineePool, 1, false, checker, history, func(i int) int {
		return len(result.Panels[i].Trainees)
	}, h.opts.TraineesPerDebate, func(i int, id uint) {
		result.Panels[i].Trainees = append(result.Panels[i].Trainees, id)
	})

	for _, a := range remaining {
		result.Unused = append(result.Unused, a.ID)
	}
	for _, a := range traineePool {
		result.Unused = append(result.Unused, a.ID)
	}
	sort.Slice(result.Unused, func(i, j int) bool { return result.Unused[i] < result.Unused[j] })

	return result, nil
}

// fill repeatedly walks the debates in order and hands each one `step`
// adjudicators from the pool while size(debate)+step <= limit. With uniform
// set, a pass only starts when the pool can grow every open debate, so
// panel sizes never differ by more than one layer. It returns what is left
// of the pool.
func (h *HungarianAllocator) fill(
	debates []Debate,
	order []int,
	pool []Adjudicator,
	step int,
	uniform bool,
	checker *ConflictChecker,
	history *History,
	size func(int) int,
	limit int,
	assign func(int, uint),
) []Adjudicator {
	for {
		if uniform {
			open := 0
			for _, i := range order {
				if size(i)+step <= limit {
					open++
				}
			}
			if open == 0 || len(pool) < open*step {
				return pool
			}
		}

		progress := false
		for _, i := range order {
			if len(pool) < step {
				return pool
			}
			if size(i)+step > limit {
				continue
			}

			d := debates[i]
			var eligible []candidate
			for idx, a := range pool {
				if checker.Conflicted(a.ID, d) {
					continue
				}
				eligible = append(eligible, candidate{index: idx, cost: h.cost(d, a, history)})
			}
			if len(eligible) < step {
				continue
			}
			sort.SliceStable(eligible, func(x, y int) bool { return eligible[x].cost < eligible[y].cost })

			taken := make(map[int]bool, step)
			for _, c := range eligible[:step] {
				assign(i, pool[c.index].ID)
				taken[c.index] = true
			}

			next := pool[:0:0]
			for idx, a := range pool {
				if !taken[idx] {
					next = append(next, a)
				}
			}
			pool = next
			progress = true
		}
		if !progress {
			return pool
		}
	}
}

func (h *HungarianAllocator) weight(d Debate) float64 {
	w := d.Importance + h.opts.ImportanceOffset
	if w < 1 {
		w = 1
	}
	return float64(w)
}

// cost of a non-conflicted adjudicator on a debate
func (h *HungarianAllocator) cost(d Debate, a Adjudicator, history *History) float64 {
	c := h.weight(d) * (h.opts.MaxScore - a.Score)
	c += h.opts.HistoryPenalty * float64(history.Count(a.ID, d))
	return c
}

func sortByScore(adjs []Adjudicator) {
	sort.SliceStable(adjs, func(i, j int) bool {
		if adjs[i].Score != adjs[j].Score {
			return adjs[i].Score > adjs[j].Score
		}
		return adjs[i].ID < adjs[j].ID
	})
}

func checkUnique(in Input) error {
	debates := make(map[uint]struct{}, len(in.Debates))
	for _, d := range in.Debates {
		if _, ok := debates[d.ID]; ok {
			return fmt.Errorf("%w: duplicate debate %d", ErrInvalidInput, d.ID)
		}
		debates[d.ID] = struct{}{}
	}
	adjudicators := make(map[uint]struct{}, len(in.Adjudicators))
	for _, a := range in.Adjudicators {
		if _, ok := adjudicators[a.ID]; ok {
			return fmt.Errorf("%w: duplicate adjudicator %d", ErrInvalidInput, a.ID)
		}
		adjudicators[a.ID] = struct{}{}
	}
	return nil
}
