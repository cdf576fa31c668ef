package allocation

// Team is a competing team as seen by the allocators
type Team struct {
	ID            uint
	InstitutionID uint
}

// Debate is one debate of the draw that needs a panel
type Debate struct {
	ID         uint
	Importance int
	Aff        Team
	Neg        Team
}

// Teams returns both teams of the debate
func (d Debate) Teams() [2]Team {
	return [2]Team{d.Aff, d.Neg}
}

// Adjudicator is an adjudicator available for the round
type Adjudicator struct {
	ID            uint
	InstitutionID uint
	Score         float64
	Trainee       bool
}

// TeamConflict forbids an adjudicator from judging a team
type TeamConflict struct {
	AdjudicatorID uint
	TeamID        uint
}

// InstitutionConflict forbids an adjudicator from judging any team of an institution
type InstitutionConflict struct {
	AdjudicatorID uint
	InstitutionID uint
}

// Pairing is one prior-round adjudicator-team pairing
type Pairing struct {
	AdjudicatorID uint
	TeamID        uint
}

// Input is everything the adjudicator allocator needs for one round
type Input struct {
	Debates              []Debate
	Adjudicators         []Adjudicator
	TeamConflicts        []TeamConflict
	InstitutionConflicts []InstitutionConflict
	History              []Pairing
}

// Panel is the allocation for a single debate. Chair is nil when the
// debate could not be filled.
type Panel struct {
	DebateID  uint
	Chair     *uint
	Panelists []uint
	Trainees  []uint
}

// Result is the outcome of an allocation run
type Result struct {
	Panels   []Panel
	Unused   []uint
	Unfilled []uint
	Cost     float64
}

// Allocator assigns adjudicators to the debates of a round
type Allocator interface {
	Allocate(in Input) (*Result, error)
}
