// Package importer seeds a tournament from a YAML fixture.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"

	"debate-tab/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is the YAML description of a tournament
type Fixture struct {
	Tournament   TournamentFixture    `yaml:"tournament"`
	Institutions []InstitutionFixture `yaml:"institutions"`
	VenueGroups  []VenueGroupFixture  `yaml:"venue_groups"`
	Venues       []VenueFixture       `yaml:"venues"`
	Teams        []TeamFixture        `yaml:"teams"`
	Adjudicators []AdjudicatorFixture `yaml:"adjudicators"`
	Rounds       []RoundFixture       `yaml:"rounds"`
}

type TournamentFixture struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type InstitutionFixture struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type VenueGroupFixture struct {
	Name         string `yaml:"name"`
	TeamCapacity int    `yaml:"team_capacity"`
}

type VenueFixture struct {
	Name     string `yaml:"name"`
	Group    string `yaml:"group"`
	Priority int    `yaml:"priority"`
}

// TeamFixture is a team; it is referenced elsewhere as "<institution code> <reference>"
type TeamFixture struct {
	Institution string   `yaml:"institution"`
	Reference   string   `yaml:"reference"`
	Preferences []string `yaml:"preferences"` // venue group names, most preferred first
}

type AdjudicatorFixture struct {
	Name                 string   `yaml:"name"`
	Institution          string   `yaml:"institution"`
	Score                float64  `yaml:"score"`
	Trainee              bool     `yaml:"trainee"`
	Breaking             bool     `yaml:"breaking"`
	Conflicts            []string `yaml:"conflicts"` // team names
	InstitutionConflicts []string `yaml:"institution_conflicts"`
}

type RoundFixture struct {
	Seq        int             `yaml:"seq"`
	Name       string          `yaml:"name"`
	DrawStatus string          `yaml:"draw_status"`
	Available  []string        `yaml:"available"` // adjudicator names, or ["all"]
	Debates    []DebateFixture `yaml:"debates"`
}

type DebateFixture struct {
	Aff        string        `yaml:"aff"`
	Neg        string        `yaml:"neg"`
	Venue      string        `yaml:"venue"`
	Importance int           `yaml:"importance"`
	Bye        bool          `yaml:"bye"`
	Panel      *PanelFixture `yaml:"adjudicators"`
}

type PanelFixture struct {
	Chair    string   `yaml:"chair"`
	Panel    []string `yaml:"panel"`
	Trainees []string `yaml:"trainees"`
}

// Result maps fixture names to the IDs they were stored under
type Result struct {
	TournamentID uint
	Institutions map[string]uint
	VenueGroups  map[string]uint
	Venues       map[string]uint
	Teams        map[string]uint
	Adjudicators map[string]uint
	Rounds       map[int]uint
	Debates      map[int][]uint // round seq -> debate IDs in fixture order
}

// Load reads and parses a fixture file
func Load(path string) (*Fixture, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(content)
}

// Parse decodes a YAML fixture
func Parse(content []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if f.Tournament.Slug == "" {
		return nil, fmt.Errorf("fixture has no tournament slug")
	}
	if f.Tournament.Name == "" {
		f.Tournament.Name = f.Tournament.Slug
	}
	return &f, nil
}

// Apply stores the fixture in a single transaction
func (f *Fixture) Apply(ctx context.Context, db *gorm.DB) (*Result, error) {
	res := &Result{
		Institutions: make(map[string]uint),
		VenueGroups:  make(map[string]uint),
		Venues:       make(map[string]uint),
		Teams:        make(map[string]uint),
		Adjudicators: make(map[string]uint),
		Rounds:       make(map[int]uint),
		Debates:      make(map[int][]uint),
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tournament := models.Tournament{Slug: f.Tournament.Slug, Name: f.Tournament.Name}
		if err := tx.Create(&tournament).Error; err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		res.TournamentID = tournament.ID

		if err := f.applyInstitutions(tx, res); err != nil {
			return err
		}
		if err := f.applyVenues(tx, res); err != nil {
			return err
		}
		if err := f.applyTeams(tx, res); err != nil {
			return err
		}
		if err := f.applyAdjudicators(tx, res); err != nil {
			return err
		}
		return f.applyRounds(tx, res)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Importer] Imported tournament %s: %d teams, %d adjudicators, %d rounds",
		f.Tournament.Slug, len(res.Teams), len(res.Adjudicators), len(res.Rounds))
	return res, nil
}

func (f *Fixture) applyInstitutions(tx *gorm.DB, res *Result) error {
	for _, fi := range f.Institutions {
		if fi.Code == "" {
			return fmt.Errorf("institution without code")
		}
		name := fi.Name
		if name == "" {
			name = fi.Code
		}
		var inst models.Institution
		err := tx.Where(models.Institution{Code: fi.Code}).
			Attrs(models.Institution{Name: name}).
			FirstOrCreate(&inst).Error
		if err != nil {
			return fmt.Errorf("failed to create institution %s: %w", fi.Code, err)
		}
		res.Institutions[fi.Code] = inst.ID
	}
	return nil
}

func (f *Fixture) applyVenues(tx *gorm.DB, res *Result) error {
	for _, fg := range f.VenueGroups {
		group := models.VenueGroup{
			TournamentID: res.TournamentID,
			Name:         fg.Name,
			TeamCapacity: fg.TeamCapacity,
		}
		if err := tx.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to create venue group %s: %w", fg.Name, err)
		}
		res.VenueGroups[fg.Name] = group.ID
	}

	for _, fv := range f.Venues {
		venue := models.Venue{TournamentID: res.TournamentID, Name: fv.Name, Priority: fv.Priority}
		if fv.Group != "" {
			groupID, ok := res.VenueGroups[fv.Group]
			if !ok {
				return fmt.Errorf("venue %s: unknown venue group %s", fv.Name, fv.Group)
			}
			venue.GroupID = &groupID
		}
		if err := tx.Create(&venue).Error; err != nil {
			return fmt.Errorf("failed to create venue %s: %w", fv.Name, err)
		}
		res.Venues[fv.Name] = venue.ID
	}
	return nil
}

func (f *Fixture) applyTeams(tx *gorm.DB, res *Result) error {
	for _, ft := range f.Teams {
		instID, ok := res.Institutions[ft.Institution]
		if !ok {
			return fmt.Errorf("team %s: unknown institution %s", ft.Reference, ft.Institution)
		}
		team := models.Team{TournamentID: res.TournamentID, InstitutionID: instID, Reference: ft.Reference}
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("failed to create team %s: %w", ft.Reference, err)
		}
		name := fmt.Sprintf("%s %s", ft.Institution, ft.Reference)
		if _, dup := res.Teams[name]; dup {
			return fmt.Errorf("duplicate team %s", name)
		}
		res.Teams[name] = team.ID

		for i, groupName := range ft.Preferences {
			groupID, ok := res.VenueGroups[groupName]
			if !ok {
				return fmt.Errorf("team %s: unknown venue group %s", name, groupName)
			}
			pref := models.TeamVenuePreference{TeamID: team.ID, VenueGroupID: groupID, Priority: i + 1}
			if err := tx.Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to create preference for %s: %w", name, err)
			}
		}
	}
	return nil
}

func (f *Fixture) applyAdjudicators(tx *gorm.DB, res *Result) error {
	for _, fa := range f.Adjudicators {
		instID, ok := res.Institutions[fa.Institution]
		if !ok {
			return fmt.Errorf("adjudicator %s: unknown institution %s", fa.Name, fa.Institution)
		}
		if _, dup := res.Adjudicators[fa.Name]; dup {
			return fmt.Errorf("duplicate adjudicator %s", fa.Name)
		}
		adj := models.Adjudicator{
			TournamentID:  res.TournamentID,
			InstitutionID: instID,
			Name:          fa.Name,
			TestScore:     decimal.NewFromFloat(fa.Score).Round(2),
			IsTrainee:     fa.Trainee,
			Breaking:      fa.Breaking,
		}
		if err := tx.Create(&adj).Error; err != nil {
			return fmt.Errorf("failed to create adjudicator %s: %w", fa.Name, err)
		}
		res.Adjudicators[fa.Name] = adj.ID

		for _, teamName := range fa.Conflicts {
			teamID, ok := res.Teams[teamName]
			if !ok {
				return fmt.Errorf("adjudicator %s: unknown team %s", fa.Name, teamName)
			}
			if err := tx.Create(&models.AdjudicatorConflict{AdjudicatorID: adj.ID, TeamID: teamID}).Error; err != nil {
				return fmt.Errorf("failed to create conflict: %w", err)
			}
		}
		for _, code := range fa.InstitutionConflicts {
			conflictID, ok := res.Institutions[code]
			if !ok {
				return fmt.Errorf("adjudicator %s: unknown institution %s", fa.Name, code)
			}
			conflict := models.AdjudicatorInstitutionConflict{AdjudicatorID: adj.ID, InstitutionID: conflictID}
			if err := tx.Create(&conflict).Error; err != nil {
				return fmt.Errorf("failed to create institution conflict: %w", err)
			}
		}
	}
	return nil
}

func (f *Fixture) applyRounds(tx *gorm.DB, res *Result) error {
	for _, fr := range f.Rounds {
		status := models.DrawStatus(fr.DrawStatus)
		switch status {
		case "":
			status = models.DrawStatusNone
		case models.DrawStatusNone, models.DrawStatusDraft, models.DrawStatusConfirmed, models.DrawStatusReleased:
		default:
			return fmt.Errorf("round %d: invalid draw status %q", fr.Seq, fr.DrawStatus)
		}
		name := fr.Name
		if name == "" {
			name = fmt.Sprintf("Round %d", fr.Seq)
		}

		round := models.Round{TournamentID: res.TournamentID, Seq: fr.Seq, Name: name, DrawStatus: status}
		if err := tx.Create(&round).Error; err != nil {
			return fmt.Errorf("failed to create round %d: %w", fr.Seq, err)
		}
		res.Rounds[fr.Seq] = round.ID

		if err := applyAvailability(tx, res, round.ID, fr.Available); err != nil {
			return fmt.Errorf("round %d: %w", fr.Seq, err)
		}

		for _, fd := range fr.Debates {
			debateID, err := applyDebate(tx, res, round.ID, fd)
			if err != nil {
				return fmt.Errorf("round %d: %w", fr.Seq, err)
			}
			res.Debates[fr.Seq] = append(res.Debates[fr.Seq], debateID)
		}
	}
	return nil
}

func applyAvailability(tx *gorm.DB, res *Result, roundID uint, names []string) error {
	if len(names) == 1 && names[0] == "all" {
		names = names[:0]
		for name := range res.Adjudicators {
			names = append(names, name)
		}
	}
	for _, name := range names {
		adjID, ok := res.Adjudicators[name]
		if !ok {
			return fmt.Errorf("unknown adjudicator %s", name)
		}
		if err := tx.Create(&models.ActiveAdjudicator{RoundID: roundID, AdjudicatorID: adjID}).Error; err != nil {
			return fmt.Errorf("failed to mark %s available: %w", name, err)
		}
	}
	return nil
}

func applyDebate(tx *gorm.DB, res *Result, roundID uint, fd DebateFixture) (uint, error) {
	affID, ok := res.Teams[fd.Aff]
	if !ok {
		return 0, fmt.Errorf("unknown team %s", fd.Aff)
	}
	debate := models.Debate{RoundID: roundID, AffTeamID: affID, Importance: fd.Importance, Bye: fd.Bye}
	if !fd.Bye {
		negID, ok := res.Teams[fd.Neg]
		if !ok {
			return 0, fmt.Errorf("unknown team %s", fd.Neg)
		}
		debate.NegTeamID = negID
	}
	if fd.Venue != "" {
		venueID, ok := res.Venues[fd.Venue]
		if !ok {
			return 0, fmt.Errorf("unknown venue %s", fd.Venue)
		}
		debate.VenueID = &venueID
	}
	if err := tx.Create(&debate).Error; err != nil {
		return 0, fmt.Errorf("failed to create debate: %w", err)
	}

	if fd.Panel == nil {
		return debate.ID, nil
	}
	var rows []models.DebateAdjudicator
	add := func(name string, pos models.AdjudicatorPosition) error {
		adjID, ok := res.Adjudicators[name]
		if !ok {
			return fmt.Errorf("unknown adjudicator %s", name)
		}
		rows = append(rows, models.DebateAdjudicator{DebateID: debate.ID, AdjudicatorID: adjID, Position: pos})
		return nil
	}
	if fd.Panel.Chair != "" {
		if err := add(fd.Panel.Chair, models.PositionChair); err != nil {
			return 0, err
		}
	}
	for _, name := range fd.Panel.Panel {
		if err := add(name, models.PositionPanelist); err != nil {
			return 0, err
		}
	}
	for _, name := range fd.Panel.Trainees {
		if err := add(name, models.PositionTrainee); err != nil {
			return 0, err
		}
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return 0, fmt.Errorf("failed to create panel: %w", err)
		}
	}
	return debate.ID, nil
}
