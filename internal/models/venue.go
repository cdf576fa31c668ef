package models

// VenueGroup groups venues that share a site; divisions are tied to one
type VenueGroup struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TournamentID uint   `gorm:"not null;index" json:"tournament_id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	TeamCapacity int    `gorm:"default:0" json:"team_capacity"`
}

func (VenueGroup) TableName() string {
	return "venue_groups"
}

// Venue is a room debates take place in
type Venue struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TournamentID uint        `gorm:"not null;index" json:"tournament_id"`
	GroupID      *uint       `gorm:"index" json:"group_id"`
	Group        *VenueGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Priority     int         `gorm:"default:0" json:"priority"`
}

func (Venue) TableName() string {
	return "venues"
}

// Division is a group of teams tied to a venue group
type Division struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TournamentID uint        `gorm:"not null;index" json:"tournament_id"`
	VenueGroupID uint        `gorm:"not null;index" json:"venue_group_id"`
	VenueGroup   *VenueGroup `gorm:"foreignKey:VenueGroupID" json:"venue_group,omitempty"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Capacity     int         `gorm:"not null" json:"capacity"`
}

func (Division) TableName() string {
	return "divisions"
}

// TeamVenuePreference ranks a venue group for a team; priority 1 is the most preferred
type TeamVenuePreference struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	TeamID       uint `gorm:"not null;index" json:"team_id"`
	VenueGroupID uint `gorm:"not null;index" json:"venue_group_id"`
	Priority     int  `gorm:"not null" json:"priority"`
}

func (TeamVenuePreference) TableName() string {
	return "team_venue_preferences"
}

// SaveDivisionsRequest manually assigns teams to divisions
type SaveDivisionsRequest struct {
	Assignments map[uint]uint `json:"assignments" binding:"required"` // team id -> division id
}

// DivisionSummary is a division with its current team count
type DivisionSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	VenueGroupID uint   `json:"venue_group_id"`
	Capacity     int    `json:"capacity"`
	TeamsCount   int    `json:"teams_count"`
}

// VenueGroupSummary aggregates the divisions of a venue group
type VenueGroupSummary struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	TotalDivs  int               `json:"total_divs"`
	TotalTeams int               `json:"total_teams"`
	Divisions  []DivisionSummary `json:"divisions"`
}

// DivisionAllocationResponse reports the outcome of an automatic division allocation
type DivisionAllocationResponse struct {
	Divisions      []DivisionSummary `json:"divisions"`
	Assigned       int               `json:"assigned"`
	PreferenceHits int               `json:"preference_hits"`
}
