package models

import (
	"fmt"

	"wotmaps-api/internal/request"
)

const maxTierSpread = 2

// PlayedMapPayload is the report a game client sends after a battle starts
type PlayedMapPayload struct {
	Server     string `json:"server" validate:"max=10"`
	Map        string `json:"map" validate:"max=50"`
	Mode       string `json:"mode" validate:"max=50"`
	BottomTier int16  `json:"bottom_tier" validate:"min=1,max=10"`
	TopTier    int16  `json:"top_tier" validate:"min=1,max=10"`
}

// Validate checks the tier spread of the battle.
func (p *PlayedMapPayload) Validate() error {
	spread := p.TopTier - p.BottomTier
	if spread < 0 || spread > maxTierSpread {
		return &request.ValidationError{Violations: []request.Violation{{
			Field:   "top_tier",
			Rule:    "tier_spread",
			Message: fmt.Sprintf("top tier must be between bottom tier and bottom tier + %d", maxTierSpread),
		}}}
	}
	return nil
}

// CurrentMapsQuery selects the maps played on one server within a tier range
type CurrentMapsQuery struct {
	Server  string `schema:"server,required" validate:"max=10"`
	MinTier int16  `schema:"min_tier,required" validate:"min=1,max=10"`
	MaxTier int16  `schema:"max_tier,required" validate:"min=1,max=10,gtefield=MinTier"`
}

// CurrentMap is one aggregated row of recent reports
type CurrentMap struct {
	Map   string `db:"map"`
	Mode  string `db:"mode"`
	Count int64  `db:"count"`
}

// CurrentServer is the number of recent reports on one server
type CurrentServer struct {
	Name   string `db:"name"`
	Region string `db:"region"`
	Count  int64  `db:"count"`
}

// CurrentMapsResponse groups map counts by mode
type CurrentMapsResponse struct {
	Total int                         `json:"total"`
	Modes map[string]map[string]int64 `json:"modes"`
}

// NewCurrentMapsResponse groups rows by mode. Total is the number of distinct
// map and mode combinations.
func NewCurrentMapsResponse(rows []CurrentMap) CurrentMapsResponse {
	resp := CurrentMapsResponse{
		Total: len(rows),
		Modes: make(map[string]map[string]int64),
	}
	for _, row := range rows {
		maps, ok := resp.Modes[row.Mode]
		if !ok {
			maps = make(map[string]int64)
			resp.Modes[row.Mode] = maps
		}
		maps[row.Map] = row.Count
	}
	return resp
}

// CurrentServersResponse groups server counts by region
type CurrentServersResponse struct {
	Total   int                         `json:"total"`
	Regions map[string]map[string]int64 `json:"regions"`
}

// NewCurrentServersResponse groups rows by region. Total is the number of
// active servers.
func NewCurrentServersResponse(rows []CurrentServer) CurrentServersResponse {
	resp := CurrentServersResponse{
		Total:   len(rows),
		Regions: make(map[string]map[string]int64),
	}
	for _, row := range rows {
		servers, ok := resp.Regions[row.Region]
		if !ok {
			servers = make(map[string]int64)
			resp.Regions[row.Region] = servers
		}
		servers[row.Name] = row.Count
	}
	return resp
}

// AuthenticateResponse carries a freshly issued session token
type AuthenticateResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Detail           any    `json:"detail,omitempty"`
}

// NotEnoughBattlesDetail is the detail of a NOT_ENOUGH_BATTLES error
type NotEnoughBattlesDetail struct {
	Required uint32 `json:"required"`
}

// UnrecognizedValueDetail echoes the values that are not in the catalog
type UnrecognizedValueDetail struct {
	Server string `json:"server"`
	Map    string `json:"map"`
	Mode   string `json:"mode"`
}

// HealthResponse reports the state of the backing services
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
