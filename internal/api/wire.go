package api

import (
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/normalize"
	"github.com/hammamikhairi/cooksync/internal/plan"
)

// PlanRequest selects the appliance the oven group is cooked in. The
// snake_case field is accepted for older clients.
type PlanRequest struct {
	UserApplianceType string `json:"userApplianceType"`
	UserOvenType      string `json:"user_oven_type,omitempty"`
}

// Appliance resolves the requested appliance, defaulting to Fan.
func (r PlanRequest) Appliance() domain.ApplianceType {
	if r.UserApplianceType != "" {
		return domain.ParseApplianceType(r.UserApplianceType)
	}
	return domain.ParseApplianceType(r.UserOvenType)
}

// PlanResponse is the wire form of a plan.
type PlanResponse struct {
	OptimalTemperatureC  int                   `json:"optimalTemperatureC"`
	OptimalTemperatureF  int                   `json:"optimalTemperatureF"`
	BaselineTemperatureC int                   `json:"baselineTemperatureC"`
	UserApplianceType    domain.ApplianceType  `json:"userApplianceType"`
	TotalTimeMinutes     int                   `json:"totalTimeMinutes"`
	Timeline             []domain.TimelineItem `json:"timeline"`
}

// NewPlanResponse converts a plan for the wire.
func NewPlanResponse(p *domain.Plan) PlanResponse {
	timeline := p.Timeline
	if timeline == nil {
		timeline = []domain.TimelineItem{}
	}
	return PlanResponse{
		OptimalTemperatureC:  p.ApplianceTemp,
		OptimalTemperatureF:  normalize.ToFahrenheit(float64(p.ApplianceTemp)),
		BaselineTemperatureC: p.TargetTemp,
		UserApplianceType:    p.Appliance,
		TotalTimeMinutes:     p.TotalTime,
		Timeline:             timeline,
	}
}

// Plan rebuilds the domain plan, regrouping the timeline into steps.
func (r PlanResponse) Plan() *domain.Plan {
	return &domain.Plan{
		TargetTemp:    r.BaselineTemperatureC,
		ApplianceTemp: r.OptimalTemperatureC,
		Appliance:     r.UserApplianceType,
		TotalTime:     r.TotalTimeMinutes,
		Timeline:      r.Timeline,
		Steps:         plan.Steps(r.Timeline),
	}
}

// SignInRequest carries a Google ID token.
type SignInRequest struct {
	Credential string `json:"credential"`
}

// SignInResponse is returned after a successful sign-in.
type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeletedResponse reports a bulk delete.
type DeletedResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// ErrorResponse is the body of every error. Fields lists per-field
// validation failures.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}
