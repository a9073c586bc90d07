// Package domain defines the core types and interfaces for cooking sync.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// TempUnit is the unit a temperature was declared in.
type TempUnit string

const (
	Celsius    TempUnit = "C"
	Fahrenheit TempUnit = "F"
)

// Appliance is the device a dish is cooked in.
type Appliance string

const (
	ApplianceOven      Appliance = "Oven"
	ApplianceAirFryer  Appliance = "Air Fryer"
	ApplianceMicrowave Appliance = "Microwave"
)

// OvenType is the heating style of an oven. Package instructions are
// usually written for one of these.
type OvenType string

const (
	OvenFan      OvenType = "Fan"
	OvenElectric OvenType = "Electric"
	OvenGas      OvenType = "Gas"
)

// ApplianceType is what the user cooks the oven group in. It is either an
// oven type or "Air Fryer".
type ApplianceType string

const (
	UserFan      ApplianceType = "Fan"
	UserElectric ApplianceType = "Electric"
	UserGas      ApplianceType = "Gas"
	UserAirFryer ApplianceType = "Air Fryer"
)

// ParseApplianceType maps a user-supplied name to an ApplianceType.
// Unknown or empty names fall back to Fan.
func ParseApplianceType(s string) ApplianceType {
	switch ApplianceType(s) {
	case UserElectric, UserGas, UserAirFryer:
		return ApplianceType(s)
	case "AirFryer", "airfryer", "air-fryer", "air fryer":
		return UserAirFryer
	case "electric":
		return UserElectric
	case "gas":
		return UserGas
	default:
		return UserFan
	}
}

// Instruction is a timed action attached to a dish or task, e.g. "flip"
// ten minutes after the dish goes in.
type Instruction struct {
	Label        string `json:"label"`
	AfterMinutes int    `json:"afterMinutes"`
}

// Dish is a single item to cook, as declared on its package.
type Dish struct {
	ID           string        `json:"id"`
	Owner        string        `json:"-"`
	Name         string        `json:"name"`
	Temperature  float64       `json:"temperature"`
	Unit         TempUnit      `json:"unit"`
	Appliance    Appliance     `json:"appliance"`
	OvenType     OvenType      `json:"ovenType,omitempty"`
	CookingTime  int           `json:"cookingTime"`
	Instructions []Instruction `json:"instructions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// InOven reports whether the dish shares the common oven temperature.
// Dishes stored before the appliance field existed are ovens.
func (d *Dish) InOven() bool {
	return d.Appliance == "" || d.Appliance == ApplianceOven
}

// TaskKind distinguishes tasks that run for a while from one-off actions.
type TaskKind string

const (
	// TaskDuration runs for a fixed time and finishes with the group.
	TaskDuration TaskKind = "duration"
	// TaskTrigger is an instantaneous action at a fixed offset.
	TaskTrigger TaskKind = "trigger"
)

// Task is a non-dish activity on the plan, like heating a sauce or
// warming plates.
type Task struct {
	ID           string        `json:"id"`
	Owner        string        `json:"-"`
	Name         string        `json:"name"`
	Kind         TaskKind      `json:"taskType"`
	Duration     int           `json:"duration,omitempty"`
	TriggerAt    int           `json:"triggerAt,omitempty"`
	Instructions []Instruction `json:"instructions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// User is a signed-in account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
