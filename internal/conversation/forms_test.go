package conversation

import (
	"errors"
	"testing"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

func TestParseDish(t *testing.T) {
	tests := []struct {
		args      string
		name      string
		temp      float64
		unit      domain.TempUnit
		appliance domain.Appliance
		oven      domain.OvenType
		minutes   int
	}{
		{"Chips 200C 20 fan", "Chips", 200, domain.Celsius, domain.ApplianceOven, domain.OvenFan, 20},
		{"Roast chicken 400F 60 gas", "Roast chicken", 400, domain.Fahrenheit, domain.ApplianceOven, domain.OvenGas, 60},
		{"Pie 190c 40min", "Pie", 190, domain.Celsius, domain.ApplianceOven, "", 40},
		{"Wings 180°C 25 air fryer", "Wings", 180, domain.Celsius, domain.ApplianceAirFryer, "", 25},
		{"Soup 4 microwave", "Soup", 0, domain.Celsius, domain.ApplianceMicrowave, "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			in, err := ParseDish(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Name != tt.name || in.Unit != tt.unit || in.Appliance != tt.appliance || in.OvenType != tt.oven {
				t.Errorf("got %+v", in)
			}
			if in.CookingTime == nil || *in.CookingTime != tt.minutes {
				t.Errorf("cooking time: got %v, want %d", in.CookingTime, tt.minutes)
			}
			switch {
			case tt.temp == 0 && in.Temperature != nil:
				t.Errorf("expected no temperature, got %v", *in.Temperature)
			case tt.temp != 0 && (in.Temperature == nil || *in.Temperature != tt.temp):
				t.Errorf("temperature: got %v, want %v", in.Temperature, tt.temp)
			}
		})
	}
}

func TestParseDishRejectsMissingFields(t *testing.T) {
	tests := []struct {
		args string
		want string
	}{
		{"", "invalid input: cooking time in minutes is required"},
		{"Chips 200C fan", "invalid input: cooking time in minutes is required"},
		{"Chips 200C 0", "invalid input: cooking time must be at least 1 minute"},
		{"Chips 20", "invalid input: temperature with a unit is required, e.g. 200C"},
		{"Chips 200 20 fan", "invalid input: temperature with a unit is required, e.g. 200C"},
		{"Chips 0C 20", "invalid input: temperature must be above zero"},
		{"200C 20 gas", "invalid input: dish name is required"},
		{"4 microwave", "invalid input: dish name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			_, err := ParseDish(tt.args)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("got %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseTask(t *testing.T) {
	tests := []struct {
		args    string
		name    string
		kind    domain.TaskKind
		minutes int
		wantErr string
	}{
		{args: "Rice 18", name: "Rice", kind: domain.TaskDuration, minutes: 18},
		{args: "Boil pasta water 12m", name: "Boil pasta water", kind: domain.TaskDuration, minutes: 12},
		{args: "Warm plates at 10", name: "Warm plates", kind: domain.TaskTrigger, minutes: 10},
		{args: "Light candles at 0", name: "Light candles", kind: domain.TaskTrigger, minutes: 0},
		{args: "", wantErr: "invalid input: minutes are required"},
		{args: "Rice", wantErr: "invalid input: minutes are required"},
		{args: "Rice 0", wantErr: "invalid input: duration must be at least 1 minute"},
		{args: "18", wantErr: "invalid input: task name is required"},
		{args: "at 10", wantErr: "invalid input: task name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			in, err := ParseTask(tt.args)
			if tt.wantErr != "" {
				if !errors.Is(err, domain.ErrInvalidInput) || err.Error() != tt.wantErr {
					t.Fatalf("got %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Name != tt.name || in.Kind != tt.kind {
				t.Fatalf("got %+v", in)
			}
			got := in.Duration
			if tt.kind == domain.TaskTrigger {
				got = in.TriggerAt
			}
			if got == nil || *got != tt.minutes {
				t.Errorf("minutes: got %v, want %d", got, tt.minutes)
			}
		})
	}
}
