package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/engine"
)

// Usage lines for the add commands.
const (
	DishUsage = "add dish <name> <temp>C|F <minutes> [fan|electric|gas|air fryer|microwave]"
	TaskUsage = "add task <name> <minutes>  or  add task <name> at <minute>"
)

var (
	tempToken    = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)°?([CF])$`)
	minutesToken = regexp.MustCompile(`(?i)^(\d+)(?:m|min)?$`)
)

// ParseDish reads the arguments of "add dish" into a dish form, e.g.
// "Roast chicken 200C 60 gas" or "Soup 4 microwave". Missing fields are
// reported before anything is sent to the server.
func ParseDish(args string) (engine.DishInput, error) {
	fields := strings.Fields(args)
	in := engine.DishInput{Unit: domain.Celsius, Appliance: domain.ApplianceOven}

	n := len(fields)
	if n >= 2 && strings.EqualFold(fields[n-2]+" "+fields[n-1], "air fryer") {
		in.Appliance = domain.ApplianceAirFryer
		fields = fields[:n-2]
	} else if n >= 1 {
		if app, oven, ok := placeName(fields[n-1]); ok {
			in.Appliance, in.OvenType = app, oven
			fields = fields[:n-1]
		}
	}

	minutes, fields, ok := popMinutes(fields)
	if !ok {
		return in, formError("cooking time in minutes is required")
	}
	if minutes < 1 {
		return in, formError("cooking time must be at least 1 minute")
	}
	in.CookingTime = &minutes

	if n := len(fields); n > 0 {
		if m := tempToken.FindStringSubmatch(fields[n-1]); m != nil {
			temp, _ := strconv.ParseFloat(m[1], 64)
			in.Temperature = &temp
			in.Unit = domain.TempUnit(strings.ToUpper(m[2]))
			fields = fields[:n-1]
		}
	}
	if in.Temperature == nil && in.Appliance != domain.ApplianceMicrowave {
		return in, formError("temperature with a unit is required, e.g. 200C")
	}
	if in.Temperature != nil && *in.Temperature <= 0 {
		return in, formError("temperature must be above zero")
	}

	in.Name = strings.Join(fields, " ")
	if in.Name == "" {
		return in, formError("dish name is required")
	}
	return in, nil
}

// ParseTask reads the arguments of "add task" into a task form. A trailing
// "at <minute>" makes a trigger task, anything else a duration task.
func ParseTask(args string) (engine.TaskInput, error) {
	fields := strings.Fields(args)
	in := engine.TaskInput{Kind: domain.TaskDuration}

	minutes, fields, ok := popMinutes(fields)
	if !ok {
		return in, formError("minutes are required")
	}
	if n := len(fields); n > 0 && strings.EqualFold(fields[n-1], "at") {
		in.Kind = domain.TaskTrigger
		in.TriggerAt = &minutes
		fields = fields[:n-1]
	} else {
		if minutes < 1 {
			return in, formError("duration must be at least 1 minute")
		}
		in.Duration = &minutes
	}

	in.Name = strings.Join(fields, " ")
	if in.Name == "" {
		return in, formError("task name is required")
	}
	return in, nil
}

func popMinutes(fields []string) (int, []string, bool) {
	n := len(fields)
	if n == 0 {
		return 0, fields, false
	}
	m := minutesToken.FindStringSubmatch(fields[n-1])
	if m == nil {
		return 0, fields, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fields, false
	}
	return v, fields[:n-1], true
}

func placeName(s string) (domain.Appliance, domain.OvenType, bool) {
	switch strings.ToLower(s) {
	case "fan":
		return domain.ApplianceOven, domain.OvenFan, true
	case "electric":
		return domain.ApplianceOven, domain.OvenElectric, true
	case "gas":
		return domain.ApplianceOven, domain.OvenGas, true
	case "oven":
		return domain.ApplianceOven, "", true
	case "airfryer":
		return domain.ApplianceAirFryer, "", true
	case "microwave":
		return domain.ApplianceMicrowave, "", true
	default:
		return "", "", false
	}
}

func formError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}
