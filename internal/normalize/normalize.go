// Package normalize converts declared dish temperatures to a common
// Fan-oven baseline in Celsius.
package normalize

import (
	"math"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

const (
	// OvenOffset is how much hotter Electric and Gas ovens run than Fan.
	OvenOffset = 20
	// AirFryerOffset is subtracted from the Fan temperature for an air fryer.
	AirFryerOffset = 15
	// AirFryerTimeFactor scales cooking time for an air fryer.
	AirFryerTimeFactor = 0.8
)

// Round rounds half up, the way package-instruction calculators do.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundToTen rounds to the nearest 10. Oven dials move in 10° steps.
func RoundToTen(v float64) int {
	return Round(v/10) * 10
}

// ToCelsius converts Fahrenheit to whole degrees Celsius.
func ToCelsius(f float64) int {
	return Round((f - 32) * 5 / 9)
}

// ToFahrenheit converts Celsius to whole degrees Fahrenheit.
func ToFahrenheit(c float64) int {
	return Round(c*9/5 + 32)
}

// Normalize converts a declared temperature to the Fan-oven baseline in
// Celsius. Unknown oven types are treated as Fan.
func Normalize(value float64, unit domain.TempUnit, oven domain.OvenType) float64 {
	c := value
	if unit == domain.Fahrenheit {
		c = float64(ToCelsius(value))
	}

	switch oven {
	case domain.OvenElectric, domain.OvenGas:
		return c - OvenOffset
	default:
		return c
	}
}

// AirFryer converts a Fan-oven temperature and time to air fryer settings.
func AirFryer(fanC float64, minutes int) (float64, int) {
	return fanC - AirFryerOffset, Round(float64(minutes) * AirFryerTimeFactor)
}

// FromBaseline converts a Fan-equivalent temperature to the dial setting
// for the given appliance.
func FromBaseline(c int, appliance domain.ApplianceType) int {
	switch appliance {
	case domain.UserElectric, domain.UserGas:
		return c + OvenOffset
	case domain.UserAirFryer:
		return c - AirFryerOffset
	default:
		return c
	}
}
