package health

import (
	"math"
	"strconv"
	"strings"
)

// Gender is the closed set of profile gender markers used by the backend.
type Gender string

const (
	// GenderMale marks a male profile.
	GenderMale Gender = "M"
	// GenderFemale marks a female profile.
	GenderFemale Gender = "F"
	// GenderOther marks a profile outside the binary set.
	GenderOther Gender = "O"
	// GenderUnspecified is the zero value for profiles without a gender.
	GenderUnspecified Gender = ""
)

// ParseGender normalizes backend and long-form gender spellings into a
// [Gender]. Unknown input maps to [GenderUnspecified].
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	case "o", "other":
		return GenderOther
	default:
		return GenderUnspecified
	}
}

// Value is a derived metric result. The zero value is the "N/A" sentinel
// returned for inputs outside a metric's domain.
type Value struct {
	value float64
	valid bool
}

// Of wraps a computed metric value.
func Of(v float64) Value {
	return Value{value: v, valid: true}
}

// NA returns the "N/A" sentinel.
func NA() Value {
	return Value{}
}

// Valid reports whether the metric was computable from its inputs.
func (v Value) Valid() bool {
	return v.valid
}

// Float returns the numeric value and whether it is valid.
func (v Value) Float() (float64, bool) {
	return v.value, v.valid
}

// String renders the metric for display; invalid values render as "N/A".
func (v Value) String() string {
	if !v.valid {
		return "N/A"
	}
	return strconv.FormatFloat(v.value, 'f', -1, 64)
}

// BMI computes the Body Mass Index from weight in kilograms and height in
// centimeters, rounded to one decimal place. Zero height yields N/A.
func BMI(weightKg, heightCm float64) Value {
	if heightCm == 0 {
		return NA()
	}
	m := heightCm / 100
	return Of(round(weightKg/(m*m), 1))
}

// WaistToHeightRatio computes waist circumference divided by height, both in
// centimeters, rounded to two decimal places. Zero height yields N/A.
func WaistToHeightRatio(waistCm, heightCm float64) Value {
	if heightCm == 0 {
		return NA()
	}
	return Of(round(waistCm/heightCm, 2))
}

// BMR estimates the basal metabolic rate in kcal/day using the revised
// Harris-Benedict equations, rounded to the nearest whole calorie.
//
// The equations are only defined for male and female profiles; any other
// gender, or a missing weight, height, or age, yields N/A.
func BMR(weightKg, heightCm float64, ageYears int, gender Gender) Value {
	if weightKg == 0 || heightCm == 0 || ageYears == 0 {
		return NA()
	}

	age := float64(ageYears)
	switch gender {
	case GenderMale:
		return Of(math.Round(88.36 + 13.4*weightKg + 4.8*heightCm - 5.7*age))
	case GenderFemale:
		return Of(math.Round(447.6 + 9.2*weightKg + 3.1*heightCm - 4.3*age))
	default:
		return NA()
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
