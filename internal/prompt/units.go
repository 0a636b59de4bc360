package prompt

import (
	"fmt"
	"math"
)

// KgPerLb is the standard kilogram to pound conversion factor.
const KgPerLb = 2.20462

// BMI derives body mass index from height in centimeters and weight in
// kilograms.
func BMI(heightCm, weightKg float64) float64 {
	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}

// BMICategory buckets a BMI value into the four standard categories.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal weight"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

// CmToFeetInches converts centimeters to a feet'inches" string. Both
// components truncate toward zero.
func CmToFeetInches(cm float64) string {
	inches := cm / 2.54
	feet := int(inches) / 12
	remaining := int(inches) % 12
	return fmt.Sprintf("%d'%d\"", feet, remaining)
}

// KgToLbs converts kilograms to whole pounds, rounded to the nearest int.
func KgToLbs(kg float64) int {
	return int(math.Round(kg * KgPerLb))
}
