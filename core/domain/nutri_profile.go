package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Profile enums
// =============================================================================

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUndisclosed Gender = "undisclosed"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type TrainingFrequency string

const (
	FrequencyLow        TrainingFrequency = "1-2"
	FrequencyMedium     TrainingFrequency = "3-4"
	FrequencyHigh       TrainingFrequency = "5+"
	FrequencyOccasional TrainingFrequency = "occasional"
)

type PrimaryGoal string

const (
	GoalPerformance   PrimaryGoal = "performance"
	GoalWeightLoss    PrimaryGoal = "weight_loss"
	GoalMuscleGain    PrimaryGoal = "muscle_gain"
	GoalEndurance     PrimaryGoal = "endurance"
	GoalRecovery      PrimaryGoal = "recovery"
	GoalGeneralHealth PrimaryGoal = "general_health"
)

type SweatLevel string

const (
	SweatLow    SweatLevel = "low"
	SweatMedium SweatLevel = "medium"
	SweatHigh   SweatLevel = "high"
)

type CaffeineTolerance string

const (
	CaffeineNone   CaffeineTolerance = "none"
	CaffeineLow    CaffeineTolerance = "low"
	CaffeineMedium CaffeineTolerance = "medium"
	CaffeineHigh   CaffeineTolerance = "high"
)

type DietaryRestriction string

const (
	DietNone        DietaryRestriction = "none"
	DietVegan       DietaryRestriction = "vegan"
	DietVegetarian  DietaryRestriction = "vegetarian"
	DietGlutenFree  DietaryRestriction = "gluten_free"
	DietLactoseFree DietaryRestriction = "lactose_free"
	DietNutFree     DietaryRestriction = "nut_free"
)

// =============================================================================
// UserProfile
// =============================================================================

// UserProfile is the canonical physiological profile used by the pipeline.
// Every attribute is guaranteed to hold one of the enum members above.
type UserProfile struct {
	UserID             int64              `json:"user_id" db:"user_id"`
	Age                int                `json:"age" db:"age"`
	WeightKg           float64            `json:"weight" db:"weight"`
	HeightCm           float64            `json:"height" db:"height"`
	Gender             Gender             `json:"gender" db:"gender"`
	ActivityLevel      ActivityLevel      `json:"activity_level" db:"activity_level"`
	TrainingFrequency  TrainingFrequency  `json:"training_frequency" db:"training_frequency"`
	PrimaryGoal        PrimaryGoal        `json:"primary_goal" db:"primary_goal"`
	SweatLevel         SweatLevel         `json:"sweat_level" db:"sweat_level"`
	CaffeineTolerance  CaffeineTolerance  `json:"caffeine_tolerance" db:"caffeine_tolerance"`
	DietaryRestriction DietaryRestriction `json:"dietary_restriction" db:"dietary_restriction"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// RawProfile carries the loosely-typed attributes as upstream clients send
// them. Dietary restrictions may arrive as a list; only the first entry is
// used, matching the single-restriction schema.
type RawProfile struct {
	Age                 int      `json:"age"`
	WeightKg            float64  `json:"weight"`
	HeightCm            float64  `json:"height"`
	Gender              string   `json:"gender"`
	ActivityLevel       string   `json:"activity_level"`
	TrainingFrequency   string   `json:"training_frequency"`
	PrimaryGoal         string   `json:"primary_goal"`
	SweatLevel          string   `json:"sweat_level"`
	CaffeineTolerance   string   `json:"caffeine_tolerance"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// =============================================================================
// Profile normalization
//
// Clients historically sent either the English API vocabulary or the Spanish
// vocabulary of the product UI. Both map deterministically onto the canonical
// enums; anything unrecognized degrades to a fixed default and never fails.
// =============================================================================

var genderSynonyms = map[string]Gender{
	"male": GenderMale, "m": GenderMale, "hombre": GenderMale,
	"female": GenderFemale, "f": GenderFemale, "mujer": GenderFemale,
	"other": GenderOther, "otro": GenderOther,
	"undisclosed": GenderUndisclosed, "prefer_not_to_say": GenderUndisclosed,
	"prefiero no decir": GenderUndisclosed,
}

var activitySynonyms = map[string]ActivityLevel{
	"sedentary": ActivitySedentary, "sedentario": ActivitySedentary,
	"moderate": ActivityModerate, "moderado": ActivityModerate,
	"active": ActivityActive, "activo": ActivityActive,
	"very_active": ActivityVeryActive, "muy activo": ActivityVeryActive,
}

var frequencySynonyms = map[string]TrainingFrequency{
	"1-2": FrequencyLow,
	"3-4": FrequencyMedium,
	"5+":  FrequencyHigh,
	"occasional": FrequencyOccasional, "ocacional": FrequencyOccasional,
	"ocasional": FrequencyOccasional,
}

var goalSynonyms = map[string]PrimaryGoal{
	"performance": GoalPerformance, "mejor rendimiento": GoalPerformance,
	"weight_loss": GoalWeightLoss, "perder peso": GoalWeightLoss,
	"muscle_gain": GoalMuscleGain, "ganar musculo": GoalMuscleGain,
	"ganar músculo": GoalMuscleGain,
	"endurance":     GoalEndurance, "resistencia": GoalEndurance,
	"recovery": GoalRecovery, "recuperacion": GoalRecovery,
	"recuperación":   GoalRecovery,
	"general_health": GoalGeneralHealth, "por salud": GoalGeneralHealth,
	"health": GoalGeneralHealth,
}

var sweatSynonyms = map[string]SweatLevel{
	"low": SweatLow, "bajo": SweatLow,
	"medium": SweatMedium, "medio": SweatMedium,
	"high": SweatHigh, "alto": SweatHigh,
}

var caffeineSynonyms = map[string]CaffeineTolerance{
	"none": CaffeineNone, "no": CaffeineNone,
	"low": CaffeineLow, "bajo": CaffeineLow,
	"medium": CaffeineMedium, "medio": CaffeineMedium,
	"high": CaffeineHigh, "alto": CaffeineHigh,
}

var dietSynonyms = map[string]DietaryRestriction{
	"none": DietNone, "no": DietNone, "ninguna": DietNone,
	"vegan": DietVegan, "vegano": DietVegan,
	"vegetarian": DietVegetarian, "vegetariano": DietVegetarian,
	"gluten_free": DietGlutenFree, "gluten-free": DietGlutenFree,
	"libre de gluten": DietGlutenFree,
	"lactose_free":    DietLactoseFree, "libre de lactosa": DietLactoseFree,
	"nut_free": DietNutFree, "libre de frutos secos": DietNutFree,
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func NormalizeGender(s string) Gender {
	if v, ok := genderSynonyms[normKey(s)]; ok {
		return v
	}
	return GenderOther
}

func NormalizeActivityLevel(s string) ActivityLevel {
	if v, ok := activitySynonyms[normKey(s)]; ok {
		return v
	}
	return ActivityModerate
}

func NormalizeTrainingFrequency(s string) TrainingFrequency {
	if v, ok := frequencySynonyms[normKey(s)]; ok {
		return v
	}
	return FrequencyMedium
}

func NormalizePrimaryGoal(s string) PrimaryGoal {
	if v, ok := goalSynonyms[normKey(s)]; ok {
		return v
	}
	return GoalGeneralHealth
}

func NormalizeSweatLevel(s string) SweatLevel {
	if v, ok := sweatSynonyms[normKey(s)]; ok {
		return v
	}
	return SweatMedium
}

func NormalizeCaffeineTolerance(s string) CaffeineTolerance {
	if v, ok := caffeineSynonyms[normKey(s)]; ok {
		return v
	}
	return CaffeineMedium
}

func NormalizeDietaryRestriction(s string) DietaryRestriction {
	if v, ok := dietSynonyms[normKey(s)]; ok {
		return v
	}
	return DietNone
}

// NormalizeProfile maps a raw client profile onto the canonical enums.
// It never fails; unrecognized values take the documented defaults.
func NormalizeProfile(userID int64, raw *RawProfile) *UserProfile {
	restriction := ""
	if len(raw.DietaryRestrictions) > 0 {
		restriction = raw.DietaryRestrictions[0]
	}

	return &UserProfile{
		UserID:             userID,
		Age:                raw.Age,
		WeightKg:           raw.WeightKg,
		HeightCm:           raw.HeightCm,
		Gender:             NormalizeGender(raw.Gender),
		ActivityLevel:      NormalizeActivityLevel(raw.ActivityLevel),
		TrainingFrequency:  NormalizeTrainingFrequency(raw.TrainingFrequency),
		PrimaryGoal:        NormalizePrimaryGoal(raw.PrimaryGoal),
		SweatLevel:         NormalizeSweatLevel(raw.SweatLevel),
		CaffeineTolerance:  NormalizeCaffeineTolerance(raw.CaffeineTolerance),
		DietaryRestriction: NormalizeDietaryRestriction(restriction),
	}
}
