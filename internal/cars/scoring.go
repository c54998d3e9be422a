package cars

import (
	"math"
	"time"
)

const maxScore = 100

// CalculateCompleteness grants points for every optional field the seller
// filled in. Images, features and the documentation flags are capped.
func CalculateCompleteness(c *Car) int {
	score := 0

	switch n := len([]rune(c.Description)); {
	case n >= 100:
		score += 15
	case n >= 30:
		score += 8
	}
	if hasText(c.VIN) {
		score += 10
	}
	if c.EngineSize != nil && *c.EngineSize > 0 {
		score += 5
	}
	if c.Horsepower != nil && *c.Horsepower > 0 {
		score += 5
	}
	if hasText(c.Drivetrain) {
		score += 5
	}
	if hasText(c.ExteriorColor) {
		score += 5
	}
	if hasText(c.BodyType) {
		score += 5
	}

	score += min(c.ImagesCount*4, 20)
	score += min(len(c.Features)*3, 15)

	docs := 0
	if c.RegistrationPapers {
		docs += 5
	}
	if c.ServiceRecords {
		docs += 5
	}
	if c.Warranty {
		docs += 5
	}
	if c.AccidentHistory != nil && !*c.AccidentHistory {
		docs += 5
	}
	if c.NumberOfOwners != nil && *c.NumberOfOwners > 0 {
		docs += 5
	}
	score += min(docs, maxScore-score)

	return clampScore(score)
}

// CalculateQuality scores the car itself from its condition and history
func CalculateQuality(c *Car) int {
	score := 50

	if c.ConditionRating != nil {
		switch *c.ConditionRating {
		case RatingExcellent:
			score += 25
		case RatingVeryGood:
			score += 20
		case RatingGood:
			score += 15
		case RatingFair:
			score += 10
		case RatingPoor:
			score += 5
		}
	}

	switch {
	case c.Mileage < 20000:
		score += 15
	case c.Mileage < 50000:
		score += 10
	case c.Mileage < 100000:
		score += 5
	}

	if c.AccidentHistory != nil && !*c.AccidentHistory {
		score += 10
	}
	if c.NumberOfOwners != nil && *c.NumberOfOwners == 1 {
		score += 5
	}

	return clampScore(score)
}

// CalculateRanking blends the stored scores with engagement and boosts
func CalculateRanking(c *Car, now time.Time) float64 {
	engagement := float64(c.ViewsCount)/100 + float64(c.FavoritesCount)*0.5 + float64(c.ContactsCount)
	engagement = math.Min(engagement, 15)

	ranking := 0.4*float64(c.QualityScore) + 0.4*float64(c.CompletenessScore) + engagement
	if c.FeaturedAt(now) {
		ranking += 5
	}
	ranking = math.Max(0, math.Min(maxScore, ranking))
	return math.Round(ranking*100) / 100
}

// ApplyScores recomputes every stored score on c
func ApplyScores(c *Car, now time.Time) {
	c.CompletenessScore = CalculateCompleteness(c)
	c.QualityScore = CalculateQuality(c)
	c.RankingScore = CalculateRanking(c, now)
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

func clampScore(v int) int {
	return max(0, min(maxScore, v))
}
