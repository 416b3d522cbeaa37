package pricing

import (
	"math"
	"math/rand"

	"bangalorehomes/server/internal/models"
)

// Amenity premiums added to the amenities multiplier.
const (
	parkingPremium      = 0.05
	gardenPremium       = 0.07
	swimmingPoolPremium = 0.15
	gymPremium          = 0.08
	securityPremium     = 0.06
	powerBackupPremium  = 0.04
)

// Rand supplies the randomness for comparable generation. *math/rand.Rand
// satisfies it; tests inject a scripted source to pin the output.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Engine turns a validated PredictionRequest into a price estimate. The
// scalar outputs depend only on the request; only the comparables draw from
// the Rand source.
type Engine struct {
	rand Rand
}

// lockedRand delegates to math/rand's locked global source, so one Engine
// can serve concurrent requests.
type lockedRand struct{}

func (lockedRand) Intn(n int) int   { return rand.Intn(n) }
func (lockedRand) Float64() float64 { return rand.Float64() }

// NewEngine returns an engine backed by the given random source, or the
// process-wide entropy-seeded one when r is nil.
func NewEngine(r Rand) *Engine {
	if r == nil {
		r = lockedRand{}
	}
	return &Engine{rand: r}
}

// Estimate prices a request: region base rate, BHK and bathroom multipliers,
// amenity premiums, then a ±10% range and three comparables.
func (e *Engine) Estimate(req models.PredictionRequest) models.PriceEstimate {
	basePrice := FallbackBasePrice
	if region, ok := RegionByID(req.Region); ok {
		basePrice = region.BasePrice
	}

	bhkMultiplier := float64(leadingInt(req.BHK))*0.25 + 1
	bathroomMultiplier := float64(leadingInt(req.Bathrooms))*0.15 + 1
	sqftPrice := float64(basePrice) * bhkMultiplier * bathroomMultiplier

	amenitiesMultiplier := 1.0
	if req.Parking {
		amenitiesMultiplier += parkingPremium
	}
	if req.Garden {
		amenitiesMultiplier += gardenPremium
	}
	if req.SwimmingPool {
		amenitiesMultiplier += swimmingPoolPremium
	}
	if req.Gym {
		amenitiesMultiplier += gymPremium
	}
	if req.Security {
		amenitiesMultiplier += securityPremium
	}
	if req.PowerBackup {
		amenitiesMultiplier += powerBackupPremium
	}

	finalPricePerSqft := sqftPrice * amenitiesMultiplier
	predictedPrice := roundInt(finalPricePerSqft * float64(req.SquareFeet))

	return models.PriceEstimate{
		PredictedPrice: predictedPrice,
		PriceRangeMin:  roundInt(float64(predictedPrice) * 0.9),
		PriceRangeMax:  roundInt(float64(predictedPrice) * 1.1),
		SimilarProperties: e.similarProperties(
			req.Region,
			leadingInt(req.BHK),
			leadingInt(req.Bathrooms),
			req.SquareFeet,
			predictedPrice,
		),
	}
}

// similarProperties generates the three comparables: one in the same region
// slightly smaller and cheaper, two in distinct other regions with bounded
// variations in specs and price.
func (e *Engine) similarProperties(regionID string, bhk, bathrooms, squareFeet, basePrice int) []models.SimilarProperty {
	location := regionID
	if region, ok := RegionByID(regionID); ok {
		location = region.Name
	}

	others := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.ID != regionID {
			others = append(others, r)
		}
	}

	properties := make([]models.SimilarProperty, 0, 3)

	// Same region, a bit smaller, 92-97% of the predicted price.
	properties = append(properties, models.SimilarProperty{
		Location:   location,
		BHK:        bhk,
		Bathrooms:  bathrooms,
		SquareFeet: clampArea(squareFeet - e.rand.Intn(100) - 50),
		Price:      roundInt(float64(basePrice) * (0.92 + e.rand.Float64()*0.05)),
	})

	// A different region, similar specs.
	second := others[e.rand.Intn(len(others))]
	extraBath := 0
	if e.rand.Float64() > 0.5 {
		extraBath = 1
	}
	properties = append(properties, models.SimilarProperty{
		Location:   second.Name,
		BHK:        bhk,
		Bathrooms:  bathrooms + extraBath,
		SquareFeet: clampArea(squareFeet + e.rand.Intn(150) - 50),
		Price:      roundInt(float64(basePrice) * (0.95 + e.rand.Float64()*0.15)),
	})

	// A third region, slightly different specs.
	remaining := make([]Region, 0, len(others)-1)
	for _, r := range others {
		if r.ID != second.ID {
			remaining = append(remaining, r)
		}
	}
	third := remaining[e.rand.Intn(len(remaining))]
	extraBHK := 0
	if e.rand.Float64() > 0.7 {
		extraBHK = 1
	}
	properties = append(properties, models.SimilarProperty{
		Location:   third.Name,
		BHK:        bhk + extraBHK,
		Bathrooms:  bathrooms,
		SquareFeet: clampArea(squareFeet + e.rand.Intn(200) - 100),
		Price:      roundInt(float64(basePrice) * (0.9 + e.rand.Float64()*0.2)),
	})

	return properties
}

// leadingInt parses the integer prefix of a count string, so "6+" reads as 6.
func leadingInt(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

// clampArea keeps generated square footage positive; tiny inputs can push
// the random offsets below zero.
func clampArea(sqft int) int {
	if sqft < 1 {
		return 1
	}
	return sqft
}
