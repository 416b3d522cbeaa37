package pricing

// Region is one of the fixed Bangalore neighborhoods the predictor knows
// about. BasePrice is in INR per square foot.
type Region struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BasePrice int    `json:"basePrice"`
}

// FallbackBasePrice is used when a request carries a region outside the
// known set. Unknown regions are not rejected upstream; they price at a
// middle-of-the-road rate instead.
const FallbackBasePrice = 10000

var regions = []Region{
	{ID: "indiranagar", Name: "Indiranagar", BasePrice: 15000},
	{ID: "koramangala", Name: "Koramangala", BasePrice: 14000},
	{ID: "jayanagar", Name: "Jayanagar", BasePrice: 12000},
	{ID: "whitefield", Name: "Whitefield", BasePrice: 9000},
	{ID: "electronic-city", Name: "Electronic City", BasePrice: 7000},
	{ID: "rajajinagar", Name: "Rajajinagar", BasePrice: 10000},
	{ID: "hebbal", Name: "Hebbal", BasePrice: 8500},
}

// Regions returns the full region table in its canonical order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionByID looks up a region by its code.
func RegionByID(id string) (Region, bool) {
	for _, r := range regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}
