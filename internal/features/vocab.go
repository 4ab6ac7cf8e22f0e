package features

// FlatTypes is the closed vocabulary of property flat types. Input outside
// this set fails validation; it is never silently defaulted.
var FlatTypes = []string{"Detached", "Flat", "Semi Detached", "Terraced"}

// LeaseTypes is the closed vocabulary of lease types.
var LeaseTypes = []string{"Leasehold", "Freehold"}

// CategoryTerms is the fixed vocabulary of geocoding category/subcategory
// values the price model was trained on. Geocoding taxonomies are open-ended,
// so values outside this set simply leave every indicator at zero.
var CategoryTerms = []string{
	"amenity", "building", "highway", "landuse", "place",
	"shop", "cafe", "city", "convenience", "cycleway",
	"footway", "house", "houses", "living_street", "pedestrian",
	"primary", "residential", "restaurant", "secondary", "service",
	"suburb", "tertiary", "trunk", "unclassified", "yes",
}

func contains(vocab []string, v string) bool {
	for _, term := range vocab {
		if term == v {
			return true
		}
	}
	return false
}
