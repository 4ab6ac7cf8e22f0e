package geocode

// Place models one Nominatim search result directly against the service
// schema. The fields named "class" and "type" on the wire are mapped here at
// decode time, so no textual key rewriting is ever applied to the payload.
// Latitude and longitude arrive as JSON strings. Class, Type, and Importance
// are pointers so an absent key is distinguishable from an empty value.
type Place struct {
	PlaceID     int64    `json:"place_id"`
	OSMType     string   `json:"osm_type"`
	OSMID       int64    `json:"osm_id"`
	DisplayName string   `json:"display_name"`
	Class       *string  `json:"class"`
	Type        *string  `json:"type"`
	Importance  *float64 `json:"importance"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
}
