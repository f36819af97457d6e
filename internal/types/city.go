package types

// City is one entry of the in-memory catalog. Catalog rows come from the
// embedded cities CSV, so the csv tags mirror its header.
type City struct {
	Name       string   `json:"name" csv:"name"`
	Country    string   `json:"country" csv:"country"`
	Latitude   float64  `json:"latitude" csv:"latitude"`
	Longitude  float64  `json:"longitude" csv:"longitude"`
	Population int      `json:"population" csv:"population"`
	Tags       []string `json:"tags" csv:"-"`

	// RawTags holds the pipe-separated tag column as stored in the CSV.
	RawTags string `json:"-" csv:"tags"`
}

// HasTag reports whether the city carries the given tourism tag.
func (c City) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ValidCoordinates reports whether the city's coordinates are inside the
// WGS84 envelope.
func (c City) ValidCoordinates() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
