package valuation

const (
	recAddDetail       = "Confidence is below 50%: add more property details for a sharper estimate."
	recPropertyType    = "Specify the property type (apartment, villa, duplex, ...)."
	recAge             = "Add the building age band."
	recNeighborhood    = "Add the neighborhood tier."
	recFinishing       = "Add the finishing grade."
	recRooms           = "Add bedroom and bathroom counts."
	recReliableEnough  = "Good level of detail: this estimate is reasonably reliable."
	lowConfidenceLimit = 50
	highConfidence     = 70
)

// recommend builds the advisory list. The low-confidence prompt always comes
// before field-specific hints.
func recommend(attrs Attributes, conf int) []string {
	recs := make([]string, 0, 4)
	if conf < lowConfidenceLimit {
		recs = append(recs, recAddDetail)
	}
	if !attrs.Present(FieldPropertyType) {
		recs = append(recs, recPropertyType)
	}
	if !attrs.Present(FieldAge) {
		recs = append(recs, recAge)
	}
	if !attrs.Present(FieldNeighborhoodTier) {
		recs = append(recs, recNeighborhood)
	}
	if !attrs.Present(FieldFinishing) {
		recs = append(recs, recFinishing)
	}
	if !attrs.Present(FieldBedrooms) || !attrs.Present(FieldBathrooms) {
		recs = append(recs, recRooms)
	}
	if conf >= highConfidence {
		recs = append(recs, recReliableEnough)
	}
	return recs
}
