package valuation

// Lookup tables are package level and read-only after init. A miss on any
// multiplier table yields 1.0 so unknown values never abort a valuation.

const neutralMultiplier = 1.0

// DefaultBasePricePerSqm prices cities missing from the table.
const DefaultBasePricePerSqm = 2500.0

var defaultCityBasePrices = map[string]float64{
	"Cairo":          3500,
	"New Cairo":      4500,
	"Giza":           3000,
	"Sheikh Zayed":   4200,
	"6th of October": 3200,
	"Alexandria":     2800,
	"North Coast":    5000,
	"Hurghada":       2600,
	"Mansoura":       2200,
	"Tanta":          1800,
}

// PropertyType is the kind of property being valued.
type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyVilla     PropertyType = "villa"
	PropertyTownhouse PropertyType = "townhouse"
	PropertyTwinhouse PropertyType = "twinhouse"
	PropertyDuplex    PropertyType = "duplex"
	PropertyPenthouse PropertyType = "penthouse"
	PropertyStudio    PropertyType = "studio"
	PropertyChalet    PropertyType = "chalet"
	PropertyBuilding  PropertyType = "building"
	PropertyLand      PropertyType = "land"
	PropertyOffice    PropertyType = "office"
	PropertyShop      PropertyType = "shop"
)

var propertyTypeMultipliers = map[PropertyType]float64{
	PropertyApartment: 1.00,
	PropertyVilla:     1.15,
	PropertyTownhouse: 1.10,
	PropertyTwinhouse: 1.09,
	PropertyDuplex:    1.08,
	PropertyPenthouse: 1.12,
	PropertyStudio:    0.92,
	PropertyChalet:    1.05,
	PropertyBuilding:  1.20,
	PropertyLand:      0.85,
	PropertyOffice:    1.05,
	PropertyShop:      1.25,
}

// Multiplier implements the property-type lookup.
func (p PropertyType) Multiplier() float64 { return lookup(propertyTypeMultipliers, p) }

// HasLandPremium reports whether surplus land adds value for this type.
func (p PropertyType) HasLandPremium() bool {
	return p == PropertyVilla || p == PropertyBuilding || p == PropertyLand
}

// AgeBand buckets the building age.
type AgeBand string

var ageBandMultipliers = map[AgeBand]float64{
	"new":   1.10,
	"1-5":   1.05,
	"5-10":  1.00,
	"10-20": 0.92,
	"20-30": 0.85,
	"30+":   0.78,
}

func (a AgeBand) Multiplier() float64 { return lookup(ageBandMultipliers, a) }

// NeighborhoodTier is the user-declared standing of the area. It is
// independent of the computed neighborhood quality score.
type NeighborhoodTier string

var neighborhoodTierMultipliers = map[NeighborhoodTier]float64{
	"premium":  1.25,
	"upscale":  1.12,
	"mid":      1.00,
	"standard": 0.95,
	"popular":  0.85,
}

func (n NeighborhoodTier) Multiplier() float64 { return lookup(neighborhoodTierMultipliers, n) }

// Facade is the side the property faces.
type Facade string

var facadeMultipliers = map[Facade]float64{
	"main-street": 1.05,
	"corner":      1.08,
	"garden":      1.06,
	"sea":         1.12,
	"side":        0.98,
	"back":        0.95,
}

func (f Facade) Multiplier() float64 { return lookup(facadeMultipliers, f) }

// StreetWidth describes the fronting street.
type StreetWidth string

var streetWidthMultipliers = map[StreetWidth]float64{
	"narrow": 0.95,
	"medium": 1.00,
	"wide":   1.04,
	"main":   1.07,
}

func (s StreetWidth) Multiplier() float64 { return lookup(streetWidthMultipliers, s) }

// Finishing is the interior finishing grade.
type Finishing string

var finishingMultipliers = map[Finishing]float64{
	"core-shell": 0.80,
	"semi":       0.90,
	"standard":   1.00,
	"super-lux":  1.10,
	"ultra-lux":  1.18,
}

func (f Finishing) Multiplier() float64 { return lookup(finishingMultipliers, f) }

// View is the dominant view from the property.
type View string

var viewMultipliers = map[View]float64{
	"internal": 0.97,
	"street":   1.00,
	"garden":   1.04,
	"pool":     1.05,
	"park":     1.05,
	"landmark": 1.08,
	"nile":     1.15,
	"sea":      1.15,
}

func (v View) Multiplier() float64 { return lookup(viewMultipliers, v) }

func lookup[K ~string](table map[K]float64, key K) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return neutralMultiplier
}

// Amenity is a boolean feature that adds a fixed amount.
type Amenity struct {
	Key   string
	Value float64
}

// Amenities is the closed, ordered list of fixed-value amenity flags.
var Amenities = []Amenity{
	{"pool", 150000},
	{"privateGarden", 80000},
	{"elevator", 40000},
	{"centralAC", 60000},
	{"solarPanels", 45000},
	{"smartHome", 35000},
	{"securitySystem", 20000},
	{"gym", 50000},
	{"jacuzzi", 30000},
	{"sauna", 25000},
	{"maidRoom", 40000},
	{"storageRoom", 15000},
	{"laundryRoom", 12000},
	{"fireplace", 10000},
	{"roofTerrace", 70000},
	{"balcony", 20000},
	{"basement", 55000},
	{"generator", 30000},
	{"waterTank", 8000},
	{"gatedCommunity", 90000},
	{"clubhouse", 45000},
	{"kidsArea", 15000},
	{"bbqArea", 8000},
	{"intercom", 5000},
	{"naturalGas", 10000},
}

// Proximity is a "near X" flag that scales the price.
type Proximity struct {
	Key        string
	Multiplier float64
}

// Proximities is the closed, ordered list of proximity flags.
var Proximities = []Proximity{
	{"nearMetro", 1.05},
	{"nearSchool", 1.03},
	{"nearHospital", 1.02},
	{"nearMall", 1.03},
	{"nearPark", 1.02},
	{"nearSea", 1.08},
	{"nearUniversity", 1.02},
	{"nearHighway", 1.02},
}
