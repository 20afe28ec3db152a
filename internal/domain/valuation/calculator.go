package valuation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yanqian/property-valuator/pkg/money"
)

// ledger accumulates the running price and its adjustment log.
type ledger struct {
	price float64
	log   []AdjustmentFactor
}

func (l *ledger) multiply(factor, label string, m float64) {
	before := l.price
	l.price *= m
	mult := m
	l.log = append(l.log, AdjustmentFactor{
		Factor:     factor,
		Label:      label,
		Multiplier: &mult,
		Impact:     money.Change(before, l.price),
	})
}

func (l *ledger) add(factor, label string, amount float64) {
	before := l.price
	l.price += amount
	add := amount
	l.log = append(l.log, AdjustmentFactor{
		Factor:   factor,
		Label:    label,
		Addition: &add,
		Impact:   fmt.Sprintf("%s (%s)", money.SignedAmount(amount), money.Change(before, l.price)),
	})
}

// priceAttributes runs every attribute-driven step. The NQS step is applied
// by the service afterwards.
func (s *service) priceAttributes(attrs Attributes, area float64, city string) (ledger, float64) {
	base := s.basePrice(city)
	l := ledger{}
	initial := area * base
	l.price = initial
	l.log = append(l.log, AdjustmentFactor{
		Factor:   "base",
		Label:    fmt.Sprintf("%s m² × %s (%s)", formatQty(area), money.Amount(base), city),
		Addition: &initial,
		Impact:   money.Amount(initial),
	})

	ptype, hasType := attrs.Text(FieldPropertyType)
	if hasType {
		l.multiply(FieldPropertyType, ptype, PropertyType(ptype).Multiplier())
	}
	if v, ok := attrs.Text(FieldAge); ok {
		l.multiply(FieldAge, v, AgeBand(v).Multiplier())
	}
	if v, ok := attrs.Text(FieldNeighborhoodTier); ok {
		l.multiply(FieldNeighborhoodTier, v, NeighborhoodTier(v).Multiplier())
	}
	if v, ok := attrs.Text(FieldFacade); ok {
		l.multiply(FieldFacade, v, Facade(v).Multiplier())
	}
	if v, ok := attrs.Text(FieldStreetWidth); ok {
		l.multiply(FieldStreetWidth, v, StreetWidth(v).Multiplier())
	}
	if v, ok := attrs.Text(FieldFinishing); ok {
		l.multiply(FieldFinishing, v, Finishing(v).Multiplier())
	}
	if v, ok := attrs.Text(FieldView); ok {
		l.multiply(FieldView, v, View(v).Multiplier())
	}

	if n, ok := attrs.Number(FieldBedrooms); ok && n > 3 {
		l.multiply(FieldBedrooms, formatQty(n)+" bedrooms", 1+0.02*(n-3))
	}
	if n, ok := attrs.Number(FieldBathrooms); ok && n > 2 {
		l.multiply(FieldBathrooms, formatQty(n)+" bathrooms", 1+0.015*(n-2))
	}

	var (
		amenitySum   float64
		amenityNames []string
	)
	for _, a := range Amenities {
		if attrs.Flag(a.Key) {
			amenitySum += a.Value
			amenityNames = append(amenityNames, a.Key)
		}
	}
	if len(amenityNames) > 0 {
		l.add("amenities", strings.Join(amenityNames, ", "), amenitySum)
	}

	proximity := 1.0
	var nearNames []string
	for _, p := range Proximities {
		if attrs.Flag(p.Key) {
			proximity *= p.Multiplier
			nearNames = append(nearNames, p.Key)
		}
	}
	if len(nearNames) > 0 {
		l.multiply("proximity", strings.Join(nearNames, ", "), proximity)
	}

	if n, ok := attrs.Number(FieldParkingSpaces); ok && n > 0 {
		l.multiply(FieldParkingSpaces, formatQty(n)+" parking spaces", 1+0.01*n)
	}
	if n, ok := attrs.Number(FieldFloor); ok && PropertyType(ptype) == PropertyApartment {
		l.multiply(FieldFloor, "floor "+formatQty(n), 1+0.005*n)
	}

	if land, ok := attrs.Number(FieldLandArea); ok && PropertyType(ptype).HasLandPremium() {
		built, hasBuilt := attrs.Number(FieldBuiltArea)
		if !hasBuilt {
			built = area
		}
		if land > built {
			extra := land - built
			l.add(FieldLandArea, formatQty(extra)+" m² surplus land", extra*base*0.5)
		}
	}
	return l, base
}

func (s *service) basePrice(city string) float64 {
	if p, ok := s.cityPrices[city]; ok {
		return p
	}
	return s.defaultBasePrice
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
