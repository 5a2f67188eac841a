package model

// Zone is a geographic delivery region used to partition admin access and
// product/company availability.
const (
	ZoneKarkh  = "KARKH"
	ZoneRusafa = "RUSAFA"
)

// ZoneList is stored as a JSON array column.
type ZoneList []string

func (z ZoneList) Contains(zone string) bool {
	for _, v := range z {
		if v == zone {
			return true
		}
	}
	return false
}

// Overlaps reports whether any zone in z appears in other. An empty list is
// treated as "all zones".
func (z ZoneList) Overlaps(other ZoneList) bool {
	if len(z) == 0 || len(other) == 0 {
		return true
	}
	for _, v := range other {
		if z.Contains(v) {
			return true
		}
	}
	return false
}

// DeliveryFeeTable maps zone code to the delivery fee a company charges there.
// Stored as a JSON object column.
type DeliveryFeeTable map[string]float64
