package models

// Region is one police region with the department addresses that accept
// applications for it.
type Region struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

// Fixed registry of korpscheftaken departments per region. Order matches the
// form's dropdown.
var regions = []Region{
	{Name: "Noord-Nederland", Addresses: []string{"ATK.WPBR.korpscheftaken.noord-nederland@politie.nl"}},
	{Name: "Oost-Nederland", Addresses: []string{
		"ATK.WPBR-gelderland-midden.korpscheftaken.oost-nederland@politie.nl",
		"ATK.WPBR-gelderland-zuid.korpscheftaken.oost-nederland@politie.nl",
		"ATK.WPBR-twente.korpscheftaken.oost-nederland@politie.nl",
		"ATK.WPBR-noordoost-gelderland.korpscheftaken.oost-nederland@politie.nl",
		"ATK.WPBR-ijsselland.korpscheftaken.oost-nederland@politie.nl",
	}},
	{Name: "Midden-Nederland", Addresses: []string{"ATK.WPBR.korpscheftaken.midden-nederland@politie.nl"}},
	{Name: "Noord-Holland", Addresses: []string{"ATK.WPBR.korpscheftaken.noord-holland@politie.nl"}},
	{Name: "Amsterdam", Addresses: []string{"ATK.WPBR.korpscheftaken.amsterdam@politie.nl"}},
	{Name: "Den Haag", Addresses: []string{"ATK.WPBR.korpscheftaken.den-haag@politie.nl"}},
	{Name: "Rotterdam", Addresses: []string{"ATK.WPBR.korpscheftaken.rotterdam@politie.nl"}},
	{Name: "Zeeland - West-Brabant", Addresses: []string{"ATK.WPBR.korpscheftaken.zeeland-west-brabant@politie.nl"}},
	{Name: "Oost-Brabant", Addresses: []string{"ATK.WPBR.korpscheftaken.oost-brabant@politie.nl"}},
	{Name: "Limburg", Addresses: []string{"ATK.WPBR.korpscheftaken.limburg@politie.nl"}},
}

// Regions returns the registry in dropdown order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionAllows reports whether the address is a registered department of the
// named region. Destination addresses never come free-form from the client.
func RegionAllows(region, address string) bool {
	for _, r := range regions {
		if r.Name != region {
			continue
		}
		for _, a := range r.Addresses {
			if a == address {
				return true
			}
		}
	}
	return false
}
