package entity

type Country string

const (
	CountryUK Country = "UK"
	CountryUS Country = "US"
	CountryCN Country = "CN"
	CountryJP Country = "JP"
	CountryEU Country = "EU"
)

type Sector string

const (
	SectorAgriculture   Sector = "AGR"
	SectorFinancial     Sector = "FIN"
	SectorGovernment    Sector = "GOV"
	SectorHousing       Sector = "HOU"
	SectorManufacturing Sector = "MAN"
)

// Sectors lists every sector that can score, in display order.
var Sectors = []Sector{
	SectorAgriculture,
	SectorFinancial,
	SectorGovernment,
	SectorHousing,
	SectorManufacturing,
}

// Company is a single card of the auction deck.
type Company struct {
	Country Country `json:"country"`
	Value   int     `json:"value"`
	Sector  Sector  `json:"sector"`
}
