// Package catalog holds the fixed decks dealt for each supported roster size.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

var ErrUnsupportedPlayerCount = errors.New("unsupported player count")

var fivePlayerCompanies = []entity.Company{
	{Country: entity.CountryUK, Value: 2, Sector: entity.SectorGovernment},
	{Country: entity.CountryUK, Value: 3, Sector: entity.SectorAgriculture},
	{Country: entity.CountryUK, Value: 4, Sector: entity.SectorFinancial},
	{Country: entity.CountryUS, Value: 2, Sector: entity.SectorFinancial},
	{Country: entity.CountryUS, Value: 3, Sector: entity.SectorManufacturing},
	{Country: entity.CountryUS, Value: 4, Sector: entity.SectorAgriculture},
	{Country: entity.CountryCN, Value: 2, Sector: entity.SectorAgriculture},
	{Country: entity.CountryCN, Value: 3, Sector: entity.SectorHousing},
	{Country: entity.CountryCN, Value: 4, Sector: entity.SectorGovernment},
	{Country: entity.CountryJP, Value: 2, Sector: entity.SectorManufacturing},
	{Country: entity.CountryJP, Value: 3, Sector: entity.SectorGovernment},
	{Country: entity.CountryJP, Value: 4, Sector: entity.SectorHousing},
	{Country: entity.CountryEU, Value: 2, Sector: entity.SectorHousing},
	{Country: entity.CountryEU, Value: 3, Sector: entity.SectorFinancial},
	{Country: entity.CountryEU, Value: 4, Sector: entity.SectorManufacturing},
}

var threeOrFourPlayerCompanies = []entity.Company{
	{Country: entity.CountryUS, Value: 1, Sector: entity.SectorHousing},
	{Country: entity.CountryUS, Value: 2, Sector: entity.SectorFinancial},
	{Country: entity.CountryUS, Value: 3, Sector: entity.SectorManufacturing},
	{Country: entity.CountryUS, Value: 4, Sector: entity.SectorAgriculture},
	{Country: entity.CountryCN, Value: 1, Sector: entity.SectorManufacturing},
	{Country: entity.CountryCN, Value: 2, Sector: entity.SectorAgriculture},
	{Country: entity.CountryCN, Value: 3, Sector: entity.SectorHousing},
	{Country: entity.CountryCN, Value: 4, Sector: entity.SectorFinancial},
	{Country: entity.CountryJP, Value: 1, Sector: entity.SectorFinancial},
	{Country: entity.CountryJP, Value: 2, Sector: entity.SectorManufacturing},
	{Country: entity.CountryJP, Value: 3, Sector: entity.SectorAgriculture},
	{Country: entity.CountryJP, Value: 4, Sector: entity.SectorHousing},
	{Country: entity.CountryEU, Value: 1, Sector: entity.SectorAgriculture},
	{Country: entity.CountryEU, Value: 2, Sector: entity.SectorHousing},
	{Country: entity.CountryEU, Value: 3, Sector: entity.SectorFinancial},
	{Country: entity.CountryEU, Value: 4, Sector: entity.SectorManufacturing},
}

var (
	threeOrFourPlayerCountries = []entity.Country{entity.CountryUS, entity.CountryCN, entity.CountryJP, entity.CountryEU}
	fivePlayerCountries        = []entity.Country{entity.CountryUK, entity.CountryUS, entity.CountryCN, entity.CountryJP, entity.CountryEU}

	threeOrFourPlayerSectors = []entity.Sector{entity.SectorAgriculture, entity.SectorFinancial, entity.SectorHousing, entity.SectorManufacturing}
	fivePlayerSectors        = []entity.Sector{entity.SectorGovernment, entity.SectorAgriculture, entity.SectorFinancial, entity.SectorHousing, entity.SectorManufacturing}
)

// Standard is the published deck table. Every call returns a fresh copy.
type Standard struct{}

func (Standard) Companies(playerCount int) ([]entity.Company, error) {
	switch playerCount {
	case 3, 4:
		return slices.Clone(threeOrFourPlayerCompanies), nil
	case 5:
		return slices.Clone(fivePlayerCompanies), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPlayerCount, playerCount)
	}
}

func (Standard) Countries(playerCount int) ([]entity.Country, error) {
	switch playerCount {
	case 3, 4:
		return slices.Clone(threeOrFourPlayerCountries), nil
	case 5:
		return slices.Clone(fivePlayerCountries), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPlayerCount, playerCount)
	}
}

func (Standard) Sectors(playerCount int) ([]entity.Sector, error) {
	switch playerCount {
	case 3, 4:
		return slices.Clone(threeOrFourPlayerSectors), nil
	case 5:
		return slices.Clone(fivePlayerSectors), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPlayerCount, playerCount)
	}
}

// DealSize is the number of companies auctioned in a game of the given size.
func DealSize(playerCount int) int {
	companies, err := Standard{}.Companies(playerCount)
	if err != nil {
		return 0
	}
	return len(companies)
}
