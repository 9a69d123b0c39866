package directory

import (
	"context"
	"slices"

	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// cac40 is the index composition shipped with the binary.
var cac40 = []models.Company{
	{Symbol: "AI.PA", Name: "Air Liquide", Sector: "Materials"},
	{Symbol: "AIR.PA", Name: "Airbus", Sector: "Industrials"},
	{Symbol: "ALO.PA", Name: "Alstom", Sector: "Industrials"},
	{Symbol: "MT.AS", Name: "ArcelorMittal", Sector: "Materials"},
	{Symbol: "CS.PA", Name: "AXA", Sector: "Financials"},
	{Symbol: "BNP.PA", Name: "BNP Paribas", Sector: "Financials"},
	{Symbol: "EN.PA", Name: "Bouygues", Sector: "Industrials"},
	{Symbol: "CAP.PA", Name: "Capgemini", Sector: "Technology"},
	{Symbol: "CA.PA", Name: "Carrefour", Sector: "Consumer Staples"},
	{Symbol: "ACA.PA", Name: "Crédit Agricole", Sector: "Financials"},
	{Symbol: "BN.PA", Name: "Danone", Sector: "Consumer Staples"},
	{Symbol: "DSY.PA", Name: "Dassault Systèmes", Sector: "Technology"},
	{Symbol: "EDEN.PA", Name: "Edenred", Sector: "Industrials"},
	{Symbol: "ENGI.PA", Name: "Engie", Sector: "Utilities"},
	{Symbol: "EL.PA", Name: "EssilorLuxottica", Sector: "Health Care"},
	{Symbol: "RMS.PA", Name: "Hermès", Sector: "Consumer Discretionary"},
	{Symbol: "KER.PA", Name: "Kering", Sector: "Consumer Discretionary"},
	{Symbol: "LR.PA", Name: "Legrand", Sector: "Industrials"},
	{Symbol: "OR.PA", Name: "L'Oréal", Sector: "Consumer Staples"},
	{Symbol: "MC.PA", Name: "LVMH", Sector: "Consumer Discretionary"},
	{Symbol: "ML.PA", Name: "Michelin", Sector: "Consumer Discretionary"},
	{Symbol: "ORA.PA", Name: "Orange", Sector: "Telecommunications"},
	{Symbol: "RI.PA", Name: "Pernod Ricard", Sector: "Consumer Staples"},
	{Symbol: "PUB.PA", Name: "Publicis", Sector: "Media"},
	{Symbol: "RNO.PA", Name: "Renault", Sector: "Consumer Discretionary"},
	{Symbol: "SAF.PA", Name: "Safran", Sector: "Industrials"},
	{Symbol: "SGO.PA", Name: "Saint-Gobain", Sector: "Industrials"},
	{Symbol: "SAN.PA", Name: "Sanofi", Sector: "Health Care"},
	{Symbol: "SU.PA", Name: "Schneider Electric", Sector: "Industrials"},
	{Symbol: "GLE.PA", Name: "Société Générale", Sector: "Financials"},
	{Symbol: "STLAP.PA", Name: "Stellantis", Sector: "Consumer Discretionary"},
	{Symbol: "STMPA.PA", Name: "STMicroelectronics", Sector: "Technology"},
	{Symbol: "TEP.PA", Name: "Teleperformance", Sector: "Industrials"},
	{Symbol: "HO.PA", Name: "Thales", Sector: "Industrials"},
	{Symbol: "TTE.PA", Name: "TotalEnergies", Sector: "Energy"},
	{Symbol: "URW.AS", Name: "Unibail-Rodamco-Westfield", Sector: "Real Estate"},
	{Symbol: "VIE.PA", Name: "Veolia", Sector: "Utilities"},
	{Symbol: "DG.PA", Name: "Vinci", Sector: "Industrials"},
	{Symbol: "VIV.PA", Name: "Vivendi", Sector: "Media"},
}

// sp500Top is the authoritative largest-by-market-value ordering placed
// ahead of any bulk S&P 500 list. Sectors are left empty so a bulk source
// can fill them in.
var sp500Top = []models.Company{
	{Symbol: "NVDA", Name: "Nvidia"},
	{Symbol: "MSFT", Name: "Microsoft"},
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "AMZN", Name: "Amazon"},
	{Symbol: "GOOGL", Name: "Alphabet Inc. (Class A)"},
	{Symbol: "META", Name: "Meta Platforms"},
	{Symbol: "AVGO", Name: "Broadcom"},
	{Symbol: "TSLA", Name: "Tesla, Inc."},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway"},
	{Symbol: "JPM", Name: "JPMorgan Chase"},
	{Symbol: "WMT", Name: "Walmart"},
	{Symbol: "LLY", Name: "Lilly (Eli)"},
	{Symbol: "V", Name: "Visa Inc."},
	{Symbol: "ORCL", Name: "Oracle Corporation"},
	{Symbol: "MA", Name: "Mastercard"},
	{Symbol: "NFLX", Name: "Netflix"},
	{Symbol: "XOM", Name: "ExxonMobil"},
	{Symbol: "COST", Name: "Costco"},
	{Symbol: "JNJ", Name: "Johnson & Johnson"},
	{Symbol: "HD", Name: "Home Depot (The)"},
}

// SP500Top returns a copy of the authoritative S&P 500 head.
func SP500Top() []models.Company {
	return slices.Clone(sp500Top)
}

// Static serves a table compiled into the binary.
type Static struct {
	name string
	rows []models.Company
}

// NewStatic returns the built-in table for universe ("cac40" or "sp500").
func NewStatic(universe string) *Static {
	if universe == "sp500" {
		return &Static{name: "static:sp500", rows: sp500Top}
	}
	return &Static{name: "static:cac40", rows: cac40}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Fetch(context.Context) ([]models.Company, error) {
	return slices.Clone(s.rows), nil
}
