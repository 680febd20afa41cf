package om

import (
	"encoding/json"
	"testing"

	"dealdesk/internal/seed"
)

func TestNormalizeEmptyRecord(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Fatalf("nil record: got %v", got)
	}

	c := Normalize(Content{})
	if len(c) != 0 {
		t.Fatalf("empty record should stay empty, got keys %v", keysOf(c))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	c := Normalize(Content(seed.DemoOMContent()))

	first, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Normalize(c))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("second pass changed the record")
	}
}

func TestNormalizePreservesExistingSections(t *testing.T) {
	c := Content(seed.DemoOMContent())
	c["marketContextDetails"] = "hand edited"
	c["assetProfileDetails"] = "hand edited"
	c["financialDetails"] = "hand edited"
	c["scenarioData"] = "hand edited"
	c["capitalStackData"] = "hand edited"
	c["dealSnapshotDetails"] = "hand edited"

	Normalize(c)

	for _, key := range []string{
		"marketContextDetails", "assetProfileDetails", "financialDetails",
		"scenarioData", "capitalStackData", "dealSnapshotDetails",
	} {
		if c[key] != "hand edited" {
			t.Fatalf("%s was overwritten: %v", key, c[key])
		}
	}
}

func TestMarketContext(t *testing.T) {
	c := Content{
		"projectSections": map[string]any{
			"marketMetrics": map[string]any{
				"oneMile":               "18,400",
				"population5yr":         "6.2%",
				"income5yr":             "11.4%",
				"job5yr":                "8.1%",
				"totalResidentialUnits": 5200,
				"pipeline": []any{
					map[string]any{"quarter": "Q2 2027", "units": 310},
					map[string]any{"quarter": "Q4 2027", "units": 180},
					map[string]any{"quarter": "Q2 2028", "units": 240},
				},
			},
		},
	}
	Normalize(c)

	mc, ok := c["marketContextDetails"].(*MarketContextDetails)
	if !ok {
		t.Fatalf("marketContextDetails missing: %T", c["marketContextDetails"])
	}
	if mc.DemographicProfile.OneMile != "18,400" {
		t.Fatalf("oneMile: %v", mc.DemographicProfile.OneMile)
	}
	trends := mc.DemographicProfile.GrowthTrends
	if trends.PopulationGrowth5yr != "6.2%" || trends.IncomeGrowth5yr != "11.4%" || trends.JobGrowth5yr != "8.1%" {
		t.Fatalf("growth trends: %+v", trends)
	}

	supply := mc.SupplyAnalysis
	if supply.CurrentInventory != 5200 {
		t.Fatalf("currentInventory: %v", supply.CurrentInventory)
	}
	if supply.UnderConstruction != 310 {
		t.Fatalf("underConstruction: %v", supply.UnderConstruction)
	}
	if supply.Planned24Months != 420 {
		t.Fatalf("planned24Months: %v", supply.Planned24Months)
	}
	if len(supply.DeliveryByQuarter) != 3 {
		t.Fatalf("deliveryByQuarter: %v", supply.DeliveryByQuarter)
	}
}

func TestAssetProfileUnitMix(t *testing.T) {
	c := Content{
		"residentialUnitMix": []any{
			map[string]any{"unitType": "S1", "unitCount": 10, "avgSF": 500, "monthlyRent": 1000},
			map[string]any{"unitType": "S2", "unitCount": 5, "avgSF": 600, "monthlyRent": 1200},
			map[string]any{"unitType": "A1", "unitCount": 8, "avgSF": 700, "monthlyRent": 1500},
			map[string]any{"unitType": "TH1", "unitCount": 4, "avgSF": 1600, "monthlyRent": 3000},
		},
	}
	Normalize(c)

	ap, ok := c["assetProfileDetails"].(*AssetProfileDetails)
	if !ok {
		t.Fatalf("assetProfileDetails missing: %T", c["assetProfileDetails"])
	}

	studios := ap.UnitMix["studios"]
	if studios == nil {
		t.Fatal("no studios bucket")
	}
	if studios.Count != 15 {
		t.Fatalf("studios count: %d", studios.Count)
	}
	// (500*10 + 600*5) / 15, rounded to the nearest integer.
	if studios.AvgSF != 533 {
		t.Fatalf("studios avgSF: %v", studios.AvgSF)
	}
	if studios.RentRange == nil || *studios.RentRange != "$1,200-$1,200" {
		t.Fatalf("studios rentRange: %v", studios.RentRange)
	}
	if studios.Deposit != "$500" {
		t.Fatalf("studios deposit: %q", studios.Deposit)
	}

	oneBed := ap.UnitMix["oneBed"]
	if oneBed == nil || oneBed.Count != 8 || oneBed.AvgSF != 700 {
		t.Fatalf("oneBed bucket: %+v", oneBed)
	}

	// Codes without a known prefix keep their literal code as a bucket.
	if ap.UnitMix["TH1"] == nil || ap.UnitMix["TH1"].Count != 4 {
		t.Fatalf("TH1 bucket: %+v", ap.UnitMix["TH1"])
	}

	if len(ap.DetailedUnitMix) != 4 {
		t.Fatalf("detailed rows: %d", len(ap.DetailedUnitMix))
	}
	if ap.DetailedUnitMix[0].Code != "S1" || ap.DetailedUnitMix[0].Type != "studios" {
		t.Fatalf("first detailed row: %+v", ap.DetailedUnitMix[0])
	}
}

func TestAssetProfileAbsentWithoutInputs(t *testing.T) {
	c := Content{"projectName": "Empty Lot"}
	Normalize(c)
	if _, ok := c["assetProfileDetails"]; ok {
		t.Fatal("assetProfileDetails built from nothing")
	}
}

func TestReturnProjectionsMargins(t *testing.T) {
	c := Content{
		"stabilizedValue":  118000000,
		"totalProjectCost": 92000000,
		"projectSections": map[string]any{
			"scenarioReturns": map[string]any{
				"base":     map[string]any{"irr": 17.8, "equityMultiple": 1.9},
				"upside":   map[string]any{"irr": 21.4, "equityMultiple": 2.2},
				"downside": map[string]any{"irr": 12.6, "equityMultiple": 1.5},
			},
		},
	}
	Normalize(c)

	fd, ok := c["financialDetails"].(map[string]any)
	if !ok {
		t.Fatalf("financialDetails missing: %T", c["financialDetails"])
	}
	rp, ok := fd["returnProjections"].(*ReturnProjections)
	if !ok {
		t.Fatalf("returnProjections missing: %T", fd["returnProjections"])
	}

	if rp.Base.IRR != 17.8 || rp.Base.EquityMultiple != 1.9 {
		t.Fatalf("base returns: %+v", rp.Base)
	}
	if rp.Base.ProfitMargin == nil || *rp.Base.ProfitMargin != 28.3 {
		t.Fatalf("base margin: %v", deref(rp.Base.ProfitMargin))
	}
	if rp.Upside.ProfitMargin == nil || *rp.Upside.ProfitMargin != 30.3 {
		t.Fatalf("upside margin: %v", deref(rp.Upside.ProfitMargin))
	}
	if rp.Downside.ProfitMargin == nil || *rp.Downside.ProfitMargin != 25.3 {
		t.Fatalf("downside margin: %v", deref(rp.Downside.ProfitMargin))
	}
}

func TestSourcesUses(t *testing.T) {
	c := Content{
		"totalProjectCost":     92000000,
		"loanAmountRequested":  59800000,
		"equityRequirement":    27600000,
		"taxCreditEquity":      3200000,
		"landAcquisitionCost":  14500000,
		"baseConstructionCost": 52000000,
	}
	Normalize(c)

	fd := c["financialDetails"].(map[string]any)
	su, ok := fd["sourcesUses"].(*SourcesUses)
	if !ok {
		t.Fatalf("sourcesUses missing: %T", fd["sourcesUses"])
	}

	if len(su.Sources) != 3 {
		t.Fatalf("sources: %+v", su.Sources)
	}
	loan := su.Sources[0]
	if loan.Type != "Senior Construction Loan" || *loan.Amount != 59800000 {
		t.Fatalf("loan source: %+v", loan)
	}
	if loan.Percentage == nil || *loan.Percentage != 65 {
		t.Fatalf("loan percentage: %v", deref(loan.Percentage))
	}
	if equity := su.Sources[1]; equity.Percentage == nil || *equity.Percentage != 30 {
		t.Fatalf("equity percentage: %+v", equity)
	}

	if len(su.Uses) != 2 {
		t.Fatalf("uses: %+v", su.Uses)
	}
	if su.Uses[0].Type != "Land Acquisition" {
		t.Fatalf("first use: %+v", su.Uses[0])
	}
	if su.TotalDevelopmentCost == nil || *su.TotalDevelopmentCost != 92000000 {
		t.Fatalf("total: %v", deref(su.TotalDevelopmentCost))
	}
}

func TestSponsorProfileDefaults(t *testing.T) {
	c := Content{"sponsorName": "Riverside Development Partners"}
	Normalize(c)

	fd := c["financialDetails"].(map[string]any)
	sp, ok := fd["sponsorProfile"].(*SponsorProfile)
	if !ok {
		t.Fatalf("sponsorProfile missing: %T", fd["sponsorProfile"])
	}
	if sp.Name != "Riverside Development Partners" {
		t.Fatalf("name: %v", sp.Name)
	}
	if sp.YearFounded != 2010 {
		t.Fatalf("default year founded: %d", sp.YearFounded)
	}
	if _, ok := c["sponsorDeals"]; !ok {
		t.Fatal("sponsorDeals not initialized alongside sponsorProfile")
	}

	c2 := Content{"sponsorName": "X", "sponsorYearFounded": 2008}
	Normalize(c2)
	sp2 := c2["financialDetails"].(map[string]any)["sponsorProfile"].(*SponsorProfile)
	if sp2.YearFounded != 2008 {
		t.Fatalf("explicit year founded: %d", sp2.YearFounded)
	}
}

func TestScenarioDataFromReturnsOnly(t *testing.T) {
	c := Content{
		"projectSections": map[string]any{
			"scenarioReturns": map[string]any{
				"base":   map[string]any{"irr": 15.0, "equityMultiple": 1.8},
				"upside": map[string]any{"irr": 19.0},
			},
		},
	}
	Normalize(c)

	sd, ok := c["scenarioData"].(*ScenarioData)
	if !ok {
		t.Fatalf("scenarioData missing: %T", c["scenarioData"])
	}
	if sd.Base.IRR != 15.0 || sd.Base.EquityMultiple != 1.8 {
		t.Fatalf("base: %+v", sd.Base)
	}
	if sd.Upside.IRR != 19.0 {
		t.Fatalf("upside irr override: %v", sd.Upside.IRR)
	}
	// No upside equity multiple anywhere: inherits base.
	if sd.Upside.EquityMultiple != 1.8 {
		t.Fatalf("upside equityMultiple: %v", sd.Upside.EquityMultiple)
	}
	// No downside block at all: full copy of base.
	if sd.Downside.IRR != 15.0 || sd.Downside.EquityMultiple != 1.8 {
		t.Fatalf("downside: %+v", sd.Downside)
	}
	if sd.Base.LoanAmount != nil || sd.Base.LTV != nil {
		t.Fatalf("base picked up numbers from nowhere: %+v", sd.Base)
	}
}

func TestScenarioDataFlatFieldsWinOverStack(t *testing.T) {
	c := Content{
		"loanAmountRequested": 60000000,
		"ltv":                 62.0,
		"projectSections": map[string]any{
			"capitalStackHighlights": map[string]any{
				"loanAmount": 1.0,
				"ltv":        99.0,
				"ltc":        65.0,
			},
		},
	}
	Normalize(c)

	sd := c["scenarioData"].(*ScenarioData)
	if *sd.Base.LoanAmount != 60000000 {
		t.Fatalf("loanAmount: %v", *sd.Base.LoanAmount)
	}
	if *sd.Base.LTV != 62 {
		t.Fatalf("ltv: %v", *sd.Base.LTV)
	}
	// No flat ltc: the section supplies it.
	if sd.Base.LTC == nil || *sd.Base.LTC != 65 {
		t.Fatalf("ltc fallback: %v", deref(sd.Base.LTC))
	}
}

func TestCapitalStackSharedAcrossScenarios(t *testing.T) {
	c := Content{
		"projectSections": map[string]any{
			"capitalStackHighlights": map[string]any{
				"loanAmount":           59800000,
				"equityRequirement":    27600000,
				"totalDevelopmentCost": 92000000,
			},
		},
	}
	Normalize(c)

	cs, ok := c["capitalStackData"].(*CapitalStackData)
	if !ok {
		t.Fatalf("capitalStackData missing: %T", c["capitalStackData"])
	}
	if cs.Base != cs.Upside || cs.Base != cs.Downside {
		t.Fatal("scenarios should share one stack object")
	}
	if cs.Base.DebtPercentage == nil || *cs.Base.DebtPercentage != 65 {
		t.Fatalf("debt percentage: %v", deref(cs.Base.DebtPercentage))
	}
	if cs.Base.EquityPercentage == nil || *cs.Base.EquityPercentage != 30 {
		t.Fatalf("equity percentage: %v", deref(cs.Base.EquityPercentage))
	}
	if len(cs.Base.Sources) != 2 {
		t.Fatalf("sources: %+v", cs.Base.Sources)
	}
}

func TestCapitalStackLTCFallback(t *testing.T) {
	c := Content{
		"projectSections": map[string]any{
			"capitalStackHighlights": map[string]any{"ltc": 65.0},
		},
	}
	Normalize(c)

	cs := c["capitalStackData"].(*CapitalStackData)
	if cs.Base.DebtPercentage == nil || *cs.Base.DebtPercentage != 65 {
		t.Fatalf("debt from ltc: %v", deref(cs.Base.DebtPercentage))
	}
	if cs.Base.EquityPercentage == nil || *cs.Base.EquityPercentage != 35 {
		t.Fatalf("equity from ltc: %v", deref(cs.Base.EquityPercentage))
	}
}

func TestDealSnapshot(t *testing.T) {
	c := Content{
		"loanType":           "Senior Construction",
		"interestRate":       7.25,
		"underwrittenRate":   7.85,
		"loanTerm":           "36 months",
		"minDscr":            1.25,
		"ltv":                62.0,
		"minLiquidity":       5000000,
		"interestReserve":    2870000,
		"taxInsuranceEscrow": 450000,
		"capExReserve":       350000,
		"projectSections": map[string]any{
			"timeline": []any{
				map[string]any{"phase": "Land Closing", "date": "2025-11"},
				map[string]any{"phase": "Permits Issued", "date": "2026-03"},
				map[string]any{"phase": "Vertical Construction", "date": "2026-06"},
				map[string]any{"phase": "Topping Out", "date": "2027-04"},
				map[string]any{"phase": "First Move-Ins", "date": "2027-11"},
			},
			"certifications": []any{
				map[string]any{"name": "LEED Silver", "status": "Targeted"},
			},
		},
	}
	Normalize(c)

	ds, ok := c["dealSnapshotDetails"].(*DealSnapshotDetails)
	if !ok {
		t.Fatalf("dealSnapshotDetails missing: %T", c["dealSnapshotDetails"])
	}

	kt := ds.KeyTerms
	if kt.Rate == nil || *kt.Rate != "7.25% all-in" {
		t.Fatalf("rate: %v", kt.Rate)
	}
	if kt.UnderwrittenRate == nil || *kt.UnderwrittenRate != "7.85% UW" {
		t.Fatalf("underwritten rate: %v", kt.UnderwrittenRate)
	}
	if kt.Covenants.MinDSCR == nil || *kt.Covenants.MinDSCR != "1.25x" {
		t.Fatalf("minDSCR: %v", kt.Covenants.MinDSCR)
	}
	if kt.Covenants.MaxLTV == nil || *kt.Covenants.MaxLTV != "62%" {
		t.Fatalf("maxLTV from ltv: %v", kt.Covenants.MaxLTV)
	}
	if kt.Covenants.MinLiquidity == nil || *kt.Covenants.MinLiquidity != "$5,000,000" {
		t.Fatalf("minLiquidity: %v", kt.Covenants.MinLiquidity)
	}
	if kt.ExtensionOptions != "2 x 6-month extensions" || kt.OriginationFee != "1.00%" {
		t.Fatalf("narrative defaults: %+v", kt)
	}
	if kt.LenderReserves.InterestReserve == nil || *kt.LenderReserves.InterestReserve != "$2,870,000" {
		t.Fatalf("interest reserve: %v", kt.LenderReserves.InterestReserve)
	}

	wantStatuses := []string{"completed", "completed", "current", "upcoming", "upcoming"}
	if len(ds.Milestones) != len(wantStatuses) {
		t.Fatalf("milestones: %d", len(ds.Milestones))
	}
	for i, want := range wantStatuses {
		if ds.Milestones[i].Status != want {
			t.Fatalf("milestone %d status: %q, want %q", i, ds.Milestones[i].Status, want)
		}
		if ds.Milestones[i].Duration != 90 {
			t.Fatalf("milestone %d duration: %d", i, ds.Milestones[i].Duration)
		}
	}

	if len(ds.SpecialPrograms) != 1 || ds.SpecialPrograms[0].Name != "LEED Silver" || ds.SpecialPrograms[0].Description != "Targeted" {
		t.Fatalf("special programs: %+v", ds.SpecialPrograms)
	}
}

func TestNormalizeFullFixtureBuildsEverySection(t *testing.T) {
	c := Normalize(Content(seed.DemoOMContent()))
	for _, key := range []string{
		"marketContextDetails", "assetProfileDetails", "financialDetails",
		"scenarioData", "capitalStackData", "dealSnapshotDetails",
	} {
		if _, ok := c[key]; !ok {
			t.Fatalf("%s was not derived", key)
		}
	}
}

func keysOf(c Content) []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
