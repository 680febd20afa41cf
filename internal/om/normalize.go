package om

import "strings"

// Normalizer enriches a flat OM content record with the derived sections
// the dashboard views consume. Every section is fill-if-absent: a key that
// already exists on the record, whether hand-edited downstream or loaded
// from a previously persisted document, is never recomputed or touched,
// which makes normalization idempotent.
//
// All derivations are best effort. Missing or malformed fields never
// raise; they only leave nils behind.
type Normalizer struct {
	Policy Policy
}

func New(policy Policy) *Normalizer {
	return &Normalizer{Policy: policy}
}

// Normalize runs the default policy. See Normalizer.Normalize.
func Normalize(c Content) Content {
	return New(DefaultPolicy()).Normalize(c)
}

// Normalize augments c in place and returns it. A nil record is a no-op.
// A section is only materialized when at least one of its inputs is
// present, so an empty record passes through unchanged.
func (n *Normalizer) Normalize(c Content) Content {
	if c == nil {
		return c
	}
	ps := sections(c)

	if _, ok := c["marketContextDetails"]; !ok {
		if mm := mapOf(ps["marketMetrics"]); mm != nil {
			c["marketContextDetails"] = n.marketContext(mm)
		}
	}
	if _, ok := c["assetProfileDetails"]; !ok {
		if ap := n.assetProfile(c, ps); ap != nil {
			c["assetProfileDetails"] = ap
		}
	}
	n.financialDetails(c, ps)
	if _, ok := c["scenarioData"]; !ok {
		if sd := n.scenarioData(c, ps); sd != nil {
			c["scenarioData"] = sd
		}
	}
	if _, ok := c["capitalStackData"]; !ok {
		if stack := mapOf(ps["capitalStackHighlights"]); stack != nil {
			c["capitalStackData"] = n.capitalStack(c, stack)
		}
	}
	if _, ok := c["dealSnapshotDetails"]; !ok {
		if ds := n.dealSnapshot(c, ps); ds != nil {
			c["dealSnapshotDetails"] = ds
		}
	}
	return c
}

type MarketContextDetails struct {
	DemographicProfile DemographicProfile `json:"demographicProfile"`
	SupplyAnalysis     SupplyAnalysis     `json:"supplyAnalysis"`
	MajorEmployers     []any              `json:"majorEmployers"`
}

type DemographicProfile struct {
	OneMile      any          `json:"oneMile"`
	ThreeMile    any          `json:"threeMile"`
	FiveMile     any          `json:"fiveMile"`
	RenterShare  any          `json:"renterShare"`
	AvgOccupancy any          `json:"avgOccupancy"`
	GrowthTrends GrowthTrends `json:"growthTrends"`
}

type GrowthTrends struct {
	PopulationGrowth5yr any `json:"populationGrowth5yr"`
	IncomeGrowth5yr     any `json:"incomeGrowth5yr"`
	JobGrowth5yr        any `json:"jobGrowth5yr"`
}

type SupplyAnalysis struct {
	CurrentInventory  float64 `json:"currentInventory"`
	UnderConstruction float64 `json:"underConstruction"`
	Planned24Months   float64 `json:"planned24Months"`
	AverageOccupancy  any     `json:"averageOccupancy"`
	DeliveryByQuarter []any   `json:"deliveryByQuarter"`
}

func (n *Normalizer) marketContext(mm map[string]any) *MarketContextDetails {
	out := &MarketContextDetails{
		DemographicProfile: DemographicProfile{
			OneMile:      sectionValue(mm, "oneMile"),
			ThreeMile:    sectionValue(mm, "threeMile"),
			FiveMile:     sectionValue(mm, "fiveMile"),
			RenterShare:  sectionValue(mm, "renterShare"),
			AvgOccupancy: sectionValue(mm, "avgOccupancy"),
			GrowthTrends: GrowthTrends{
				PopulationGrowth5yr: sectionValue(mm, "population5yr"),
				IncomeGrowth5yr:     sectionValue(mm, "income5yr"),
				JobGrowth5yr:        sectionValue(mm, "job5yr"),
			},
		},
		MajorEmployers: []any{},
	}

	supply := SupplyAnalysis{
		AverageOccupancy:  sectionValue(mm, "averageOccupancy"),
		DeliveryByQuarter: []any{},
	}
	if inv := sectionNumber(mm, "totalResidentialUnits"); inv != nil {
		supply.CurrentInventory = *inv
	}
	// The pipeline array is split positionally: the first entry is taken
	// as currently under construction, everything after it counts toward
	// the 24-month planned total.
	pipeline := sliceOf(mm["pipeline"])
	for i, entry := range pipeline {
		units := sectionNumber(mapOf(entry), "units")
		if units == nil {
			continue
		}
		if i == 0 {
			supply.UnderConstruction = *units
		} else {
			supply.Planned24Months += *units
		}
	}
	if pipeline != nil {
		supply.DeliveryByQuarter = pipeline
	}
	out.SupplyAnalysis = supply

	return out
}

type AssetProfileDetails struct {
	AmenityDetails   []any                      `json:"amenityDetails"`
	CommercialSpaces []any                      `json:"commercialSpaces"`
	UnitMix          map[string]*UnitMixSummary `json:"unitMix"`
	DetailedUnitMix  []DetailedUnitRow          `json:"detailedUnitMix"`
}

// UnitMixSummary is one aggregated unit-type bucket with running totals.
type UnitMixSummary struct {
	Count     int     `json:"count"`
	AvgSF     float64 `json:"avgSF"`
	RentRange *string `json:"rentRange"`
	Deposit   string  `json:"deposit"`
}

type DetailedUnitRow struct {
	Code  any      `json:"code"`
	Type  string   `json:"type"`
	Units *float64 `json:"units"`
	AvgSF *float64 `json:"avgSF"`
}

func (n *Normalizer) assetProfile(c Content, ps map[string]any) *AssetProfileDetails {
	amenities := sliceOf(ps["amenities"])
	commercial := sliceOf(ps["commercialProgram"])
	unitRows := Slice(c, "residentialUnitMix")
	if amenities == nil && commercial == nil && unitRows == nil {
		return nil
	}

	out := &AssetProfileDetails{
		AmenityDetails:   []any{},
		CommercialSpaces: []any{},
		UnitMix:          map[string]*UnitMixSummary{},
		DetailedUnitMix:  []DetailedUnitRow{},
	}
	if amenities != nil {
		out.AmenityDetails = amenities
	}
	if commercial != nil {
		out.CommercialSpaces = commercial
	}

	for _, raw := range unitRows {
		row := mapOf(raw)
		if row == nil {
			continue
		}
		unitType, _ := unwrap(row["unitType"]).(string)
		count := sectionNumber(row, "unitCount")
		avgSF := sectionNumber(row, "avgSF")
		rent := sectionNumber(row, "monthlyRent")

		bucket := bucketForUnitType(unitType)
		summary := out.UnitMix[bucket]
		if summary == nil {
			summary = &UnitMixSummary{Deposit: n.Policy.DefaultDeposit}
			out.UnitMix[bucket] = summary
		}

		if count != nil {
			rowCount := int(*count)
			newCount := summary.Count + rowCount
			if avgSF != nil && newCount > 0 {
				// Running weighted average over unit counts.
				weighted := (summary.AvgSF*float64(summary.Count) + *avgSF*float64(rowCount)) / float64(newCount)
				summary.AvgSF = float64(int(weighted + 0.5))
			}
			summary.Count = newCount
		}
		if rr := n.Policy.RentRange(rent); rr != nil {
			summary.RentRange = rr
		}

		out.DetailedUnitMix = append(out.DetailedUnitMix, DetailedUnitRow{
			Code:  unwrap(row["unitType"]),
			Type:  bucket,
			Units: count,
			AvgSF: avgSF,
		})
	}

	return out
}

// bucketForUnitType groups unit-type codes by prefix: S-prefixed codes are
// studios, A one-bedrooms, B two-bedrooms; anything else keeps its literal
// code as its own bucket.
func bucketForUnitType(unitType string) string {
	trimmed := strings.TrimSpace(unitType)
	if trimmed == "" {
		return "other"
	}
	switch strings.ToUpper(trimmed[:1]) {
	case "S":
		return "studios"
	case "A":
		return "oneBed"
	case "B":
		return "twoBed"
	default:
		return trimmed
	}
}
