package om

// Policy collects every placeholder heuristic the dashboard derivations
// rely on. None of these are principled: they stand in for data the
// platform does not capture yet, and are grouped here so replacing one
// with a real derivation never touches the traversal code.
type Policy struct {
	// Profit-margin offsets applied to the computed base margin.
	UpsideMarginOffset   float64
	DownsideMarginOffset float64

	// Unit-mix placeholders.
	DefaultDeposit string
	RentRange      func(monthlyRent *float64) *string

	// Sponsor profile fallback when no explicit year is stored.
	DefaultSponsorYearFounded int

	// Milestone status is assigned by timeline position, not by date:
	// indices up to CompletedMilestones-1 are completed, the one at
	// CompletedMilestones is current, everything later is upcoming.
	CompletedMilestones int
	MilestoneDuration   int

	// Narrative key-terms defaults.
	ExtensionOptions   string
	OriginationFee     string
	CompletionGuaranty string

	// Fixed-priority budget line items scanned for the uses breakdown.
	UseCategories []UseCategory
}

// UseCategory names one budget line item: the flat field it is read from,
// the label shown in sources & uses tables, and the human-readable timing
// bucket attached in capital stack views.
type UseCategory struct {
	Field  string
	Label  string
	Timing string
}

func DefaultPolicy() Policy {
	return Policy{
		UpsideMarginOffset:   2,
		DownsideMarginOffset: -3,

		DefaultDeposit: "$500",
		RentRange:      singlePointRentRange,

		DefaultSponsorYearFounded: 2010,

		CompletedMilestones: 2,
		MilestoneDuration:   90,

		ExtensionOptions:   "2 x 6-month extensions",
		OriginationFee:     "1.00%",
		CompletionGuaranty: "Full payment and completion guaranty",

		UseCategories: defaultUseCategories(),
	}
}

// singlePointRentRange synthesizes "$<rent>-$<rent>" from a single rent
// figure. Low and high are the same number until per-unit rent spreads
// are captured.
func singlePointRentRange(monthlyRent *float64) *string {
	formatted := FormatCurrency(monthlyRent)
	if formatted == nil {
		return nil
	}
	s := *formatted + "-" + *formatted
	return &s
}

func defaultUseCategories() []UseCategory {
	return []UseCategory{
		{Field: "landAcquisitionCost", Label: "Land Acquisition", Timing: "Closing"},
		{Field: "baseConstructionCost", Label: "Base Construction", Timing: "Months 1-24"},
		{Field: "siteWorkCost", Label: "Site Work", Timing: "Months 1-6"},
		{Field: "ffeCost", Label: "FF&E", Timing: "Months 18-24"},
		{Field: "constructionContingency", Label: "Construction Contingency", Timing: "Months 1-24"},
		{Field: "architectureEngineeringFees", Label: "Architecture & Engineering", Timing: "Pre-Closing"},
		{Field: "developerFee", Label: "Developer Fee", Timing: "Months 1-24"},
		{Field: "legalClosingCosts", Label: "Legal & Closing", Timing: "Closing"},
		{Field: "financingFees", Label: "Financing Fees", Timing: "Closing"},
		{Field: "permitsImpactFees", Label: "Permits & Impact Fees", Timing: "Months 1-6"},
		{Field: "insuranceCost", Label: "Insurance", Timing: "Months 1-24"},
		{Field: "propertyTaxesDuringConstruction", Label: "Property Taxes", Timing: "Months 1-24"},
		{Field: "marketingLeaseUpCost", Label: "Marketing & Lease-Up", Timing: "Months 18-30"},
		{Field: "interestReserve", Label: "Interest Reserve", Timing: "Closing"},
		{Field: "operatingReserve", Label: "Operating Reserve", Timing: "Months 24-30"},
		{Field: "taxInsuranceEscrow", Label: "Tax & Insurance Escrow", Timing: "Closing"},
		{Field: "capExReserve", Label: "CapEx Reserve", Timing: "Closing"},
	}
}
