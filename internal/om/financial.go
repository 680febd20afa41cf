package om

// financialDetails is a container whose sub-fields are gated one by one:
// persisted documents may already carry some of them, and only the missing
// ones are derived. The container itself is only materialized when at
// least one sub-field gets built, so an empty record stays empty.
func (n *Normalizer) financialDetails(c Content, ps map[string]any) {
	var fd map[string]any
	switch t := c["financialDetails"].(type) {
	case nil:
		fd = map[string]any{}
	case map[string]any:
		fd = t
	default:
		// A non-map value was persisted here; leave it alone.
		return
	}

	stack := mapOf(ps["capitalStackHighlights"])

	if _, ok := fd["returnProjections"]; !ok {
		if sr := mapOf(ps["scenarioReturns"]); sr != nil {
			fd["returnProjections"] = n.returnProjections(c, sr, stack)
		}
	}
	if _, ok := fd["sourcesUses"]; !ok {
		if su := n.sourcesUses(c, stack); su != nil {
			fd["sourcesUses"] = su
		}
	}
	if _, ok := fd["sponsorProfile"]; !ok {
		if sp := n.sponsorProfile(c); sp != nil {
			fd["sponsorProfile"] = sp
			if _, ok := c["sponsorDeals"]; !ok {
				c["sponsorDeals"] = []any{}
			}
		}
	}

	if len(fd) > 0 {
		c["financialDetails"] = fd
	}
}

type ReturnProjections struct {
	Base     ReturnScenario `json:"base"`
	Upside   ReturnScenario `json:"upside"`
	Downside ReturnScenario `json:"downside"`
}

type ReturnScenario struct {
	IRR            any      `json:"irr"`
	EquityMultiple any      `json:"equityMultiple"`
	ProfitMargin   *float64 `json:"profitMargin"`
}

func (n *Normalizer) returnProjections(c Content, sr, stack map[string]any) *ReturnProjections {
	// Profit margin is derived once from stabilized value against total
	// cost; upside and downside apply the policy offsets to it.
	totalCost := totalDevelopmentCost(c, stack)
	stabilized := Number(c, "stabilizedValue")

	var base, upside, downside *float64
	if stabilized != nil && totalCost != nil && *totalCost > 0 {
		margin := round1((*stabilized - *totalCost) / *totalCost * 100)
		base = &margin
		up := round1(margin + n.Policy.UpsideMarginOffset)
		upside = &up
		down := round1(margin + n.Policy.DownsideMarginOffset)
		downside = &down
	}

	return &ReturnProjections{
		Base:     scenarioReturn(mapOf(sr["base"]), base),
		Upside:   scenarioReturn(mapOf(sr["upside"]), upside),
		Downside: scenarioReturn(mapOf(sr["downside"]), downside),
	}
}

func scenarioReturn(sr map[string]any, margin *float64) ReturnScenario {
	return ReturnScenario{
		IRR:            sectionValue(sr, "irr"),
		EquityMultiple: sectionValue(sr, "equityMultiple"),
		ProfitMargin:   margin,
	}
}

// totalDevelopmentCost resolves the project's total cost: explicit flat
// fields first, the capital stack section as a last resort.
func totalDevelopmentCost(c Content, stack map[string]any) *float64 {
	return firstNumber(
		Number(c, "totalProjectCost"),
		Number(c, "totalDevelopmentCost"),
		sectionNumber(stack, "totalDevelopmentCost"),
	)
}

func loanAmount(c Content, stack map[string]any) *float64 {
	return firstNumber(
		Number(c, "loanAmountRequested"),
		Number(c, "loanAmount"),
		sectionNumber(stack, "loanAmount"),
	)
}

func sponsorEquity(c Content, stack map[string]any) *float64 {
	return firstNumber(
		Number(c, "equityRequirement"),
		Number(c, "sponsorEquity"),
		sectionNumber(stack, "equityRequirement"),
	)
}

type SourcesUses struct {
	Sources              []LineItem `json:"sources"`
	Uses                 []LineItem `json:"uses"`
	TotalDevelopmentCost *float64   `json:"totalDevelopmentCost"`
}

type LineItem struct {
	Type       string   `json:"type"`
	Amount     *float64 `json:"amount"`
	Percentage *float64 `json:"percentage"`
}

func (n *Normalizer) sourcesUses(c Content, stack map[string]any) *SourcesUses {
	total := totalDevelopmentCost(c, stack)

	sources := []LineItem{}
	appendSource := func(label string, amount *float64) {
		if amount == nil {
			return
		}
		sources = append(sources, LineItem{Type: label, Amount: amount, Percentage: percentage(amount, total)})
	}
	appendSource("Senior Construction Loan", loanAmount(c, stack))
	appendSource("Sponsor Equity", sponsorEquity(c, stack))
	appendSource("Tax Credit Equity", Number(c, "taxCreditEquity"))
	appendSource("Gap Financing", Number(c, "gapFinancing"))

	uses := []LineItem{}
	for _, cat := range n.Policy.UseCategories {
		amount := Number(c, cat.Field)
		if amount == nil {
			continue
		}
		uses = append(uses, LineItem{Type: cat.Label, Amount: amount, Percentage: percentage(amount, total)})
	}

	if len(sources) == 0 && len(uses) == 0 && total == nil {
		return nil
	}
	return &SourcesUses{Sources: sources, Uses: uses, TotalDevelopmentCost: total}
}

type SponsorProfile struct {
	Name                any `json:"name"`
	YearFounded         int `json:"yearFounded"`
	Headquarters        any `json:"headquarters"`
	TotalUnitsDeveloped any `json:"totalUnitsDeveloped"`
	TotalDeveloped      any `json:"totalDeveloped"`
	NetWorth            any `json:"netWorth"`
	Liquidity           any `json:"liquidity"`
	Bio                 any `json:"bio"`
}

func (n *Normalizer) sponsorProfile(c Content) *SponsorProfile {
	out := &SponsorProfile{
		Name:                Value(c, "sponsorName"),
		Headquarters:        Value(c, "sponsorHeadquarters"),
		TotalUnitsDeveloped: Value(c, "sponsorTotalUnitsDeveloped"),
		TotalDeveloped:      Value(c, "sponsorTotalDeveloped"),
		NetWorth:            Value(c, "sponsorNetWorth"),
		Liquidity:           Value(c, "sponsorLiquidity"),
		Bio:                 Value(c, "sponsorBio"),
	}
	founded := Number(c, "sponsorYearFounded")

	if out.Name == nil && out.Headquarters == nil && out.TotalUnitsDeveloped == nil &&
		out.TotalDeveloped == nil && out.NetWorth == nil && out.Liquidity == nil &&
		out.Bio == nil && founded == nil {
		return nil
	}

	if founded != nil {
		out.YearFounded = int(*founded)
	} else {
		out.YearFounded = n.Policy.DefaultSponsorYearFounded
	}
	return out
}
