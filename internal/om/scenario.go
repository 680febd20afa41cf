package om

type ScenarioData struct {
	Base     Scenario `json:"base"`
	Upside   Scenario `json:"upside"`
	Downside Scenario `json:"downside"`
}

type Scenario struct {
	LoanAmount       *float64 `json:"loanAmount"`
	LTV              *float64 `json:"ltv"`
	LTC              *float64 `json:"ltc"`
	IRR              any      `json:"irr"`
	EquityMultiple   any      `json:"equityMultiple"`
	ConstructionCost *float64 `json:"constructionCost"`
}

// scenarioData builds the base scenario from flat fields with capital
// stack and return-projection fallbacks, then completes upside and
// downside as copies of base with their own returns swapped in. All three
// scenarios always come out fully populated: a missing upside block means
// upside inherits base, never a half-nil scenario.
func (n *Normalizer) scenarioData(c Content, ps map[string]any) *ScenarioData {
	stack := mapOf(ps["capitalStackHighlights"])
	sr := mapOf(ps["scenarioReturns"])
	rp := returnProjectionsOf(c)

	base := Scenario{
		LoanAmount: loanAmount(c, stack),
		LTV:        firstNumber(Number(c, "ltv"), sectionNumber(stack, "ltv")),
		LTC:        firstNumber(Number(c, "ltc"), sectionNumber(stack, "ltc")),
		IRR: firstValue(
			Value(c, "projectedIrr"),
			sectionValue(mapOf(sr["base"]), "irr"),
			projectionValue(rp, "base", "irr"),
		),
		EquityMultiple: firstValue(
			Value(c, "equityMultiple"),
			sectionValue(mapOf(sr["base"]), "equityMultiple"),
			projectionValue(rp, "base", "equityMultiple"),
		),
		ConstructionCost: firstNumber(
			Number(c, "constructionCost"),
			Number(c, "baseConstructionCost"),
			sectionNumber(stack, "constructionCost"),
		),
	}

	if base.LoanAmount == nil && base.LTV == nil && base.LTC == nil &&
		base.IRR == nil && base.EquityMultiple == nil && base.ConstructionCost == nil {
		return nil
	}

	return &ScenarioData{
		Base:     base,
		Upside:   overrideReturns(base, mapOf(sr["upside"]), rp, "upside"),
		Downside: overrideReturns(base, mapOf(sr["downside"]), rp, "downside"),
	}
}

func overrideReturns(base Scenario, sr map[string]any, rp any, name string) Scenario {
	out := base
	if irr := firstValue(sectionValue(sr, "irr"), projectionValue(rp, name, "irr")); irr != nil {
		out.IRR = irr
	}
	if em := firstValue(sectionValue(sr, "equityMultiple"), projectionValue(rp, name, "equityMultiple")); em != nil {
		out.EquityMultiple = em
	}
	return out
}

// returnProjectionsOf digs financialDetails.returnProjections out of the
// record, whether it was just computed this pass or loaded from a
// persisted document as a plain map.
func returnProjectionsOf(c Content) any {
	fd := mapOf(c["financialDetails"])
	if fd == nil {
		return nil
	}
	return fd["returnProjections"]
}

func projectionValue(rp any, scenario, field string) any {
	switch t := rp.(type) {
	case *ReturnProjections:
		if t == nil {
			return nil
		}
		var s ReturnScenario
		switch scenario {
		case "base":
			s = t.Base
		case "upside":
			s = t.Upside
		case "downside":
			s = t.Downside
		}
		if field == "irr" {
			return s.IRR
		}
		return s.EquityMultiple
	case map[string]any:
		return sectionValue(mapOf(t[scenario]), field)
	default:
		return nil
	}
}

type CapitalStackData struct {
	Base     *CapitalStackScenario `json:"base"`
	Upside   *CapitalStackScenario `json:"upside"`
	Downside *CapitalStackScenario `json:"downside"`
}

type CapitalStackScenario struct {
	DebtPercentage   *float64   `json:"debtPercentage"`
	EquityPercentage *float64   `json:"equityPercentage"`
	Sources          []LineItem `json:"sources"`
	Uses             []StackUse `json:"uses"`
	Reserves         Reserves   `json:"reserves"`
}

type StackUse struct {
	Type       string   `json:"type"`
	Amount     *float64 `json:"amount"`
	Percentage *float64 `json:"percentage"`
	Timing     string   `json:"timing"`
}

// Reserves carries currency-formatted strings, not raw numbers: the
// dashboard renders these verbatim.
type Reserves struct {
	InterestReserve     *string `json:"interestReserve"`
	TaxInsuranceReserve *string `json:"taxInsuranceReserve"`
	CapExReserve        *string `json:"capExReserve"`
}

// capitalStack derives one stack breakdown and shares it across all three
// scenarios. The derivation is not scenario sensitive yet, so base, upside
// and downside reference the same object.
func (n *Normalizer) capitalStack(c Content, stack map[string]any) *CapitalStackData {
	total := totalDevelopmentCost(c, stack)
	loan := loanAmount(c, stack)
	equity := sponsorEquity(c, stack)

	debtPct := percentage(loan, total)
	equityPct := percentage(equity, total)
	if debtPct == nil {
		// Raw amounts can't produce the split; fall back to the stated
		// loan-to-cost ratio.
		if ltc := firstNumber(Number(c, "ltc"), sectionNumber(stack, "ltc")); ltc != nil {
			debtPct = ltc
			rest := round1(100 - *ltc)
			equityPct = &rest
		}
	}

	sources := []LineItem{}
	appendSource := func(label string, amount *float64) {
		if amount == nil {
			return
		}
		sources = append(sources, LineItem{Type: label, Amount: amount, Percentage: percentage(amount, total)})
	}
	appendSource("Senior Construction Loan", loan)
	appendSource("Sponsor Equity", equity)
	appendSource("Tax Credit Equity", Number(c, "taxCreditEquity"))
	appendSource("Gap Financing", Number(c, "gapFinancing"))

	uses := n.stackUses(c, total)

	scenario := &CapitalStackScenario{
		DebtPercentage:   debtPct,
		EquityPercentage: equityPct,
		Sources:          sources,
		Uses:             uses,
		Reserves:         n.reserves(c),
	}

	return &CapitalStackData{Base: scenario, Upside: scenario, Downside: scenario}
}

func (n *Normalizer) stackUses(c Content, total *float64) []StackUse {
	uses := []StackUse{}
	for _, cat := range n.Policy.UseCategories {
		amount := Number(c, cat.Field)
		if amount == nil {
			continue
		}
		uses = append(uses, StackUse{
			Type:       cat.Label,
			Amount:     amount,
			Percentage: percentage(amount, total),
			Timing:     cat.Timing,
		})
	}
	return uses
}

func (n *Normalizer) reserves(c Content) Reserves {
	return Reserves{
		InterestReserve:     FormatCurrency(Number(c, "interestReserve")),
		TaxInsuranceReserve: FormatCurrency(Number(c, "taxInsuranceEscrow")),
		CapExReserve:        FormatCurrency(Number(c, "capExReserve")),
	}
}
