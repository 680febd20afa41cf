package om

type DealSnapshotDetails struct {
	KeyTerms        KeyTerms         `json:"keyTerms"`
	Milestones      []Milestone      `json:"milestones"`
	SpecialPrograms []SpecialProgram `json:"specialPrograms"`
	RiskMatrix      RiskMatrix       `json:"riskMatrix"`
}

type KeyTerms struct {
	LoanType         any            `json:"loanType"`
	Rate             *string        `json:"rate"`
	UnderwrittenRate *string        `json:"underwrittenRate"`
	Term             any            `json:"term"`
	ExtensionOptions string         `json:"extensionOptions"`
	OriginationFee   string         `json:"originationFee"`
	Covenants        Covenants      `json:"covenants"`
	LenderReserves   LenderReserves `json:"lenderReserves"`
}

type Covenants struct {
	MinDSCR            *string `json:"minDSCR"`
	MaxLTV             *string `json:"maxLTV"`
	MinLiquidity       *string `json:"minLiquidity"`
	CompletionGuaranty string  `json:"completionGuaranty"`
}

type LenderReserves struct {
	InterestReserve     *string `json:"interestReserve"`
	TaxInsuranceReserve *string `json:"taxInsuranceReserve"`
	CapExReserve        *string `json:"capExReserve"`
}

type Milestone struct {
	Phase    any    `json:"phase"`
	Date     any    `json:"date"`
	Status   string `json:"status"`
	Duration int    `json:"duration"`
}

type SpecialProgram struct {
	Name        any `json:"name"`
	Description any `json:"description"`
}

type RiskMatrix struct {
	Medium []any `json:"medium"`
	Low    []any `json:"low"`
}

// dealSnapshot assembles the key-terms card, the timeline milestones and
// the certification programs. Extension options, origination fee and the
// completion guaranty are narrative policy defaults, not stored data.
func (n *Normalizer) dealSnapshot(c Content, ps map[string]any) *DealSnapshotDetails {
	timeline := sliceOf(ps["timeline"])
	certifications := sliceOf(ps["certifications"])

	loanType := Value(c, "loanType")
	rate := Number(c, "interestRate")
	uwRate := Number(c, "underwrittenRate")
	term := Value(c, "loanTerm")
	minDSCR := Number(c, "minDscr")
	maxLTV := firstNumber(Number(c, "maxLtv"), Number(c, "ltv"))
	minLiquidity := Number(c, "minLiquidity")

	if timeline == nil && certifications == nil && loanType == nil && rate == nil &&
		uwRate == nil && term == nil && minDSCR == nil && maxLTV == nil && minLiquidity == nil {
		return nil
	}

	out := &DealSnapshotDetails{
		KeyTerms: KeyTerms{
			LoanType:         loanType,
			Rate:             suffixed(FormatFixed(rate, 2), "% all-in"),
			UnderwrittenRate: suffixed(FormatFixed(uwRate, 2), "% UW"),
			Term:             term,
			ExtensionOptions: n.Policy.ExtensionOptions,
			OriginationFee:   n.Policy.OriginationFee,
			Covenants: Covenants{
				MinDSCR:            suffixed(FormatFixed(minDSCR, 2), "x"),
				MaxLTV:             FormatPercentage(maxLTV, 0),
				MinLiquidity:       FormatCurrency(minLiquidity),
				CompletionGuaranty: n.Policy.CompletionGuaranty,
			},
			LenderReserves: LenderReserves{
				InterestReserve:     FormatCurrency(Number(c, "interestReserve")),
				TaxInsuranceReserve: FormatCurrency(Number(c, "taxInsuranceEscrow")),
				CapExReserve:        FormatCurrency(Number(c, "capExReserve")),
			},
		},
		Milestones:      []Milestone{},
		SpecialPrograms: []SpecialProgram{},
		RiskMatrix:      RiskMatrix{Medium: []any{}, Low: []any{}},
	}

	for i, raw := range timeline {
		entry := mapOf(raw)
		out.Milestones = append(out.Milestones, Milestone{
			Phase:    sectionValue(entry, "phase"),
			Date:     sectionValue(entry, "date"),
			Status:   n.milestoneStatus(i),
			Duration: n.Policy.MilestoneDuration,
		})
	}

	for _, raw := range certifications {
		entry := mapOf(raw)
		out.SpecialPrograms = append(out.SpecialPrograms, SpecialProgram{
			Name:        sectionValue(entry, "name"),
			Description: sectionValue(entry, "status"),
		})
	}

	return out
}

// milestoneStatus assigns status by timeline position. Date-based status
// needs per-milestone dates the legacy schema does not guarantee.
func (n *Normalizer) milestoneStatus(index int) string {
	switch {
	case index < n.Policy.CompletedMilestones:
		return "completed"
	case index == n.Policy.CompletedMilestones:
		return "current"
	default:
		return "upcoming"
	}
}

func suffixed(v *string, suffix string) *string {
	if v == nil {
		return nil
	}
	s := *v + suffix
	return &s
}
