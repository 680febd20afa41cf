package om

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"dealdesk/internal/util"
)

// ExportDashboardXLSX renders a normalized OM record to a workbook with
// one sheet per dashboard card. Sections missing from the record simply
// produce empty sheets.
func ExportDashboardXLSX(c Content, outputPath string) error {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	writeSourcesUses(f, c)
	writeUnitMix(f, c)
	writeScenarios(f, c)
	writeKeyTerms(f, c)

	// Drop the default sheet left over from excelize.NewFile.
	_ = f.DeleteSheet(defaultSheet)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeSourcesUses(f *excelize.File, c Content) {
	sheet := "Sources & Uses"
	_, _ = f.NewSheet(sheet)
	writeRow(f, sheet, 1, "category", "type", "amount", "percentage")

	fd := mapOf(c["financialDetails"])
	su := sectionAs[SourcesUses](fd["sourcesUses"])
	if su == nil {
		return
	}

	r := 2
	for _, item := range su.Sources {
		writeRow(f, sheet, r, "source", item.Type, util.DerefFloat(item.Amount), util.DerefFloat(item.Percentage))
		r++
	}
	for _, item := range su.Uses {
		writeRow(f, sheet, r, "use", item.Type, util.DerefFloat(item.Amount), util.DerefFloat(item.Percentage))
		r++
	}
	writeRow(f, sheet, r, "total", "Total Development Cost", util.DerefFloat(su.TotalDevelopmentCost), "")
}

func writeUnitMix(f *excelize.File, c Content) {
	sheet := "Unit Mix"
	_, _ = f.NewSheet(sheet)
	writeRow(f, sheet, 1, "bucket", "count", "avgSF", "rentRange", "deposit")

	ap := sectionAs[AssetProfileDetails](c["assetProfileDetails"])
	if ap == nil {
		return
	}

	r := 2
	for _, bucket := range []string{"studios", "oneBed", "twoBed"} {
		summary := ap.UnitMix[bucket]
		if summary == nil {
			continue
		}
		writeRow(f, sheet, r, bucket, summary.Count, summary.AvgSF, util.DerefString(summary.RentRange), summary.Deposit)
		r++
	}
	for key, summary := range ap.UnitMix {
		if key == "studios" || key == "oneBed" || key == "twoBed" {
			continue
		}
		writeRow(f, sheet, r, key, summary.Count, summary.AvgSF, util.DerefString(summary.RentRange), summary.Deposit)
		r++
	}

	r++
	writeRow(f, sheet, r, "code", "type", "units", "avgSF")
	r++
	for _, row := range ap.DetailedUnitMix {
		writeRow(f, sheet, r, row.Code, row.Type, util.DerefFloat(row.Units), util.DerefFloat(row.AvgSF))
		r++
	}
}

func writeScenarios(f *excelize.File, c Content) {
	sheet := "Scenarios"
	_, _ = f.NewSheet(sheet)
	writeRow(f, sheet, 1, "scenario", "loanAmount", "ltv", "ltc", "irr", "equityMultiple", "constructionCost")

	sd := sectionAs[ScenarioData](c["scenarioData"])
	if sd == nil {
		return
	}

	rows := []struct {
		name     string
		scenario Scenario
	}{
		{"base", sd.Base},
		{"upside", sd.Upside},
		{"downside", sd.Downside},
	}
	for i, row := range rows {
		writeRow(f, sheet, i+2, row.name,
			util.DerefFloat(row.scenario.LoanAmount),
			util.DerefFloat(row.scenario.LTV),
			util.DerefFloat(row.scenario.LTC),
			row.scenario.IRR,
			row.scenario.EquityMultiple,
			util.DerefFloat(row.scenario.ConstructionCost))
	}
}

func writeKeyTerms(f *excelize.File, c Content) {
	sheet := "Key Terms"
	_, _ = f.NewSheet(sheet)

	ds := sectionAs[DealSnapshotDetails](c["dealSnapshotDetails"])
	if ds == nil {
		return
	}

	kt := ds.KeyTerms
	pairs := [][2]any{
		{"Loan Type", kt.LoanType},
		{"Rate", util.DerefString(kt.Rate)},
		{"Underwritten Rate", util.DerefString(kt.UnderwrittenRate)},
		{"Term", kt.Term},
		{"Extension Options", kt.ExtensionOptions},
		{"Origination Fee", kt.OriginationFee},
		{"Min DSCR", util.DerefString(kt.Covenants.MinDSCR)},
		{"Max LTV", util.DerefString(kt.Covenants.MaxLTV)},
		{"Min Liquidity", util.DerefString(kt.Covenants.MinLiquidity)},
		{"Completion Guaranty", kt.Covenants.CompletionGuaranty},
	}
	for i, pair := range pairs {
		writeRow(f, sheet, i+1, pair[0], pair[1])
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// sectionAs recovers a typed derived section whether it was computed this
// process (typed) or loaded from a persisted JSON document (plain map).
func sectionAs[T any](v any) *T {
	switch t := v.(type) {
	case nil:
		return nil
	case *T:
		return t
	case T:
		return &t
	case map[string]any:
		blob, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		var out T
		if err := json.Unmarshal(blob, &out); err != nil {
			return nil
		}
		return &out
	default:
		return nil
	}
}
