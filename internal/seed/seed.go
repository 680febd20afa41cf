// Package seed provisions demo projects the way the platform's
// create-project flow does: project row first, then the initial project
// resume in rich format, a borrower resume copied from the most complete
// one already in the org, and finally a full OM content fixture.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealdesk/internal"
	"dealdesk/internal/resume"
	"dealdesk/internal/storage"
)

type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

type Result struct {
	OrgID      string
	ProjectIDs []string
}

// SeedDemo creates two demo projects in the given org. The first carries
// the full OM fixture; the second starts empty except for its resumes,
// which lets the borrower-profile copy path be exercised end to end.
func (s *Service) SeedDemo(ctx context.Context, orgID string) (Result, error) {
	result := Result{OrgID: orgID}

	first, err := s.createProject(ctx, orgID, "Riverside Commons", "120 Riverside Dr")
	if err != nil {
		return result, err
	}
	result.ProjectIDs = append(result.ProjectIDs, first)

	if err := s.store.SaveBorrowerResume(ctx, internal.ResumeRow{
		ProjectID:           first,
		Content:             demoBorrowerContent(),
		CompletenessPercent: 72,
	}); err != nil {
		return result, err
	}
	if err := s.store.SaveOMContent(ctx, first, DemoOMContent()); err != nil {
		return result, err
	}

	second, err := s.createProject(ctx, orgID, "Mill District Lofts", "48 Mill St")
	if err != nil {
		return result, err
	}
	result.ProjectIDs = append(result.ProjectIDs, second)

	// New projects inherit the most complete borrower resume in the org.
	if err := s.copyBestBorrowerResume(ctx, orgID, second); err != nil {
		return result, err
	}

	return result, nil
}

func (s *Service) createProject(ctx context.Context, orgID, name, address string) (string, error) {
	id := uuid.NewString()
	if err := s.store.UpsertProject(ctx, internal.ProjectRecord{
		ID:         id,
		Name:       name,
		OwnerOrgID: orgID,
	}); err != nil {
		return "", fmt.Errorf("create project %q: %w", name, err)
	}

	content := map[string]any{
		"projectName": richUserField(name),
	}
	if address != "" {
		content["propertyAddressStreet"] = richUserField(address)
	}
	if err := s.store.SaveProjectResume(ctx, internal.ResumeRow{ProjectID: id, Content: content}); err != nil {
		return "", fmt.Errorf("create project resume for %q: %w", name, err)
	}

	return id, nil
}

func (s *Service) copyBestBorrowerResume(ctx context.Context, orgID, projectID string) error {
	rows, err := s.store.ListBorrowerResumesByOrg(ctx, orgID, projectID)
	if err != nil {
		return err
	}

	candidates := make([]resume.Candidate, 0, len(rows))
	for _, row := range rows {
		completeness := row.CompletenessPercent
		if completeness == 0 {
			completeness = resume.ParseCompletenessPercent(row.Content["completenessPercent"])
		}
		updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)
		candidates = append(candidates, resume.Candidate{
			ProjectID:    row.ProjectID,
			Content:      row.Content,
			Completeness: completeness,
			LockedFields: row.LockedFields,
			CreatedBy:    row.CreatedBy,
			UpdatedAt:    updatedAt,
		})
	}

	picked := resume.PickMostComplete(candidates)
	target := internal.ResumeRow{ProjectID: projectID, Content: map[string]any{}}
	if picked != nil {
		target.Content = picked.Content
		target.CompletenessPercent = picked.Completeness
		target.LockedFields = picked.LockedFields
		target.CreatedBy = picked.CreatedBy
	}
	return s.store.SaveBorrowerResume(ctx, target)
}

func richUserField(value any) map[string]any {
	return map[string]any{
		"value":        value,
		"source":       map[string]any{"type": "user_input"},
		"warnings":     []any{},
		"other_values": []any{},
	}
}

func demoBorrowerContent() map[string]any {
	return map[string]any{
		"legalName":        richUserField("Riverside Development Partners LLC"),
		"principalName":    richUserField("J. Alvarez"),
		"yearsInBusiness":  richUserField(14.0),
		"priorProjects":    richUserField([]any{"Harbor Point Phase I", "Lakeview Flats"}),
		"netWorth":         richUserField(42000000.0),
		"liquidity":        richUserField(6500000.0),
		"creditReferences": richUserField([]any{"First Meridian Bank"}),
	}
}

// DemoOMContent is a full offering-memorandum fixture: every legacy
// projectSections grouping plus the flat budget, sponsor and covenant
// fields the derived dashboard sections read.
func DemoOMContent() map[string]any {
	return map[string]any{
		"projectName":         "Riverside Commons",
		"propertyType":        "Mixed-Use Multifamily",
		"loanType":            "Senior Construction",
		"loanTerm":            "36 months",
		"interestRate":        7.25,
		"underwrittenRate":    7.85,
		"ltv":                 62.0,
		"ltc":                 65.0,
		"minDscr":             1.25,
		"minLiquidity":        5000000,
		"stabilizedValue":     118000000,
		"totalProjectCost":    92000000,
		"loanAmountRequested": 59800000,
		"equityRequirement":   27600000,
		"taxCreditEquity":     3200000,
		"projectedIrr":        17.8,
		"equityMultiple":      1.9,

		"landAcquisitionCost":             14500000,
		"baseConstructionCost":            52000000,
		"siteWorkCost":                    4100000,
		"ffeCost":                         1800000,
		"constructionContingency":         2600000,
		"architectureEngineeringFees":     3100000,
		"developerFee":                    3680000,
		"legalClosingCosts":               950000,
		"financingFees":                   1200000,
		"permitsImpactFees":               1450000,
		"insuranceCost":                   800000,
		"propertyTaxesDuringConstruction": 650000,
		"marketingLeaseUpCost":            900000,
		"interestReserve":                 2870000,
		"operatingReserve":                600000,
		"taxInsuranceEscrow":              450000,
		"capExReserve":                    350000,

		"sponsorName":                "Riverside Development Partners",
		"sponsorHeadquarters":        "Atlanta, GA",
		"sponsorYearFounded":         2008,
		"sponsorTotalUnitsDeveloped": 2400,
		"sponsorTotalDeveloped":      "$610M",
		"sponsorNetWorth":            42000000,
		"sponsorLiquidity":           6500000,

		"residentialUnitMix": []any{
			map[string]any{"unitType": "S1", "unitCount": 42, "avgSF": 520, "monthlyRent": 1650},
			map[string]any{"unitType": "S2", "unitCount": 18, "avgSF": 580, "monthlyRent": 1780},
			map[string]any{"unitType": "A1", "unitCount": 96, "avgSF": 710, "monthlyRent": 2100},
			map[string]any{"unitType": "B1", "unitCount": 64, "avgSF": 1040, "monthlyRent": 2850},
			map[string]any{"unitType": "TH1", "unitCount": 8, "avgSF": 1620, "monthlyRent": 4200},
		},

		"projectSections": map[string]any{
			"marketMetrics": map[string]any{
				"oneMile":               "18,400",
				"threeMile":             "96,200",
				"fiveMile":              "214,000",
				"renterShare":           "61%",
				"avgOccupancy":          "94.8%",
				"population5yr":         "6.2%",
				"income5yr":             "11.4%",
				"job5yr":                "8.1%",
				"totalResidentialUnits": 5200,
				"averageOccupancy":      "94.8%",
				"pipeline": []any{
					map[string]any{"quarter": "Q2 2027", "units": 310},
					map[string]any{"quarter": "Q4 2027", "units": 180},
					map[string]any{"quarter": "Q2 2028", "units": 240},
				},
			},
			"amenities": []any{
				map[string]any{"name": "Rooftop Terrace", "sf": 4200},
				map[string]any{"name": "Fitness Center", "sf": 2800},
			},
			"commercialProgram": []any{
				map[string]any{"use": "Retail", "sf": 9600, "status": "LOI signed"},
			},
			"scenarioReturns": map[string]any{
				"base":     map[string]any{"irr": 17.8, "equityMultiple": 1.9},
				"upside":   map[string]any{"irr": 21.4, "equityMultiple": 2.2},
				"downside": map[string]any{"irr": 12.6, "equityMultiple": 1.5},
			},
			"capitalStackHighlights": map[string]any{
				"loanAmount":           59800000,
				"equityRequirement":    27600000,
				"totalDevelopmentCost": 92000000,
				"ltc":                  65.0,
			},
			"timeline": []any{
				map[string]any{"phase": "Land Closing", "date": "2025-11"},
				map[string]any{"phase": "Permits Issued", "date": "2026-03"},
				map[string]any{"phase": "Vertical Construction", "date": "2026-06"},
				map[string]any{"phase": "Topping Out", "date": "2027-04"},
				map[string]any{"phase": "First Move-Ins", "date": "2027-11"},
			},
			"certifications": []any{
				map[string]any{"name": "LEED Silver", "status": "Targeted"},
				map[string]any{"name": "Opportunity Zone", "status": "Qualified"},
			},
		},
	}
}
