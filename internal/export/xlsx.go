// Package export renders audit results as XLSX workbooks for sharing with
// clients: a summary sheet with the dimension scores and a gaps sheet with
// the ranked gap list.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// Source provides the stored audit data a report is built from. The
// persistence layer's Store satisfies it.
type Source interface {
	GetCompany(ctx context.Context, companyID string) (*model.Company, error)
	GetAudit(ctx context.Context, auditID string) (*model.Audit, error)
	GetAuditScore(ctx context.Context, auditID string) (*model.AuditScore, error)
	ListGaps(ctx context.Context, auditID string) ([]model.Gap, error)
}

// Report holds everything that goes into one audit workbook.
type Report struct {
	Company *model.Company
	Audit   *model.Audit
	Score   *model.AuditScore
	Gaps    []model.Gap
}

// BuildReport loads the audit, its score, and its gaps from the store.
func BuildReport(ctx context.Context, st Source, auditID string) (*Report, error) {
	audit, err := st.GetAudit(ctx, auditID)
	if err != nil {
		return nil, eris.Wrap(err, "export: load audit")
	}
	company, err := st.GetCompany(ctx, audit.CompanyID)
	if err != nil {
		return nil, eris.Wrap(err, "export: load company")
	}
	score, err := st.GetAuditScore(ctx, auditID)
	if err != nil {
		return nil, eris.Wrap(err, "export: load score")
	}
	if score == nil {
		return nil, eris.Errorf("export: audit %s has no score yet", auditID)
	}
	gaps, err := st.ListGaps(ctx, auditID)
	if err != nil {
		return nil, eris.Wrap(err, "export: load gaps")
	}
	return &Report{Company: company, Audit: audit, Score: score, Gaps: gaps}, nil
}

// WriteXLSX renders the report and saves it to path.
func WriteXLSX(report *Report, path string) error {
	f := xlsx.NewFile()

	if err := addScoresSheet(f, report); err != nil {
		return err
	}
	if err := addGapsSheet(f, report.Gaps); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addScoresSheet(f *xlsx.File, report *Report) error {
	sheet, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "export: add scores sheet")
	}

	addRow(sheet, "Company", report.Company.Name)
	addRow(sheet, "Audit ID", report.Audit.ID)
	addRow(sheet, "Audit Date", report.Score.AuditDate.Format(time.DateOnly))
	addRow(sheet, "Status", string(report.Audit.Status))
	addRow(sheet)
	addRow(sheet, "Overall Score", formatScore(report.Score.OverallScore))
	addRow(sheet, "Jobs Score", formatScore(report.Score.JobsScore))
	addRow(sheet, "Pains Score", formatScore(report.Score.PainsScore))
	addRow(sheet, "Gains Score", formatScore(report.Score.GainsScore))
	addRow(sheet)
	addRow(sheet, "Sample Size", fmt.Sprintf("%d", report.Score.SampleSize))
	addRow(sheet, "Statistical Significance", fmt.Sprintf("%.2f", report.Score.StatisticalSignificance))
	return nil
}

func addGapsSheet(f *xlsx.File, gaps []model.Gap) error {
	sheet, err := f.AddSheet("Gaps")
	if err != nil {
		return eris.Wrap(err, "export: add gaps sheet")
	}

	addRow(sheet, "Priority", "Severity", "Type", "Description", "Promise", "Reality", "Impact")
	for _, g := range gaps {
		addRow(sheet,
			fmt.Sprintf("%d", g.Priority),
			string(g.Severity),
			string(g.GapType),
			g.Description,
			g.PromiseText,
			g.RealityText,
			formatScore(g.ImpactScore),
		)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
