package services

import (
	"fmt"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/xuri/excelize/v2"
)

const (
	CampaignsSheet = "Campaigns"
	SourcesSheet   = "Sources"
)

var (
	campaignHeader = []any{"Campaign ID", "Campaign", "Status", "Budget", "Events", "Conversions", "Revenue", "Spend", "ROI (%)", "ROAS", "Period Start", "Period End"}
	sourceHeader   = []any{"Campaign ID", "Campaign", "Source", "Events", "Conversions", "Revenue", "Spend", "ROI (%)", "ROAS"}
)

// ReportExporter renders campaign performance into a spreadsheet
type ReportExporter interface {
	ExportCampaignPerformance(perf *dto.CampaignPerformanceResponse) ([]byte, error)
}

// XLSXReportExporter writes XLSX workbooks
type XLSXReportExporter struct{}

// NewXLSXReportExporter creates a new exporter
func NewXLSXReportExporter() ReportExporter {
	return XLSXReportExporter{}
}

// ExportCampaignPerformance writes one row per campaign to the "Campaigns" sheet
// and one row per campaign and source to the "Sources" sheet
func (XLSXReportExporter) ExportCampaignPerformance(perf *dto.CampaignPerformanceResponse) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), CampaignsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := xl.NewSheet(SourcesSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeRow(xl, CampaignsSheet, 1, campaignHeader); err != nil {
		return nil, err
	}
	if err := writeRow(xl, SourcesSheet, 1, sourceHeader); err != nil {
		return nil, err
	}

	sourceRow := 2
	for i, c := range perf.Campaigns {
		row := []any{
			c.CampaignID, c.CampaignName, c.Status, c.BudgetKind,
			c.TotalEvents, c.Conversions, c.Revenue, c.Spend, c.ROI, c.ROAS,
			c.PeriodStart.Format("2006-01-02 15:04:05"), c.PeriodEnd.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(xl, CampaignsSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, s := range c.SourceBreakdown {
			row := []any{c.CampaignID, c.CampaignName, s.Source, s.Events, s.Conversions, s.Revenue, s.Spend, s.ROI, s.ROAS}
			if err := writeRow(xl, SourcesSheet, sourceRow, row); err != nil {
				return nil, err
			}
			sourceRow++
		}
	}

	totalsRow := len(perf.Campaigns) + 2
	if err := writeRow(xl, CampaignsSheet, totalsRow, []any{"Total", "", "", "", "", "", perf.TotalRevenue, perf.TotalSpend}); err != nil {
		return nil, err
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(xl *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := xl.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
