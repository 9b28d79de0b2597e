package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
)

const (
	entriesSheet  = "Entries"
	summarySheet  = "Summary"
	categorySheet = "By Category"
	tagSheet      = "By Tag"

	exportTimeLayout = "2006-01-02 15:04:05"
	headerFillColor  = "4472C4"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var entryHeaders = []string{"Date", "Title", "Category", "Type", "Amount", "Currency", "Note"}

// entry sheet column widths, A through G.
var entryColumnWidths = []float64{20, 25, 12, 10, 12, 8, 30}

// exportService writes entries and statistics to files.
type exportService struct {
	store *database.Store
	stats StatsServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(store *database.Store, stats StatsServicer) ExportServicer {
	return &exportService{store: store, stats: stats}
}

// ExportEntries writes the session user's entries matching filter and
// returns how many were written.
func (s *exportService) ExportEntries(sess *Session, format ExportFormat, path string, filter EntryFilter) (int, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return 0, err
	}
	q, err := filter.Query(user.ID)
	if err != nil {
		return 0, err
	}
	entries, err := s.store.QueryEntries(q)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, apperrors.ErrNoData
	}

	switch format {
	case ExportCSV:
		err = s.ExportCSV(entries, path, true)
	case ExportXLSX:
		err = s.ExportXLSX(entries, path, XLSXOptions{IncludeTags: true, IncludeImages: true})
	default:
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown export format %q", format))
	}
	if err != nil {
		return 0, err
	}

	logger.Get().Infow("entries exported", "user_id", user.ID, "format", string(format), "count", len(entries), "path", path)
	return len(entries), nil
}

// ExportCSV writes entries as UTF-8 CSV with a byte order mark so
// spreadsheet tools detect the encoding.
func (s *exportService) ExportCSV(entries []*models.Entry, path string, includeTags bool) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}

	w := csv.NewWriter(f)
	header := append([]string{}, entryHeaders...)
	if includeTags {
		header = append(header, "Tags")
	}
	if err := w.Write(header); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	for _, e := range entries {
		row := []string{
			e.Timestamp.Format(exportTimeLayout),
			e.Title,
			e.Category.Name,
			string(e.Category.Type),
			e.Amount.String(),
			e.Currency,
			e.Note,
		}
		if includeTags {
			row = append(row, tagNames(e))
		}
		if err := w.Write(row); err != nil {
			return apperrors.Wrap(apperrors.ErrExportFailed, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	return f.Close()
}

// ExportXLSX writes entries to a single-sheet workbook.
func (s *exportService) ExportXLSX(entries []*models.Entry, path string, opts XLSXOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}

	header := make([]any, 0, len(entryHeaders)+2)
	for _, h := range entryHeaders {
		header = append(header, h)
	}
	if opts.IncludeTags {
		header = append(header, "Tags")
	}
	if opts.IncludeImages {
		header = append(header, "Images")
	}
	if err := writeHeader(f, entriesSheet, header); err != nil {
		return err
	}

	for i, e := range entries {
		row := []any{
			e.Timestamp.Format(exportTimeLayout),
			e.Title,
			e.Category.Name,
			string(e.Category.Type),
			e.Amount.InexactFloat64(),
			e.Currency,
			e.Note,
		}
		if opts.IncludeTags {
			row = append(row, tagNames(e))
		}
		if opts.IncludeImages {
			row = append(row, len(e.Images))
		}
		if err := setRow(f, entriesSheet, i+2, row); err != nil {
			return err
		}
	}

	for i, width := range entryColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(entriesSheet, col, col, width); err != nil {
			return apperrors.Wrap(apperrors.ErrExportFailed, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	return nil
}

// ExportStatisticsXLSX writes a summary sheet and a per-category sheet,
// plus a per-tag sheet when any entry in the window is tagged.
func (s *exportService) ExportStatisticsXLSX(userID, path string, start, end *models.Timestamp) error {
	var (
		summary    *Summary
		categories []CategoryStat
		tags       []TagStat
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		summary, err = s.stats.Summary(userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.stats.ByCategory(userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.stats.ByTag(userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	if err := writeHeader(f, summarySheet, []any{"Item", "Amount"}); err != nil {
		return err
	}
	summaryRows := [][]any{
		{"Total Income", summary.Income.InexactFloat64()},
		{"Total Expense", summary.Expense.InexactFloat64()},
		{"Balance", summary.Balance.InexactFloat64()},
	}
	for i, row := range summaryRows {
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(categorySheet); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	if err := writeHeader(f, categorySheet, []any{"Category", "Amount", "Count", "Percentage"}); err != nil {
		return err
	}
	for i, c := range categories {
		row := []any{c.Name, c.Amount.InexactFloat64(), c.Count, fmt.Sprintf("%.2f%%", c.Percentage)}
		if err := setRow(f, categorySheet, i+2, row); err != nil {
			return err
		}
	}

	if len(tags) > 0 {
		if _, err := f.NewSheet(tagSheet); err != nil {
			return apperrors.Wrap(apperrors.ErrExportFailed, err)
		}
		if err := writeHeader(f, tagSheet, []any{"Tag", "Amount", "Count"}); err != nil {
			return err
		}
		for i, t := range tags {
			if err := setRow(f, tagSheet, i+2, []any{t.Name, t.Amount.InexactFloat64(), t.Count}); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	logger.Get().Infow("statistics exported", "user_id", userID, "path", path)
	return nil
}

// writeHeader writes row 1 with a bold white-on-blue style.
func writeHeader(f *excelize.File, sheet string, header []any) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, err)
	}
	return nil
}

func tagNames(e *models.Entry) string {
	names := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
