package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/p-n-ai/pai-lingo/internal/completeness"
	"github.com/p-n-ai/pai-lingo/internal/translate"
)

// ReviewSheet is the worksheet holding one row per missing translation.
const ReviewSheet = "Review"

var reviewHeader = []any{"Address", "Topic", "Choice", "Locale", "Language", "Source", "Translation"}

const (
	colAddress = iota
	colTopic
	colChoice
	colLocale
	colLanguage
	colSource
	colTranslation
)

// ReviewRow is one missing translation awaiting a reviewer.
type ReviewRow struct {
	Address     string
	Topic       string
	Choice      string
	Locale      string
	Source      string
	Translation string
}

// ExportWorkbook writes an XLSX workbook listing every missing locale of
// findings, with an empty Translation column for reviewers to fill in.
func ExportWorkbook(path string, findings []completeness.Finding) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReviewSheet); err != nil {
		return fmt.Errorf("naming review sheet: %w", err)
	}
	if err := f.SetSheetRow(ReviewSheet, "A1", &reviewHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(ReviewSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(ReviewSheet, "F", "G", 60); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	row := 2
	for _, finding := range findings {
		for _, locale := range finding.Missing {
			axis, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{
				finding.Address.String(),
				finding.Topic,
				finding.Choice,
				locale,
				translate.LanguageName(locale),
				finding.Source,
				"",
			}
			if err := f.SetSheetRow(ReviewSheet, axis, &values); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// ImportWorkbook reads the review sheet of a workbook written by
// ExportWorkbook and returns the rows a reviewer filled in.
func ImportWorkbook(path string) ([]ReviewRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ReviewSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", ReviewSheet, err)
	}

	var out []ReviewRow
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		r := ReviewRow{
			Address:     cell(cells, colAddress),
			Topic:       cell(cells, colTopic),
			Choice:      cell(cells, colChoice),
			Locale:      cell(cells, colLocale),
			Source:      cell(cells, colSource),
			Translation: strings.TrimSpace(cell(cells, colTranslation)),
		}
		if r.Locale == "" || r.Source == "" || r.Translation == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ReviewConflict reports a reviewed row whose translation disagrees with an
// earlier row for the same source text and locale.
type ReviewConflict struct {
	Kept    ReviewRow
	Dropped ReviewRow
}

// ReviewDictionary builds a dictionary from reviewed rows, keyed by source
// text. When rows for the same source and locale disagree, the first row
// wins and the others are returned as conflicts.
func ReviewDictionary(rows []ReviewRow) (*translate.Dictionary, []ReviewConflict) {
	dict := translate.NewDictionary()
	kept := make(map[[2]string]ReviewRow)
	var conflicts []ReviewConflict
	for _, r := range rows {
		key := [2]string{strings.TrimSpace(norm.NFC.String(r.Source)), r.Locale}
		if first, ok := kept[key]; ok {
			if first.Translation != r.Translation {
				conflicts = append(conflicts, ReviewConflict{Kept: first, Dropped: r})
			}
			continue
		}
		kept[key] = r
		dict.Add(r.Source, r.Locale, r.Translation)
	}
	return dict, conflicts
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i]
}
