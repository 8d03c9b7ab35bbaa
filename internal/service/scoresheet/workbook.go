package scoresheet

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName используется, если имя листа не задано в конфигурации
const DefaultSheetName = "Scores"

// WriteWorkbook переносит сетку на единственный лист xlsx-книги и возвращает ее байты
func WriteWorkbook(grid *Grid, sheetName string) ([]byte, error) {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheetName, err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	// Ширины выставляем в порядке колонок, чтобы файл был детерминированным
	cols := make([]int, 0, len(grid.ColumnWidths))
	for col := range grid.ColumnWidths {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("invalid column %d: %w", col, err)
		}
		if err := f.SetColWidth(sheetName, name, name, grid.ColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	for _, m := range grid.Merges {
		first, err := excelize.CoordinatesToCellName(m.FirstCol+1, m.Row+1)
		if err != nil {
			return nil, fmt.Errorf("invalid merge start: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(m.LastCol+1, m.Row+1)
		if err != nil {
			return nil, fmt.Errorf("invalid merge end: %w", err)
		}
		if err := f.MergeCell(sheetName, first, last); err != nil {
			return nil, fmt.Errorf("failed to merge %s:%s: %w", first, last, err)
		}
	}

	for _, c := range grid.Cells {
		name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
		if err != nil {
			return nil, fmt.Errorf("invalid cell (%d, %d): %w", c.Row, c.Col, err)
		}
		if err := f.SetCellValue(sheetName, name, c.Value); err != nil {
			return nil, fmt.Errorf("failed to write cell %s: %w", name, err)
		}
		if styleID, ok := styles[c.Style]; ok {
			if err := f.SetCellStyle(sheetName, name, name, styleID); err != nil {
				return nil, fmt.Errorf("failed to style cell %s: %w", name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// newStyles регистрирует стили заголовков; у обычных ячеек стиля нет
func newStyles(f *excelize.File) (map[CellStyle]int, error) {
	heading, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: HeadingFontSize},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create heading style: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bold style: %w", err)
	}

	return map[CellStyle]int{
		StyleHeading: heading,
		StyleBold:    bold,
	}, nil
}
