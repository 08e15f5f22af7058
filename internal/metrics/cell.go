package metrics

import (
	"github.com/mattn/go-runewidth"
)

// CellProvider measures text in terminal cells.
type CellProvider struct {
	CellWidth  float64
	CellHeight float64
	cond       *runewidth.Condition
}

// NewCellProvider creates a cell provider. Non-positive dimensions default
// to one unit per cell.
func NewCellProvider(cellWidth, cellHeight float64) *CellProvider {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return &CellProvider{
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		cond:       cond,
	}
}

// Cells returns the number of terminal cells text occupies.
func (p *CellProvider) Cells(text string) int {
	return p.cond.StringWidth(text)
}

// Measure implements Provider. The font size is ignored: every cell has
// the same size.
func (p *CellProvider) Measure(text string, _ Style) Size {
	return Size{
		Width:  float64(p.Cells(text)) * p.CellWidth,
		Height: p.CellHeight,
	}
}

// LineHeight implements Provider.
func (p *CellProvider) LineHeight(Style) float64 {
	return p.CellHeight
}
