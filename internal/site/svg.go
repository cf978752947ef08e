package site

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/rvtools/rvenc/internal/encoding"
)

// Diagram geometry. Cells scale with bit count so a 16-bit diagram is
// half the width of a 32-bit one.
const (
	cellPerBit   = 24
	cellHeight   = 40
	indexMargin  = 14
	sideMargin   = 8
	bottomMargin = 8
)

var kindFill = map[encoding.FieldKind]string{
	encoding.KindConstant: "#dce8f8",
	encoding.KindVariable: "#e4f4dc",
	encoding.KindGap:      "#f0f0f0",
}

// RenderSVG draws one bit-field diagram: a row of cells, one per layout
// segment, widths proportional to bit counts, with bit indices above each
// cell's edges. The segments are expected to be sorted descending.
func RenderSVG(w io.Writer, segs []encoding.LayoutSegment, width int) error {
	if width <= 0 {
		return fmt.Errorf("cannot render a %d-bit word", width)
	}
	if len(segs) == 0 {
		return fmt.Errorf("nothing to render")
	}
	for _, s := range segs {
		if s.Width <= 0 {
			return fmt.Errorf("segment %q has non-positive width %d", s.Label, s.Width)
		}
	}

	totalW := width*cellPerBit + 2*sideMargin
	totalH := indexMargin + cellHeight + bottomMargin

	canvas := svg.New(w)
	canvas.Start(totalW, totalH)

	entries := encoding.RenderEntries(segs)
	x := sideMargin
	for i, s := range segs {
		cellW := s.Width * cellPerBit

		canvas.Rect(x, indexMargin, cellW, cellHeight,
			fmt.Sprintf("fill:%s;stroke:#333;stroke-width:1", kindFill[s.Kind]))

		if name := entries[i].Name; name != "" {
			canvas.Text(x+cellW/2, indexMargin+cellHeight/2+4, name,
				"text-anchor:middle;font-family:monospace;font-size:12px")
		}

		canvas.Text(x+2, indexMargin-3, fmt.Sprintf("%d", s.Range.High),
			"text-anchor:start;font-family:monospace;font-size:9px;fill:#666")
		if s.Width > 1 {
			canvas.Text(x+cellW-2, indexMargin-3, fmt.Sprintf("%d", s.Range.Low),
				"text-anchor:end;font-family:monospace;font-size:9px;fill:#666")
		}

		x += cellW
	}

	canvas.End()
	return nil
}
