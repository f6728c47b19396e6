package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	carcount "github.com/jaluraya/go-carcount"
	"gocv.io/x/gocv"
)

// boxLabel holds the precalculated rendering details of a box label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// Boxes renders the bounding boxes around the objects in a frame result.
// Each box is colored by track id, the center dot flips from red to green
// once the object has been counted
func Boxes(img *gocv.Mat, objects []carcount.DrawHint, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, obj := range objects {

		useClr := TrackColor(obj.TrackID)

		// draw rectangle around detected object
		rect := image.Rect(obj.Box.Left, obj.Box.Top, obj.Box.Right,
			obj.Box.Bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// center dot the counting logic evaluated
		dotClr := Red
		if obj.Counted {
			dotClr = Green
		}
		gocv.Circle(img, image.Pt(obj.CenterX, obj.CenterY), 4, dotClr, -1)

		textSize := gocv.GetTextSize(obj.Label, font.Face, font.Scale,
			font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (obj.Box.Left + obj.Box.Right) / 2

		case Right:
			centerX = obj.Box.Right - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = obj.Box.Left + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, obj.Box.Top-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			obj.Box.Top-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, obj.Box.Top)

		// record label rendering details
		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    obj.Label,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the top most layer on
	// the image
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// CountingLines draws each counting line across the full frame width along
// with thin lines marking the edges of its tolerance band
func CountingLines(img *gocv.Mat, lines []carcount.LineHint, font Font,
	lineThickness int) {

	width := img.Cols()

	for _, line := range lines {

		// main counting line
		gocv.Line(img, image.Pt(0, line.PositionY),
			image.Pt(width, line.PositionY), Green, lineThickness)

		// tolerance band edges
		gocv.Line(img, image.Pt(0, line.PositionY-line.Tolerance),
			image.Pt(width, line.PositionY-line.Tolerance), Green, 1)
		gocv.Line(img, image.Pt(0, line.PositionY+line.Tolerance),
			image.Pt(width, line.PositionY+line.Tolerance), Green, 1)

		// line name above the band
		gocv.PutTextWithParams(img, line.Name,
			image.Pt(10, line.PositionY-line.Tolerance-6),
			font.Face, font.Scale, Green, font.Thickness,
			font.LineType, false)
	}
}

// CounterPanel draws the counter totals on a semi transparent panel in the
// top left corner of the frame
func CounterPanel(img *gocv.Mat, counts carcount.Counts, font Font) {

	lineHeight := 26
	panelHeight := (len(counts.Counters)+1)*lineHeight + 14

	// darken the panel area
	overlay := img.Clone()
	defer overlay.Close()

	gocv.Rectangle(&overlay, image.Rect(10, 10, 240, 10+panelHeight),
		Black, -1)
	gocv.AddWeighted(overlay, 0.7, *img, 0.3, 0, img)

	y := 10 + lineHeight

	gocv.PutTextWithParams(img, fmt.Sprintf("Total: %d", counts.Total),
		image.Pt(20, y), font.Face, font.Scale*1.4, Yellow,
		font.Thickness+1, font.LineType, false)

	// stable ordering for the named counters
	names := make([]string, 0, len(counts.Counters))
	for name := range counts.Counters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		y += lineHeight
		gocv.PutTextWithParams(img,
			fmt.Sprintf("%s: %d", name, counts.Counters[name]),
			image.Pt(20, y), font.Face, font.Scale*1.2, White,
			font.Thickness, font.LineType, false)
	}
}
