package render

import (
	"image/color"

	"github.com/ukydev/office-duty-card/internal/models"
)

// Side names one face of the card.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Kind of a positioned element.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindRect
)

// Asset names an image slot filled at rasterization time.
type Asset string

const (
	AssetLogo      Asset = "logo"
	AssetPhoto     Asset = "photo"
	AssetSignature Asset = "signature"
)

// Fit controls how an image fills its box.
type Fit int

const (
	// FitContain scales the whole image into the box.
	FitContain Fit = iota
	// FitCover center-crops to the box aspect first.
	FitCover
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Element is one positioned item of a panel. Coordinates are millimetres from
// the top-left corner.
type Element struct {
	Kind  Kind
	X, Y  float64
	W, H  float64
	Text  string
	Bold  bool
	Size  float64 // em size in mm
	Align Align
	Color color.RGBA
	Asset Asset
	Fit   Fit
}

// Row is a label/value pair shown on a panel.
type Row struct {
	Label string
	Value string
}

// Panel is the laid-out content of one card face.
type Panel struct {
	Side        Side
	Orientation Orientation
	Width       float64
	Height      float64
	Elements    []Element
	rows        []Row
}

// Rows returns the label/value rows in display order.
func (p Panel) Rows() []Row {
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}

// Branding holds the organisation details printed on every card.
type Branding struct {
	OrgName       string
	OrgShortName  string
	ReturnAddress []string
}

var (
	colorText   = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorLabel  = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
	colorRule   = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	colorAccent = color.RGBA{R: 0xed, G: 0x1c, B: 0x24, A: 0xff}
)

const (
	labelSize = 2.3
	valueSize = 2.3
	smallSize = 2.0
	titleSize = 2.8
)

func (p *Panel) add(e Element) {
	p.Elements = append(p.Elements, e)
}

func (p *Panel) text(s string, x, y, w, h, size float64, bold bool, align Align, c color.RGBA) {
	p.add(Element{Kind: KindText, X: x, Y: y, W: w, H: h, Text: s, Size: size, Bold: bold, Align: align, Color: c})
}

func (p *Panel) image(a Asset, x, y, w, h float64, fit Fit) {
	p.add(Element{Kind: KindImage, X: x, Y: y, W: w, H: h, Asset: a, Fit: fit})
}

func (p *Panel) rect(x, y, w, h float64, c color.RGBA) {
	p.add(Element{Kind: KindRect, X: x, Y: y, W: w, H: h, Color: c})
}

// addRows lays rows out as "Label:" followed by an underlined value.
func (p *Panel) addRows(rows []Row, x, y, w, rowH, labelW float64) float64 {
	for _, r := range rows {
		p.text(r.Label+":", x, y, labelW, rowH, labelSize, true, AlignLeft, colorLabel)
		p.text(r.Value, x+labelW, y, w-labelW, rowH, valueSize, false, AlignLeft, colorText)
		p.rect(x+labelW, y+rowH-0.6, w-labelW, 0.15, colorRule)
		y += rowH
	}
	p.rows = append(p.rows, rows...)
	return y
}

// Front lays out the employee face.
func Front(card models.Card, b Branding, o Orientation) Panel {
	w, h := o.Size()
	p := Panel{Side: SideFront, Orientation: o, Width: w, Height: h}
	emp := card.Employee

	rows := []Row{
		{"Serial No", emp.SerialNo},
		{"Employee Code", emp.EmployeeCode},
		{"Employee Name", emp.EmployeeName},
		{"Designation", emp.Designation},
		{"CNIC No", emp.CNIC},
		{"Inspection ID", card.Vehicle.InspectionID},
	}

	p.rect(0, 0, w, 1.2, colorAccent)

	const rowH = 4.4
	var rowsX, rowsY, rowsW, labelW float64
	if o == Landscape {
		p.image(AssetLogo, PaddingMM, 2.5, 24, 9, FitContain)
		p.image(AssetPhoto, PaddingMM, 13, PhotoWidthMM, PhotoHeightMM, FitCover)
		rowsX = PaddingMM + PhotoWidthMM + 3
		rowsY = 13
		rowsW = w - rowsX - PaddingMM
		labelW = 22
	} else {
		p.image(AssetLogo, (w-26)/2, 3, 26, 9, FitContain)
		p.image(AssetPhoto, (w-PhotoWidthMM)/2, 14, PhotoWidthMM, PhotoHeightMM, FitCover)
		rowsX = PaddingMM
		rowsY = 41
		rowsW = w - 2*PaddingMM
		labelW = 21
	}
	p.addRows(rows, rowsX, rowsY, rowsW, rowH, labelW)

	footerY := h - 13
	p.text("Deputed at: "+b.OrgName, PaddingMM, footerY, w-2*PaddingMM, 3, labelSize, true, AlignLeft, colorText)

	const sigW = 18.0
	sigX := w - PaddingMM - sigW
	p.image(AssetSignature, sigX, footerY+3, sigW, 5.5, FitContain)
	p.rect(sigX, footerY+8.6, sigW, 0.15, colorRule)
	p.text("Issue Authority", sigX, footerY+8.8, sigW, 2.6, smallSize, false, AlignCenter, colorLabel)
	return p
}

// Back lays out the vehicle face and the return-address block.
func Back(card models.Card, b Branding, o Orientation) Panel {
	w, h := o.Size()
	p := Panel{Side: SideBack, Orientation: o, Width: w, Height: h}
	emp, veh := card.Employee, card.Vehicle

	rows := []Row{
		{"Licence No", emp.LicenceNo},
		{"Licence Category", emp.LicenceCategory},
		{"Licence Validity", emp.LicenceValidity},
		{"Date of Issue", emp.DateOfIssue},
		{"Vehicle No", veh.VehicleNo},
		{"Vehicle Type", veh.VehicleType},
		{"Shift Type", veh.ShiftType},
		{"Regional", veh.Region},
		{"Departure /BC", veh.DepartureBC},
	}

	p.text("Vehicle Deputed on "+b.OrgShortName+" Duty", 0, 2.5, w, 4, titleSize, true, AlignCenter, colorText)
	p.rect(PaddingMM, 7, w-2*PaddingMM, 0.3, colorAccent)

	var rowsX, rowsW, rowH, labelW, returnX, returnY, returnW float64
	if o == Landscape {
		rowsX, rowsW, rowH, labelW = PaddingMM, 52, 3.8, 24
		returnX, returnY, returnW = 58, 11, w-58-PaddingMM
	} else {
		rowsX, rowsW, rowH, labelW = PaddingMM, w-2*PaddingMM, 4.2, 24
		returnX, returnY, returnW = PaddingMM, 55, w-2*PaddingMM
	}

	y := p.addRows(rows, rowsX, 9, rowsW, rowH, labelW)

	// Valid From and Valid To share one row.
	half := rowsW / 2
	p.text("Valid From:", rowsX, y, 16, rowH, labelSize, true, AlignLeft, colorLabel)
	p.text(veh.ValidFrom, rowsX+16, y, half-16, rowH, valueSize, false, AlignLeft, colorText)
	p.text("Valid To:", rowsX+half, y, 12, rowH, labelSize, true, AlignLeft, colorLabel)
	p.text(veh.ValidTo, rowsX+half+12, y, half-12, rowH, valueSize, false, AlignLeft, colorText)
	p.rows = append(p.rows, Row{"Valid From", veh.ValidFrom}, Row{"Valid To", veh.ValidTo})

	p.text("If found please return to:", returnX, returnY, returnW, 3, labelSize, true, AlignCenter, colorAccent)
	p.image(AssetLogo, returnX+(returnW-20)/2, returnY+3.5, 20, 7, FitContain)
	ly := returnY + 11
	for _, line := range b.ReturnAddress {
		p.text(line, returnX, ly, returnW, 3, smallSize, false, AlignCenter, colorText)
		ly += 3.2
	}

	p.rect(0, h-2.5, w, 2.5, colorAccent)
	return p
}
