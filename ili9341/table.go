package ili9341

import "time"

// Command opcodes.
const (
	NOP      = 0x00
	SWRESET  = 0x01
	SLPIN    = 0x10
	SLPOUT   = 0x11
	INVOFF   = 0x20
	INVON    = 0x21
	GAMMASET = 0x26
	DISPOFF  = 0x28
	DISPON   = 0x29
	CASET    = 0x2A
	PASET    = 0x2B
	RAMWR    = 0x2C
	MADCTL   = 0x36
	VSCRSADD = 0x37
	PIXFMT   = 0x3A
	FRMCTR1  = 0xB1
	DFUNCTR  = 0xB6
	PWCTR1   = 0xC0
	PWCTR2   = 0xC1
	VMCTR1   = 0xC5
	VMCTR2   = 0xC7
	GMCTRP1  = 0xE0
	GMCTRN1  = 0xE1
)

// MADCTL bits.
const (
	madMY  = 0x80 // Row address order
	madMX  = 0x40 // Column address order
	madMV  = 0x20 // Row/column exchange
	madML  = 0x10 // Vertical refresh order
	madBGR = 0x08 // Blue-green-red panel
	madMH  = 0x04 // Horizontal refresh order
)

// DefaultSettle is the pause after table commands flagged with a delay.
const DefaultSettle = 150 * time.Millisecond

// InitTable is the power-on register sequence, replayed once by New.
//
// The undocumented 0xEF/0xCF/0xED/0xE8/0xCB/0xF7/0xEA/0xF2 writes come from
// the vendor bring-up code and are required by some panel revisions.
var InitTable = []byte{
	22,
	0xEF, 3, 0x03, 0x80, 0x02,
	0xCF, 3, 0x00, 0xC1, 0x30,
	0xED, 4, 0x64, 0x03, 0x12, 0x81,
	0xE8, 3, 0x85, 0x00, 0x78,
	0xCB, 5, 0x39, 0x2C, 0x00, 0x34, 0x02,
	0xF7, 1, 0x20,
	0xEA, 2, 0x00, 0x00,
	PWCTR1, 1, 0x23,       // VRH=4.60V
	PWCTR2, 1, 0x10,       // SAP, BT
	VMCTR1, 2, 0x3E, 0x28, // VCOMH, VCOML
	VMCTR2, 1, 0x86,
	MADCTL, 1, madMX | madBGR,
	VSCRSADD, 1, 0x00,
	PIXFMT, 1, 0x55,        // 16 bits per pixel
	FRMCTR1, 2, 0x00, 0x18, // 79Hz
	DFUNCTR, 3, 0x08, 0x82, 0x27,
	0xF2, 1, 0x00, // 3-gamma off
	GAMMASET, 1, 0x01,
	GMCTRP1, 15, 0x0F, 0x31, 0x2B, 0x0C, 0x0E, 0x08, 0x4E, 0xF1, 0x37, 0x07, 0x10, 0x03, 0x0E, 0x09, 0x00,
	GMCTRN1, 15, 0x00, 0x0E, 0x14, 0x03, 0x11, 0x07, 0x31, 0xC1, 0x48, 0x08, 0x0F, 0x0C, 0x31, 0x36, 0x0F,
	SLPOUT, 0x80,
	DISPON, 0x80,
}
