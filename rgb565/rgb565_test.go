package rgb565

import (
	"image"
	"image/color"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"black", 0, 0, 0, Black},
		{"white", 0xFF, 0xFF, 0xFF, White},
		{"red", 0xFF, 0, 0, Red},
		{"green", 0, 0xFF, 0, Green},
		{"blue", 0, 0, 0xFF, Blue},
		{"low bits dropped", 0x07, 0x03, 0x07, Black},
		{"orange-ish", 0xFF, 0x80, 0x00, 0xFC00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("New(%#x, %#x, %#x) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name       string
		c          Color
		wr, wg, wb uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"green", Green, 0, 0xFFFF, 0},
		{"blue", Blue, 0, 0, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wr || g != tt.wg || b != tt.wb || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)", r, g, b, a, tt.wr, tt.wg, tt.wb)
			}
		})
	}
}

func TestModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Color
	}{
		{"passthrough", Cyan, Cyan},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"gray", color.RGBA{0x80, 0x80, 0x80, 0xFF}, Gray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Model.Convert(tt.input).(Color); got != tt.want {
				t.Errorf("Model.Convert(%v) = %#04x, want %#04x", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewImage(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 320, 240))
	if img.Stride != 320 {
		t.Errorf("Stride = %d, want 320", img.Stride)
	}
	if len(img.Pix) != 320*240 {
		t.Errorf("len(Pix) = %d, want %d", len(img.Pix), 320*240)
	}

	empty := NewImage(image.Rect(0, 0, 0, 10))
	if len(empty.Pix) != 0 {
		t.Errorf("empty image has %d pixels", len(empty.Pix))
	}
}

func TestImageSetGet(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 3))
	img.SetRGB565(1, 2, Magenta)
	img.Set(3, 0, color.White)

	if got := img.RGB565At(1, 2); got != Magenta {
		t.Errorf("RGB565At(1, 2) = %#04x, want %#04x", got, Magenta)
	}
	if got := img.Pix[2*4+1]; got != uint16(Magenta) {
		t.Errorf("Pix[9] = %#04x, want row-major layout", got)
	}
	if c, ok := img.At(3, 0).(Color); !ok || c != White {
		t.Errorf("At(3, 0) = %v, want White", img.At(3, 0))
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 2))
	img.SetRGB565(-1, 0, White)
	img.SetRGB565(2, 0, White)
	img.SetRGB565(0, 2, White)

	for i, v := range img.Pix {
		if v != 0 {
			t.Errorf("Pix[%d] = %#04x after out-of-bounds writes", i, v)
		}
	}
	if got := img.RGB565At(5, 5); got != Black {
		t.Errorf("RGB565At(5, 5) = %#04x, want Black", got)
	}
}

func TestImageOffsetRect(t *testing.T) {
	img := NewImage(image.Rect(100, 50, 104, 52))
	img.SetRGB565(100, 50, Red)
	img.SetRGB565(103, 51, Blue)

	if img.Pix[0] != uint16(Red) {
		t.Errorf("Pix[0] = %#04x, want Red", img.Pix[0])
	}
	if img.Pix[7] != uint16(Blue) {
		t.Errorf("Pix[7] = %#04x, want Blue", img.Pix[7])
	}
}

func TestImageFill(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 3))
	img.Fill(Yellow)
	for i, v := range img.Pix {
		if v != uint16(Yellow) {
			t.Fatalf("Pix[%d] = %#04x, want Yellow", i, v)
		}
	}
}
