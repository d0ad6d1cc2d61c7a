// Package pixelpanel drives small SPI and I²C display panels.
//
// The root package defines the Display capability shared by every panel
// back-end, the Rotation type and the error kinds reported by the drivers.
// The drivers and the drawing layer live in sub-packages:
//
//	bus       SPI (with D/C pin) and I²C transports with scoped selection
//	initseq   decoder and interpreter for compact register init tables
//	ili9341   240×320 RGB565 TFT controller over SPI
//	ssd1306   128×64 monochrome OLED controller over I²C or SPI
//	drawer    adapter for any periph.io display.Drawer
//	canvas    shapes, text and an optional framebuffer on any Display
//	rgb565    16-bit packed color and image types
//	wifi      station-mode connection manager with status reporting
//	config    YAML settings for the demo programs
//
// # Display Characteristics
//
// - Logical coordinates follow the panel's current rotation
// - Points and rectangles outside the panel are clipped, never an error
// - Errors carry a Kind (HardwareFault, IOError, ConnectionFailed, Timeout)
// - Colors are RGB565; monochrome panels light every non-black pixel
//
// # Hardware Connection
//
// Connect an ILI9341 display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCK         → SPI Clock (SCLK)
//	MOSI        → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select (or GND if always selected)
//	RST         → Optional: GPIO for hardware reset
//
// An SSD1306 display only needs SDA and SCL on an I²C bus.
//
// # Basic Usage
//
// Example of creating a display and drawing on it:
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"github.com/flavioheleno/pixelpanel/canvas"
//		"github.com/flavioheleno/pixelpanel/ili9341"
//		"github.com/flavioheleno/pixelpanel/rgb565"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open SPI bus
//		spiBus, _ := spireg.Open("")
//
//		// Create device
//		dev, _ := ili9341.NewSPI(spiBus, gpioreg.ByName("GPIO25"), nil, &ili9341.Opts{
//			RST: gpioreg.ByName("GPIO24"),
//		})
//		defer dev.Halt()
//
//		// Draw through a framebuffer
//		c := canvas.New(dev)
//		c.CreateFramebuffer()
//		c.FillCircle(120, 160, 40, rgb565.Red)
//		c.SetCursor(0, 0)
//		c.Print("Hello")
//
//		// Send the frame
//		c.Flush()
//	}
//
// # Drawing Modes
//
// Without a framebuffer every canvas primitive is sent to the panel at once.
// With one, primitives only update host memory and Flush transfers the whole
// frame in a single Blit when something changed. Panels that keep their own
// RAM image, such as the SSD1306, are pushed by Flush as well.
//
// # Compatibility with periph.io
//
// The ili9341 and ssd1306 devices also implement the display.Drawer
// interface from periph.io, and the drawer package wraps any other
// display.Drawer so it can be used with the canvas.
package pixelpanel
