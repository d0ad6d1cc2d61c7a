// Package rgb565 provides the 16-bit packed color format used by the color panels.
//
// Memory layout of a Color:
//
//	bit:   15 ... 11 | 10 ... 5 | 4 ... 0
//	       red (5)   | green (6)| blue (5)
//
// Packing from 8-bit channels keeps the high bits of each channel:
//
//	rgb565.New(0xFF, 0x80, 0x00) // 0xFC00
//
// Image stores pixels row-major, one uint16 per pixel, which is the byte-for-byte
// order streamed to an addressable panel once each word is sent big-endian:
//
//	img := rgb565.NewImage(image.Rect(0, 0, 320, 240))
//	img.SetRGB565(10, 20, rgb565.Cyan)
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package rgb565
