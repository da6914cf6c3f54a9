package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
)

const iconSize = 64

var iconICO []byte

func init() {
	iconICO = pngToICO(renderGlobe(iconSize))
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderGlobe draws a wireframe globe: the outline, one meridian ellipse and
// the equator.
func renderGlobe(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	rim := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	grid := color.RGBA{R: 200, G: 200, B: 200, A: 180}

	s := float64(size)
	c := s / 2
	r := s/2 - s/16
	stroke := s / 32
	meridianRX := r * 10 / 28

	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5-c, float64(y)+0.5-c
			d := math.Hypot(fx, fy)
			switch {
			case math.Abs(d-r) <= stroke:
				img.Set(x, y, rim)
			case d < r && math.Abs(ellipse(fx, fy, meridianRX, r)-1) <= stroke/meridianRX:
				img.Set(x, y, grid)
			case d < r && math.Abs(fy) <= stroke/2:
				img.Set(x, y, grid)
			}
		}
	}
	return encodePNG(img)
}

// ellipse returns the normalised radius of (x, y) for an axis-aligned
// ellipse; 1 is on the curve.
func ellipse(x, y, rx, ry float64) float64 {
	return math.Sqrt((x*x)/(rx*rx) + (y*y)/(ry*ry))
}

// pngToICO wraps PNG bytes in a single-image ICO container, which is what
// the Windows tray expects.
func pngToICO(data []byte) []byte {
	var w, h byte
	if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width < 256 && cfg.Height < 256 {
		w, h = byte(cfg.Width), byte(cfg.Height)
	}
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(buf, binary.LittleEndian, uint16(1)) // image count

	buf.WriteByte(w)
	buf.WriteByte(h)
	buf.WriteByte(0) // palette
	buf.WriteByte(0) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(32))
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(buf, binary.LittleEndian, uint32(6+16))

	buf.Write(data)
	return buf.Bytes()
}
