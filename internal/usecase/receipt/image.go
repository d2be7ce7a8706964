// usecase/receipt/image.go
package receipt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imgWidth    = 420
	lineHeight  = 18
	marginX     = 24
	marginY     = 32
	footerSpace = 24
)

// RenderImage produces a PNG artifact of the receipt suitable for a device
// share sheet. Rendering is deterministic: the same receipt yields the same
// bytes.
func (r *Receipt) RenderImage() ([]byte, error) {
	lines := r.Lines()

	height := marginY*2 + lineHeight*len(lines) + footerSpace
	img := image.NewRGBA(image.Rect(0, 0, imgWidth, height))

	// White card background.
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	face := basicfont.Face7x13
	ink := image.NewUniform(color.RGBA{0x20, 0x24, 0x2B, 0xFF})

	for n, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  ink,
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(marginX),
				Y: fixed.I(marginY + n*lineHeight),
			},
		}
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode receipt image: %w", err)
	}
	return buf.Bytes(), nil
}
