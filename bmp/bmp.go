// Package bmp writes decoded images out as uncompressed Windows bitmaps.
//
// No third-party BMP encoder exists anywhere in the retrieval pack
// (golang.org/x/image/bmp is decode-only and wasn't part of it either), so
// this is written directly against encoding/binary, mirroring the way the
// JPEG segment readers lean on encoding/binary for their own fixed-layout
// headers.
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/pimjpeg/jpeg/baseline"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
)

// Write encodes img as a 24-bit uncompressed BMP (grayscale images are
// expanded to RGB, since plain BMP has no 8-bit grayscale palette mode this
// package bothers to support).
func Write(w io.Writer, img *baseline.Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("bmp: invalid image dimensions %dx%d", img.Width, img.Height)
	}
	if img.Components != 1 && img.Components != 3 {
		return fmt.Errorf("bmp: unsupported component count %d", img.Components)
	}

	rowSize := (img.Width*3 + 3) &^ 3
	pixelBytes := rowSize * img.Height
	fileSize := fileHeaderSize + infoHeaderSize + pixelBytes

	var header [fileHeaderSize]byte
	header[0], header[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(header[2:6], uint32(fileSize))
	binary.LittleEndian.PutUint32(header[10:14], uint32(fileHeaderSize+infoHeaderSize))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	var info [infoHeaderSize]byte
	binary.LittleEndian.PutUint32(info[0:4], infoHeaderSize)
	binary.LittleEndian.PutUint32(info[4:8], uint32(img.Width))
	binary.LittleEndian.PutUint32(info[8:12], uint32(img.Height))
	binary.LittleEndian.PutUint16(info[12:14], 1)  // planes
	binary.LittleEndian.PutUint16(info[14:16], 24) // bits per pixel
	binary.LittleEndian.PutUint32(info[20:24], uint32(pixelBytes))
	if _, err := w.Write(info[:]); err != nil {
		return err
	}

	row := make([]byte, rowSize)
	for y := img.Height - 1; y >= 0; y-- {
		for x := 0; x < img.Width; x++ {
			var r, g, b byte
			if img.Components == 1 {
				v := img.Pixels[y*img.Width+x]
				r, g, b = v, v, v
			} else {
				off := (y*img.Width + x) * 3
				r = img.Pixels[off+0]
				g = img.Pixels[off+1]
				b = img.Pixels[off+2]
			}
			row[x*3+0] = b
			row[x*3+1] = g
			row[x*3+2] = r
		}
		for i := img.Width * 3; i < rowSize; i++ {
			row[i] = 0
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
