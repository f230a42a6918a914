// Package qmesh reads and writes the water-mask extension of quantized-mesh terrain tiles.
package qmesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// WaterMaskExtensionID is the quantized-mesh extension id for water masks.
	WaterMaskExtensionID = 2

	// WaterMaskSize is the edge length of a full water mask in pixels.
	WaterMaskSize = 256

	// WaterMaskTilePixels is the payload length of a full 256x256 mask.
	WaterMaskTilePixels = WaterMaskSize * WaterMaskSize
)

// Uniform mask values. Any non-zero single byte is treated as water.
const (
	MaskLand  uint8 = 0
	MaskWater uint8 = 255
)

// Water mask extension errors.
var (
	ErrUnexpectedExtension    = errors.New("unexpected quantized-mesh extension id")
	ErrInvalidWaterMaskLength = errors.New("invalid water mask length")
)

var byteOrder = binary.LittleEndian

// ExtensionHeader precedes every quantized-mesh extension payload.
type ExtensionHeader struct {
	ExtensionID     uint8
	ExtensionLength uint32
}

// WaterMaskExtension holds either one uniform byte or a 256x256 mask.
// Mask rows run north to south; 255 is water, 0 is land.
type WaterMaskExtension struct {
	Mask []uint8
}

// Uniform returns the single mask value when the whole tile shares it.
func (e *WaterMaskExtension) Uniform() (uint8, bool) {
	if len(e.Mask) != 1 {
		return 0, false
	}
	return e.Mask[0], true
}

// IsFull reports whether the extension carries a complete 256x256 mask.
func (e *WaterMaskExtension) IsFull() bool {
	return len(e.Mask) == WaterMaskTilePixels
}

// ReadWaterMaskExtension reads one water mask extension (header + payload).
func ReadWaterMaskExtension(r io.Reader) (*WaterMaskExtension, error) {
	var header ExtensionHeader
	if err := binary.Read(r, byteOrder, &header); err != nil {
		return nil, fmt.Errorf("reading extension header: %w", err)
	}
	if header.ExtensionID != WaterMaskExtensionID {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedExtension, header.ExtensionID)
	}

	switch header.ExtensionLength {
	case 1, WaterMaskTilePixels:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWaterMaskLength, header.ExtensionLength)
	}

	ext := &WaterMaskExtension{Mask: make([]uint8, header.ExtensionLength)}
	if _, err := io.ReadFull(r, ext.Mask); err != nil {
		return nil, fmt.Errorf("reading water mask payload: %w", err)
	}
	return ext, nil
}

// WriteWaterMaskExtension writes the extension header followed by the mask.
func WriteWaterMaskExtension(w io.Writer, ext *WaterMaskExtension) error {
	n := len(ext.Mask)
	if n != 1 && n != WaterMaskTilePixels {
		return fmt.Errorf("%w: %d", ErrInvalidWaterMaskLength, n)
	}

	header := ExtensionHeader{
		ExtensionID:     WaterMaskExtensionID,
		ExtensionLength: uint32(n),
	}
	if err := binary.Write(w, byteOrder, header); err != nil {
		return err
	}
	_, err := w.Write(ext.Mask)
	return err
}
