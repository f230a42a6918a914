package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // registers JPEG with image.Decode
	_ "image/png"  // registers PNG with image.Decode
	"path"
	"strings"

	_ "golang.org/x/image/webp" // registers WebP (EXT_texture_webp)
)

// Decode errors.
var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrEmptyImage       = errors.New("empty image data")
)

// Mime types understood by Decode.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWebP = "image/webp"
	MimeTGA  = "image/x-tga"
)

// formatNames maps mime types to the names image.Decode reports.
var formatNames = map[string]string{
	MimePNG:  "png",
	MimeJPEG: "jpeg",
	MimeWebP: "webp",
}

// MimeFromPath guesses a mime type from a file extension.
// Returns an empty string when the extension is unknown.
func MimeFromPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return MimePNG
	case ".jpg", ".jpeg":
		return MimeJPEG
	case ".webp":
		return MimeWebP
	case ".tga":
		return MimeTGA
	default:
		return ""
	}
}

// Decode decodes PNG, JPEG, WebP or TGA image data.
// A known mime type must agree with the sniffed format; an empty mime
// type lets the data decide.
func Decode(data []byte, mimeType string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == MimeTGA || mimeType == "image/tga" {
		return DecodeTGA(data)
	}

	want, known := formatNames[mimeType]
	if mimeType != "" && !known {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	if known && format != want {
		return nil, fmt.Errorf("%w: mime %s but data is %s", ErrUnsupportedImage, mimeType, format)
	}
	return img, nil
}

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed true-color (type 2), grayscale (type 3) and
// RLE compressed true-color (type 10).
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedImage)
	}

	switch imageType {
	case TGATypeUncompressed, TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedImage, bpp)
		}
	case TGATypeGray:
		if bpp != 8 {
			return nil, fmt.Errorf("%w: grayscale TGA bit depth %d", ErrUnsupportedImage, bpp)
		}
	default:
		return nil, fmt.Errorf("%w: TGA type %d", ErrUnsupportedImage, imageType)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	d := tgaDecoder{
		pixels:        data[offset:],
		img:           image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		// bit 5 of the descriptor means rows are stored top-to-bottom
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeRLE {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	pixels        []byte
	img           *image.NRGBA
	width         int
	height        int
	bytesPerPixel int
	topToBottom   bool
}

// pixel reads the BGR(A) or gray pixel at byte offset i.
func (d *tgaDecoder) pixel(i int) [4]uint8 {
	if d.bytesPerPixel == 1 {
		g := d.pixels[i]
		return [4]uint8{g, g, g, 255}
	}
	a := uint8(255)
	if d.bytesPerPixel == 4 {
		a = d.pixels[i+3]
	}
	return [4]uint8{d.pixels[i+2], d.pixels[i+1], d.pixels[i], a}
}

func (d *tgaDecoder) set(index int, c [4]uint8) {
	x := index % d.width
	y := index / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	o := d.img.PixOffset(x, y)
	copy(d.img.Pix[o:o+4], c[:])
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	if len(d.pixels) < count*d.bytesPerPixel {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for i := 0; i < count; i++ {
		d.set(i, d.pixel(i*d.bytesPerPixel))
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < count {
		if dataIdx >= len(d.pixels) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
		}
		packet := d.pixels[dataIdx]
		dataIdx++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// repeat one pixel
			if dataIdx+d.bytesPerPixel > len(d.pixels) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
			}
			c := d.pixel(dataIdx)
			dataIdx += d.bytesPerPixel
			for i := 0; i < run && pixelIdx < count; i++ {
				d.set(pixelIdx, c)
				pixelIdx++
			}
			continue
		}

		for i := 0; i < run && pixelIdx < count; i++ {
			if dataIdx+d.bytesPerPixel > len(d.pixels) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
			}
			d.set(pixelIdx, d.pixel(dataIdx))
			dataIdx += d.bytesPerPixel
			pixelIdx++
		}
	}
	return nil
}
