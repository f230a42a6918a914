package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// makeTGA builds a 2x2 TGA image of the given type.
func makeTGA(imageType byte, bpp byte, topToBottom bool, body []byte) []byte {
	header := make([]byte, 18)
	header[2] = imageType
	header[12] = 2 // width
	header[14] = 2 // height
	header[16] = bpp
	if topToBottom {
		header[17] = 0x20
	}
	return append(header, body...)
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, 4, 3)

	for _, mime := range []string{"", MimePNG, "IMAGE/PNG "} {
		img, err := Decode(data, mime)
		if err != nil {
			t.Fatalf("Decode(%q): %v", mime, err)
		}
		if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
			t.Errorf("Decode(%q): got %v", mime, img.Bounds())
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	png := encodePNG(t, 1, 1)

	tests := []struct {
		name    string
		data    []byte
		mime    string
		wantErr error
	}{
		{"empty", nil, "", ErrEmptyImage},
		{"mime mismatch", png, MimeJPEG, ErrUnsupportedImage},
		{"unknown mime", png, "image/ktx2", ErrUnsupportedImage},
		{"garbage", []byte("not an image at all"), "", ErrUnsupportedImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.mime)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMimeFromPath(t *testing.T) {
	tests := map[string]string{
		"tex/a.png":   MimePNG,
		"B.JPG":       MimeJPEG,
		"c.jpeg":      MimeJPEG,
		"d.webp":      MimeWebP,
		"e.tga":       MimeTGA,
		"f.ktx2":      "",
		"no-extension": "",
	}
	for p, want := range tests {
		if got := MimeFromPath(p); got != want {
			t.Errorf("MimeFromPath(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	// Bottom-to-top BGR rows: bottom row red, green; top row blue, white.
	body := []byte{
		0, 0, 255, 0, 255, 0,
		255, 0, 0, 255, 255, 255,
	}
	img, err := Decode(makeTGA(TGATypeUncompressed, 24, false, body), MimeTGA)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}

	check := func(x, y int, want color.NRGBA) {
		t.Helper()
		got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		if got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
		}
	}
	check(0, 1, color.NRGBA{R: 255, A: 255})
	check(1, 1, color.NRGBA{G: 255, A: 255})
	check(0, 0, color.NRGBA{B: 255, A: 255})
	check(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

func TestDecodeTGA_RLE(t *testing.T) {
	// One run packet of 4 identical BGRA pixels.
	body := []byte{0x80 | 3, 10, 20, 30, 40}
	img, err := DecodeTGA(makeTGA(TGATypeRLE, 32, true, body))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			got := img.(*image.NRGBA).NRGBAAt(x, y)
			want := color.NRGBA{R: 30, G: 20, B: 10, A: 40}
			if got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDecodeTGA_Gray(t *testing.T) {
	img, err := DecodeTGA(makeTGA(TGATypeGray, 8, true, []byte{0, 64, 128, 255}))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	got := img.(*image.NRGBA).NRGBAAt(1, 1)
	if got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("gray pixel = %v", got)
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0, 0, 2}},
		{"color mapped", func() []byte { d := makeTGA(TGATypeUncompressed, 24, false, nil); d[1] = 1; return d }()},
		{"unsupported type", makeTGA(1, 8, false, nil)},
		{"unsupported depth", makeTGA(TGATypeUncompressed, 16, false, make([]byte, 8))},
		{"truncated raw", makeTGA(TGATypeUncompressed, 24, false, []byte{1, 2, 3})},
		{"truncated rle", makeTGA(TGATypeRLE, 24, false, []byte{0x80 | 1, 1, 2, 3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
