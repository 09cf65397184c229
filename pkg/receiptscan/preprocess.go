package receiptscan

import (
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// preprocess renders OCR-friendly variants of the receipt to temp files:
// an upscaled grayscale version and a hard black/white binarization.
// Tesseract handles bank-app screenshots much better after both.
func preprocess(path string) (variants []string, cleanup func(), err error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, err
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dx() < 1000 {
		gray = imaging.Resize(gray, 1600, 0, imaging.Lanczos)
	}
	gray = imaging.AdjustContrast(gray, 20)
	gray = imaging.Sharpen(gray, 1.0)

	grayPath := tempVariantPath(path, "gray")
	if err := imaging.Save(gray, grayPath); err != nil {
		return nil, nil, err
	}
	variants = append(variants, grayPath)

	bwPath := tempVariantPath(path, "bw")
	if err := imaging.Save(binarize(gray, 160), bwPath); err == nil {
		variants = append(variants, bwPath)
	}

	cleanup = func() {
		for _, v := range variants {
			_ = os.Remove(v)
		}
	}
	return variants, cleanup, nil
}

// binarize applies a global threshold: pixels at or below it go black,
// everything else white.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), color.NRGBA{255, 255, 255, 255})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8((r+g+bl)/3>>8) <= threshold {
				out.Set(x-b.Min.X, y-b.Min.Y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return out
}
