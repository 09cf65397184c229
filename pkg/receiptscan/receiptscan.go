// Package receiptscan extracts a candidate transfer amount from an uploaded
// receipt image. The result is a hint for the admin reviewing the pending
// approval, never an authoritative value: scanning is best effort and a
// failure must not fail the upload.
package receiptscan

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrNoAmount is returned when no plausible monetary amount is found.
var ErrNoAmount = errors.New("no amount detected")

// amountRE matches rupiah-looking numbers: optionally Rp/IDR-prefixed,
// grouped (50.000) or plain digit runs.
var amountRE = regexp.MustCompile(`(?i)(?:rp|idr)?\s*[0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{2})?|(?:rp|idr)\s*[0-9]{3,9}`)

// ExtractAmount OCRs the image at path and returns the best candidate amount
// in whole rupiah with a rough confidence in (0,1]. The raw matched substring
// is returned for logging.
func ExtractAmount(path string) (int64, float64, string, error) {
	variants, cleanup, err := preprocess(path)
	if err != nil {
		return 0, 0, "", err
	}
	defer cleanup()

	var candidates []string
	for _, v := range variants {
		text, err := recognize(v)
		if err != nil {
			continue
		}
		for _, m := range amountRE.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if plausibleAmount(m) {
				candidates = append(candidates, m)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, 0, "", ErrNoAmount
	}

	best, score := pickBest(candidates)
	amount, err := ParseAmount(best)
	if err != nil || amount <= 0 {
		return 0, 0, "", ErrNoAmount
	}
	return amount, score, best, nil
}

// recognize runs Tesseract over one preprocessed variant.
func recognize(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(path); err != nil {
		return "", err
	}
	return client.Text()
}

// pickBest ranks candidates: currency markers beat bare numbers, grouped
// digits beat plain runs, ties fall to the larger amount (totals are usually
// the largest figure on a transfer receipt).
func pickBest(candidates []string) (string, float64) {
	type scored struct {
		raw    string
		amount int64
		score  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		amt, err := ParseAmount(c)
		if err != nil || amt <= 0 {
			continue
		}
		s := 0.3
		low := strings.ToLower(c)
		if strings.Contains(low, "rp") || strings.Contains(low, "idr") {
			s += 0.4
		}
		if strings.ContainsAny(c, ".,") {
			s += 0.2
		}
		ranked = append(ranked, scored{raw: c, amount: amt, score: s})
	}
	if len(ranked) == 0 {
		return "", 0
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].amount > ranked[j].amount
	})
	return ranked[0].raw, ranked[0].score
}

// tempVariantPath builds a temp file path for a preprocessed variant.
func tempVariantPath(src, tag string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(os.TempDir(), base+"_"+tag+".png")
}
