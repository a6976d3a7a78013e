package cooldown

import (
	"fmt"
	"math"
	"strings"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

var likertPoints = map[string]float64{
	domain.LikertNoAnswer:  0,
	domain.LikertNo:        0,
	domain.LikertRatherNo:  0,
	domain.LikertMedium:    0,
	domain.LikertRatherYes: 0.5,
	domain.LikertYes:       1,
}

var likertReplacer = strings.NewReplacer("ô", "o", " ", "_", "-", "_")

func normalizeChoice(s string) string {
	return likertReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Points scores an answer for the item's kind. Only the agreement scale, the
// 1-10 scale and contentful text/checklist answers can earn points.
func Points(kind domain.AnswerKind, a domain.Answer) (float64, error) {
	switch kind {
	case domain.KindLikert:
		choice := normalizeChoice(a.Choice)
		if choice == "" {
			return 0, nil
		}
		p, ok := likertPoints[choice]
		if !ok {
			return 0, fmt.Errorf("%w: unknown choice %q", domain.ErrMalformedAnswer, a.Choice)
		}
		return p, nil

	case domain.KindNumeric:
		if a.Number == nil {
			return 0, nil
		}
		n := *a.Number
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n > 10 {
			return 0, fmt.Errorf("%w: score %v outside 0-10", domain.ErrMalformedAnswer, n)
		}
		switch {
		case n >= 8:
			return 1, nil
		case n >= 6:
			return 0.5, nil
		}
		return 0, nil

	case domain.KindText:
		if strings.TrimSpace(a.Text) != "" {
			return 1, nil
		}
		return 0, nil

	case domain.KindChecklist:
		for _, c := range a.Checked {
			if strings.TrimSpace(c) != "" {
				return 1, nil
			}
		}
		return 0, nil
	}

	return 0, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
