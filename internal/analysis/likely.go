package analysis

import (
	"fmt"
	"math"
)

// LikelyRecommended describes how often the count most popular goods were
// recommended compared with the count least popular goods.
func LikelyRecommended(most, least, count int) string {
	mostGoods := goodsPhrase("most", count)
	leastGoods := goodsPhrase("least", count)
	verb := "was"
	if count != 1 {
		verb = "were"
	}

	switch {
	case most == 0 && least == 0:
		return fmt.Sprintf("The %s and %s were not recommended", mostGoods, leastGoods)
	case most == 0:
		return fmt.Sprintf("The %s (%dx) %s recommended, but the %s %s not", leastGoods, least, verb, mostGoods, verb)
	case least == 0:
		return fmt.Sprintf("The %s (%dx) %s recommended, but the %s %s not", mostGoods, most, verb, leastGoods, verb)
	case most == least:
		return fmt.Sprintf("The %s (%dx) %s recommended the same amount of times as the %s (%dx)", mostGoods, most, verb, leastGoods, least)
	default:
		times := math.Round(Ratio(float64(most), float64(least))*10) / 10
		return fmt.Sprintf("The %s (%dx) %s recommended %.1fx more than the %s (%dx)", mostGoods, most, verb, times, leastGoods, least)
	}
}

func goodsPhrase(which string, count int) string {
	if count == 1 {
		return which + " popular good"
	}
	return fmt.Sprintf("%d %s popular goods", count, which)
}
