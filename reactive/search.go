package reactive

// NotFound is returned by ExactSlot when no slot matches.
const NotFound = -1

// SortedSlot binary searches the slots in [min, max) for the position at which
// an item should be placed. evaluate reports how the item relates to the item
// currently at a slot: positive if it sorts after it, negative if before and
// zero if the two are equal. Only the sign is used.
//
// Ties resolve to whichever equal slot the halving lands on first.
func SortedSlot(min, max int, evaluate func(slot int) int) int {
	if max <= min {
		return min
	}
	for {
		mid := (min + max) / 2
		diff := evaluate(mid)
		// narrowed down to a choice of two slots
		if max-min <= 1 {
			switch {
			case diff == 0:
				return mid
			case diff > 0:
				return max
			default:
				return min
			}
		}
		// mid +/- 1 could skip over in-between values
		switch {
		case diff > 0:
			min = mid
		case diff < 0:
			max = mid
		default:
			return mid
		}
	}
}

// ExactSlot probes outwards from approx for the slot holding an exact match.
// It checks approx first, then approx+1 and approx-1, approx+2 and approx-2,
// and so on. Each side stops once it leaves [min, max) or once proximal shows
// the ordering has crossed over: a slot above approx whose item sorts before
// the wanted one, or a slot below whose item sorts after it.
//
// Returns NotFound when both sides have stopped without a match.
func ExactSlot(approx, min, max int, match func(slot int) bool, proximal func(slot int) int) int {
	if approx >= min && approx < max && match(approx) {
		return approx
	}

	var tooHigh, tooLow bool
	for offset := 1; !tooHigh || !tooLow; offset++ {
		high := approx + offset
		tooHigh = tooHigh || high >= max
		if !tooHigh {
			if match(high) {
				return high
			}
			tooHigh = proximal(high) > 0
		}

		low := approx - offset
		tooLow = tooLow || low < min
		if !tooLow {
			if match(low) {
				return low
			}
			tooLow = proximal(low) < 0
		}
	}

	return NotFound
}
