package tournament

// calculatePrizeStructure returns position -> payout for the current
// registrant count, following the same banded payout curves as other
// operators: small fields pay out by SnG format, larger fields use a
// tiered top-heavy ladder keyed by how many places are in the money
// (roughly top 15%, floored at 1).
func (t *Tournament) calculatePrizeStructure() map[int]float64 {
	totalPlayers := len(t.Players)
	netPool := t.PrizePool * (1 - t.RakePercent/100)
	if t.Mode == ModeBountyHunter {
		netPool *= 1 - t.BountyPercent/100
	}

	if totalPlayers <= 6 {
		var payouts map[int]float64
		switch t.SnGFormat {
		case SnGWinnerTakesAll:
			payouts = map[int]float64{1: netPool}
		case SnGTop2Paid:
			payouts = map[int]float64{1: netPool * 0.65, 2: netPool * 0.35}
		case SnGDoubleOrNothing:
			half := totalPlayers / 2
			if half == 0 {
				half = 1
			}
			share := netPool / float64(half)
			payouts = make(map[int]float64, half)
			for i := 1; i <= half; i++ {
				payouts[i] = share
			}
		default: // SnGTop3Paid
			payouts = map[int]float64{1: netPool * 0.50, 2: netPool * 0.30, 3: netPool * 0.20}
		}
		t.Payouts = payouts
		return payouts
	}

	itmCount := totalPlayers * 15 / 100
	if itmCount < 1 {
		itmCount = 1
	}

	payouts := map[int]float64{}
	switch {
	case itmCount >= 15:
		payouts[1] = netPool * 0.30
		payouts[2] = netPool * 0.20
		payouts[3] = netPool * 0.15
		for i := 4; i <= 6; i++ {
			payouts[i] = netPool * 0.08
		}
		for i := 7; i <= 9; i++ {
			payouts[i] = netPool * 0.05
		}
		remaining := netPool * (1 - 0.30 - 0.20 - 0.15 - 0.08*3 - 0.05*3)
		tailCount := itmCount - 9
		for i := 10; i <= itmCount; i++ {
			payouts[i] = remaining / float64(tailCount)
		}
	case itmCount >= 9:
		payouts[1] = netPool * 0.35
		payouts[2] = netPool * 0.22
		payouts[3] = netPool * 0.15
		for i := 4; i <= 6; i++ {
			payouts[i] = netPool * 0.06
		}
		for i := 7; i <= itmCount; i++ {
			payouts[i] = netPool * 0.04
		}
	case itmCount >= 3:
		payouts[1] = netPool * 0.50
		payouts[2] = netPool * 0.30
		payouts[3] = netPool * 0.20
	default:
		payouts[1] = netPool
	}

	t.Payouts = payouts
	return payouts
}
