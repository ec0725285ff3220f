package tournament

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func registerN(t *testing.T, m *Manager, tourn *Tournament, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		require.NoError(t, m.RegisterPlayer(tourn.ID, id, "Player "+id))
		ids = append(ids, id)
	}
	return ids
}

// Eliminating a player in bounty-hunter mode splits their bounty 50/50
// between a cash payout to the eliminator and an addition to the
// eliminator's running bounty, per the PKO rule.
func TestBountySplitOnElimination(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateBountyTournament("PKO Test", 100, 50, 3, 9, "turbo")
	ids := registerN(t, m, tourn, 3)
	require.NoError(t, m.StartTournament(tourn.ID))

	startingBounty := tourn.Players[ids[0]].StartingBounty
	require.Greater(t, startingBounty, 0.0)

	result, err := m.EliminatePlayer(tourn.ID, ids[0], ids[1])
	require.NoError(t, err)
	require.NotNil(t, result)

	require.InDelta(t, startingBounty/2, result.CashBounty, 0.001)
	require.InDelta(t, startingBounty/2, result.AddedBounty, 0.001)
	require.InDelta(t, startingBounty/2, result.CashBounty+result.AddedBounty-startingBounty/2, 0.001)

	eliminator := tourn.Players[ids[1]]
	require.InDelta(t, startingBounty/2, eliminator.TotalBountyWon, 0.001)
	require.InDelta(t, startingBounty+startingBounty/2, eliminator.Bounty, 0.001)
}

// Eliminating the second-to-last player in the field finishes the
// tournament and records the sole survivor at position 1.
func TestTournamentFinishesWithOneSurvivor(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateTournament(CreateOptions{
		Name: "Heads Up Final", Mode: ModeTournament, BuyIn: 10,
		StartingChips: 1000, MinPlayers: 2, MaxPlayers: 2,
		PlayersPerTable: 9,
	})
	ids := registerN(t, m, tourn, 2)
	require.NoError(t, m.StartTournament(tourn.ID))

	_, err := m.EliminatePlayer(tourn.ID, ids[0], ids[1])
	require.NoError(t, err)

	require.Equal(t, StatusFinished, tourn.Status)
	require.Equal(t, 1, tourn.FinalPositions[ids[1]])
	require.Equal(t, 2, tourn.FinalPositions[ids[0]])
}

// A table that drops below 3 players is closed and its occupants
// redistributed to the table with the fewest players, never leaving a
// table over-full or any seat double-assigned.
func TestRebalanceClosesShortTablesAndRedistributes(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateTournament(CreateOptions{
		Name: "MTT Rebalance", Mode: ModeTournament, BuyIn: 10,
		StartingChips: 1000, MinPlayers: 6, MaxPlayers: 12,
		PlayersPerTable: 3,
	})
	ids := registerN(t, m, tourn, 6)
	require.NoError(t, m.StartTournament(tourn.ID))
	require.Len(t, tourn.Tables, 2)

	// Bust three players off of whichever table they land on until one
	// table drops under 3 and must be closed.
	var tableA string
	for _, ts := range tourn.Tables {
		tableA = ts.TableID
		break
	}
	var toEliminate []string
	for _, id := range ids {
		if tourn.Players[id].TableID == tableA {
			toEliminate = append(toEliminate, id)
		}
	}
	require.GreaterOrEqual(t, len(toEliminate), 1)

	eliminator := ids[0]
	for _, id := range toEliminate {
		if id == eliminator {
			continue
		}
		_, err := m.EliminatePlayer(tourn.ID, id, eliminator)
		require.NoError(t, err)
	}

	// No active table should now be under-populated or hold a duplicate
	// seat assignment; every remaining non-eliminated player sits at
	// exactly one active table.
	seen := map[string]bool{}
	for _, ts := range tourn.Tables {
		if !ts.Active {
			continue
		}
		for _, userID := range ts.Seats {
			if userID == "" {
				continue
			}
			require.False(t, seen[userID], "player double-seated across active tables")
			seen[userID] = true
		}
	}
	for _, id := range ids {
		p := tourn.Players[id]
		if p.IsEliminated() {
			continue
		}
		require.NotEmpty(t, p.TableID, "remaining player must be seated at an active table")
	}
}

// Payout ladders are computed and stored on the tournament for every
// field-size band, including the small-field SnG path that must not be
// silently skipped.
func TestPrizeStructureSmallFieldStoresPayouts(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateSitAndGo(20, 6, SnGTop3Paid, "turbo", 1500)
	registerN(t, m, tourn, 6) // auto-starts at capacity

	require.NotEmpty(t, tourn.Payouts)
	require.Greater(t, tourn.Payouts[1], 0.0)
	var total float64
	for _, v := range tourn.Payouts {
		total += v
	}
	require.Greater(t, total, 0.0)
}

// Large-field payout ladders sum to (approximately) the net prize pool
// and award strictly decreasing amounts down the ladder.
func TestPrizeStructureLargeFieldTiers(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateTournament(CreateOptions{
		Name: "Big Field", Mode: ModeTournament, BuyIn: 50,
		StartingChips: 5000, MinPlayers: 20, MaxPlayers: 100,
		PlayersPerTable: 9,
	})
	for i := 0; i < 20; i++ {
		tourn.Players[string(rune('a'+i))] = &Player{UserID: string(rune('a' + i)), Chips: tourn.StartingChips}
	}
	tourn.PrizePool = tourn.BuyIn * 20

	payouts := tourn.calculatePrizeStructure()
	require.NotEmpty(t, payouts)
	require.Greater(t, payouts[1], payouts[2])
	require.Greater(t, payouts[2], payouts[3])
	require.Equal(t, tourn.Payouts, payouts)
}

// Registering the same user twice is a harmless no-op, not a double
// buy-in.
func TestRegisterPlayerIdempotent(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateTournament(CreateOptions{
		Name: "Idempotent Reg", Mode: ModeTournament, BuyIn: 10,
		StartingChips: 1000, MinPlayers: 2, MaxPlayers: 9, PlayersPerTable: 9,
	})
	require.NoError(t, m.RegisterPlayer(tourn.ID, "a", "Alice"))
	poolAfterFirst := tourn.PrizePool
	require.NoError(t, m.RegisterPlayer(tourn.ID, "a", "Alice"))
	require.Equal(t, poolAfterFirst, tourn.PrizePool)
	require.Len(t, tourn.Players, 1)
}

// nilLedger / nilAnalytics: finishing a tournament with both optional
// collaborators absent must not panic.
func TestFinishWithNilCollaborators(t *testing.T) {
	m := NewManager(nil, nil)
	tourn := m.CreateTournament(CreateOptions{
		Name: "No Sinks", Mode: ModeTournament, BuyIn: 10,
		StartingChips: 1000, MinPlayers: 2, MaxPlayers: 2, PlayersPerTable: 9,
	})
	ids := registerN(t, m, tourn, 2)
	require.NoError(t, m.StartTournament(tourn.ID))
	require.NotPanics(t, func() {
		_, err := m.EliminatePlayer(tourn.ID, ids[0], ids[1])
		require.NoError(t, err)
	})
}
