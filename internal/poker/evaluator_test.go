package poker

import "testing"

func TestCardID(t *testing.T) {
	card := Card{Rank: Ace, Suit: Spades}
	id := card.ID()
	if id != 51 {
		t.Errorf("expected Ace of Spades to be id 51, got %d", id)
	}
	restored := CardFromID(id)
	if restored != card {
		t.Errorf("CardFromID(ID()) should round-trip, got %v", restored)
	}
}

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("expected 52 cards, got %d", len(deck))
	}
	seen := map[int]bool{}
	for _, c := range deck {
		if seen[c.ID()] {
			t.Fatalf("duplicate card %v in deck", c)
		}
		seen[c.ID()] = true
	}
}

func TestEvaluateCategories(t *testing.T) {
	e := NewEvaluator()

	tests := []struct {
		name     string
		cards    []Card
		expected Category
	}{
		{"high card", []Card{{Ace, Spades}, {King, Hearts}, {Queen, Diamonds}, {Jack, Clubs}, {Eight, Spades}}, HighCard},
		{"pair", []Card{{Ace, Spades}, {Ace, Hearts}, {King, Diamonds}, {Queen, Clubs}, {Jack, Spades}}, Pair},
		{"two pair", []Card{{Ace, Spades}, {Ace, Hearts}, {King, Diamonds}, {King, Clubs}, {Queen, Spades}}, TwoPair},
		{"trips", []Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {King, Clubs}, {Queen, Spades}}, ThreeOfAKind},
		{"straight", []Card{{Ace, Spades}, {King, Hearts}, {Queen, Diamonds}, {Jack, Clubs}, {Ten, Spades}}, Straight},
		{"flush", []Card{{Ace, Spades}, {King, Spades}, {Queen, Spades}, {Jack, Spades}, {Eight, Spades}}, Flush},
		{"full house", []Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {King, Clubs}, {King, Spades}}, FullHouse},
		{"quads", []Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {Ace, Clubs}, {King, Spades}}, FourOfAKind},
		{"straight flush", []Card{{Nine, Spades}, {King, Spades}, {Queen, Spades}, {Jack, Spades}, {Ten, Spades}}, StraightFlush},
		{"royal flush", []Card{{Ace, Spades}, {King, Spades}, {Queen, Spades}, {Jack, Spades}, {Ten, Spades}}, RoyalFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand, err := e.Evaluate(tt.cards)
			if err != nil {
				t.Fatalf("evaluate failed: %v", err)
			}
			if hand.Category != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, hand.Category)
			}
		})
	}
}

func TestEvaluateBest5Of7(t *testing.T) {
	e := NewEvaluator()
	hole := []Card{{Ace, Spades}, {King, Hearts}}
	board := []Card{{Queen, Diamonds}, {Jack, Clubs}, {Ten, Spades}, {Nine, Hearts}, {Two, Diamonds}}

	hand, err := e.Evaluate(append(append([]Card{}, hole...), board...))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if hand.Category != Straight {
		t.Errorf("expected Straight (A-K-Q-J-10), got %v", hand.Category)
	}
	if hand.Tiebreakers[0] != Ace {
		t.Errorf("expected straight high card Ace, got %v", hand.Tiebreakers[0])
	}
}

func TestWheelStraight(t *testing.T) {
	e := NewEvaluator()
	// Ace-low straight: board 3-4-5-K-Q, hole A-2.
	cards := []Card{
		{Ace, Spades}, {Two, Clubs},
		{Three, Diamonds}, {Four, Diamonds}, {Five, Hearts}, {King, Clubs}, {Queen, Spades},
	}
	hand, err := e.Evaluate(cards)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if hand.Category != Straight {
		t.Errorf("expected Straight, got %v", hand.Category)
	}
	if hand.Tiebreakers[0] != Five {
		t.Errorf("wheel straight should report high card Five, got %v", hand.Tiebreakers[0])
	}
}

func TestCompareOrdering(t *testing.T) {
	e := NewEvaluator()
	sf, _ := e.Evaluate([]Card{{Nine, Spades}, {King, Spades}, {Queen, Spades}, {Jack, Spades}, {Ten, Spades}})
	flush, _ := e.Evaluate([]Card{{Ace, Spades}, {King, Spades}, {Queen, Spades}, {Jack, Spades}, {Eight, Spades}})

	if Compare(sf, flush) <= 0 {
		t.Errorf("straight flush should beat flush")
	}
	if Compare(flush, sf) >= 0 {
		t.Errorf("Compare should be antisymmetric")
	}

	fh, _ := e.Evaluate([]Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {King, Clubs}, {King, Spades}})
	tk, _ := e.Evaluate([]Card{{Ace, Spades}, {Ace, Hearts}, {Ace, Diamonds}, {King, Clubs}, {Queen, Spades}})
	if Compare(fh, tk) <= 0 {
		t.Errorf("full house should beat three of a kind")
	}
}

func TestEvaluateRejectsBadCardCount(t *testing.T) {
	e := NewEvaluator()
	if _, err := e.Evaluate([]Card{{Ace, Spades}, {King, Spades}}); err == nil {
		t.Errorf("expected error for fewer than 5 cards")
	}
}
