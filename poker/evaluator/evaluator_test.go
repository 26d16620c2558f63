package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corepoker/holdem/poker/card"
)

func cards(t *testing.T, ss ...string) []card.Card {
	t.Helper()
	out := make([]card.Card, len(ss))
	for i, s := range ss {
		c, err := card.Parse(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestEvaluate5Categories(t *testing.T) {
	cases := []struct {
		name string
		hand []string
		want Category
	}{
		{"royal flush", []string{"sa", "sk", "sq", "sj", "st"}, RoyalFlush},
		{"straight flush", []string{"h9", "h8", "h7", "h6", "h5"}, StraightFlush},
		{"wheel straight flush", []string{"ha", "h2", "h3", "h4", "h5"}, StraightFlush},
		{"four of a kind", []string{"ca", "da", "ha", "sa", "c2"}, FourOfAKind},
		{"full house", []string{"ca", "da", "ha", "s2", "c2"}, FullHouse},
		{"flush", []string{"h2", "h5", "h9", "hj", "hk"}, Flush},
		{"straight", []string{"c9", "d8", "h7", "s6", "c5"}, Straight},
		{"wheel straight", []string{"ca", "d2", "h3", "s4", "c5"}, Straight},
		{"three of a kind", []string{"ca", "da", "ha", "s2", "c3"}, ThreeOfAKind},
		{"two pairs", []string{"ca", "da", "h2", "s2", "c3"}, TwoPairs},
		{"pair", []string{"ca", "da", "h2", "s3", "c4"}, Pair},
		{"high card", []string{"ca", "dk", "h9", "s5", "c2"}, HighCard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hand, err := Evaluate5(cards(t, tc.hand...))
			require.NoError(t, err)
			require.Equal(t, tc.want, hand.Category)
		})
	}
}

func TestEvaluate5RejectsBadInput(t *testing.T) {
	_, err := Evaluate5(cards(t, "sa", "sk", "sq", "sj"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluate5(cards(t, "sa", "sa", "sq", "sj", "st"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompareReflexive(t *testing.T) {
	hand, err := Evaluate5(cards(t, "ca", "dk", "h9", "s5", "c2"))
	require.NoError(t, err)
	require.Equal(t, 0, Compare(hand, hand))
}

func TestComparePermutationStable(t *testing.T) {
	a, err := Evaluate5(cards(t, "ca", "da", "h2", "s3", "c4"))
	require.NoError(t, err)
	b, err := Evaluate5(cards(t, "c4", "s3", "h2", "da", "ca"))
	require.NoError(t, err)
	require.Equal(t, 0, Compare(a, b))
	require.Equal(t, a.Value, b.Value)
}

func TestCompareTotalOrder(t *testing.T) {
	flush, err := Evaluate5(cards(t, "h2", "h5", "h9", "hj", "hk"))
	require.NoError(t, err)
	straight, err := Evaluate5(cards(t, "c9", "d8", "h7", "s6", "c5"))
	require.NoError(t, err)
	require.Equal(t, 1, Compare(flush, straight))
	require.Equal(t, -1, Compare(straight, flush))
}

func TestEvaluate7PicksBest(t *testing.T) {
	seven := cards(t, "sa", "sk", "sq", "sj", "st", "c2", "d3")
	hand, err := Evaluate7(seven)
	require.NoError(t, err)
	require.Equal(t, RoyalFlush, hand.Category)
}

func TestEvaluate7RejectsShortInput(t *testing.T) {
	_, err := Evaluate7(cards(t, "sa", "sk", "sq", "sj"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateOmahaRequiresExactlyTwoHoleThreeBoard(t *testing.T) {
	hole := cards(t, "sa", "sk", "c2", "d2")
	board := cards(t, "sq", "sj", "st", "h4", "c7")
	hand, err := EvaluateOmaha(hole, board)
	require.NoError(t, err)
	require.Equal(t, RoyalFlush, hand.Category)
}

func TestEvaluateOmahaCannotUseThreeHoleCards(t *testing.T) {
	// Three spades in hole plus two on board must not combine into a
	// 5-spade flush since Omaha requires exactly two hole cards.
	hole := cards(t, "sa", "sk", "s9", "d2")
	board := cards(t, "sq", "sj", "h4", "c7", "d3")
	hand, err := EvaluateOmaha(hole, board)
	require.NoError(t, err)
	require.NotEqual(t, Flush, hand.Category)
	require.NotEqual(t, StraightFlush, hand.Category)
	require.NotEqual(t, RoyalFlush, hand.Category)
}

func TestEvaluateOmahaRejectsWrongCounts(t *testing.T) {
	_, err := EvaluateOmaha(cards(t, "sa", "sk", "c2"), cards(t, "sq", "sj", "st", "h4", "c7"))
	require.ErrorIs(t, err, ErrInvalidInput)
}
