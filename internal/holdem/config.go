package holdem

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// HoldemAccount is the account data an embedding host stores for a cash
// table or SNG: the starting blind/ante/rake structure and deposit
// limits. This is the `rake_cap`-carrying version of the two historical
// shapes noted in the original source — the one spec.md's DATA MODEL
// (§3, `rake_cap (in BB)`) requires.
type HoldemAccount struct {
	SB         uint64 `hcl:"sb"`
	BB         uint64 `hcl:"bb"`
	Ante       uint64 `hcl:"ante"`
	Rake       uint16 `hcl:"rake"`      // per-mil
	RakeCap    uint8  `hcl:"rake_cap"`  // in BB
	MaxDeposit uint64 `hcl:"max_deposit"`
	Theme      string `hcl:"theme,optional"`
}

// LoadHoldemAccount decodes a HoldemAccount from an HCL document, the way
// an embedding host would describe a table's starting configuration on
// disk without this module depending on any particular file format beyond
// "decode into this struct."
func LoadHoldemAccount(filename string, src []byte) (HoldemAccount, error) {
	var account HoldemAccount
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return account, diags
	}
	diags = gohcl.DecodeBody(file.Body, nil, &account)
	if diags.HasErrors() {
		return account, diags
	}
	return account, nil
}

// NewTableState builds the Init-stage TableState an embedding host seeds
// a fresh table with.
func NewTableState(account HoldemAccount, mode Mode, variant Variant) *TableState {
	return &TableState{
		SB:           account.SB,
		BB:           account.BB,
		Ante:         account.Ante,
		MinRaise:     account.BB,
		Rake:         account.Rake,
		RakeCap:      account.RakeCap,
		MaxDeposit:   account.MaxDeposit,
		Mode:         mode,
		Variant:      variant,
		BTN:          -1,
		HandIndexMap: make(map[PlayerID][2]int),
		BetMap:       make(map[PlayerID]uint64),
		TotalBetMap:  make(map[PlayerID]uint64),
		PrizeMap:     make(map[PlayerID]uint64),
		PlayerMap:    make(map[PlayerID]*Player),
		Stage:        StageInit,
		Street:       StreetInit,
	}
}
