package mtt

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclBlindRule and hclAccount mirror MttAccountData's shape in terms HCL
// can decode directly (plain structs, no custom methods), then get
// copied into the richer BlindInfo/MttAccountData types.
type hclBlindRule struct {
	SBMultiplier uint64 `hcl:"sb_x"`
	BBMultiplier uint64 `hcl:"bb_x"`
}

type hclAccount struct {
	StartTime      int64          `hcl:"start_time"`
	EntryCloseTime int64          `hcl:"entry_close_time"`
	Ticket         uint64         `hcl:"ticket"`
	TableSize      int            `hcl:"table_size"`
	StartChips     uint64         `hcl:"start_chips"`
	BlindBase      uint64         `hcl:"blind_base"`
	BlindInterval  int64          `hcl:"blind_interval"`
	Rules          []hclBlindRule `hcl:"rule,block"`
	PrizeRules     []uint8        `hcl:"prize_rules"`
	Theme          string         `hcl:"theme,optional"`
	SubgameBundle  string         `hcl:"subgame_bundle"`
}

// LoadMttAccountData decodes an MttAccountData from an HCL document. A
// missing blind schedule block falls back to DefaultBlindRules.
func LoadMttAccountData(filename string, src []byte) (MttAccountData, error) {
	var raw hclAccount
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return MttAccountData{}, diags
	}
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return MttAccountData{}, diags
	}

	rules := make([]BlindRuleItem, len(raw.Rules))
	for i, r := range raw.Rules {
		rules[i] = BlindRuleItem{SBMultiplier: r.SBMultiplier, BBMultiplier: r.BBMultiplier}
	}
	if len(rules) == 0 {
		rules = DefaultBlindRules()
	}

	return MttAccountData{
		StartTime:      raw.StartTime,
		EntryCloseTime: raw.EntryCloseTime,
		Ticket:         raw.Ticket,
		TableSize:      raw.TableSize,
		StartChips:     raw.StartChips,
		BlindInfo: BlindInfo{
			BlindBase:     raw.BlindBase,
			BlindInterval: raw.BlindInterval,
			Rules:         rules,
		},
		PrizeRules:    raw.PrizeRules,
		Theme:         raw.Theme,
		SubgameBundle: raw.SubgameBundle,
	}, nil
}
