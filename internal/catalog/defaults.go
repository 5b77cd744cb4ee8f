package catalog

// DefaultDefinitions is the built-in platform set used when the external
// catalog source is unreadable. Resolution must never be unconditionally
// unavailable, so this list is the floor, not the ceiling.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:   "dv360",
			Name: "Google DV360",
			Aliases: []string{
				"dv360", "dv 360", "display & video 360", "display and video 360",
				"google display & video 360", "doubleclick bid manager", "dbm",
			},
			PriorityRank: 1,
			Active:       true,
		},
		{
			ID:   "ttd",
			Name: "The Trade Desk",
			Aliases: []string{
				"the trade desk", "trade desk", "tradedesk", "ttd",
			},
			PriorityRank: 2,
			Active:       true,
		},
		{
			ID:   "cm360",
			Name: "Campaign Manager 360",
			Aliases: []string{
				"cm360", "cm 360", "campaign manager", "campaign manager 360",
				"doubleclick campaign manager", "dcm",
			},
			PriorityRank: 3,
			Active:       true,
		},
		{
			ID:   "amazon-dsp",
			Name: "Amazon DSP",
			Aliases: []string{
				"amazon dsp", "amazon advertising", "adsp", "aap",
			},
			PriorityRank: 4,
			Active:       true,
		},
		{
			ID:   "xandr",
			Name: "Xandr",
			Aliases: []string{
				"xandr", "xandr invest", "appnexus", "microsoft invest",
			},
			PriorityRank: 5,
			Active:       true,
		},
		{
			ID:   "mediamath",
			Name: "MediaMath",
			Aliases: []string{
				"mediamath", "media math",
			},
			PriorityRank: 6,
			Active:       true,
		},
		{
			ID:   "yahoo-dsp",
			Name: "Yahoo DSP",
			Aliases: []string{
				"yahoo dsp", "yahoo", "verizon media", "oath",
			},
			PriorityRank: 7,
			Active:       true,
		},
		{
			ID:   "adform",
			Name: "Adform",
			Aliases: []string{
				"adform", "ad form",
			},
			PriorityRank: 8,
			Active:       true,
		},
		{
			ID:   "criteo",
			Name: "Criteo",
			Aliases: []string{
				"criteo", "criteo commerce max",
			},
			PriorityRank: 9,
			Active:       true,
		},
		{
			ID:   "stackadapt",
			Name: "StackAdapt",
			Aliases: []string{
				"stackadapt", "stack adapt",
			},
			PriorityRank: 10,
			Active:       true,
		},
	}
}
