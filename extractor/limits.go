package extractor

// Limits caps every extracted collection so a hostile page cannot inflate
// the response. Truncation is silent: capped lists simply stop growing.
type Limits struct {
	MaxLinks       int
	MaxImages      int
	MaxVideos      int
	MaxScripts     int
	MaxStylesheets int

	// MaxHeadings caps the total headings across all levels.
	MaxHeadings int

	MaxTables     int
	MaxTableRows  int // per table
	MaxForms      int
	MaxFormInputs int // per form
	MaxButtons    int
	MaxLists      int
	MaxListItems  int // per list
	MaxQuotes     int

	MaxCodeBlocks     int
	MaxCodeBlockChars int // per block, in runes

	MaxExcerptChars int // text excerpt length, in runes
}

// DefaultLimits returns the production caps.
func DefaultLimits() Limits {
	return Limits{
		MaxLinks:          100,
		MaxImages:         50,
		MaxVideos:         20,
		MaxScripts:        50,
		MaxStylesheets:    20,
		MaxHeadings:       200,
		MaxTables:         10,
		MaxTableRows:      50,
		MaxForms:          10,
		MaxFormInputs:     30,
		MaxButtons:        30,
		MaxLists:          20,
		MaxListItems:      50,
		MaxQuotes:         20,
		MaxCodeBlocks:     20,
		MaxCodeBlockChars: 2000,
		MaxExcerptChars:   1200,
	}
}
