// README: Fixed destination, interest, and duration catalogs used by the extractor.
package planparams

import "regexp"

// Destinations is consulted in order; the first entry contained in the
// message wins, so more specific names must come before names they contain.
var Destinations = []string{
	// Japan
	"tokyo",
	"kyoto",
	"osaka",
	"hokkaido",
	"mount fuji",
	// Europe
	"paris",
	"london",
	"amsterdam",
	"barcelona",
	"lisbon",
	"venice",
	"florence",
	"santorini",
	"prague",
	"iceland",
	"scottish highlands",
	"dolomites",
	// Americas
	"new york",
	"san francisco",
	"chicago",
	"yosemite",
	"grand canyon",
	"patagonia",
	"banff",
	"havana",
	// Asia and Oceania
	"hong kong",
	"singapore",
	"seoul",
	"taipei",
	"bangkok",
	"hanoi",
	"bali",
	"sydney",
	"new zealand",
	// Africa and Middle East
	"marrakech",
	"cape town",
	"serengeti",
	"dubai",
	"petra",
}

// Interests are photography keywords; every match is collected in this order
// before truncation to MaxInterests.
var Interests = []string{
	"architecture",
	"street",
	"landscape",
	"night",
	"portrait",
	"golden hour",
	"sunrise",
	"sunset",
	"wildlife",
	"food",
	"astro",
	"macro",
	"aerial",
	"urban",
	"nature",
	"long exposure",
	"minimalist",
	"black and white",
}

// MaxInterests caps how many interest keywords are kept.
const MaxInterests = 3

// InterestSeparator joins matched interest keywords.
const InterestSeparator = "-"

// weekPhrases map to a seven-day trip; checked before "weekend".
var weekPhrases = []string{"a week", "one week"}

const weekendPhrase = "weekend"

// durationPatterns are tried in order against the lowered message; the first
// capture group of the first matching pattern is the day count.
var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*days?`),
	regexp.MustCompile(`(\d+)-day`),
	regexp.MustCompile(`for\s+(\d+)\s+days?`),
	regexp.MustCompile(`(\d+)\s*nights?`),
}
