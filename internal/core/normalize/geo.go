package normalize

import "strings"

// cityAbbrev expands common place-name abbreviations token by token
var cityAbbrev = map[string]string{
	"st":   "saint",
	"ste":  "sainte",
	"mt":   "mount",
	"mtn":  "mountain",
	"ft":   "fort",
	"pt":   "point",
	"n":    "north",
	"s":    "south",
	"e":    "east",
	"w":    "west",
	"hts":  "heights",
	"spgs": "springs",
	"spg":  "spring",
	"jct":  "junction",
	"pk":   "park",
	"vlg":  "village",
	"bch":  "beach",
	"cty":  "city",
}

// City returns a lowercase city with abbreviations expanded and punctuation dropped
func (n *Normalizer) City(s string) string {
	if s == "" {
		return ""
	}
	toks := tokens(fold(s))
	for i, t := range toks {
		if full, ok := cityAbbrev[t]; ok {
			toks[i] = full
		}
	}
	return strings.Join(toks, " ")
}

// State returns a USPS two-letter code for a state name or code, or "" when unknown.
// Any two-letter alphabetic input passes through uppercased.
func (n *Normalizer) State(s string) string {
	c := collapse(s)
	if c == "" {
		return ""
	}
	if len(c) == 2 && isASCIIAlpha(c) {
		return strings.ToUpper(c)
	}
	if code, ok := stateCodes[c]; ok {
		return code
	}
	return ""
}

func isASCIIAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// stateCodes maps normalized full names to USPS codes, territories included
var stateCodes = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"district of columbia":     "DC",
	"d c":                      "DC",
	"washington d c":           "DC",
	"washington dc":            "DC",
	"florida":                  "FL",
	"georgia":                  "GA",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
	"puerto rico":              "PR",
	"guam":                     "GU",
	"american samoa":           "AS",
	"us virgin islands":        "VI",
	"virgin islands":           "VI",
	"northern mariana islands": "MP",
}
