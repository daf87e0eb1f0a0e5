// Package teams canonicalizes team abbreviations so feed and pool codes compare equal.
package teams

import "strings"

// aliases collapses abbreviations that name the same franchise onto one key.
var aliases = map[string]string{
	"WSH": "WAS",
	"LA":  "LAR",
	"STL": "LAR",
	"JAC": "JAX",
	"OAK": "LV",
	"SD":  "LAC",
	"GNB": "GB",
	"KAN": "KC",
	"NWE": "NE",
	"NOR": "NO",
	"SFO": "SF",
	"TAM": "TB",
}

// Team is one franchise in the catalogue.
type Team struct {
	Abbr string `json:"abbr"`
	Name string `json:"name"`
}

var catalogue = []Team{
	{"ARI", "Arizona Cardinals"}, {"ATL", "Atlanta Falcons"},
	{"BAL", "Baltimore Ravens"}, {"BUF", "Buffalo Bills"},
	{"CAR", "Carolina Panthers"}, {"CHI", "Chicago Bears"},
	{"CIN", "Cincinnati Bengals"}, {"CLE", "Cleveland Browns"},
	{"DAL", "Dallas Cowboys"}, {"DEN", "Denver Broncos"},
	{"DET", "Detroit Lions"}, {"GB", "Green Bay Packers"},
	{"HOU", "Houston Texans"}, {"IND", "Indianapolis Colts"},
	{"JAX", "Jacksonville Jaguars"}, {"KC", "Kansas City Chiefs"},
	{"LV", "Las Vegas Raiders"}, {"LAC", "Los Angeles Chargers"},
	{"LAR", "Los Angeles Rams"}, {"MIA", "Miami Dolphins"},
	{"MIN", "Minnesota Vikings"}, {"NE", "New England Patriots"},
	{"NO", "New Orleans Saints"}, {"NYG", "New York Giants"},
	{"NYJ", "New York Jets"}, {"PHI", "Philadelphia Eagles"},
	{"PIT", "Pittsburgh Steelers"}, {"SF", "San Francisco 49ers"},
	{"SEA", "Seattle Seahawks"}, {"TB", "Tampa Bay Buccaneers"},
	{"TEN", "Tennessee Titans"}, {"WAS", "Washington Commanders"},
}

var byAbbr = func() map[string]Team {
	m := make(map[string]Team, len(catalogue))
	for _, t := range catalogue {
		m[t.Abbr] = t
	}
	return m
}()

// Normalize uppercases and trims abbr, then maps known aliases to the
// canonical code. Unknown codes come back uppercased.
func Normalize(abbr string) string {
	a := strings.ToUpper(strings.TrimSpace(abbr))
	if canon, ok := aliases[a]; ok {
		return canon
	}
	return a
}

// Equal reports whether two codes name the same franchise.
// Two empty codes are not a match.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// Lookup returns the catalogue entry for abbr, accepting aliases.
func Lookup(abbr string) (Team, bool) {
	t, ok := byAbbr[Normalize(abbr)]
	return t, ok
}

// All returns the catalogue in alphabetical order of city.
func All() []Team {
	return append([]Team(nil), catalogue...)
}
