package swim

// styleTable maps the stroke abbreviations the two source formats actually
// produce. Matching is case-sensitive on purpose: "FL" and "Fly" are what the
// meet software emits, and loosening the match would hide upstream drift.
var styleTable = map[string]Style{
	"Fr":     Freestyle,
	"Free":   Freestyle,
	"Bk":     Backstroke,
	"Back":   Backstroke,
	"Br":     Breaststroke,
	"Breast": Breaststroke,
	"FL":     Butterfly,
	"Fly":    Butterfly,
	"IM":     Medley,
	"I.M":    Medley,
}

// ParseStyle normalizes a stroke code to its canonical style. It is total:
// unrecognized codes map to StyleUnknown and never fail.
func ParseStyle(code string) Style {
	if s, ok := styleTable[code]; ok {
		return s
	}
	return StyleUnknown
}
