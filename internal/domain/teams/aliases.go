package teams

// builtin maps club names, with the spellings seen in the source sheet, to
// three-letter codes.
var builtin = map[string]string{
	"Al Hilal":            "HIL",
	"Atlético de Madrid":  "ATM",
	"Atletico Madrid":     "ATM",
	"Auckland City":       "AKL",
	"Auckland City FC":    "AKL",
	"Boca Juniors":        "BOC",
	"Borussia Dortmund":   "BVB",
	"Botafogo":            "BOT",
	"Chelsea":             "CHE",
	"Chelsea FC":          "CHE",
	"CF Monterrey":        "MTY",
	"Monterrey":           "MTY",
	"CF Pachuca":          "PNC",
	"Pachuca":             "PNC",
	"Espérance de Túnis":  "EST",
	"Esperance de Tunis":  "EST",
	"FC Bayern Munich":    "BAY",
	"Bayern Munich":       "BAY",
	"Batern Munich":       "BAY", // typo present in the sheet
	"FC Porto":            "POR",
	"Porto":               "POR",
	"RB Salzburg":         "SAL",
	"FC Salzburg":         "SAL",
	"Flamengo":            "FLA",
	"Fluminense":          "FLU",
	"Inter Miami CF":      "MIA",
	"Inter Milan":         "INT",
	"Juventus":            "JUV",
	"Juventus FC":         "JUV",
	"Los Angeles FC":      "LAF",
	"LAFC":                "LAF",
	"Mamelodi Sundowns":   "SUN",
	"Manchester City":     "MCI",
	"Manchester City FC":  "MCI",
	"Palmeiras":           "PNL",
	"Paris Saint-Germain": "PSG",
	"Real Madrid":         "RMA",
	"Real Madrid CF":      "RMA",
	"River Plate":         "RIV",
	"Seattle Sounders FC": "SEA",
	"SL Benfica":          "BEN",
	"Benfica":             "BEN",
	"Ulsan HD FC":         "ULS",
	"Ulsan Hyundai":       "ULS",
	"Urawa Red Diamonds":  "URD",
	"Wydad AC":            "WAC",
}
