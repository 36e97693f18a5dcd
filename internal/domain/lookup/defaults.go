package lookup

import "github.com/yoshikawa-river/keiba-features/internal/domain/model"

// Defaults returns the curated table set. Callers mutate the result freely;
// each call builds fresh maps.
func Defaults() *Tables {
	return &Tables{
		Venues: map[string]VenueTraits{
			"tokyo":     {Code: 1, Turn: "left", Scale: "large"},
			"nakayama":  {Code: 2, Turn: "right", Scale: "medium"},
			"kyoto":     {Code: 3, Turn: "right", Scale: "large"},
			"hanshin":   {Code: 4, Turn: "right", Scale: "large"},
			"chukyo":    {Code: 5, Turn: "left", Scale: "medium"},
			"niigata":   {Code: 6, Turn: "left", Scale: "small"},
			"fukushima": {Code: 7, Turn: "right", Scale: "small"},
			"sapporo":   {Code: 8, Turn: "right", Scale: "small"},
			"hakodate":  {Code: 9, Turn: "right", Scale: "small"},
			"kokura":    {Code: 10, Turn: "right", Scale: "small"},
		},
		ClassRanks: map[string]float64{
			"G1":       10,
			"G2":       9,
			"G3":       8,
			"open":     7,
			"3win":     6,
			"2win":     5,
			"1win":     4,
			"newcomer": 2,
			"maiden":   1,
		},
		BaseTimes: map[model.TrackType]map[int]float64{
			model.Turf: {
				1000: 55.0,
				1200: 68.0,
				1400: 82.0,
				1600: 94.0,
				1800: 107.0,
				2000: 120.0,
				2200: 133.0,
				2400: 146.0,
				2500: 153.0,
				3000: 185.0,
				3200: 198.0,
				3600: 224.0,
			},
			model.Dirt: {
				1000: 57.0,
				1200: 70.0,
				1400: 84.0,
				1600: 96.0,
				1700: 103.0,
				1800: 110.0,
				2000: 123.0,
				2100: 130.0,
				2400: 150.0,
			},
		},
		TrackCorrections: map[model.TrackType]float64{
			model.Turf: 1.0,
			model.Dirt: 0.95,
		},
		ConditionCorrections: map[model.TrackCondition]float64{
			model.Firm:     0.98,
			model.Good:     1.00,
			model.Yielding: 1.02,
			model.Soft:     1.04,
			model.Heavy:    1.06,
		},
		Bloodlines: map[string]string{
			"Sunday Silence":   "sunday",
			"Deep Impact":      "sunday",
			"Stay Gold":        "sunday",
			"Heart's Cry":      "sunday",
			"Kingmambo":        "kingmambo",
			"King Kamehameha":  "kingmambo",
			"Lord Kanaloa":     "kingmambo",
			"Northern Dancer":  "northern",
			"Northern Taste":   "northern",
			"Mr. Prospector":   "prospector",
			"Gone West":        "prospector",
			"Bold Ruler":       "bold",
			"Native Dancer":    "native",
			"Roberto":          "roberto",
			"Brian's Time":     "roberto",
			"Symboli Kris S":   "roberto",
			"Screen Hero":      "roberto",
			"Maurice":          "roberto",
			"Harbinger":        "northern",
			"Epiphaneia":       "roberto",
			"Kitasan Black":    "sunday",
			"Duramente":        "kingmambo",
			"Drefong":          "prospector",
			"Henny Hughes":     "prospector",
			"Kizuna":           "sunday",
			"Silence Suzuka":   "sunday",
			"Special Week":     "sunday",
			"Agnes Tachyon":    "sunday",
			"Manhattan Cafe":   "sunday",
			"Daiwa Major":      "sunday",
			"Gold Ship":        "sunday",
			"Orfevre":          "sunday",
			"Rulership":        "kingmambo",
			"Hokko Tarumae":    "kingmambo",
			"Sinister Minister": "bold",
		},
		FamilyCodes: map[string]float64{
			"other":      0,
			"sunday":     1,
			"kingmambo":  2,
			"northern":   3,
			"prospector": 4,
			"bold":       5,
			"native":     6,
			"roberto":    7,
		},
		Nicks: []NickPair{
			{Sire: "Deep Impact", DamSire: "Storm Cat", Score: 1.0},
			{Sire: "King Kamehameha", DamSire: "Sunday Silence", Score: 1.0},
			{Sire: "Stay Gold", DamSire: "Mejiro McQueen", Score: 1.0},
			{Sire: "Heart's Cry", DamSire: "Tony Bin", Score: 1.0},
		},
		FamilyAffinities: []FamilyPair{
			{SireFamily: "sunday", DamSireFamily: "northern"},
			{SireFamily: "kingmambo", DamSireFamily: "sunday"},
			{SireFamily: "northern", DamSireFamily: "prospector"},
		},
		DistanceAptitude: map[string][]string{
			"sprint": {
				"Lord Kanaloa", "Drefong", "Henny Hughes", "Sinister Minister",
			},
			"mile": {
				"Deep Impact", "Daiwa Major", "Maurice", "King Kamehameha",
			},
			"intermediate": {
				"Deep Impact", "King Kamehameha", "Duramente", "Epiphaneia",
				"Kitasan Black",
			},
			"long": {
				"Stay Gold", "Gold Ship", "Orfevre", "Kitasan Black",
			},
		},
	}
}
