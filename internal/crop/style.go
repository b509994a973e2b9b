// Package crop holds the fixed display table for the farm's crops: the
// colour and emoji a painted plot takes, and the varieties each crop is
// planted as.
package crop

// Crop names as reported by field nodes.
const (
	Coffee = "Café"
	Cacao  = "Cacao"
	Citrus = "Cítricos"
)

// NeutralColor paints empty plots and crops missing from the table.
const NeutralColor = "#999999"

// NeutralEmoji marks a sown plot whose crop has no entry in the table.
const NeutralEmoji = "🌱"

// Style is how a crop is drawn on the map.
type Style struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

var styles = []Style{
	{Name: Coffee, Color: "#8B4513", Emoji: "☕"},
	{Name: Cacao, Color: "#6F4E37", Emoji: "🍫"},
	{Name: Citrus, Color: "#FF8C00", Emoji: "🍊"},
}

var varieties = map[string][]string{
	Coffee: {"Balanceado", "Frutal", "Fuerte"},
	Cacao:  {"Criollo", "Forastero", "Trinitario"},
	Citrus: {"Naranja Valencia", "Limón Tahití", "Mandarina"},
}

var varietyEmojis = map[string]string{
	"Balanceado":       "☕",
	"Frutal":           "☕",
	"Fuerte":           "☕",
	"Criollo":          "🍫",
	"Forastero":        "🍫",
	"Trinitario":       "🍫",
	"Naranja Valencia": "🍊",
	"Limón Tahití":     "🍋",
	"Mandarina":        "🍊",
}

// Lookup returns the style for name. Matching is exact; unknown names get
// the neutral colour and seedling emoji with the name preserved.
func Lookup(name string) Style {
	for _, s := range styles {
		if s.Name == name {
			return s
		}
	}
	return Style{Name: name, Color: NeutralColor, Emoji: NeutralEmoji}
}

// IsKnown reports whether name has an entry in the style table.
func IsKnown(name string) bool {
	for _, s := range styles {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Known returns the style table in legend order.
func Known() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Varieties returns the varieties planted for crop, or nil.
func Varieties(crop string) []string {
	v := varieties[crop]
	if v == nil {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// ValidVariety reports whether variety belongs to crop.
func ValidVariety(crop, variety string) bool {
	for _, v := range varieties[crop] {
		if v == variety {
			return true
		}
	}
	return false
}

// VarietyEmoji returns the marker for a variety, falling back to the
// neutral seedling.
func VarietyEmoji(variety string) string {
	if e, ok := varietyEmojis[variety]; ok {
		return e
	}
	return NeutralEmoji
}
