package analytics

import (
	"fmt"
	"hash/fnv"
	"math"
)

var languageColors = map[string]string{
	"Go":         "#00ADD8",
	"JavaScript": "#f1e05a",
	"TypeScript": "#3178c6",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"Kotlin":     "#A97BFF",
	"Ruby":       "#701516",
	"Rust":       "#dea584",
	"C":          "#555555",
	"C++":        "#f34b7d",
	"C#":         "#178600",
	"PHP":        "#4F5D95",
	"Swift":      "#F05138",
	"Shell":      "#89e051",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Dart":       "#00B4AB",
	"Scala":      "#c22d40",
	"Elixir":     "#6e4a7e",
	"Haskell":    "#5e5086",
	"Lua":        "#000080",
	"Vue":        "#41b883",
	"Dockerfile": "#384d54",
	"HCL":        "#844FBA",
	OtherLabel:   "#8b949e",
}

// LanguageColor returns GitHub's color for well-known languages and a stable
// hash-derived color for everything else.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(language))
	hue := float64(h.Sum32() % 360)
	r, g, b := hslToRGB(hue, 0.65, 0.5)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8(math.Round((r + m) * 255)), uint8(math.Round((g + m) * 255)), uint8(math.Round((b + m) * 255))
}
