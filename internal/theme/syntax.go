package theme

import (
	"html/template"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/quietfold/the-journal/internal/cache"
)

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

func GenerateSyntaxCSS(syntaxTheme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(syntaxTheme); ok {
		return css
	}

	var buf strings.Builder
	formatter := GetFormatter()
	style := styles.Get(syntaxTheme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text color when the style doesn't set one.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	formatter.WriteCSS(&buf, style)
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(syntaxTheme, css)
	return css
}
