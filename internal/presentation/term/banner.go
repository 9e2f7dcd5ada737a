package term

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	lines := []string{
		`  _     _           _     _       _     _   `,
		` | |__ (_)_ __   __| |___(_) __ _| |__ | |_ `,
		` | '_ \| | '_ \ / _` + "`" + ` / __| |/ _` + "`" + ` | '_ \| __|`,
		` | | | | | | | | (_| \__ \ | (_| | | | | |_ `,
		` |_| |_|_|_| |_|\__,_|___/_|\__, |_| |_|\__|`,
		`                            |___/            `,
	}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(palette[i%len(palette)])))
	}
	fmt.Printf("  v%s\n\n", strings.TrimSpace(version))
}
