package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	xterm "golang.org/x/term"
)

// palette cycles per hidden state so each state keeps a stable color across
// timesteps (Indigo/Violet ramp).
var palette = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// Bars writes one colored probability bar per hidden state.
func Bars(w io.Writer, labels []string, probs []float64) {
	p := termenv.ColorProfile()
	width := barWidth()

	longest := 0
	for _, l := range labels {
		if len(l) > longest {
			longest = len(l)
		}
	}

	for i, prob := range probs {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		filled := int(prob*float64(width) + 0.5)
		if filled < 0 {
			filled = 0
		}
		if filled > width {
			filled = width
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
		colored := termenv.String(bar).Foreground(p.Color(palette[i%len(palette)]))
		fmt.Fprintf(w, "%-*s %s %6.2f%%\n", longest, label, colored, prob*100)
	}
}

// barWidth fits the bars to the terminal, leaving room for the label and
// percentage columns. Non-terminal output gets a fixed width.
func barWidth() int {
	fd := int(os.Stdout.Fd())
	if xterm.IsTerminal(fd) {
		if w, _, err := xterm.GetSize(fd); err == nil && w > 0 {
			w -= 24
			if w < 10 {
				return 10
			}
			if w > 60 {
				return 60
			}
			return w
		}
	}
	return 40
}
