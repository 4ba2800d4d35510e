package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	colorize "github.com/fatih/color"
	"golang.org/x/term"

	"github.com/arcanaland/epidemic/internal/card"
	"github.com/arcanaland/epidemic/internal/deckset"
	"github.com/arcanaland/epidemic/internal/pool"
)

// maxPossibleCards caps the cardpool listing
const maxPossibleCards = 35

var headings = map[deckset.Key]string{
	deckset.KeyDraw:    "DRAW DECK",
	deckset.KeyDiscard: "DISCARD PILE",
	deckset.KeyExclude: "EXCLUDED",
}

var cardColors = map[card.Color]*colorize.Color{
	card.Blue:   colorize.New(colorize.FgHiBlue, colorize.Bold),
	card.Black:  colorize.New(colorize.FgHiBlack, colorize.Bold),
	card.Yellow: colorize.New(colorize.FgYellow, colorize.Bold),
	card.Red:    colorize.New(colorize.FgRed, colorize.Bold),
	card.Green:  colorize.New(colorize.FgGreen, colorize.Bold),
	card.Gray:   colorize.New(colorize.FgWhite),
}

var (
	headingColor  = colorize.New(colorize.FgCyan, colorize.Bold)
	activeSlot    = colorize.New(colorize.FgBlack, colorize.BgHiWhite, colorize.Bold)
	inactiveSlot  = colorize.New(colorize.FgHiBlack)
	selectedColor = colorize.New(colorize.FgHiWhite, colorize.BgBlack, colorize.Bold)
)

// terminalWidth returns the width of stdout, 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// cardLabel colors a card name, gray when the pile ignores colors
func cardLabel(c card.Card, useColor bool, width int) string {
	name := truncate(c.Name, width)
	if !useColor {
		return cardColors[card.Gray].Sprint(name)
	}
	if col, ok := cardColors[c.Color]; ok {
		return col.Sprint(name)
	}
	return name
}

// truncate shortens s to at most width runes
func truncate(s string, width int) string {
	if width <= 1 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

// poolColumn renders the pool selector slots
func poolColumn(slots []pool.Slot, selected pool.Slot, hasSelected bool, width int) []string {
	lines := []string{headingColor.Sprint("INFECTION DECK"), ""}
	for _, s := range slots {
		label := fmt.Sprintf("%2d %s", s.Index+1, truncate(s.Card, width-3))
		switch {
		case hasSelected && s.Index == selected.Index:
			lines = append(lines, selectedColor.Sprint(label))
		case s.Active:
			lines = append(lines, activeSlot.Sprint(label))
		default:
			lines = append(lines, inactiveSlot.Sprint(label))
		}
	}
	return lines
}

// deckColumn renders one pile top to bottom
func deckColumn(key deckset.Key, cards []card.Card, width int) []string {
	lines := []string{
		headingColor.Sprint(headings[key]),
		fmt.Sprintf("(%d cards)", len(cards)),
	}
	useColor := key != deckset.KeyExclude
	for _, c := range cards {
		lines = append(lines, cardLabel(c, useColor, width))
	}
	return lines
}

// renderBoard prints the pool selector and the three piles side by side
func renderBoard(w io.Writer, set *deckset.DeckSet, width int) {
	colWidth := (width - 2) / 4
	if colWidth < 12 {
		colWidth = 12
	}
	if colWidth > 24 {
		colWidth = 24
	}

	selected, hasSelected := set.Selected()
	columns := [][]string{poolColumn(set.Pool(), selected, hasSelected, colWidth-2)}
	for _, k := range deckset.Keys() {
		cards, err := set.Cards(k)
		if err != nil {
			continue
		}
		columns = append(columns, deckColumn(k, cards, colWidth-2))
	}

	rows := 0
	for _, col := range columns {
		rows = max(rows, len(col))
	}

	fmt.Fprintln(w)
	for i := 0; i < rows; i++ {
		var line strings.Builder
		line.WriteString("  ")
		for _, col := range columns {
			cell := ""
			if i < len(col) {
				cell = col[i]
			}
			line.WriteString(cell)
			visibleWidth := utf8.RuneCountInString(stripAnsi(cell))
			if pad := colWidth - visibleWidth; pad > 0 {
				line.WriteString(strings.Repeat(" ", pad))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(w)

	renderStats(w, set)
	renderCardpool(w, set, width)
}

// renderStats prints the pile counts
func renderStats(w io.Writer, set *deckset.DeckSet) {
	fmt.Fprintln(w, headingColor.Sprint("Stats"))
	fmt.Fprintf(w, "  Total cards in game: %d\n", set.Total())
	fmt.Fprintf(w, "  In discard pile: %d\n", set.Len(deckset.KeyDiscard))
	if set.Len(deckset.KeyDraw) == 0 {
		fmt.Fprintln(w, "  (Draw Deck is empty)")
	}
	fmt.Fprintln(w)
}

// renderCardpool lists the cards that can be at the selected pool position
func renderCardpool(w io.Writer, set *deckset.DeckSet, width int) {
	slot, ok := set.Selected()
	if !ok {
		return
	}
	cards, err := set.Cards(deckset.KeyDraw)
	if err != nil {
		return
	}
	if len(cards) == 0 {
		fmt.Fprintln(w, "Draw Deck is empty.")
		return
	}

	fmt.Fprintf(w, "%s %d (from %s)\n", headingColor.Sprint("Card position:"), slot.Index+1, headings[deckset.KeyDraw])
	fmt.Fprintln(w, headingColor.Sprint("Possible cards:"))
	if len(cards) >= maxPossibleCards {
		fmt.Fprintf(w, "  %d+ cards\n\n", maxPossibleCards)
		return
	}

	counts := make(map[string]int)
	byName := make(map[string]card.Card)
	for _, c := range cards {
		counts[c.Name]++
		byName[c.Name] = c
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]string, len(names))
	for i, n := range names {
		entries[i] = fmt.Sprintf("%s (%d)", cardLabel(byName[n], true, width), counts[n])
	}
	for _, line := range wrapText(strings.Join(entries, ", "), width-4) {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w)
}

// wrapText wraps text to a specified visible width
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	currentWidth := 0
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		wordWidth := utf8.RuneCountInString(stripAnsi(word))
		if currentWidth == 0 {
			currentLine = word
			currentWidth = wordWidth
		} else if currentWidth+1+wordWidth <= width {
			currentLine += " " + word
			currentWidth += 1 + wordWidth
		} else {
			result = append(result, currentLine)
			currentLine = word
			currentWidth = wordWidth
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
