package card

import (
	"fmt"
	"strings"
)

// Color is the presentation category of an infection card
type Color string

const (
	Blue   Color = "blue"
	Black  Color = "black"
	Yellow Color = "yellow"
	Red    Color = "red"
	Green  Color = "green"
	Gray   Color = "gray"
)

var palette = map[Color]string{
	Blue:   "#4073bf",
	Black:  "#404040",
	Yellow: "#e6ac00",
	Red:    "#df4620",
	Green:  "#009933",
	Gray:   "#bfbfbf",
}

// Colors returns every known color in display order
func Colors() []Color {
	return []Color{Blue, Black, Yellow, Red, Green, Gray}
}

// ParseColor converts a color name (case-insensitive) to a Color
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palette[c]; !ok {
		return "", fmt.Errorf("unknown card color: %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known colors
func (c Color) Valid() bool {
	_, ok := palette[c]
	return ok
}

// Hex returns the RGB hex code used to draw the color, gray for unknown colors
func (c Color) Hex() string {
	if hex, ok := palette[c]; ok {
		return hex
	}
	return palette[Gray]
}

// Card represents an infection card. Cards are compared by Name only.
type Card struct {
	Name  string // City name, the card's identity
	Color Color  // Region color
}

// New creates a card
func New(name string, color Color) Card {
	return Card{Name: name, Color: color}
}

func (c Card) String() string {
	return c.Name
}
