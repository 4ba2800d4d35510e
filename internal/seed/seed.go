// Package seed supplies the initial infection deck for a new game. A seed is
// a TOML file listing the cards and their colors:
//
//	name = "Pandemic"
//
//	[[cards]]
//	name = "Atlanta"
//	color = "blue"
//
// The built-in "pandemic" seed is used when no file is available.
package seed

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/epidemic/internal/card"
)

// BuiltinName is the name of the seed compiled into the binary
const BuiltinName = "pandemic"

// Seed is an ordered card population for NewGame
type Seed struct {
	Name        string
	Description string
	Path        string
	Cards       []card.Card
}

// File is the on-disk layout of a seed file
type File struct {
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Cards       []CardEntry `toml:"cards"`
}

type CardEntry struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Load reads a seed file. Entries with an unknown color are rejected; run
// Validate for a full report.
func Load(path string) (*Seed, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("seed file not found: %s", path)
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("error parsing seed file: %w", err)
	}
	if len(f.Cards) == 0 {
		return nil, fmt.Errorf("seed %s has no cards", path)
	}

	s := &Seed{Name: f.Name, Description: f.Description, Path: path, Cards: make([]card.Card, 0, len(f.Cards))}
	if s.Name == "" {
		s.Name = path
	}
	for i, entry := range f.Cards {
		if entry.Name == "" {
			return nil, fmt.Errorf("card %d in %s has no name", i+1, path)
		}
		color, err := card.ParseColor(entry.Color)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", entry.Name, err)
		}
		s.Cards = append(s.Cards, card.New(entry.Name, color))
	}

	return s, nil
}

// Write stores s as a seed file at path
func Write(path string, s *Seed) error {
	f := File{Name: s.Name, Description: s.Description, Cards: make([]CardEntry, len(s.Cards))}
	for i, c := range s.Cards {
		f.Cards[i] = CardEntry{Name: c.Name, Color: string(c.Color)}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating seed file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(f); err != nil {
		return fmt.Errorf("error encoding seed: %w", err)
	}
	return nil
}

// Builtin returns the standard 48-city infection deck
func Builtin() *Seed {
	regions := []struct {
		color  card.Color
		cities []string
	}{
		{card.Blue, []string{
			"Atlanta", "Chicago", "Essen", "London", "Madrid", "Milan",
			"Montreal", "New York", "Paris", "San Francisco", "St. Petersburg", "Washington",
		}},
		{card.Yellow, []string{
			"Bogota", "Buenos Aires", "Johannesburg", "Khartoum", "Kinshasa", "Lagos",
			"Lima", "Los Angeles", "Mexico City", "Miami", "Santiago", "Sao Paulo",
		}},
		{card.Black, []string{
			"Algiers", "Baghdad", "Cairo", "Chennai", "Delhi", "Istanbul",
			"Karachi", "Kolkata", "Moscow", "Mumbai", "Riyadh", "Tehran",
		}},
		{card.Red, []string{
			"Bangkok", "Beijing", "Ho Chi Minh City", "Hong Kong", "Jakarta", "Manila",
			"Osaka", "Seoul", "Shanghai", "Sydney", "Taipei", "Tokyo",
		}},
	}

	s := &Seed{
		Name:        "Pandemic",
		Description: "The 48 city infection cards of the base game, 12 per disease color",
	}
	for _, r := range regions {
		for _, city := range r.cities {
			s.Cards = append(s.Cards, card.New(city, r.color))
		}
	}
	return s
}
