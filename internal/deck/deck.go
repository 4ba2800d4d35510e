package deck

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/arcanaland/epidemic/internal/card"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrDuplicateCard      = errors.New("card already in deck")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidDestination = errors.New("invalid destination")
)

// Policy decides where Add places a new card
type Policy int

const (
	// InsertionOrder puts new cards on top of the pile and allows duplicates
	InsertionOrder Policy = iota
	// Sorted keeps cards in ascending name order and rejects duplicates
	Sorted
)

func (p Policy) String() string {
	switch p {
	case Sorted:
		return "sorted"
	case InsertionOrder:
		return "insertion-order"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Deck is an ordered pile of cards. Index 0 is the top of the pile.
type Deck struct {
	Name   string
	policy Policy
	cards  []card.Card
}

// New creates an empty deck
func New(name string, policy Policy) *Deck {
	return &Deck{Name: name, policy: policy}
}

// Policy returns the deck's ordering policy
func (d *Deck) Policy() Policy {
	return d.policy
}

// Insert places c at index pos, shifting the cards below it down. On a Sorted
// deck pos must be the name's bisect-left position and the name must not be
// present yet.
func (d *Deck) Insert(c card.Card, pos int) error {
	if pos < 0 || pos > len(d.cards) {
		return fmt.Errorf("%w: %d not in [0, %d] for %s", ErrInvalidPosition, pos, len(d.cards), d.Name)
	}
	if d.policy == Sorted {
		i := d.search(c.Name)
		if i < len(d.cards) && d.cards[i].Name == c.Name {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateCard, c.Name, d.Name)
		}
		if pos != i {
			return fmt.Errorf("%w: %s belongs at %d, not %d, in %s", ErrInvalidPosition, c.Name, i, pos, d.Name)
		}
	}
	d.insertAt(c, pos)
	return nil
}

func (d *Deck) insertAt(c card.Card, pos int) {
	d.cards = append(d.cards, card.Card{})
	copy(d.cards[pos+1:], d.cards[pos:])
	d.cards[pos] = c
}

// InsertFront puts c on top of the pile
func (d *Deck) InsertFront(c card.Card) error {
	return d.Insert(c, 0)
}

// InsertSorted inserts c at its bisect-left position by name and returns the
// index used. A name already in the deck is rejected with ErrDuplicateCard and
// the deck is left unchanged.
func (d *Deck) InsertSorted(c card.Card) (int, error) {
	i := d.search(c.Name)
	if i < len(d.cards) && d.cards[i].Name == c.Name {
		return i, fmt.Errorf("%w: %s in %s", ErrDuplicateCard, c.Name, d.Name)
	}
	d.insertAt(c, i)
	return i, nil
}

// Add inserts c according to the deck's policy
func (d *Deck) Add(c card.Card) error {
	if d.policy == Sorted {
		_, err := d.InsertSorted(c)
		return err
	}
	return d.InsertFront(c)
}

// Remove takes the first card named name out of the deck
func (d *Deck) Remove(name string) (card.Card, error) {
	i := d.Index(name)
	if i < 0 {
		return card.Card{}, fmt.Errorf("%w: %s in %s", ErrCardNotFound, name, d.Name)
	}
	c := d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return c, nil
}

// Clear empties the deck
func (d *Deck) Clear() {
	d.cards = nil
}

// Len returns the number of cards in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Contains reports whether a card named name is in the deck
func (d *Deck) Contains(name string) bool {
	return d.Index(name) >= 0
}

// Index returns the position of the first card named name, or -1
func (d *Deck) Index(name string) int {
	if d.policy == Sorted {
		i := d.search(name)
		if i < len(d.cards) && d.cards[i].Name == name {
			return i
		}
		return -1
	}
	for i, c := range d.cards {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// At returns the card at index i
func (d *Deck) At(i int) (card.Card, error) {
	if i < 0 || i >= len(d.cards) {
		return card.Card{}, fmt.Errorf("%w: %d not in [0, %d) for %s", ErrInvalidPosition, i, len(d.cards), d.Name)
	}
	return d.cards[i], nil
}

// All iterates the deck top to bottom. The sequence reads the deck each time
// it is ranged over, so it must not be used while the deck is being modified.
func (d *Deck) All() iter.Seq[card.Card] {
	return func(yield func(card.Card) bool) {
		for _, c := range d.cards {
			if !yield(c) {
				return
			}
		}
	}
}

// Cards returns a copy of the deck contents
func (d *Deck) Cards() []card.Card {
	out := make([]card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Names returns the card names top to bottom
func (d *Deck) Names() []string {
	names := make([]string, len(d.cards))
	for i, c := range d.cards {
		names[i] = c.Name
	}
	return names
}

// search is bisect-left over card names. Only meaningful for Sorted decks.
func (d *Deck) search(name string) int {
	return sort.Search(len(d.cards), func(i int) bool {
		return d.cards[i].Name >= name
	})
}
