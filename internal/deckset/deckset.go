// Package deckset owns the three infection piles and is the only place cards
// move between them.
//
// Every card name lives in at most one pile. This holds by construction:
// cards enter through NewGame, which seeds the duplicate-free draw deck, and
// afterwards they only change piles through Transfer and Epidemic. Both
// validate the whole move before touching any deck, so a failed call leaves
// the set unchanged.
//
// All methods are safe for concurrent use. Listeners registered with
// Subscribe are called after the set's lock is released, on the goroutine
// that made the change. Events from one goroutine arrive in the order of its
// calls; calls racing on several goroutines may publish in either order.
package deckset

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/arcanaland/epidemic/internal/card"
	"github.com/arcanaland/epidemic/internal/deck"
	"github.com/arcanaland/epidemic/internal/pool"
)

// ErrInvalidSeed is returned by NewGame for a card population it cannot deal
var ErrInvalidSeed = errors.New("invalid seed")

// Key names one of the three piles
type Key string

const (
	KeyDraw    Key = "draw"
	KeyDiscard Key = "discard"
	KeyExclude Key = "exclude"
)

// Keys returns the pile keys in lookup order
func Keys() []Key {
	return []Key{KeyDraw, KeyDiscard, KeyExclude}
}

// ParseKey validates a destination name
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if !slices.Contains(Keys(), k) {
		return "", fmt.Errorf("%w: %q", deck.ErrInvalidDestination, s)
	}
	return k, nil
}

// Event reports the new contents of a pile after a change
type Event struct {
	Key   Key
	Size  int
	Cards []card.Card
}

// Listener receives deck change events
type Listener func(Event)

// DeckSet holds the draw, discard and exclude piles
type DeckSet struct {
	mu        sync.Mutex
	decks     map[Key]*deck.Deck
	window    *pool.Window
	logger    *slog.Logger
	listeners map[int]Listener
	nextID    int
}

// Options configures a DeckSet
type Options struct {
	PoolSize int          // number of pool selector slots, pool.DefaultSize when zero
	Logger   *slog.Logger // slog.Default() when nil
}

// New creates an empty deck set
func New(opts Options) *DeckSet {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckSet{
		decks: map[Key]*deck.Deck{
			KeyDraw:    deck.New(string(KeyDraw), deck.Sorted),
			KeyDiscard: deck.New(string(KeyDiscard), deck.InsertionOrder),
			KeyExclude: deck.New(string(KeyExclude), deck.InsertionOrder),
		},
		window:    pool.New(opts.PoolSize),
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for change events and returns a function removing it
func (s *DeckSet) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Transfer moves the card named name from whichever pile holds it to dest.
// Cards going to the draw deck are placed in sorted order, others go on top.
func (s *DeckSet) Transfer(name string, dest Key) error {
	s.mu.Lock()
	events, err := s.transfer(name, dest)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if err != nil {
		s.logTransferError(name, dest, err)
		return err
	}
	s.publish(listeners, events)
	return nil
}

func (s *DeckSet) transfer(name string, dest Key) ([]Event, error) {
	to, ok := s.decks[dest]
	if !ok {
		return nil, fmt.Errorf("%w: %q", deck.ErrInvalidDestination, dest)
	}
	src, ok := s.locate(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s is in no pile", deck.ErrCardNotFound, name)
	}
	from := s.decks[src]

	if src == dest {
		return s.reorder(from, name)
	}
	if to.Policy() == deck.Sorted && to.Contains(name) {
		return nil, fmt.Errorf("%w: %s already in %s", deck.ErrDuplicateCard, name, dest)
	}

	c, err := from.Remove(name)
	if err != nil {
		return nil, err
	}
	if err := to.Add(c); err != nil {
		// Put the card back where it came from so nothing is lost.
		if restoreErr := s.restore(from, c); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
		return nil, err
	}

	s.logger.Debug("card transferred", "card", name, "from", src, "to", dest)
	s.refreshPool(src, dest)
	return []Event{s.event(src), s.event(dest)}, nil
}

// reorder handles a transfer onto the pile already holding the card. The
// sorted draw deck has nowhere else to put it, other piles move it to the top.
func (s *DeckSet) reorder(d *deck.Deck, name string) ([]Event, error) {
	i := d.Index(name)
	if d.Policy() == deck.Sorted || i == 0 {
		return nil, nil
	}
	c, err := d.Remove(name)
	if err != nil {
		return nil, err
	}
	if err := d.InsertFront(c); err != nil {
		return nil, err
	}
	return []Event{s.event(Key(d.Name))}, nil
}

func (s *DeckSet) restore(d *deck.Deck, c card.Card) error {
	if d.Policy() == deck.Sorted {
		_, err := d.InsertSorted(c)
		return err
	}
	return d.InsertFront(c)
}

// Epidemic puts the whole discard pile back into the draw deck. If any
// discarded card is already in the draw deck nothing is moved.
func (s *DeckSet) Epidemic() error {
	s.mu.Lock()
	events, err := s.epidemic()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("epidemic failed", "error", err)
		return err
	}
	s.publish(listeners, events)
	return nil
}

func (s *DeckSet) epidemic() ([]Event, error) {
	discard := s.decks[KeyDiscard]
	draw := s.decks[KeyDraw]
	if discard.Len() == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, discard.Len())
	for c := range discard.All() {
		if draw.Contains(c.Name) || seen[c.Name] {
			return nil, fmt.Errorf("%w: %s cannot return to draw", deck.ErrDuplicateCard, c.Name)
		}
		seen[c.Name] = true
	}

	cards := discard.Cards()
	discard.Clear()
	for _, c := range cards {
		if _, err := draw.InsertSorted(c); err != nil {
			return nil, err
		}
	}

	s.logger.Info("discard pile returned to draw deck", "cards", len(cards))
	s.refreshPool(KeyDraw)
	return []Event{s.event(KeyDiscard), s.event(KeyDraw)}, nil
}

// NewGame clears every pile and seeds the draw deck with cards. Cards whose
// name was already seeded are skipped. The seed is checked before anything is
// cleared, so a rejected seed leaves the current game in place.
func (s *DeckSet) NewGame(cards []card.Card) error {
	draw, skipped, err := seedDraw(cards)
	if err != nil {
		s.logger.Error("seeding draw deck failed", "error", err)
		return err
	}
	for _, name := range skipped {
		s.logger.Debug("duplicate card in seed", "card", name)
	}

	s.mu.Lock()
	events := s.clear()
	s.decks[KeyDraw] = draw
	s.refreshPool(KeyDraw)
	events = append(events, s.event(KeyDraw))
	dealt := draw.Len()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("new game", "cards", dealt, "skipped", len(skipped))
	s.publish(listeners, events)
	return nil
}

// seedDraw builds a fresh draw deck from cards and returns the names it skipped
// as duplicates
func seedDraw(cards []card.Card) (*deck.Deck, []string, error) {
	draw := deck.New(string(KeyDraw), deck.Sorted)
	var skipped []string
	for i, c := range cards {
		if c.Name == "" {
			return nil, nil, fmt.Errorf("%w: card %d has no name", ErrInvalidSeed, i+1)
		}
		if _, err := draw.InsertSorted(c); err != nil {
			if errors.Is(err, deck.ErrDuplicateCard) {
				skipped = append(skipped, c.Name)
				continue
			}
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}
	}
	return draw, skipped, nil
}

// Reset empties all three piles
func (s *DeckSet) Reset() {
	s.mu.Lock()
	events := s.clear()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.publish(listeners, events)
}

func (s *DeckSet) clear() []Event {
	events := make([]Event, 0, len(s.decks))
	for _, k := range Keys() {
		s.decks[k].Clear()
		events = append(events, s.event(k))
	}
	s.window.Reset()
	return events
}

// Locate returns the pile holding the card named name
func (s *DeckSet) Locate(name string) (Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locate(name)
}

// locate probes the piles in Keys() order. The order is a lookup convenience
// only, a name is never in more than one pile.
func (s *DeckSet) locate(name string) (Key, bool) {
	for _, k := range Keys() {
		if s.decks[k].Contains(name) {
			return k, true
		}
	}
	return "", false
}

// Cards returns a copy of the pile named key
func (s *DeckSet) Cards(key Key) ([]card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", deck.ErrInvalidDestination, key)
	}
	return d.Cards(), nil
}

// Len returns the size of the pile named key, 0 for unknown keys
func (s *DeckSet) Len(key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.decks[key]; ok {
		return d.Len()
	}
	return 0
}

// Total returns the number of cards across all piles
func (s *DeckSet) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, d := range s.decks {
		total += d.Len()
	}
	return total
}

// Snapshot returns the ordered card names of every pile, the form a
// persistence layer would store
func (s *DeckSet) Snapshot() map[Key][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Key][]string, len(s.decks))
	for k, d := range s.decks {
		out[k] = d.Names()
	}
	return out
}

// Pool returns the pool selector slots
func (s *DeckSet) Pool() []pool.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Slots()
}

// SelectPool moves the pool cursor to slot i
func (s *DeckSet) SelectPool(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Activate(i)
}

// Selected returns the pool slot under the cursor
func (s *DeckSet) Selected() (pool.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Active()
}

func (s *DeckSet) refreshPool(changed ...Key) {
	if slices.Contains(changed, KeyDraw) {
		s.window.Refresh(s.decks[KeyDraw].Names())
	}
}

func (s *DeckSet) event(k Key) Event {
	d := s.decks[k]
	return Event{Key: k, Size: d.Len(), Cards: d.Cards()}
}

func (s *DeckSet) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func (s *DeckSet) publish(listeners []Listener, events []Event) {
	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
	}
}

func (s *DeckSet) logTransferError(name string, dest Key, err error) {
	switch {
	case errors.Is(err, deck.ErrInvalidPosition):
		s.logger.Error("transfer aborted", "card", name, "to", dest, "error", err)
	case errors.Is(err, deck.ErrDuplicateCard):
		s.logger.Debug("transfer rejected", "card", name, "to", dest, "error", err)
	default:
		s.logger.Warn("transfer rejected", "card", name, "to", dest, "error", err)
	}
}
