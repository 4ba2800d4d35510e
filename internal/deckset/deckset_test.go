package deckset

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/arcanaland/epidemic/internal/card"
	"github.com/arcanaland/epidemic/internal/deck"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCards(names ...string) []card.Card {
	cards := make([]card.Card, len(names))
	for i, n := range names {
		cards[i] = card.New(n, card.Blue)
	}
	return cards
}

func newTestSet(t *testing.T, poolSize int, names ...string) *DeckSet {
	t.Helper()
	s := New(Options{PoolSize: poolSize, Logger: quietLogger()})
	if err := s.NewGame(seedCards(names...)); err != nil {
		t.Fatal(err)
	}
	return s
}

func checkInvariants(t *testing.T, s *DeckSet) {
	t.Helper()
	snap := s.Snapshot()
	if !slices.IsSorted(snap[KeyDraw]) {
		t.Fatalf("draw deck not sorted: %v", snap[KeyDraw])
	}
	seen := map[string]Key{}
	for _, k := range Keys() {
		for _, n := range snap[k] {
			if prev, ok := seen[n]; ok {
				t.Fatalf("%s is in both %s and %s", n, prev, k)
			}
			seen[n] = k
		}
	}
}

func TestParseKey(t *testing.T) {
	for _, k := range Keys() {
		got, err := ParseKey(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKey(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKey("hand"); !errors.Is(err, deck.ErrInvalidDestination) {
		t.Fatalf("expected ErrInvalidDestination, got %v", err)
	}
}

func TestTransferToDiscard(t *testing.T) {
	s := newTestSet(t, 0, "Paris", "Berlin", "Milan")
	if err := s.Transfer("Milan", KeyDiscard); err != nil {
		t.Fatal(err)
	}
	if err := s.Transfer("Berlin", KeyDiscard); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if !slices.Equal(snap[KeyDraw], []string{"Paris"}) {
		t.Errorf("draw = %v", snap[KeyDraw])
	}
	if !slices.Equal(snap[KeyDiscard], []string{"Berlin", "Milan"}) {
		t.Errorf("discard = %v", snap[KeyDiscard])
	}
	checkInvariants(t, s)
}

func TestTransferBackToDrawIsSorted(t *testing.T) {
	s := newTestSet(t, 0, "Atlanta", "Boston", "Chicago")
	s.Transfer("Boston", KeyExclude)
	if got := s.Snapshot()[KeyDraw]; !slices.Equal(got, []string{"Atlanta", "Chicago"}) {
		t.Fatalf("draw = %v", got)
	}

	if err := s.Transfer("Boston", KeyDraw); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot()[KeyDraw]; !slices.Equal(got, []string{"Atlanta", "Boston", "Chicago"}) {
		t.Fatalf("draw = %v", got)
	}
	if s.Len(KeyExclude) != 0 {
		t.Fatalf("exclude should be empty, has %d", s.Len(KeyExclude))
	}
}

func TestTransferErrorsLeaveStateUnchanged(t *testing.T) {
	s := newTestSet(t, 0, "Cairo", "Lagos")
	s.Transfer("Lagos", KeyDiscard)
	before := s.Snapshot()

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	tests := []struct {
		name string
		dest Key
		want error
	}{
		{"Madrid", KeyExclude, deck.ErrCardNotFound},
		{"Cairo", Key("hand"), deck.ErrInvalidDestination},
		{"Madrid", Key("hand"), deck.ErrInvalidDestination},
	}
	for _, test := range tests {
		err := s.Transfer(test.name, test.dest)
		if !errors.Is(err, test.want) {
			t.Errorf("Transfer(%s, %s): expected %v, got %v", test.name, test.dest, test.want, err)
		}
	}

	after := s.Snapshot()
	for _, k := range Keys() {
		if !slices.Equal(before[k], after[k]) {
			t.Errorf("%s changed from %v to %v", k, before[k], after[k])
		}
	}
	if len(events) != 0 {
		t.Fatalf("failed transfers published %d events", len(events))
	}
}

func TestSelfTransfer(t *testing.T) {
	s := newTestSet(t, 0, "Essen", "Lima", "Tokyo")
	s.Transfer("Essen", KeyDiscard)
	s.Transfer("Lima", KeyDiscard)

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	if err := s.Transfer("Tokyo", KeyDraw); err != nil {
		t.Fatal(err)
	}
	if err := s.Transfer("Lima", KeyDiscard); err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("no-op self transfers published %d events", len(events))
	}

	if err := s.Transfer("Essen", KeyDiscard); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot()[KeyDiscard]; !slices.Equal(got, []string{"Essen", "Lima"}) {
		t.Fatalf("discard = %v", got)
	}
	if len(events) != 1 || events[0].Key != KeyDiscard || events[0].Size != 2 {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestTransferEvents(t *testing.T) {
	s := newTestSet(t, 0, "Berlin", "Paris")
	s.Transfer("Paris", KeyDiscard)

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	if err := s.Transfer("Berlin", KeyDiscard); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Key != KeyDraw || events[0].Size != 0 || len(events[0].Cards) != 0 {
		t.Errorf("unexpected draw event %+v", events[0])
	}
	if events[1].Key != KeyDiscard || events[1].Size != 2 || events[1].Cards[0].Name != "Berlin" {
		t.Errorf("unexpected discard event %+v", events[1])
	}

	unsubscribe()
	s.Transfer("Berlin", KeyExclude)
	if len(events) != 2 {
		t.Fatalf("unsubscribed listener still called, %d events", len(events))
	}
}

func TestListenerMayReadSet(t *testing.T) {
	s := newTestSet(t, 0, "Delhi", "Karachi")
	var sizes []int
	s.Subscribe(func(e Event) {
		sizes = append(sizes, s.Total())
	})
	if err := s.Transfer("Delhi", KeyExclude); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(sizes, []int{2, 2}) {
		t.Fatalf("unexpected totals %v", sizes)
	}
}

func TestNewGame(t *testing.T) {
	s := newTestSet(t, 0, "Tokyo", "Seoul", "Tokyo", "Bangkok")
	s.Transfer("Seoul", KeyExclude)

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	if err := s.NewGame(seedCards("Osaka", "Manila", "Manila")); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if !slices.Equal(snap[KeyDraw], []string{"Manila", "Osaka"}) {
		t.Errorf("draw = %v", snap[KeyDraw])
	}
	if len(snap[KeyDiscard]) != 0 || len(snap[KeyExclude]) != 0 {
		t.Errorf("piles not cleared: %v", snap)
	}

	var keys []Key
	for _, e := range events {
		keys = append(keys, e.Key)
	}
	want := []Key{KeyDraw, KeyDiscard, KeyExclude, KeyDraw}
	if !slices.Equal(keys, want) {
		t.Fatalf("expected events for %v, got %v", want, keys)
	}
	if events[0].Size != 0 || events[3].Size != 2 {
		t.Fatalf("unexpected event sizes %+v", events)
	}
}

func TestNewGameRejectedSeedKeepsGame(t *testing.T) {
	s := newTestSet(t, 2, "Lagos", "Lima", "Miami")
	s.Transfer("Lima", KeyDiscard)
	s.SelectPool(1)
	before := s.Snapshot()

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	err := s.NewGame(seedCards("Bogota", "", "Santiago"))
	if !errors.Is(err, ErrInvalidSeed) {
		t.Fatalf("expected ErrInvalidSeed, got %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rejected seed published %d events", len(events))
	}
	after := s.Snapshot()
	for _, k := range Keys() {
		if !slices.Equal(before[k], after[k]) {
			t.Errorf("%s changed from %v to %v", k, before[k], after[k])
		}
	}
	if slot, ok := s.Selected(); !ok || slot.Card != "Miami" {
		t.Errorf("pool cursor lost: %+v, %v", slot, ok)
	}
}

func TestEventsFollowCallOrder(t *testing.T) {
	s := newTestSet(t, 0, "Cairo", "Delhi", "Tehran")

	var got []Key
	s.Subscribe(func(e Event) { got = append(got, e.Key) })

	s.Transfer("Delhi", KeyDiscard)
	s.Transfer("Tehran", KeyExclude)
	s.Epidemic()
	want := []Key{KeyDraw, KeyDiscard, KeyDraw, KeyExclude, KeyDiscard, KeyDraw}
	if !slices.Equal(got, want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

func TestReset(t *testing.T) {
	s := newTestSet(t, 2, "A", "B", "C")
	s.SelectPool(1)
	s.Reset()
	if s.Total() != 0 {
		t.Fatalf("total = %d after reset", s.Total())
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("reset should clear the pool cursor")
	}
	for _, slot := range s.Pool() {
		if slot.Active {
			t.Fatalf("slot %d still active", slot.Index)
		}
	}
}

func TestEpidemic(t *testing.T) {
	s := newTestSet(t, 0, "Algiers", "Baghdad", "Cairo", "Istanbul")
	s.Transfer("Cairo", KeyDiscard)
	s.Transfer("Algiers", KeyDiscard)
	s.Transfer("Istanbul", KeyExclude)

	if err := s.Epidemic(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if !slices.Equal(snap[KeyDraw], []string{"Algiers", "Baghdad", "Cairo"}) {
		t.Errorf("draw = %v", snap[KeyDraw])
	}
	if len(snap[KeyDiscard]) != 0 {
		t.Errorf("discard = %v", snap[KeyDiscard])
	}
	if !slices.Equal(snap[KeyExclude], []string{"Istanbul"}) {
		t.Errorf("exclude = %v", snap[KeyExclude])
	}

	if err := s.Epidemic(); err != nil {
		t.Fatalf("epidemic on empty discard: %v", err)
	}
}

func TestPoolFollowsDraw(t *testing.T) {
	s := newTestSet(t, 3, "E", "D", "C", "B", "A")
	active := func() []string {
		var out []string
		for _, slot := range s.Pool() {
			if slot.Active {
				out = append(out, slot.Card)
			}
		}
		return out
	}
	if got := active(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Fatalf("pool = %v", got)
	}

	for _, n := range []string{"A", "B", "C"} {
		s.Transfer(n, KeyDiscard)
	}
	if got := active(); !slices.Equal(got, []string{"D", "E"}) {
		t.Fatalf("pool = %v", got)
	}
	if len(s.Pool()) != 3 {
		t.Fatalf("pool should always have 3 slots")
	}

	if err := s.SelectPool(1); err != nil {
		t.Fatal(err)
	}
	if slot, ok := s.Selected(); !ok || slot.Card != "E" {
		t.Fatalf("selected = %+v", slot)
	}
	s.Transfer("E", KeyExclude)
	if _, ok := s.Selected(); ok {
		t.Fatal("cursor should be dropped once its slot is inactive")
	}
}

func TestRandomTransfersKeepInvariants(t *testing.T) {
	cities := []string{
		"Atlanta", "Chicago", "Essen", "London", "Madrid", "Milan",
		"Montreal", "New York", "Paris", "San Francisco", "St. Petersburg", "Washington",
	}
	s := newTestSet(t, 4, cities...)
	r := rand.New(rand.NewPCG(7, 11))
	keys := Keys()

	for i := 0; i < 500; i++ {
		name := cities[r.IntN(len(cities))]
		dest := keys[r.IntN(len(keys))]
		if r.IntN(20) == 0 {
			dest = Key("nowhere")
		}
		err := s.Transfer(name, dest)
		if err != nil && !errors.Is(err, deck.ErrInvalidDestination) {
			t.Fatalf("step %d: transfer %s to %s: %v", i, name, dest, err)
		}
		if r.IntN(25) == 0 {
			if err := s.Epidemic(); err != nil {
				t.Fatalf("step %d: epidemic: %v", i, err)
			}
		}
		if s.Total() != len(cities) {
			t.Fatalf("step %d: total = %d, expected %d", i, s.Total(), len(cities))
		}
		checkInvariants(t, s)
	}
}

func TestConcurrentTransfers(t *testing.T) {
	cities := []string{"Bogota", "Buenos Aires", "Johannesburg", "Khartoum", "Kinshasa", "Lagos", "Lima", "Los Angeles"}
	s := newTestSet(t, 0, cities...)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(seed, seed+1))
			for i := 0; i < 200; i++ {
				s.Transfer(cities[r.IntN(len(cities))], Keys()[r.IntN(3)])
				s.Snapshot()
			}
		}(uint64(w))
	}
	wg.Wait()

	if s.Total() != len(cities) {
		t.Fatalf("total = %d, expected %d", s.Total(), len(cities))
	}
	checkInvariants(t, s)
}

func TestCardsAndLocate(t *testing.T) {
	s := newTestSet(t, 0, "Hong Kong", "Shanghai")
	s.Transfer("Shanghai", KeyExclude)

	if k, ok := s.Locate("Shanghai"); !ok || k != KeyExclude {
		t.Fatalf("Locate = %s, %v", k, ok)
	}
	if _, ok := s.Locate("Beijing"); ok {
		t.Fatal("Beijing should not be found")
	}
	cards, err := s.Cards(KeyDraw)
	if err != nil || len(cards) != 1 || cards[0].Name != "Hong Kong" {
		t.Fatalf("Cards(draw) = %v, %v", cards, err)
	}
	if _, err := s.Cards(Key("hand")); !errors.Is(err, deck.ErrInvalidDestination) {
		t.Fatalf("expected ErrInvalidDestination, got %v", err)
	}
	if s.Len(Key("hand")) != 0 {
		t.Fatal("unknown key should have length 0")
	}
}
