package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	colorize "github.com/fatih/color"

	"github.com/arcanaland/epidemic/internal/card"
	"github.com/arcanaland/epidemic/internal/deck"
	"github.com/arcanaland/epidemic/internal/deckset"
)

const sessionHelp = `Commands:
  new                    start a new game from the seed
  move [pile] <card>     move a card to draw, discard or exclude
  epidemic               put the discard pile back into the draw deck
  pool                   show the pool selector
  select <n>             select pool position n
  show                   show the board
  help                   show this help
  quit                   leave`

var (
	noticeColor = colorize.New(colorize.FgYellow)
	errorColor  = colorize.New(colorize.FgRed, colorize.Bold)
	logColor    = colorize.New(colorize.FgHiBlack)
)

// session drives a DeckSet from text commands, one line at a time
type session struct {
	set     *deckset.DeckSet
	seed    []card.Card
	dest    deckset.Key
	out     io.Writer
	width   int
	logger  *slog.Logger
	changed map[deckset.Key]int
}

func newSession(set *deckset.DeckSet, seedCards []card.Card, dest deckset.Key, out io.Writer, width int, logger *slog.Logger) *session {
	s := &session{
		set:     set,
		seed:    seedCards,
		dest:    dest,
		out:     out,
		width:   width,
		logger:  logger,
		changed: make(map[deckset.Key]int),
	}
	set.Subscribe(func(e deckset.Event) {
		s.changed[e.Key] = e.Size
	})
	return s
}

// run reads commands from in until EOF or quit
func (s *session) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for scanner.Scan() {
		if !s.exec(scanner.Text()) {
			return nil
		}
		fmt.Fprint(s.out, "> ")
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// exec runs one command line and reports whether the session continues
func (s *session) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	command, args := strings.ToLower(fields[0]), fields[1:]
	switch command {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		fmt.Fprintln(s.out, sessionHelp)
	case "new":
		s.newGame()
	case "move", "mv", "m":
		s.move(args)
	case "epidemic":
		if s.report(s.set.Epidemic()) {
			s.logLine("epidemic: discard pile returned to the draw deck")
		}
	case "pool":
		selected, ok := s.set.Selected()
		for _, l := range poolColumn(s.set.Pool(), selected, ok, s.width) {
			fmt.Fprintln(s.out, l)
		}
	case "select", "sel":
		s.selectSlot(args)
	case "show", "board", "ls":
		renderBoard(s.out, s.set, s.width)
	default:
		fmt.Fprintln(s.out, noticeColor.Sprintf("unknown command %q, type help", command))
	}

	s.flushChanges()
	return true
}

func (s *session) newGame() {
	if err := s.set.NewGame(s.seed); err != nil {
		s.report(err)
		return
	}
	s.logLine(fmt.Sprintf("new game: %d cards in the draw deck", s.set.Len(deckset.KeyDraw)))
}

func (s *session) move(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, noticeColor.Sprint("usage: move [pile] <card>"))
		return
	}

	dest := s.dest
	if len(args) > 1 {
		if k, err := deckset.ParseKey(strings.ToLower(args[0])); err == nil {
			dest = k
			args = args[1:]
		}
	}

	name := s.resolve(strings.Join(args, " "))
	from, _ := s.set.Locate(name)
	if s.report(s.set.Transfer(name, dest)) {
		s.logLine(fmt.Sprintf("%s: %s → %s", name, from, dest))
	}
}

func (s *session) selectSlot(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, noticeColor.Sprint("usage: select <n>"))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(s.out, noticeColor.Sprintf("not a position: %s", args[0]))
		return
	}
	if s.report(s.set.SelectPool(n - 1)) {
		renderCardpool(s.out, s.set, s.width)
	}
}

// resolve maps a typed card name to the seed's spelling
func (s *session) resolve(name string) string {
	for _, c := range s.seed {
		if strings.EqualFold(c.Name, name) {
			return c.Name
		}
	}
	return name
}

// report prints err as a notice and reports whether the command succeeded
func (s *session) report(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, deck.ErrInvalidPosition):
		fmt.Fprintln(s.out, errorColor.Sprintf("internal error: %v", err))
	default:
		fmt.Fprintln(s.out, noticeColor.Sprint(err.Error()))
	}
	return false
}

func (s *session) logLine(msg string) {
	fmt.Fprintln(s.out, logColor.Sprint(msg))
	s.logger.Debug(msg)
}

// flushChanges prints the sizes of the piles changed by the last command
func (s *session) flushChanges() {
	if len(s.changed) == 0 {
		return
	}
	var parts []string
	for _, k := range deckset.Keys() {
		if size, ok := s.changed[k]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", k, size))
		}
	}
	fmt.Fprintln(s.out, logColor.Sprint("  "+strings.Join(parts, " · ")))
	clear(s.changed)
}
