// Package parser turns a line of player input into engine commands. It knows
// the game's two-word vocabulary, the direction shortcuts, the interpreter's
// own commands and how to expand TAKE ALL and DROP ALL.
package parser

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/tatianab/scottfree/internal/engine"
	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// Error is input the parser could not turn into commands. Message is the
// system message to show the player.
type Error struct {
	Message sysmsg.ID
	Word    string
}

func (e *Error) Error() string {
	if e.Word != "" {
		return fmt.Sprintf("parser: message %d: %q", e.Message, e.Word)
	}
	return fmt.Sprintf("parser: message %d", e.Message)
}

// Text renders the error for the player.
func (e *Error) Text(t *sysmsg.Table) string {
	if e.Word != "" {
		return fmt.Sprintf("%s\"%s\". ", t.Get(e.Message), e.Word)
	}
	return t.Get(e.Message)
}

var (
	directionLetters = map[string]int{"N": 1, "S": 2, "E": 3, "W": 4, "U": 5, "D": 6}

	abbreviations = map[string]string{
		"I": "INVENTORY",
		"L": "LOOK",
		"X": "EXAMINE",
		"Z": "WAIT",
	}

	separators = []string{"AND", "THEN"}
)

// Parser resolves input against one game's vocabulary.
type Parser struct {
	w    *models.World
	skip mapset.Set[string]
}

// New returns a parser for w.
func New(w *models.World) *Parser {
	skip := mapset.New[string]()
	for _, s := range []string{"THE", "A", "AN", "SOME", "AT", "TO"} {
		skip.Put(s)
	}
	return &Parser{w: w, skip: skip}
}

// Parse splits line into clauses and resolves each one. Clauses are separated
// by commas, full stops, AND or THEN. Expansions of ALL are computed against
// the world as it is when Parse is called.
func (p *Parser) Parse(line string) ([]engine.Command, error) {
	var cmds []engine.Command
	for _, clause := range clauses(line) {
		var words []string
		for _, f := range clause {
			if !p.skip.Has(f) {
				words = append(words, f)
			}
		}
		if len(words) == 0 {
			continue
		}
		out, err := p.clause(words)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, out...)
	}
	if len(cmds) == 0 {
		return nil, &Error{Message: sysmsg.Huh}
	}
	log.Debugf("parser: %q -> %+v", line, cmds)
	return cmds, nil
}

// clauses upper-cases line and splits it into lists of words.
func clauses(line string) [][]string {
	split := func(r rune) bool { return r == ',' || r == '.' || r == ';' }
	var out [][]string
	for _, part := range strings.FieldsFunc(strings.ToUpper(line), split) {
		var cur []string
		for _, f := range strings.Fields(part) {
			if isSeparator(f) {
				out = append(out, cur)
				cur = nil
				continue
			}
			cur = append(cur, f)
		}
		out = append(out, cur)
	}
	return out
}

func isSeparator(word string) bool {
	for _, s := range separators {
		if word == s {
			return true
		}
	}
	return false
}

func (p *Parser) clause(words []string) ([]engine.Command, error) {
	first := words[0]

	if len(words) == 1 {
		if d := p.direction(first); d > 0 {
			return []engine.Command{{Verb: engine.VerbGo, Noun: d}}, nil
		}
		if full, ok := abbreviations[first]; ok && p.find(p.w.Verbs, first) == 0 {
			first = full
		}
	}

	nounWord := ""
	if len(words) > 1 {
		nounWord = words[1]
	}
	extra := extraCommand(first, nounWord)

	verb := p.find(p.w.Verbs, first)
	if verb == 0 {
		if extra == engine.ExtraNone {
			return nil, &Error{Message: sysmsg.UnknownWord, Word: words[0]}
		}
		// A verb past the table matches no row, so the engine goes
		// straight to the interpreter command.
		verb = len(p.w.Verbs) + int(extra)
	}

	if nounWord == "ALL" && (verb == engine.VerbTake || verb == engine.VerbDrop) {
		return p.all(verb, words[2:])
	}

	noun := 0
	if nounWord != "" {
		noun = p.find(p.w.Nouns, nounWord)
		if noun == 0 && extra == engine.ExtraNone {
			return nil, &Error{Message: sysmsg.UnknownWord, Word: nounWord}
		}
	}
	return []engine.Command{{Verb: verb, Noun: noun, Extra: extra, NounWord: nounWord}}, nil
}

// direction resolves a one word movement command such as N or NORTH.
func (p *Parser) direction(word string) int {
	if d, ok := directionLetters[word]; ok {
		return d
	}
	if p.find(p.w.Verbs, word) != 0 {
		return 0
	}
	if n := p.find(p.w.Nouns, word); n >= 1 && n <= 6 {
		return n
	}
	return 0
}

// find returns the index of word in a verb or noun list, or 0. Words are
// compared on their first WordLength letters. A synonym, marked with a
// leading '*', resolves to the closest plain word before it.
func (p *Parser) find(list []string, word string) int {
	word = p.truncate(word)
	for i := 1; i < len(list); i++ {
		entry, syn := strings.CutPrefix(list[i], "*")
		if entry == "" || p.truncate(entry) != word {
			continue
		}
		if !syn {
			return i
		}
		for j := i - 1; j >= 1; j-- {
			if !strings.HasPrefix(list[j], "*") {
				return j
			}
		}
		return i
	}
	return 0
}

func (p *Parser) truncate(word string) string {
	word = strings.ToUpper(word)
	if n := p.w.Header.WordLength; n > 0 && len(word) > n {
		word = word[:n]
	}
	return word
}

// all expands TAKE ALL or DROP ALL into one command per item, skipping the
// nouns listed after EXCEPT.
func (p *Parser) all(verb int, rest []string) ([]engine.Command, error) {
	except := mapset.New[int]()
	if len(rest) > 0 && (rest[0] == "EXCEPT" || rest[0] == "BUT") {
		for _, word := range rest[1:] {
			n := p.find(p.w.Nouns, word)
			if n == 0 {
				return nil, &Error{Message: sysmsg.UnknownWord, Word: word}
			}
			except.Put(n)
		}
	}

	loc := models.Carried
	if verb == engine.VerbTake {
		if p.w.IsDark() {
			// The engine reports the darkness.
			return []engine.Command{{Verb: verb, All: true, LastAll: true}}, nil
		}
		loc = p.w.State.CurrentLoc
	}
	var cmds []engine.Command
	for i, it := range p.w.Items {
		if it.Location != loc || it.AutoGet == "" || strings.HasPrefix(it.AutoGet, "*") {
			continue
		}
		noun := p.find(p.w.Nouns, it.AutoGet)
		if except.Has(noun) {
			continue
		}
		cmds = append(cmds, engine.Command{Verb: verb, Noun: noun, Item: i, All: true, NounWord: it.AutoGet})
	}
	if len(cmds) == 0 {
		if verb == engine.VerbTake {
			return nil, &Error{Message: sysmsg.NothingHereToTake}
		}
		return nil, &Error{Message: sysmsg.YouHaveNothing}
	}
	cmds[len(cmds)-1].LastAll = true
	return cmds, nil
}

// extraCommand recognises the interpreter's own commands.
func extraCommand(verb, noun string) engine.ExtraCommand {
	switch verb {
	case "SAVE":
		if noun == "" || noun == "GAME" {
			return engine.ExtraSave
		}
	case "RESTORE", "LOAD":
		if noun == "" || noun == "GAME" {
			return engine.ExtraRestore
		}
	case "RESTART":
		if noun == "" || noun == "GAME" {
			return engine.ExtraRestart
		}
	case "UNDO":
		if noun == "" || noun == "COMMAND" || noun == "MOVE" {
			return engine.ExtraUndo
		}
	case "SCRIPT", "TRANSCRIPT":
		switch noun {
		case "", "ON":
			return engine.ExtraScriptOn
		case "OFF":
			return engine.ExtraScriptOff
		}
	case "UNSCRIPT":
		if noun == "" {
			return engine.ExtraScriptOff
		}
	case "RAMSAVE", "QSAVE":
		if noun == "" {
			return engine.ExtraRamSave
		}
	case "RAMLOAD", "RAMRESTORE", "QLOAD":
		if noun == "" {
			return engine.ExtraRamLoad
		}
	case "RAM":
		switch noun {
		case "SAVE":
			return engine.ExtraRamSave
		case "LOAD", "RESTORE":
			return engine.ExtraRamLoad
		}
	}
	return engine.ExtraNone
}
