// Package ti99 translates the action byte-code of TI-99/4A game images into
// canonical rule table rows.
//
// A TI block is a free-length sequence of condition and command opcodes with
// inline operands. Canonical rows hold at most five condition slots and four
// commands, so long blocks are split into a chain of rows joined by the
// continue command, and the "try" opcode starts a new chain of rows that
// runs as a continuation of the current one.
package ti99

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
)

const (
	maxSlots    = 5
	maxCommands = 4
)

// rowBuilder collects one canonical row.
type rowBuilder struct {
	conds      []int // condition codes
	condParams []int // one parameter per condition
	cmdParams  []int // parameters consumed by the commands
	cmds       []int
}

func (r *rowBuilder) slots() int {
	return len(r.conds) + len(r.cmdParams)
}

func (r *rowBuilder) build(verb, noun int) (models.Action, error) {
	if r.slots() > maxSlots || len(r.cmds) > maxCommands {
		return models.Action{}, errors.Wrapf(gameerr.ErrMalformedAction,
			"%d condition slots and %d commands do not fit a row", r.slots(), len(r.cmds))
	}
	a := models.Action{Vocab: models.PackVocab(verb, noun)}
	i := 0
	for j, c := range r.conds {
		a.Condition[i] = models.PackCondition(c, r.condParams[j])
		i++
	}
	for _, p := range r.cmdParams {
		a.Condition[i] = models.PackCondition(0, p)
		i++
	}
	var ids [maxCommands]int
	copy(ids[:], r.cmds)
	a.Command[0] = models.PackCommands(ids[0], ids[1])
	a.Command[1] = models.PackCommands(ids[2], ids[3])
	return a, nil
}

// Compile translates one block of byte-code into one or more rows. The first
// row answers to verb and noun; rows split off by overflow or by a try
// opcode are continuation rows with verb and noun 0. The block ends at an
// 0xff byte or at the end of code.
func Compile(verb, noun int, code []byte) ([]models.Action, error) {
	return compile(verb, noun, code, nil)
}

func compile(verb, noun int, code []byte, rows []models.Action) ([]models.Action, error) {
	var (
		r    rowBuilder
		rest = -1 // start of the code continued in the next row
	)

	for i := 0; i < len(code); i++ {
		b := code[i]
		if b == opEnd {
			break
		}

		op, ok := opcodes[b]
		if !ok {
			if b >= firstCommand {
				return rows, errors.Wrapf(gameerr.ErrUnsupportedOpcode, "opcode %#02x at %d", b, i)
			}
			// Print a message.
			if len(r.cmds) == maxCommands-1 && more(code, i+1) {
				r.cmds = append(r.cmds, cmdContinue)
				rest = i
				break
			}
			id := int(b)
			if id >= bigMessage {
				id += 50
			}
			if id >= models.CommandBase {
				return rows, errors.Wrapf(gameerr.ErrMalformedAction, "message %d at %d cannot be packed", b, i)
			}
			r.cmds = append(r.cmds, id)
			continue
		}

		operands := op.operands
		if op.cond && operands == 0 {
			operands = 1 // a pushed zero still takes a slot
		}
		if b == opTry {
			operands = 0 // the length byte is not a parameter
		}
		if r.slots()+operands > maxSlots {
			r.cmds = append(r.cmds, cmdContinue)
			rest = i
			break
		}

		if op.cond {
			p := 0
			if op.operands > 0 {
				if i+1 >= len(code) {
					return rows, errors.Wrapf(gameerr.ErrMalformedAction, "%s at %d: missing operand", op.name, i)
				}
				i++
				p = int(code[i])
			}
			r.conds = append(r.conds, op.id)
			r.condParams = append(r.condParams, p)
			continue
		}

		consumed := op.operands
		if b == opAddOne {
			consumed = 0
		}
		if len(r.cmds) == maxCommands-1 && more(code, i+1+consumed) {
			r.cmds = append(r.cmds, cmdContinue)
			rest = i
			break
		}

		if b == opTry {
			if i+1 >= len(code) {
				return rows, errors.Wrapf(gameerr.ErrMalformedAction, "try at %d: missing length", i)
			}
			r.cmds = append(r.cmds, op.id)
			rest = i + 2
			log.Debugf("ti99: try at %d, length %d", i, code[i+1])
			break
		}

		switch {
		case b == opAddOne:
			r.cmdParams = append(r.cmdParams, 1)
		case op.operands > 0:
			if i+op.operands >= len(code) {
				return rows, errors.Wrapf(gameerr.ErrMalformedAction, "%s at %d: missing operand", op.name, i)
			}
			params := make([]int, op.operands)
			for k := range params {
				params[k] = int(code[i+1+k])
			}
			if op.swap && len(params) == 2 {
				params[0], params[1] = params[1], params[0]
			}
			r.cmdParams = append(r.cmdParams, params...)
			i += op.operands
		}
		r.cmds = append(r.cmds, op.id)
	}

	a, err := r.build(verb, noun)
	if err != nil {
		return rows, err
	}
	rows = append(rows, a)

	if rest >= 0 && rest < len(code) {
		log.Debugf("ti99: row %d continues at byte %d", len(rows)-1, rest)
		return compile(0, 0, code[rest:], rows)
	}
	return rows, nil
}

// more reports whether any instruction follows position i.
func more(code []byte, i int) bool {
	return i < len(code) && code[i] != opEnd
}

// Block is one entry of an action chain: Key is the noun of an explicit
// block or the chance in percent of an implicit one.
type Block struct {
	Key  int
	Code []byte
}

// ReadBlocks walks a chain of [key][size][code...] blocks starting at p. Each
// block is followed by the next one size+1 bytes later; a size of zero marks
// the last block, whose code runs to the next 0xff byte.
func ReadBlocks(data []byte, p int) ([]Block, error) {
	var blocks []Block
	for {
		if p < 0 || p+1 >= len(data) {
			return blocks, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "action block at %#x", p)
		}
		key, size := int(data[p]), int(data[p+1])
		if size == 0 {
			end := p + 2
			for end < len(data) && data[end] != opEnd {
				end++
			}
			return append(blocks, Block{Key: key, Code: data[p+2 : end]}), nil
		}
		end := p + size
		if end > len(data) {
			return blocks, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "action block at %#x, size %d", p, size)
		}
		var code []byte
		if end > p+2 {
			code = data[p+2 : end]
		}
		blocks = append(blocks, Block{Key: key, Code: code})
		p += 1 + size
	}
}
