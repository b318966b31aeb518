package ti99

// opcode describes one TI-99/4A action byte-code instruction.
type opcode struct {
	name     string
	id       int // canonical condition code or command id
	operands int
	cond     bool
	swap     bool // the two operands are stored in reverse order
}

// Canonical command ids produced directly by the compiler.
const (
	cmdNop      = 0
	cmdContinue = 73
)

const (
	opTry    = 0xda
	opAddOne = 0xf2 // add with an implicit operand of one
	opEnd    = 0xff

	// Byte values below firstCondition print a message.
	firstCondition = 0xb7
	// Byte values from firstCommand up that have no table entry are errors.
	firstCommand = 0xdb
	// Message bytes from bigMessage up are shifted into the 102+ command range.
	bigMessage = 51
)

var opcodes = map[byte]opcode{
	0xb7: {name: "has", id: 1, operands: 1, cond: true},
	0xb8: {name: "here", id: 2, operands: 1, cond: true},
	0xb9: {name: "avail", id: 3, operands: 1, cond: true},
	0xba: {name: "!here", id: 5, operands: 1, cond: true},
	0xbb: {name: "!has", id: 6, operands: 1, cond: true},
	0xbc: {name: "!avail", id: 12, operands: 1, cond: true},
	0xbd: {name: "exists", id: 13, operands: 1, cond: true},
	0xbe: {name: "!exists", id: 14, operands: 1, cond: true},
	0xbf: {name: "in", id: 4, operands: 1, cond: true},
	0xc0: {name: "!in", id: 7, operands: 1, cond: true},
	0xc1: {name: "set", id: 8, operands: 1, cond: true},
	0xc2: {name: "!set", id: 9, operands: 1, cond: true},
	0xc3: {name: "something", id: 10, cond: true},
	0xc4: {name: "nothing", id: 11, cond: true},
	0xc5: {name: "le", id: 15, operands: 1, cond: true},
	0xc6: {name: "gt", id: 16, operands: 1, cond: true},
	0xc7: {name: "eq", id: 19, operands: 1, cond: true},
	0xc8: {name: "!moved", id: 17, operands: 1, cond: true},
	0xc9: {name: "moved", id: 18, operands: 1, cond: true},

	0xca: {name: "--0xca--"},
	0xcb: {name: "--0xcb--"},
	0xcc: {name: "--0xcc--"},
	0xcd: {name: "--0xcd--"},
	0xce: {name: "--0xce--"},
	0xcf: {name: "--0xcf--"},
	0xd0: {name: "--0xd0--"},
	0xd1: {name: "--0xd1--"},
	0xd2: {name: "--0xd2--"},
	0xd3: {name: "--0xd3--"},

	0xd4: {name: "cls", id: 70},
	0xd5: {name: "pic", id: 89},
	0xd6: {name: "inv", id: 66},
	0xd7: {name: "!inv", id: cmdNop},
	0xd8: {name: "ignore", id: cmdNop},
	0xd9: {name: "success", id: cmdNop},
	0xda: {name: "try", id: cmdContinue, operands: 1},

	0xdb: {name: "get", id: 52, operands: 1},
	0xdc: {name: "drop", id: 53, operands: 1},
	0xdd: {name: "goto", id: 54, operands: 1},
	0xde: {name: "zap", id: 55, operands: 1},
	0xdf: {name: "on dark", id: 56},
	0xe0: {name: "off dark", id: 57},
	0xe1: {name: "set flag", id: 58, operands: 1},
	0xe2: {name: "clear flag", id: 60, operands: 1},
	0xe3: {name: "set flag 0", id: 67},
	0xe4: {name: "clear flag 0", id: 68},
	0xe5: {name: "die", id: 61},
	0xe6: {name: "move", id: 62, operands: 2, swap: true},
	0xe7: {name: "quit", id: 63},
	0xe8: {name: ".score", id: 65},
	0xe9: {name: ".inv", id: 66},
	0xea: {name: "refill", id: 69},
	0xeb: {name: "save", id: 71},
	0xec: {name: "swap", id: 72, operands: 2},
	0xed: {name: "steal", id: 74, operands: 1},
	0xee: {name: "same", id: 75, operands: 2},
	0xef: {name: "nop", id: cmdNop},
	0xf0: {name: ".room", id: 76},

	0xf2: {name: "add 1", id: 82, operands: 1},
	0xf3: {name: "sub", id: 77},
	0xf4: {name: ".timer", id: 78},
	0xf5: {name: "timer", id: 79, operands: 1},
	0xf6: {name: "add", id: 82, operands: 1},
	0xf7: {name: "sub", id: 83, operands: 1},
	0xf8: {name: "select_rv", id: 80},
	0xf9: {name: "swap_rv", id: 87, operands: 1},
	0xfa: {name: "swap counter", id: 81, operands: 1},
	0xfb: {name: ".noun", id: 84},
	0xfc: {name: ".noun_nl", id: 85},
	0xfd: {name: ".nl", id: 86},
	0xfe: {name: "delay", id: 88},
}
