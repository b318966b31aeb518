package models

// Packing bases of the canonical action row.
const (
	VocabBase     = 150
	ConditionBase = 20
	CommandBase   = 150
)

// Action is one canonical row of the rule table.
//
// Vocab packs verb*150+noun. Verb 0 marks an implicit row whose noun is a
// percentage chance. Each condition packs code+20*parameter; code 0 is not a
// test but supplies the parameter to the commands. Each command word packs
// two command ids as a*150+b.
type Action struct {
	Vocab     int    `yaml:"vocab"`
	Condition [5]int `yaml:"conditions,flow"`
	Command   [2]int `yaml:"commands,flow"`
}

// PackVocab returns the Vocab value addressing verb and noun.
func PackVocab(verb, noun int) int {
	return verb*VocabBase + noun
}

// UnpackVocab splits a Vocab value.
func UnpackVocab(v int) (verb, noun int) {
	return v / VocabBase, v % VocabBase
}

// PackCondition packs a condition code and its parameter.
func PackCondition(code, param int) int {
	return code + ConditionBase*param
}

// UnpackCondition splits a packed condition.
func UnpackCondition(v int) (code, param int) {
	return v % ConditionBase, v / ConditionBase
}

// PackCommands packs two command ids into one command word.
func PackCommands(a, b int) int {
	return a*CommandBase + b
}

// UnpackCommands splits a command word.
func UnpackCommands(v int) (a, b int) {
	return v / CommandBase, v % CommandBase
}

// Verb is the verb this row answers to, 0 for implicit rows.
func (a Action) Verb() int {
	v, _ := UnpackVocab(a.Vocab)
	return v
}

// Noun is the noun this row answers to. For implicit rows it is the chance
// in percent of the row firing.
func (a Action) Noun() int {
	_, n := UnpackVocab(a.Vocab)
	return n
}

// Commands returns the four command ids in execution order.
func (a Action) Commands() [4]int {
	c0, c1 := UnpackCommands(a.Command[0])
	c2, c3 := UnpackCommands(a.Command[1])
	return [4]int{c0, c1, c2, c3}
}

// NewAction builds a row from unpacked parts. Conditions and commands beyond
// the row capacity are ignored.
func NewAction(verb, noun int, conds [][2]int, cmds []int) Action {
	a := Action{Vocab: PackVocab(verb, noun)}
	for i, c := range conds {
		if i >= len(a.Condition) {
			break
		}
		a.Condition[i] = PackCondition(c[0], c[1])
	}
	var ids [4]int
	copy(ids[:], cmds)
	a.Command[0] = PackCommands(ids[0], ids[1])
	a.Command[1] = PackCommands(ids[2], ids[3])
	return a
}
