// Package sysmsg holds the interpreter's own messages: direction names,
// responses of the built-in verbs and the turn loop. Two English tables exist,
// one phrased "I am ..." and one phrased "You are ...".
package sysmsg

// ID names one system message.
type ID int

const (
	North ID = iota
	South
	East
	West
	Up
	Down
	PlayAgain
	IveStored
	Treasures
	OnAScaleThatRates
	Dropped
	Taken
	OK
	YouveSolvedIt
	IDontUnderstand
	YouCantDoThatYet
	Huh
	Direction
	YouHaventGotIt
	YouHaveIt
	YouDontSeeIt
	ThatsBeyondMyPower
	DangerousToMoveInDark
	YouFellAndBrokeYourNeck
	YouCantGoThatWay
	ImDead
	LightHasRunOut
	LightRunsOutIn
	TurnsLeft
	YoureCarryingTooMuch
	IAmCarrying
	WhatNow
	TooDarkToSee
	YouAre
	YouSee
	Exits
	ExitsDelimiter
	None
	Nothing
	ItemDelimiter
	MessageDelimiter
	LightGrowingDim
	Saved
	Restored
	CantSave
	AreYouSure
	MoveUndone
	CantUndo
	CantUndoOnFirstTurn
	StateSaved
	StateRestored
	NoSavedState
	TranscriptOn
	TranscriptOff
	NothingHereToTake
	YouHaveNothing
	UnknownWord
	Yes
	No
	numMessages
)

// Table is a complete set of system messages.
type Table [numMessages]string

// Get returns message id.
func (t *Table) Get(id ID) string {
	if id < 0 || id >= numMessages {
		return ""
	}
	return t[id]
}

// DirectionName returns the name of direction d, 1 to 6.
func (t *Table) DirectionName(d int) string {
	if d < 1 || d > 6 {
		return ""
	}
	return t[North+ID(d-1)]
}

// Override replaces the direction names with the ones decoded from a game
// image. Empty names are ignored.
func (t *Table) Override(directions []string) {
	for i, d := range directions {
		if i >= 6 {
			break
		}
		if d != "" {
			t[North+ID(i)] = d
		}
	}
}

// English returns the "I am" table, or the "You are" table when youAre is set.
func English(youAre bool) *Table {
	t := iAm
	if youAre {
		for id, s := range youAreDiffs {
			t[id] = s
		}
	}
	return &t
}

var iAm = Table{
	North:                   "NORTH",
	South:                   "SOUTH",
	East:                    "EAST",
	West:                    "WEST",
	Up:                      "UP",
	Down:                    "DOWN",
	PlayAgain:               "The game is now over.\nAnother game? ",
	IveStored:               "I've stored",
	Treasures:               "treasures.",
	OnAScaleThatRates:       " On a scale of 0 to 100, that rates",
	Dropped:                 "Dropped.",
	Taken:                   "Taken.",
	OK:                      "O.K. ",
	YouveSolvedIt:           "Well done.\nI've solved it!\n",
	IDontUnderstand:         "I don't understand your command. ",
	YouCantDoThatYet:        "I can't do that yet. ",
	Huh:                     "Huh? ",
	Direction:               "Give me a direction too. ",
	YouHaventGotIt:          "I'm not carrying it. ",
	YouHaveIt:               "I already have it. ",
	YouDontSeeIt:            "I don't see it here. ",
	ThatsBeyondMyPower:      "It's beyond my power to do that. ",
	DangerousToMoveInDark:   "Dangerous to move in the dark! ",
	YouFellAndBrokeYourNeck: "I fell and broke my neck! ",
	YouCantGoThatWay:        "I can't go in that direction. ",
	ImDead:                  "I'm dead! ",
	LightHasRunOut:          "Light has run out! ",
	LightRunsOutIn:          "Light runs out in",
	TurnsLeft:               "turns. ",
	YoureCarryingTooMuch:    "I'm carrying too much. Try: TAKE INVENTORY. ",
	IAmCarrying:             "I'm carrying:\n",
	WhatNow:                 "\nTell me what to do ? ",
	TooDarkToSee:            "I can't see. It is too dark!\n",
	YouAre:                  "I'm in a ",
	YouSee:                  "\nI can also see: ",
	Exits:                   "\nObvious exits: ",
	ExitsDelimiter:          ", ",
	None:                    "none",
	Nothing:                 "Nothing.\n",
	ItemDelimiter:           " - ",
	MessageDelimiter:        " ",
	LightGrowingDim:         "Your light is growing dim. ",
	Saved:                   "Saved.\n",
	Restored:                "Restored.\n",
	CantSave:                "Save failed. ",
	AreYouSure:              "Are you sure? ",
	MoveUndone:              "Move undone. ",
	CantUndo:                "No more undo states stored. ",
	CantUndoOnFirstTurn:     "You can't undo on the first turn. ",
	StateSaved:              "State saved.\n",
	StateRestored:           "State restored.\n",
	NoSavedState:            "No saved state exists.\n",
	TranscriptOn:            "Transcript is now on.\n",
	TranscriptOff:           "Transcript is now off.\n",
	NothingHereToTake:       "Nothing here to take.\n",
	YouHaveNothing:          "I carry nothing.\n",
	UnknownWord:             "I don't know the word ",
	Yes:                     "Y",
	No:                      "N",
}

var youAreDiffs = map[ID]string{
	IveStored:               "You have stored",
	YouveSolvedIt:           "Well done.\nYou've solved it!\n",
	IDontUnderstand:         "You use word(s) I don't know! ",
	YouCantDoThatYet:        "You can't do that yet. ",
	YouHaventGotIt:          "You're not carrying it. ",
	YouHaveIt:               "You already have it. ",
	YouDontSeeIt:            "You don't see it here. ",
	YouFellAndBrokeYourNeck: "You fell and broke your neck! ",
	YouCantGoThatWay:        "You can't go in that direction. ",
	ImDead:                  "You are dead. ",
	YoureCarryingTooMuch:    "You are carrying too much. ",
	IAmCarrying:             "You are carrying:\n",
	TooDarkToSee:            "You can't see. It is too dark!\n",
	YouAre:                  "You are ",
	YouSee:                  "\nYou can also see: ",
	YouHaveNothing:          "You carry nothing.\n",
}
