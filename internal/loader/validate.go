package loader

import (
	"github.com/pkg/errors"

	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
)

// Kinds of id a condition or command parameter refers to.
type paramKind int

const (
	anyParam paramKind = iota
	itemParam
	roomParam
	destParam // a room, or the carried sentinel
)

// conditionParams gives the parameter kind of the condition codes that
// refer to items or rooms.
var conditionParams = map[int]paramKind{
	1: itemParam, 2: itemParam, 3: itemParam, 5: itemParam, 6: itemParam,
	12: itemParam, 13: itemParam, 14: itemParam, 17: itemParam, 18: itemParam,
	4: roomParam, 7: roomParam,
}

// commandParams lists the parameters each command consumes, in order.
var commandParams = map[int][]paramKind{
	52: {itemParam},
	53: {itemParam},
	54: {roomParam},
	55: {itemParam},
	58: {anyParam},
	59: {itemParam},
	60: {anyParam},
	62: {itemParam, destParam},
	72: {itemParam, itemParam},
	74: {itemParam},
	75: {itemParam, itemParam},
	79: {anyParam},
	81: {anyParam},
	82: {anyParam},
	83: {anyParam},
	87: {anyParam},
	89: {anyParam},
	90: {anyParam},
}

// Validate checks that every item and room id an action row refers to
// exists. Command parameters are checked by replaying how the rule VM hands
// them out. It fails with an error wrapping gameerr.ErrMalformedAction.
func Validate(w *models.World) error {
	nItems, nRooms := len(w.Items)-1, len(w.Rooms)-1
	check := func(row int, kind paramKind, p int) error {
		switch kind {
		case itemParam:
			if p > nItems {
				return errors.Wrapf(gameerr.ErrMalformedAction, "row %d: item %d of %d", row, p, nItems)
			}
		case roomParam:
			if p > nRooms {
				return errors.Wrapf(gameerr.ErrMalformedAction, "row %d: room %d of %d", row, p, nRooms)
			}
		case destParam:
			if p > nRooms && p != models.Carried {
				return errors.Wrapf(gameerr.ErrMalformedAction, "row %d: room %d of %d", row, p, nRooms)
			}
		}
		return nil
	}

	for i, a := range w.Actions {
		var params []int
		for _, c := range a.Condition {
			code, p := models.UnpackCondition(c)
			if code == 0 {
				params = append(params, p)
				continue
			}
			if err := check(i, conditionParams[code], p); err != nil {
				return err
			}
		}
		for _, cmd := range a.Commands() {
			for _, kind := range commandParams[cmd] {
				if len(params) == 0 {
					// A missing parameter is reported when the row runs.
					break
				}
				p := params[0]
				params = params[1:]
				if err := check(i, kind, p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
