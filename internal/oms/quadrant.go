package oms

import (
	"rookie/internal/model"
	"rookie/internal/model/enum"
)

// slot is the pair of counters an order moves on one position side.
type slot struct {
	reserved *uint32
	position *uint32
	open     bool
}

// slotOf maps an order shape onto its reservation quadrant.
//
//	LONG  OPEN  -> long.pending
//	LONG  CLOSE -> short.frozen
//	SHORT OPEN  -> short.pending
//	SHORT CLOSE -> long.frozen
func slotOf(p *model.PositionData, direction enum.Direction, offset enum.Offset) (slot, bool) {
	switch {
	case direction == enum.DirectionLong && offset == enum.OffsetOpen:
		return slot{reserved: &p.Long.Pending, position: &p.Long.Position, open: true}, true
	case direction == enum.DirectionLong && offset.IsClose():
		return slot{reserved: &p.Short.Frozen, position: &p.Short.Position}, true
	case direction == enum.DirectionShort && offset == enum.OffsetOpen:
		return slot{reserved: &p.Short.Pending, position: &p.Short.Position, open: true}, true
	case direction == enum.DirectionShort && offset.IsClose():
		return slot{reserved: &p.Long.Frozen, position: &p.Long.Position}, true
	default:
		return slot{}, false
	}
}

// sub subtracts saturating at zero and reports an underflow.
func sub(counter *uint32, v uint32) bool {
	if *counter < v {
		*counter = 0
		return false
	}
	*counter -= v
	return true
}
