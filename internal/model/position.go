package model

// PositionInfo holds lot counts for one side of one symbol.
type PositionInfo struct {
	Position uint32 `json:"position"`
	Frozen   uint32 `json:"frozen"`
	Pending  uint32 `json:"pending"`
}

func (p PositionInfo) Empty() bool {
	return p.Position == 0 && p.Frozen == 0 && p.Pending == 0
}

// PositionData is the long and short book of a symbol.
type PositionData struct {
	Symbol Symbol       `json:"symbol"`
	Long   PositionInfo `json:"long_position"`
	Short  PositionInfo `json:"short_position"`
}

func (p PositionData) NetPosition() int32 {
	return int32(p.Long.Position) - int32(p.Short.Position)
}

func (p PositionData) Empty() bool {
	return p.Long.Empty() && p.Short.Empty()
}
