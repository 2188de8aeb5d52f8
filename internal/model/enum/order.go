package enum

// Direction long, short
type Direction uint8

const (
	DirectionUnknown Direction = iota
	DirectionLong
	DirectionShort
	_direction_end
)

var directionNames = [...]string{
	DirectionUnknown: "UNKNOWN",
	DirectionLong:    "LONG",
	DirectionShort:   "SHORT",
}

func (d Direction) IsAvailable() bool {
	return d > DirectionUnknown && d < _direction_end
}

func (d Direction) String() string {
	if d >= _direction_end {
		return directionNames[DirectionUnknown]
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	*d = Direction(parseName(directionNames[:], string(text)))
	return nil
}

// Offset open, close, close today, close yesterday
type Offset uint8

const (
	OffsetUnknown Offset = iota
	OffsetOpen
	OffsetClose
	OffsetCloseToday
	OffsetCloseYesterday
	_offset_end
)

var offsetNames = [...]string{
	OffsetUnknown:        "UNKNOWN",
	OffsetOpen:           "OPEN",
	OffsetClose:          "CLOSE",
	OffsetCloseToday:     "CLOSE_TD",
	OffsetCloseYesterday: "CLOSE_YD",
}

func (o Offset) IsAvailable() bool {
	return o > OffsetUnknown && o < _offset_end
}

// IsClose reports whether the offset consumes an existing position.
func (o Offset) IsClose() bool {
	return o == OffsetClose || o == OffsetCloseToday || o == OffsetCloseYesterday
}

func (o Offset) String() string {
	if o >= _offset_end {
		return offsetNames[OffsetUnknown]
	}
	return offsetNames[o]
}

func (o Offset) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Offset) UnmarshalText(text []byte) error {
	*o = Offset(parseName(offsetNames[:], string(text)))
	return nil
}

// ErrorType insert error, cancel error
type ErrorType uint8

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeOrderInsert
	ErrorTypeOrderCancel
	_error_type_end
)

var errorTypeNames = [...]string{
	ErrorTypeUnknown:     "UNKNOWN",
	ErrorTypeOrderInsert: "ORDER_INSERT_ERROR",
	ErrorTypeOrderCancel: "ORDER_CANCEL_ERROR",
}

func (e ErrorType) IsAvailable() bool {
	return e > ErrorTypeUnknown && e < _error_type_end
}

func (e ErrorType) String() string {
	if e >= _error_type_end {
		return errorTypeNames[ErrorTypeUnknown]
	}
	return errorTypeNames[e]
}

func (e ErrorType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *ErrorType) UnmarshalText(text []byte) error {
	*e = ErrorType(parseName(errorTypeNames[:], string(text)))
	return nil
}
