package models

type User struct {
	Username     string
	PasswordHash string
	Created      int64
}

// StrokeSegment is one relayed line segment. Coordinates are normalized
// to [0,1] of the drawing surface so clients with different viewport
// sizes render proportionally identical strokes.
type StrokeSegment struct {
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
	Mode  string  `json:"mode"`
	Color string  `json:"color"`
}

const (
	ModeDraw  = "draw"
	ModeErase = "erase"
)

// Snapshot is an opaque encoded image saved by its owner under a short
// id. Immutable once created; a new save always yields a new id.
type Snapshot struct {
	Id      string
	Owner   string
	Payload []byte
	Created int64
}

type CanvasSurface struct {
	Ordinal int
	Created int64
}
