package models

// Point is a canvas coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a freehand path. Points are append-only until the whole stroke is erased.
type Stroke struct {
	// ID is the server-generated identifier
	ID string `json:"id"`

	// OwnerNumber is the public number of the participant who drew it
	OwnerNumber int `json:"ownerNumber"`

	// Color is the client-chosen stroke color
	Color string `json:"color"`

	// Width is the stroke width in canvas units
	Width float64 `json:"width"`

	// Points is the ordered path
	Points []Point `json:"points"`

	// SectionID tags content drawn inside a locked section; empty means untagged
	SectionID string `json:"sectionId,omitempty"`
}

// Label is a positioned text element. Labels are created atomically.
type Label struct {
	ID          string  `json:"id"`
	OwnerNumber int     `json:"ownerNumber"`
	Content     string  `json:"content"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color"`
	Size        float64 `json:"size"`
	SectionID   string  `json:"sectionId,omitempty"`
}
