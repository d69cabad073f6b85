// Package signing binds signer data to detected signature zones and
// submits the result to the signing backend. Building signature requests
// is total: a document that reached this stage always yields at least
// one placement.
package signing

// SignatureType describes how a signature was captured
type SignatureType string

const (
	SignatureTyped   SignatureType = "typed"
	SignatureImage   SignatureType = "image"
	SignatureDrawing SignatureType = "drawing"
)

// SignatureData is one saved signature of a user. Data holds the
// payload for the type: a JSON point array for drawings, a data URL for
// images, the rendered name for typed signatures.
type SignatureData struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      SignatureType `json:"type"`
	Data      string        `json:"data"`
	IsDefault bool          `json:"isDefault"`
	X         float64       `json:"x,omitempty"`
	Y         float64       `json:"y,omitempty"`
	Page      int           `json:"page,omitempty"`
}

// SignaturePoint is one stroke sample of a drawn signature
type SignaturePoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pressure  float64 `json:"pressure,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// SignatureRequest is one concrete placement the backend stamps onto the
// document
type SignatureRequest struct {
	Points []SignaturePoint `json:"points"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
	Color  string           `json:"color"`
	Page   int              `json:"page"`
}
