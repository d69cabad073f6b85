package signing

import (
	"encoding/json"
	"time"

	"github.com/a3tai/docsigner/internal/analysis"
)

const (
	defaultStrokeWidth  = 150.0
	defaultStrokeHeight = 50.0
	defaultInkColor     = "#000080"

	// Fallback placement used when no field or zone produced a request.
	fallbackX    = 72.0
	fallbackY    = 120.0
	fallbackPage = 1
)

// BuildRequests binds signature artifacts to the document's signature
// fields and zones and returns the placements to send to the backend.
// The result is always non-empty: when neither fields nor zones yield a
// placement, a single default request at a fixed position is emitted.
//
// Matching runs in two passes. First, every signature-typed field with a
// value is bound to the artifact sharing its id (or the default
// artifact). Second, every zone whose position is not already covered is
// bound to a user-supplied artifact keyed "signature_<zoneID>". Positions
// are deduplicated by (x, y) equality because a field and a zone may
// describe the same physical spot under different ids; when they do, the
// field-derived request wins.
func BuildRequests(
	fields []analysis.FormField,
	zones []analysis.SignatureZone,
	artifacts []SignatureData,
	keyed map[string]SignatureData,
) []SignatureRequest {
	requests := []SignatureRequest{}
	covered := map[positionKey]bool{}

	byID := make(map[string]SignatureData, len(artifacts))
	var defaultArtifact *SignatureData
	for i := range artifacts {
		artifact := artifacts[i]
		if artifact.ID != "" {
			byID[artifact.ID] = artifact
		}
		if artifact.IsDefault && defaultArtifact == nil {
			defaultArtifact = &artifacts[i]
		}
	}

	for i := range fields {
		field := &fields[i]
		if field.Type != analysis.FieldTypeSignature || field.Value == "" {
			continue
		}

		artifact, ok := byID[field.ID]
		if !ok && defaultArtifact != nil {
			artifact = *defaultArtifact
		}

		request := requestAt(field.Position, field.Page, artifact.Data)
		key := positionKey{request.X, request.Y}
		if covered[key] {
			continue
		}
		covered[key] = true
		requests = append(requests, request)
	}

	for i := range zones {
		zone := &zones[i]

		var data string
		if keyed != nil {
			if artifact, ok := keyed["signature_"+zone.ID]; ok {
				data = artifact.Data
			}
		}
		if data == "" && defaultArtifact != nil {
			data = defaultArtifact.Data
		}

		request := requestAt(zone.Position, zone.Page, data)
		key := positionKey{request.X, request.Y}
		if covered[key] {
			continue
		}
		covered[key] = true
		requests = append(requests, request)
	}

	if len(requests) == 0 {
		requests = append(requests, fallbackRequest(defaultArtifact))
	}

	return requests
}

type positionKey struct {
	x, y float64
}

// requestAt builds one placement at the given position, decoding the
// artifact data as stroke points when possible
func requestAt(pos analysis.Position, page int, data string) SignatureRequest {
	width := pos.Width
	if width <= 0 {
		width = defaultStrokeWidth
	}
	height := pos.Height
	if height <= 0 {
		height = defaultStrokeHeight
	}
	if page < 1 {
		page = 1
	}

	return SignatureRequest{
		Points: strokePoints(data, width, height),
		X:      pos.X,
		Y:      pos.Y,
		Width:  width,
		Height: height,
		Color:  defaultInkColor,
		Page:   page,
	}
}

func fallbackRequest(defaultArtifact *SignatureData) SignatureRequest {
	data := ""
	if defaultArtifact != nil {
		data = defaultArtifact.Data
	}
	return requestAt(analysis.Position{
		X:      fallbackX,
		Y:      fallbackY,
		Width:  defaultStrokeWidth,
		Height: defaultStrokeHeight,
	}, fallbackPage, data)
}

// strokePoints decodes data as a JSON point array; anything else gets a
// synthesized five-point zig-zag so the request always carries geometry
func strokePoints(data string, width, height float64) []SignaturePoint {
	if data != "" {
		var points []SignaturePoint
		if err := json.Unmarshal([]byte(data), &points); err == nil && len(points) > 0 {
			now := time.Now().UnixMilli()
			for i := range points {
				if points[i].Timestamp == 0 {
					points[i].Timestamp = now + int64(i)
				}
			}
			return points
		}
	}
	return zigzagStroke(width, height)
}

// zigzagStroke is the placeholder geometry for typed and image
// signatures
func zigzagStroke(width, height float64) []SignaturePoint {
	now := time.Now().UnixMilli()
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	ys := []float64{0.8, 0.2, 0.8, 0.2, 0.8}

	points := make([]SignaturePoint, len(xs))
	for i := range xs {
		points[i] = SignaturePoint{
			X:         xs[i] * width,
			Y:         ys[i] * height,
			Pressure:  0.5,
			Timestamp: now + int64(i*20),
		}
	}
	return points
}
