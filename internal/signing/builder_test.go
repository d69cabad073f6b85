package signing

import (
	"testing"

	"github.com/a3tai/docsigner/internal/analysis"
)

func TestBuildRequestsFromSignatureField(t *testing.T) {
	fields := []analysis.FormField{
		{
			ID:       "sig_field",
			Type:     analysis.FieldTypeSignature,
			Label:    "Signature",
			Value:    "Dana Levi",
			Position: analysis.Position{X: 100, Y: 200, Width: 180, Height: 40},
			Page:     2,
		},
	}
	artifacts := []SignatureData{
		{ID: "sig_field", Type: SignatureDrawing, Data: `[{"x":1,"y":2}]`},
	}

	requests := BuildRequests(fields, nil, artifacts, nil)

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	req := requests[0]
	if len(req.Points) != 1 {
		t.Fatalf("expected 1 point from artifact data, got %d", len(req.Points))
	}
	if req.Points[0].X != 1 || req.Points[0].Y != 2 {
		t.Errorf("expected point (1,2), got (%v,%v)", req.Points[0].X, req.Points[0].Y)
	}
	if req.X != 100 || req.Y != 200 {
		t.Errorf("expected field position, got (%v,%v)", req.X, req.Y)
	}
	if req.Page != 2 {
		t.Errorf("expected page 2, got %d", req.Page)
	}
}

func TestBuildRequestsSynthesizesStroke(t *testing.T) {
	fields := []analysis.FormField{
		{
			ID:       "sig_field",
			Type:     analysis.FieldTypeSignature,
			Value:    "Dana Levi",
			Position: analysis.Position{X: 50, Y: 60, Width: 200, Height: 50},
			Page:     1,
		},
	}
	// Typed artifact: data is not a point array.
	artifacts := []SignatureData{
		{ID: "sig_field", Type: SignatureTyped, Data: "Dana Levi"},
	}

	requests := BuildRequests(fields, nil, artifacts, nil)

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if len(requests[0].Points) != 5 {
		t.Errorf("expected synthesized 5-point stroke, got %d points", len(requests[0].Points))
	}
}

func TestBuildRequestsFromZones(t *testing.T) {
	zones := []analysis.SignatureZone{
		{ID: "zone1", Label: "Sign here", Position: analysis.Position{X: 72, Y: 300, Width: 150, Height: 40}, Page: 1},
	}
	keyed := map[string]SignatureData{
		"signature_zone1": {Type: SignatureDrawing, Data: `[{"x":3,"y":4},{"x":5,"y":6}]`},
	}

	requests := BuildRequests(nil, zones, nil, keyed)

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if len(requests[0].Points) != 2 {
		t.Errorf("expected 2 points from keyed artifact, got %d", len(requests[0].Points))
	}
}

func TestBuildRequestsPositionDedupe(t *testing.T) {
	// A field and a zone describing the same physical location with
	// different ids produce one request, from the field.
	pos := analysis.Position{X: 100, Y: 100, Width: 150, Height: 40}
	fields := []analysis.FormField{
		{ID: "field_sig", Type: analysis.FieldTypeSignature, Value: "Dana", Position: pos, Page: 1},
	}
	zones := []analysis.SignatureZone{
		{ID: "zone_sig", Position: pos, Page: 1},
	}
	artifacts := []SignatureData{
		{ID: "field_sig", Type: SignatureDrawing, Data: `[{"x":9,"y":9}]`},
	}
	keyed := map[string]SignatureData{
		"signature_zone_sig": {Type: SignatureDrawing, Data: `[{"x":1,"y":1},{"x":2,"y":2}]`},
	}

	requests := BuildRequests(fields, zones, artifacts, keyed)

	if len(requests) != 1 {
		t.Fatalf("expected 1 deduplicated request, got %d", len(requests))
	}
	if len(requests[0].Points) != 1 || requests[0].Points[0].X != 9 {
		t.Error("expected the field-derived request to win the position tie")
	}
}

func TestBuildRequestsEmptyInputsFallback(t *testing.T) {
	requests := BuildRequests(nil, nil, nil, nil)

	if len(requests) != 1 {
		t.Fatalf("expected exactly one fallback request, got %d", len(requests))
	}
	req := requests[0]
	if len(req.Points) == 0 {
		t.Error("fallback request must carry points")
	}
	if req.Page < 1 {
		t.Errorf("fallback request has invalid page %d", req.Page)
	}
	if req.Width <= 0 || req.Height <= 0 {
		t.Error("fallback request must have positive dimensions")
	}
}

func TestBuildRequestsIgnoresUnfilledSignatureFields(t *testing.T) {
	fields := []analysis.FormField{
		{ID: "empty_sig", Type: analysis.FieldTypeSignature, Value: "", Page: 1},
		{ID: "text", Type: analysis.FieldTypeText, Value: "hello", Page: 1},
	}

	requests := BuildRequests(fields, nil, nil, nil)

	// Neither field qualifies, so the fallback kicks in.
	if len(requests) != 1 {
		t.Fatalf("expected fallback request only, got %d", len(requests))
	}
}

func TestBuildRequestsDefaultArtifact(t *testing.T) {
	fields := []analysis.FormField{
		{ID: "sig1", Type: analysis.FieldTypeSignature, Value: "Dana",
			Position: analysis.Position{X: 10, Y: 20}, Page: 1},
	}
	artifacts := []SignatureData{
		{ID: "other", Type: SignatureDrawing, Data: `[{"x":7,"y":8}]`, IsDefault: true},
	}

	requests := BuildRequests(fields, nil, artifacts, nil)

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if len(requests[0].Points) != 1 || requests[0].Points[0].X != 7 {
		t.Error("expected the default artifact's points to be used")
	}
}

func TestBuildRequestsAlwaysNonEmpty(t *testing.T) {
	inputs := [][]analysis.FormField{
		nil,
		{},
		{{ID: "a", Type: analysis.FieldTypeText}},
	}
	for _, fields := range inputs {
		requests := BuildRequests(fields, nil, nil, nil)
		if len(requests) == 0 {
			t.Fatal("BuildRequests returned an empty array")
		}
		for _, req := range requests {
			if len(req.Points) == 0 {
				t.Error("request with empty points")
			}
		}
	}
}
