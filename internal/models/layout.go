package models

import (
	"encoding/json"
	"fmt"
)

// LayoutPosition is the internal typed form of a bed position from the
// floor-plan editor. Geometry fields are pointers so validation can tell
// a missing value from zero. Unknown fields sent by the editor are dropped
// at decode time.
type LayoutPosition struct {
	ID       string   `json:"id"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// LayoutDocument is a room's layout blob resolved into one shape.
// Extra keeps non-bed keys (dimensions, furniture, doors) opaque so a
// round trip never loses what the editor stored.
type LayoutDocument struct {
	Positions []LayoutPosition
	Extra     map[string]json.RawMessage
}

// layoutElement is the legacy document shape: a flat elements array
// where beds are tagged by type.
type layoutElement struct {
	LayoutPosition
	Type string `json:"type"`
}

// DecodeLayoutDocument resolves both stored layout shapes (a bedPositions
// array, or a legacy elements array filtered by the "bed" type tag) into
// a LayoutDocument. The union is resolved here once; nothing past this
// boundary sees the raw shapes.
func DecodeLayoutDocument(raw []byte) (*LayoutDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("decode layout document: %w", err)
	}

	doc := &LayoutDocument{Extra: make(map[string]json.RawMessage)}

	if positions, ok := top["bedPositions"]; ok {
		if err := json.Unmarshal(positions, &doc.Positions); err != nil {
			return nil, fmt.Errorf("decode bedPositions: %w", err)
		}
	} else if elements, ok := top["elements"]; ok {
		var all []layoutElement
		if err := json.Unmarshal(elements, &all); err != nil {
			return nil, fmt.Errorf("decode elements: %w", err)
		}
		for _, el := range all {
			if el.Type == "bed" {
				doc.Positions = append(doc.Positions, el.LayoutPosition)
			}
		}
	}

	for key, value := range top {
		if key == "bedPositions" || key == "elements" {
			continue
		}
		doc.Extra[key] = value
	}

	return doc, nil
}

// Encode writes the document back in the normalized shape.
func (d *LayoutDocument) Encode() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Extra)+1)
	for key, value := range d.Extra {
		out[key] = value
	}
	positions := d.Positions
	if positions == nil {
		positions = []LayoutPosition{}
	}
	out["bedPositions"] = positions
	return json.Marshal(out)
}

// PositionDisplay is a layout position overlaid with live registry state
// for the floor-plan view.
type PositionDisplay struct {
	ID               string    `json:"id"`
	X                float64   `json:"x"`
	Y                float64   `json:"y"`
	Width            float64   `json:"width"`
	Height           float64   `json:"height"`
	Rotation         float64   `json:"rotation"`
	Matched          bool      `json:"matched"`
	BedID            string    `json:"bed_id,omitempty"`
	Status           BedStatus `json:"status"`
	OccupantName     string    `json:"occupant_name,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	MonthlyRate      float64   `json:"monthly_rate,omitempty"`
	MaintenanceNotes string    `json:"maintenance_notes,omitempty"`
	Color            string    `json:"color"`
}
