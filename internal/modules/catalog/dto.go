package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"
)

type CreateLabRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type CreateInstrumentRequest struct {
	Name    string `json:"instrument_name" binding:"required,max=128"`
	LabName string `json:"lab_name" binding:"required,max=128"`
	Working *bool  `json:"working"`
}

// InstrumentPatch holds the mutable instrument fields. Nil means "keep".
type InstrumentPatch struct {
	Name    *string
	LabName *string
	Working *bool
}

// ParseInstrumentPatch decodes an update body field by field. Keys outside
// the mutable set are rejected, so ids can never be overwritten.
func ParseInstrumentPatch(raw map[string]json.RawMessage) (InstrumentPatch, error) {
	var p InstrumentPatch
	if len(raw) == 0 {
		return p, ErrEmptyPatch
	}

	var unknown []string
	for key, val := range raw {
		switch key {
		case "instrument_name":
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return p, apperr.Validation("instrument_name must be a string")
			}
			if strings.TrimSpace(s) == "" {
				return p, apperr.Validation("instrument_name must not be empty")
			}
			p.Name = &s
		case "lab_name":
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return p, apperr.Validation("lab_name must be a string")
			}
			if strings.TrimSpace(s) == "" {
				return p, apperr.Validation("lab_name must not be empty")
			}
			p.LabName = &s
		case "working":
			var b bool
			if err := json.Unmarshal(val, &b); err != nil {
				return p, apperr.Validation("working must be a boolean")
			}
			p.Working = &b
		default:
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return InstrumentPatch{}, apperr.Validation(fmt.Sprintf("unknown fields: %s", strings.Join(unknown, ", ")))
	}
	return p, nil
}

// mergeInstrumentPatch applies p onto a copy of cur. labID is the resolved
// id of p.LabName and is only read when p.LabName is set.
func mergeInstrumentPatch(cur domain.Instrument, p InstrumentPatch, labID int64) domain.Instrument {
	out := cur
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.LabName != nil {
		out.LabID = labID
		out.LabName = strings.TrimSpace(*p.LabName)
	}
	if p.Working != nil {
		out.Working = *p.Working
	}
	return out
}
