package dataset

import (
	"strings"

	"github.com/xtxerr/img2shard/internal/errors"
)

// CaptionField names the sidecar attribute used as the item text.
type CaptionField string

const (
	CaptionCogVLM CaptionField = "cogvlm_caption"
	CaptionLLaVA  CaptionField = "llava_caption"
	CaptionAltTxt CaptionField = "alt_txt"
)

// DefaultCaption is used when no caption field is configured.
const DefaultCaption = CaptionCogVLM

// CaptionFields returns the recognized caption fields in display order.
func CaptionFields() []CaptionField {
	return []CaptionField{CaptionCogVLM, CaptionLLaVA, CaptionAltTxt}
}

// String returns the sidecar attribute name.
func (c CaptionField) String() string {
	return string(c)
}

// Valid reports whether c is one of the recognized caption fields.
func (c CaptionField) Valid() bool {
	switch c {
	case CaptionCogVLM, CaptionLLaVA, CaptionAltTxt:
		return true
	}
	return false
}

// ParseCaptionField parses a caption field name. Unknown names are rejected
// with ErrValidation.
func ParseCaptionField(s string) (CaptionField, error) {
	c := CaptionField(s)
	if !c.Valid() {
		names := make([]string, 0, 3)
		for _, f := range CaptionFields() {
			names = append(names, f.String())
		}
		return "", errors.NewInvalidValue("caption", s, "must be one of "+strings.Join(names, ", "))
	}
	return c, nil
}
