package nutrition

import (
	"fmt"
	"strings"
)

// BodyDescriptor is one step of the five-point qualitative body-fat scale used
// during onboarding. The zero value means "not answered".
type BodyDescriptor int

const (
	DescriptorUnset BodyDescriptor = iota
	DescriptorWellDefined
	DescriptorSlightContour
	DescriptorNormal
	DescriptorThinFatLayer
	DescriptorVisibleFat
)

type descriptorEntry struct {
	label string
	score int
}

// descriptorTable 是描述词到分值的固定映射，顺序即问卷选项顺序
var descriptorTable = map[BodyDescriptor]descriptorEntry{
	DescriptorWellDefined:   {label: "Bem definido", score: -4},
	DescriptorSlightContour: {label: "Leve contorno", score: -1},
	DescriptorNormal:        {label: "Normal", score: 1},
	DescriptorThinFatLayer:  {label: "Pequena camada de gordura", score: 4},
	DescriptorVisibleFat:    {label: "Gordura bastante evidente", score: 7},
}

// Descriptors lists the answerable descriptors in questionnaire order.
func Descriptors() []BodyDescriptor {
	return []BodyDescriptor{
		DescriptorWellDefined,
		DescriptorSlightContour,
		DescriptorNormal,
		DescriptorThinFatLayer,
		DescriptorVisibleFat,
	}
}

// Score returns the signed contribution of d. Unset contributes 0.
func (d BodyDescriptor) Score() int {
	return descriptorTable[d].score
}

// String returns the questionnaire label, empty for Unset.
func (d BodyDescriptor) String() string {
	return descriptorTable[d].label
}

// MarshalText encodes the descriptor as its label.
func (d BodyDescriptor) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts a label (case-insensitive) or an empty string.
func (d *BodyDescriptor) UnmarshalText(text []byte) error {
	parsed, err := ParseBodyDescriptor(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseBodyDescriptor maps a label to its descriptor. Empty input yields
// DescriptorUnset; anything else that is not in the table is an error.
func ParseBodyDescriptor(label string) (BodyDescriptor, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return DescriptorUnset, nil
	}
	for _, d := range Descriptors() {
		if strings.EqualFold(descriptorTable[d].label, trimmed) {
			return d, nil
		}
	}
	return DescriptorUnset, fmt.Errorf("unknown body descriptor %q", label)
}
