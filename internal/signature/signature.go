package signature

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWeight is applied when a signature record omits its weight.
const DefaultWeight = 1.0

var (
	ErrUnknownType   = errors.New("unknown signature type")
	ErrMissingValue  = errors.New("signature value is missing")
	ErrInvalidWeight = errors.New("signature weight must be positive")
)

// Signature pairs a matching rule with the score it contributes.
type Signature struct {
	Kind   Kind
	Weight float64
}

// New builds the Kind for a wire discriminator.
func New(typ, value string) (Kind, error) {
	ctor, ok := constructors[strings.TrimSpace(typ)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if value == "" {
		return nil, ErrMissingValue
	}
	return ctor(value), nil
}

// Matches reports whether the lower-cased path satisfies the signature.
func (s Signature) Matches(lowerPath string) bool {
	return s.Kind != nil && s.Kind.Matches(lowerPath)
}

func (s Signature) String() string {
	if s.Kind == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s=%s (%.2f)", s.Kind.Type(), s.Kind.Value(), s.Weight)
}

// record is the serialized shape: {"type": ..., "value": ..., "weight": ...}.
type record struct {
	Type   string   `json:"type" yaml:"type"`
	Value  *string  `json:"value,omitempty" yaml:"value,omitempty"`
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

func (r record) toSignature() (Signature, error) {
	if r.Value == nil {
		if _, ok := constructors[strings.TrimSpace(r.Type)]; !ok {
			return Signature{}, fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
		}
		return Signature{}, ErrMissingValue
	}
	kind, err := New(r.Type, *r.Value)
	if err != nil {
		return Signature{}, err
	}
	weight := DefaultWeight
	if r.Weight != nil {
		weight = *r.Weight
		if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return Signature{}, fmt.Errorf("%w: got %v", ErrInvalidWeight, weight)
		}
	}
	return Signature{Kind: kind, Weight: weight}, nil
}

func (s Signature) toRecord() record {
	r := record{}
	if s.Kind != nil {
		v := s.Kind.Value()
		r.Type = s.Kind.Type()
		r.Value = &v
	}
	w := s.Weight
	r.Weight = &w
	return r
}

// UnmarshalJSON decodes and validates one signature record.
func (s *Signature) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	sig, err := r.toSignature()
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

// MarshalJSON encodes the signature in its wire form.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toRecord())
}

// UnmarshalYAML decodes and validates one signature record.
func (s *Signature) UnmarshalYAML(node *yaml.Node) error {
	var r record
	if err := node.Decode(&r); err != nil {
		return err
	}
	sig, err := r.toSignature()
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = sig
	return nil
}

// MarshalYAML encodes the signature in its wire form.
func (s Signature) MarshalYAML() (any, error) {
	return s.toRecord(), nil
}
