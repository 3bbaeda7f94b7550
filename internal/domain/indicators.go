package domain

import (
	"encoding/json"
	"strings"
)

// IndicatorSet is an insertion-ordered set of unique evidence strings.
// Values can be added but never removed; the zero value is ready to use.
type IndicatorSet struct {
	items []string
	index map[string]struct{}
}

// NewIndicatorSet returns a set seeded with the given values.
func NewIndicatorSet(values ...string) IndicatorSet {
	var s IndicatorSet
	s.Add(values...)
	return s
}

// Add inserts values that are not already present and returns how many were new.
// Blank values are ignored.
func (s *IndicatorSet) Add(values ...string) int {
	added := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if s.index == nil {
			s.index = make(map[string]struct{})
		}
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
		added++
	}
	return added
}

// Contains reports whether v is in the set.
func (s IndicatorSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of values in the set.
func (s IndicatorSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the values in insertion order.
func (s IndicatorSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Clone returns an independent copy of the set.
func (s IndicatorSet) Clone() IndicatorSet {
	return NewIndicatorSet(s.items...)
}

// MarshalJSON encodes the set as a JSON array (never null).
func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// UnmarshalJSON decodes a JSON array, dropping duplicates.
func (s *IndicatorSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewIndicatorSet(values...)
	return nil
}
