package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Pathway is the unit of persistence: a named, ordered collection of Steps.
//
// A Pathway is saved and deleted as a whole record; its Steps and their
// Bookmarks are serialized inline.
type Pathway struct {
	// ID is opaque and stable. Once assigned it never changes for the life
	// of the record.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Name string `json:"name" yaml:"name"`

	// Created is a unix-millisecond timestamp. It doubles as an identity
	// fallback and as the ordering tie-break.
	Created int64 `json:"created,omitempty" yaml:"created,omitempty"`

	// SortOrder is the dense, zero-based display position. Nil means the
	// record predates ordering and sorts after every ordered record.
	SortOrder *int `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`

	Steps []Step `json:"steps" yaml:"steps"`

	// Extra holds fields written by other clients. They are stored and
	// returned untouched.
	Extra map[string]any `json:"-" yaml:",inline"`

	createdRaw json.RawMessage
}

// Step is an ordered grouping of Bookmarks within a Pathway.
type Step struct {
	Name      string     `json:"name" yaml:"name"`
	Bookmarks []Bookmark `json:"bookmarks" yaml:"bookmarks"`

	Extra map[string]any `json:"-" yaml:",inline"`
}

// UnmarshalJSON accepts created as a number or a date string and keeps
// unknown fields in Extra.
func (p *Pathway) UnmarshalJSON(data []byte) error {
	type plain Pathway
	*p = Pathway{}
	aux := struct {
		*plain
		Created json.RawMessage `json:"created,omitempty"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Created, p.createdRaw = decodeMillis(aux.Created)

	extra, err := unknownFields(data, pathwayFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	return nil
}

// MarshalJSON writes created back in the form it arrived in and merges
// Extra into the object.
func (p Pathway) MarshalJSON() ([]byte, error) {
	type plain Pathway
	aux := struct {
		plain
		Created any `json:"created,omitempty"`
	}{plain: plain(p), Created: encodeMillis(p.Created, p.createdRaw)}
	data, err := json.Marshal(aux)
	if err != nil {
		return nil, err
	}
	return withExtra(data, p.Extra, pathwayFields)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	*s = Step{}
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	extra, err := unknownFields(data, stepFields)
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s Step) MarshalJSON() ([]byte, error) {
	type plain Step
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return withExtra(data, s.Extra, stepFields)
}

// SetSortOrder stores a copy of pos as the pathway's position.
func (p *Pathway) SetSortOrder(pos int) {
	p.SortOrder = &pos
}

// HasSortOrder reports whether the pathway carries an explicit position.
func (p *Pathway) HasSortOrder() bool {
	return p.SortOrder != nil
}

// NewPathwayID synthesizes an identifier for a pathway that arrived without
// one: the creation timestamp when known, otherwise the current time joined
// with the batch index so ids minted in the same call cannot collide.
func NewPathwayID(created int64, now time.Time, index int) string {
	if created > 0 {
		return strconv.FormatInt(created, 10)
	}
	return FallbackPathwayID(now, index)
}

// FallbackPathwayID is the time+index form of NewPathwayID.
func FallbackPathwayID(now time.Time, index int) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + strconv.Itoa(index)
}
