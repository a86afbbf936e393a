// Package pokeapi maps catalogue operations onto PokeAPI v2 endpoints and
// validates the responses before they reach the rest of dexterm.
package pokeapi

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pokemon is a creature record. Entries from list and category endpoints are
// shallow (ID, Name, URL); detail responses fill the remaining fields.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	URL            string        `json:"url,omitempty"`
	BaseExperience *int          `json:"base_experience,omitempty"`
	Height         int           `json:"height,omitempty"`
	Weight         int           `json:"weight,omitempty"`
	Types          []TypeSlot    `json:"types,omitempty"`
	Abilities      []AbilitySlot `json:"abilities,omitempty"`
	Stats          []StatValue   `json:"stats,omitempty"`
	Sprites        *Sprites      `json:"sprites,omitempty"`
}

// NamedResource is the {name,url} pair PokeAPI uses for references.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TypeSlot is one of an entity's categories.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// AbilitySlot is one of an entity's abilities.
type AbilitySlot struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

// StatValue is a base stat.
type StatValue struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// Sprites holds the artwork URLs we display.
type Sprites struct {
	FrontDefault string `json:"front_default"`
}

// Category is an entry from the /type listing.
type Category = NamedResource

// ListPage is one page of the primary paginated listing.
type ListPage struct {
	Count    int
	Next     string
	Previous string
	Results  []Pokemon
}

// IsFull reports whether detail fields have been merged in.
func (p Pokemon) IsFull() bool {
	return len(p.Types) > 0 || len(p.Stats) > 0 || p.BaseExperience != nil || p.Height > 0
}

// BaseExp returns base experience, defaulting to 0 when unknown.
func (p Pokemon) BaseExp() int {
	if p.BaseExperience == nil {
		return 0
	}
	return *p.BaseExperience
}

// TypeNames lists category names in slot order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

// Merge returns p enriched with any fields other carries. Fields already set on
// p are only replaced by non-empty values, so a record never loses detail.
func (p Pokemon) Merge(other Pokemon) Pokemon {
	if p.ID == 0 {
		p.ID = other.ID
	}
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.URL != "" {
		p.URL = other.URL
	}
	if other.BaseExperience != nil {
		v := *other.BaseExperience
		p.BaseExperience = &v
	}
	if other.Height > 0 {
		p.Height = other.Height
	}
	if other.Weight > 0 {
		p.Weight = other.Weight
	}
	if len(other.Types) > 0 {
		p.Types = append([]TypeSlot(nil), other.Types...)
	}
	if len(other.Abilities) > 0 {
		p.Abilities = append([]AbilitySlot(nil), other.Abilities...)
	}
	if len(other.Stats) > 0 {
		p.Stats = append([]StatValue(nil), other.Stats...)
	}
	if other.Sprites != nil {
		s := *other.Sprites
		p.Sprites = &s
	}
	return p
}

// DisplayID formats the identifier zero-padded to three digits.
func (p Pokemon) DisplayID() string {
	return fmt.Sprintf("#%03d", p.ID)
}

// DisplayName capitalises the first letter of the name.
func (p Pokemon) DisplayName() string {
	if p.Name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(p.Name)
	return string(unicode.ToUpper(r)) + p.Name[size:]
}

// IDFromURL parses the trailing numeric path segment of a resource URL.
// It returns 0 when the URL carries no such segment.
func IDFromURL(resourceURL string) int {
	parts := strings.FieldsFunc(resourceURL, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Placeholder builds a minimal entity for an ID with no known data.
func Placeholder(baseURL string, id int) Pokemon {
	return Pokemon{
		ID:   id,
		Name: fmt.Sprintf("pokemon-%d", id),
		URL:  CanonicalURL(baseURL, id),
	}
}

// CanonicalURL returns the detail resource URL for id.
func CanonicalURL(baseURL string, id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", strings.TrimRight(baseURL, "/"), id)
}
