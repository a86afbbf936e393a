package pokeapi

import (
	"encoding/json"
	"fmt"
)

type listResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

type typeListResponse struct {
	Count   int             `json:"count"`
	Results []NamedResource `json:"results"`
}

type typeMember struct {
	Pokemon NamedResource `json:"pokemon"`
	Slot    int           `json:"slot"`
}

type typeResponse struct {
	Name    string       `json:"name"`
	Pokemon []typeMember `json:"pokemon"`
}

// decode checks that body is a JSON object carrying every required top-level
// field, then unmarshals it into dest.
func decode(endpoint string, body []byte, dest any, required ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return &SchemaError{Endpoint: endpoint, Reason: fmt.Sprintf("body is not a JSON object: %v", err)}
	}
	for _, name := range required {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return &SchemaError{Endpoint: endpoint, Reason: fmt.Sprintf("missing field %q", name)}
		}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &SchemaError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

func validateResources(endpoint string, items []NamedResource) error {
	for i, item := range items {
		if item.Name == "" || item.URL == "" {
			return &SchemaError{Endpoint: endpoint, Reason: fmt.Sprintf("entry %d lacks name or url", i)}
		}
	}
	return nil
}

func shallow(items []NamedResource) []Pokemon {
	out := make([]Pokemon, 0, len(items))
	for _, item := range items {
		out = append(out, Pokemon{ID: IDFromURL(item.URL), Name: item.Name, URL: item.URL})
	}
	return out
}
