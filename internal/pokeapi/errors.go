package pokeapi

import "fmt"

// NotFoundError reports a detail lookup miss.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pokemon %q not found", e.Key)
}

// SchemaError reports a response whose shape does not match the endpoint's
// schema.
type SchemaError struct {
	Endpoint string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.Endpoint, e.Reason)
}
