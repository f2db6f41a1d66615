package openrouter

import "fmt"

// ConfigError is returned before any network I/O when the client
// configuration is missing a required field for the invoked operation.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("openrouter: missing required config field '%v'", e.Field)
}

// StatusError is returned when the upstream responds with a non-2xx status.
// Body holds whatever body text could be read, best effort.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openrouter: unexpected status %v, body: %v", e.Code, e.Body)
}

// ShapeError is returned when the upstream reply parsed as JSON but no
// usable payload could be taken from it: either no known shape matched, or
// a matching shape carried an undecodable payload. Summary describes what
// went wrong without dumping the full reply.
type ShapeError struct {
	Op      string
	Summary string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("openrouter: %v: unusable reply: %v", e.Op, e.Summary)
}

// ParseError is returned when an upstream reply body is not valid JSON.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("openrouter: %v: failed to parse reply as JSON: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
