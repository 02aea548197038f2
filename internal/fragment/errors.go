package fragment

import "fmt"

// ParseError reports a fragment file that could not be read or decoded.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing fragment %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CollisionError reports a key defined by more than one fragment when
// collisions are not allowed.
type CollisionError struct {
	Collision
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("key %q defined in %s and again in %s", e.Key, e.Previous, e.Current)
}
