package hako

import "github.com/rotisserie/eris"

// Contract violations. These are raised as panics: they indicate a bug in the
// calling code, not a condition reachable from normal runtime dynamics.
var (
	ErrDuplicateComponent    = eris.New("duplicate component")
	ErrEmptyArchetype        = eris.New("archetype must have at least 1 component")
	ErrEmptyEntity           = eris.New("entities must have at least 1 component")
	ErrMissingComponentValue = eris.New("no value supplied for component")
	ErrForeignComponent      = eris.New("component is not registered with this entity manager")
	ErrTooManyComponents     = eris.New("too many component types")
	ErrColumnFull            = eris.New("reach full capacity")
	ErrIndexOutOfRange       = eris.New("index out of range")
	ErrNoStructStorage       = eris.New("struct layout has no storage for this width")
	ErrStructLayoutMismatch  = eris.New("struct callbacks do not match the declared layout")
)

// Misuse conditions. Structural operations report these as a false result
// and leave all state untouched.
var (
	ErrStaleEntity              = eris.New("entity does not exist")
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")
	ErrComponentNotOnEntity     = eris.New("component not on entity")
)
