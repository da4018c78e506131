package graphics

// State is the lifecycle stage of a context driver.
//
//	Uninitialized --New--> Initialized --BindAPI--> APIBound --SetVideoMode--> Active
//	any --Destroy--> Destroyed
//
// A failed SetVideoMode from Active drops back to APIBound.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateAPIBound
	StateActive
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateAPIBound:
		return "api-bound"
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// CanBind reports whether BindAPI may be called in this state.
func (s State) CanBind() bool {
	return s == StateInitialized || s == StateAPIBound || s == StateActive
}
