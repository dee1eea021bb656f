package authrim

import "errors"

var (
	// ErrFlowNotFound is returned when no flow definition resolves for the requested type.
	ErrFlowNotFound = errors.New("flow not found")
	// ErrNodeNotFound is returned when a session references a node absent from the compiled plan.
	ErrNodeNotFound = errors.New("node not found")
	// ErrPlanNotFound is returned when a plan cannot be resolved for a live session.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrSessionNotFound is returned when the session id resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned when a submit targets an already-finished flow.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrRateLimited is returned when the sliding-window request cap is hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrSessionExpired is returned when the session exceeds the hard age ceiling.
	ErrSessionExpired = errors.New("session timeout")
	// ErrCircularReference is returned when a node is revisited past the revisit cap.
	ErrCircularReference = errors.New("circular flow reference")
	// ErrFlowTooLong is returned when the visited-node ceiling is reached.
	ErrFlowTooLong = errors.New("flow too long")
	// ErrUnreachableTermination is returned in strict mode when a decision or
	// switch node matches nothing and declares no default.
	ErrUnreachableTermination = errors.New("unreachable flow termination")
	// ErrDefinitionInvalid is returned when a stored flow definition fails structural validation.
	ErrDefinitionInvalid = errors.New("flow definition invalid")
	// ErrActorUnavailable is returned when the session-actor store cannot be reached.
	ErrActorUnavailable = errors.New("actor store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before Build wiring.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrorCode maps an engine error to its stable caller-visible code. Callers
// branch on codes to decide whether to retry, restart, or give up; raw
// internal error text never crosses this boundary.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFlowNotFound):
		return "flow_not_found"
	case errors.Is(err, ErrNodeNotFound):
		return "node_not_found"
	case errors.Is(err, ErrPlanNotFound):
		return "plan_not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionCompleted):
		return "session_completed"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSessionExpired):
		return "session_timeout"
	case errors.Is(err, ErrCircularReference):
		return "circular_reference"
	case errors.Is(err, ErrFlowTooLong):
		return "flow_too_long"
	case errors.Is(err, ErrUnreachableTermination):
		return "unreachable_termination"
	case errors.Is(err, ErrDefinitionInvalid):
		return "definition_invalid"
	case errors.Is(err, ErrActorUnavailable):
		return "actor_unavailable"
	case errors.Is(err, ErrEngineNotReady):
		return "engine_not_ready"
	default:
		return "internal_error"
	}
}
