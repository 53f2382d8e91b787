package encounter

import "fmt"

// Reasons an action is unavailable. The command adapter maps them to
// player-facing text.
const (
	ReasonEncounterOver  = "encounter_over"
	ReasonNoTarget       = "no_target"
	ReasonUnknownTarget  = "unknown_target"
	ReasonTargetDefeated = "target_defeated"
	ReasonNoAmmo         = "no_ammo"
	ReasonUnknownAbility = "unknown_ability"
	ReasonNoResource     = "no_resource"
	ReasonNoItem         = "no_item"
	ReasonNotUsable      = "not_usable"
	ReasonUnknownAction  = "unknown_action"
)

// UnavailableError explains why an action was rejected.
type UnavailableError struct {
	Reason string
	Detail string
}

func (e *UnavailableError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrActionUnavailable, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrActionUnavailable, e.Reason, e.Detail)
}

// Is matches ErrActionUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrActionUnavailable }

func unavailable(reason, detail string) error {
	return &UnavailableError{Reason: reason, Detail: detail}
}
