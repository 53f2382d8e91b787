package encounter

import "errors"

var (
	// ErrSessionNotFound is returned for an unknown or already resolved session.
	ErrSessionNotFound = errors.New("encounter session not found")
	// ErrSessionActive is returned when a character already has an encounter.
	ErrSessionActive = errors.New("character already in an encounter")
	// ErrActionUnavailable is returned for an illegal action. The turn does
	// not advance.
	ErrActionUnavailable = errors.New("action unavailable")
	// ErrEncounterBusy is returned when an action arrives while another
	// action of the same session is still resolving.
	ErrEncounterBusy = errors.New("encounter busy")
	// ErrEngineFault marks an internal failure that ended the session.
	ErrEngineFault = errors.New("engine fault")
)
