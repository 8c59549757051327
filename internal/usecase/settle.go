package usecase

import "github.com/oklog/ulid/v2"

// RefGenerator produces settlement references for escrow release. The
// default is simulated; a real payment rail can be plugged in without
// touching the state machine.
type RefGenerator interface {
	NewRef() string
}

type SimulatedRefGenerator struct{}

func (SimulatedRefGenerator) NewRef() string {
	return "sim_" + ulid.Make().String()
}
