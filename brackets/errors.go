package brackets

import "errors"

// Engine-level errors. Services wrap these and handlers map them onto
// the public reason codes.
var (
	ErrInsufficientParticipants = errors.New("not enough participants to build a bracket (minimum 2)")
	ErrNotPowerOfTwo            = errors.New("draw size must be a power of two")
	ErrInvalidSeedMap           = errors.New("invalid seed map")
	ErrUnknownSeededIDs         = errors.New("seed map references participants absent from the roster")
	ErrPrevRoundIncomplete      = errors.New("previous round has unresolved matches")
	ErrChampionDecided          = errors.New("bracket already has a final round")
	ErrMatchNotFound            = errors.New("structural match not found")
	ErrNotABye                  = errors.New("target match is not a bye")
	ErrRankedByeLocked          = errors.New("ranked bye slots are locked")
	ErrParticipantSeated        = errors.New("participant is already seated in the bracket")
	ErrParticipantRanked        = errors.New("ranked participants receive byes only through seeding")
	ErrParticipantUnknown       = errors.New("participant is not on the bracket roster")
	ErrWinnerSlotEmpty          = errors.New("declared winner slot is not occupied")
)
