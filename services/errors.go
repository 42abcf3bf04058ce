package services

import (
	"errors"

	"github.com/opendraw/draw-engine/brackets"
)

// Shared service errors, mapped onto HTTP responses and reason codes in
// the handlers layer.
var (
	// Validation
	ErrEventRequired    = errors.New("event id is required")
	ErrCategoryRequired = errors.New("category id is required")
	ErrRosterMalformed  = errors.New("roster contains malformed entries")

	// Not found
	ErrBracketNotFound = errors.New("bracket not found for category")
	ErrLeagueNotFound  = errors.New("league not found for category")
	ErrMatchNotFound   = errors.New("match not found")

	// Conflicts
	ErrBracketLocked    = errors.New("bracket is published and locked against structural edits")
	ErrModeConflict     = errors.New("generated brackets and static media draws are mutually exclusive per category")
	ErrDrawNotAllowed   = errors.New("a draw cannot decide an elimination match")
	ErrNotMediaDraw     = errors.New("category has no media draw")
	ErrAlreadyPublished = errors.New("bracket is already published")
)

// ReasonCode returns the stable machine-readable code for an error, or
// "" for unclassified failures. Validation and conflict errors surface
// these synchronously; integrity warnings never reach here, they are
// log-only by design.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrEventRequired), errors.Is(err, ErrCategoryRequired):
		return "MISSING_SCOPE"
	case errors.Is(err, ErrRosterMalformed):
		return "ROSTER_MALFORMED"
	case errors.Is(err, brackets.ErrInsufficientParticipants):
		return "INSUFFICIENT_PARTICIPANTS"
	case errors.Is(err, brackets.ErrInvalidSeedMap), errors.Is(err, brackets.ErrUnknownSeededIDs):
		return "INVALID_SEED_MAP"
	case errors.Is(err, ErrBracketLocked):
		return "BRACKET_LOCKED"
	case errors.Is(err, ErrModeConflict):
		return "MODE_CONFLICT"
	case errors.Is(err, brackets.ErrPrevRoundIncomplete):
		return "PREV_ROUND_INCOMPLETE"
	case errors.Is(err, brackets.ErrChampionDecided):
		return "CHAMPION_DECIDED"
	case errors.Is(err, brackets.ErrRankedByeLocked), errors.Is(err, brackets.ErrParticipantRanked):
		return "RANKED_BYE_LOCKED"
	case errors.Is(err, brackets.ErrNotABye):
		return "NOT_A_BYE"
	case errors.Is(err, brackets.ErrParticipantSeated):
		return "PARTICIPANT_SEATED"
	case errors.Is(err, brackets.ErrParticipantUnknown):
		return "PARTICIPANT_UNKNOWN"
	case errors.Is(err, brackets.ErrWinnerSlotEmpty):
		return "WINNER_SLOT_EMPTY"
	case errors.Is(err, ErrDrawNotAllowed):
		return "DRAW_NOT_ALLOWED"
	case errors.Is(err, ErrAlreadyPublished):
		return "ALREADY_PUBLISHED"
	case errors.Is(err, ErrNotMediaDraw):
		return "NOT_MEDIA_DRAW"
	}
	return ""
}
