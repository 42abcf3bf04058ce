package services

import (
	"fmt"
	"testing"

	"github.com/opendraw/draw-engine/brackets"
	"github.com/stretchr/testify/assert"
)

func TestReasonCodeStability(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{ErrEventRequired, "MISSING_SCOPE"},
		{ErrCategoryRequired, "MISSING_SCOPE"},
		{brackets.ErrInsufficientParticipants, "INSUFFICIENT_PARTICIPANTS"},
		{brackets.ErrInvalidSeedMap, "INVALID_SEED_MAP"},
		{ErrBracketLocked, "BRACKET_LOCKED"},
		{ErrModeConflict, "MODE_CONFLICT"},
		{brackets.ErrPrevRoundIncomplete, "PREV_ROUND_INCOMPLETE"},
		{brackets.ErrRankedByeLocked, "RANKED_BYE_LOCKED"},
		{ErrDrawNotAllowed, "DRAW_NOT_ALLOWED"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ReasonCode(tc.err), "%v", tc.err)
	}
}

func TestReasonCodeSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("generate failed: %w", brackets.ErrPrevRoundIncomplete)
	assert.Equal(t, "PREV_ROUND_INCOMPLETE", ReasonCode(wrapped))
}

func TestReasonCodeUnclassified(t *testing.T) {
	assert.Empty(t, ReasonCode(fmt.Errorf("disk on fire")))
}
