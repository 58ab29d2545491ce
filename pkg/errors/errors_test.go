package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionError(t *testing.T) {
	assert.Equal(t, "Plan not found", PlanNotFound.Error())
	assert.Equal(t, "PLAN_NOT_FOUND", PlanNotFound.Code)
}

func TestGet(t *testing.T) {
	def := Get("AIPLAN_QUOTA_EXCEEDED")
	assert.Equal(t, AIPlanQuotaExceeded, def)

	unknown := Get("NO_SUCH_CODE")
	assert.Equal(t, "NO_SUCH_CODE", unknown.Code)
	assert.Equal(t, "Unexpected error", unknown.Message)
}

func TestLookupCoversAllCodes(t *testing.T) {
	for code, def := range Lookup {
		require.Equal(t, code, def.Code)
		require.NotEmpty(t, def.Message)
	}
}

func TestSkipMessageErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", &SkipMessageError{Reason: "duplicate message"})

	var skip *SkipMessageError
	require.True(t, stderrors.As(wrapped, &skip))
	assert.Equal(t, "duplicate message", skip.Reason)
	assert.Equal(t, "skip message: duplicate message", skip.Error())
}
