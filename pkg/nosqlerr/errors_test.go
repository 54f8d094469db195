package nosqlerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromInt_RecognizedCodeRoundTrips(t *testing.T) {
	assert.Equal(t, TableNotFound, FromInt(int32(TableNotFound)))
	assert.Equal(t, ServerError, FromInt(int32(ServerError)))
	assert.Equal(t, NoError, FromInt(int32(NoError)))
}

func TestFromInt_UnrecognizedCodeFallsBackToUnknownError(t *testing.T) {
	assert.Equal(t, UnknownError, FromInt(999))
	assert.Equal(t, UnknownError, FromInt(-1))
}

func TestCode_Band(t *testing.T) {
	assert.Equal(t, BandUser, IllegalArgument.Band())
	assert.Equal(t, BandThrottling, ReadLimitExceeded.Band())
	assert.Equal(t, BandRetryableServer, ServerError.Band())
	assert.Equal(t, BandFatalServer, UnknownError.Band())
}

func TestCode_Retryable(t *testing.T) {
	assert.True(t, ServerError.Retryable())
	assert.True(t, ReadLimitExceeded.Retryable())
	assert.False(t, SizeLimitExceeded.Retryable(), "SizeLimitExceeded is throttling but never retried")
	assert.False(t, IllegalArgument.Retryable())
}
