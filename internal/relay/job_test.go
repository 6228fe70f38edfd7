package relay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reporterhq/reporter/internal/report"
)

func TestNewJob(t *testing.T) {
	job := NewJob(report.LevelError, "ERR line")

	assert.Equal(t, JobTypeMessage, job.Type)
	assert.Equal(t, "ERR line", job.Message)
	assert.Equal(t, 5, job.Level)
}

func TestJob_Encode(t *testing.T) {
	body, err := NewJob(report.LevelWarning, "careful").Encode()
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"reporter.Message","message":"careful","level":4}`, string(body))
}

func TestDecodeJob(t *testing.T) {
	t.Run("valid job", func(t *testing.T) {
		job, err := DecodeJob([]byte(`{"type":"reporter.Message","message":"boom","level":5}`))
		require.NoError(t, err)
		assert.Equal(t, "boom", job.Message)
		assert.Equal(t, 5, job.Level)
	})

	t.Run("round trip", func(t *testing.T) {
		body, err := NewJob(report.LevelFatal, "down").Encode()
		require.NoError(t, err)

		job, err := DecodeJob(body)
		require.NoError(t, err)
		assert.Equal(t, NewJob(report.LevelFatal, "down"), job)
	})

	t.Run("not json is malformed", func(t *testing.T) {
		_, err := DecodeJob([]byte("not json"))
		var malformed *MalformedJobError
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "not valid JSON")
	})

	t.Run("missing type tag is malformed", func(t *testing.T) {
		_, err := DecodeJob([]byte(`{"message":"boom","level":5}`))
		var malformed *MalformedJobError
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "type tag")
	})

	t.Run("foreign type tag", func(t *testing.T) {
		_, err := DecodeJob([]byte(`{"type":"other.Thing","message":"x","level":1}`))
		require.ErrorIs(t, err, ErrForeignJob)
		assert.Contains(t, err.Error(), "other.Thing")

		var malformed *MalformedJobError
		assert.False(t, errors.As(err, &malformed))
	})
}

func TestMalformedJobError_Unwrap(t *testing.T) {
	inner := errors.New("syntax error")
	err := &MalformedJobError{Reason: "bad body", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "bad body")

	t.Run("without inner error", func(t *testing.T) {
		err := &MalformedJobError{Reason: "bad body"}
		assert.Equal(t, "reporter: malformed job: bad body", err.Error())
	})
}
