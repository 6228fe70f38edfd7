// Package relay moves rendered report lines across an external durable
// queue: a Producer serializes them into jobs on a topic, a Worker polls
// the topic and replays each job into a local dispatcher tree.
package relay

import (
	"errors"
	"fmt"

	"github.com/reporterhq/reporter/internal/jsoncodec"
	"github.com/reporterhq/reporter/internal/report"
)

// JobTypeMessage is the wire tag every relay job must carry. A consumer
// ignores any job tagged differently.
const JobTypeMessage = "reporter.Message"

// Job is the wire form of one relayed report line. The shape is a fixed
// contract: {"type":"reporter.Message","message":...,"level":...}.
type Job struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   int    `json:"level"`
}

// ErrForeignJob marks a structurally valid job whose type tag belongs to
// some other producer. Such jobs must be left on the queue, not deleted.
var ErrForeignJob = errors.New("reporter: job carries a foreign type tag")

// MalformedJobError marks a job body that can never be processed: not
// valid JSON, or missing the required fields. Malformed jobs are always
// discarded so they cannot poison the queue.
type MalformedJobError struct {
	Reason string
	Err    error
}

func (e *MalformedJobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reporter: malformed job: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("reporter: malformed job: %s", e.Reason)
}

func (e *MalformedJobError) Unwrap() error {
	return e.Err
}

// NewJob flattens a level and a rendered line into the wire form.
func NewJob(level report.Level, message string) Job {
	return Job{
		Type:    JobTypeMessage,
		Message: message,
		Level:   int(level),
	}
}

// Encode serializes the job for the queue.
func (j Job) Encode() ([]byte, error) {
	return jsoncodec.Marshal(j)
}

// DecodeJob validates a queue payload against the job contract.
// It returns a MalformedJobError for bodies that can never become valid,
// and ErrForeignJob for well-formed jobs addressed to someone else.
func DecodeJob(body []byte) (Job, error) {
	var j Job
	if err := jsoncodec.Unmarshal(body, &j); err != nil {
		return Job{}, &MalformedJobError{Reason: "body is not valid JSON", Err: err}
	}
	if j.Type == "" {
		return Job{}, &MalformedJobError{Reason: "type tag is missing"}
	}
	if j.Type != JobTypeMessage {
		return Job{}, fmt.Errorf("%w: %q", ErrForeignJob, j.Type)
	}
	return j, nil
}
