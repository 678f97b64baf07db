package judge

// Status defines the verdict of a single test case
type Status int

// Defines test case verdicts
const (
	// not initialized status (as error)
	StatusInvalid Status = iota

	StatusAccepted
	StatusWrongAnswer
	StatusRuntimeError      // non-zero exit or signalled
	StatusTimeLimitExceeded // wall time over Local.TimeLimit
	StatusOutputLimitExceeded
)

var statusToString = []string{
	"Invalid",
	"Accepted",
	"Wrong Answer",
	"Runtime Error",
	"Time Limit Exceeded",
	"Output Limit Exceeded",
}

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0] // invalid
	}
	return statusToString[si]
}
