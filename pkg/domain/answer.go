package domain

// Answer is a visitor's submitted answer for the current step.
type Answer struct {
	// Channel is the response channel used on an open-ended step
	// (video, audio, text) or a fixed token such as form_submitted.
	Channel string `json:"channel,omitempty"`

	// Value is the selected option or button text, or the typed reply.
	Value string `json:"value,omitempty"`

	// NPSScore is set for nps steps (0-10).
	NPSScore *int `json:"npsScore,omitempty"`

	// Skipped marks an explicitly skipped step.
	Skipped bool `json:"skipped,omitempty"`

	// MediaRef and FileURL are supplied by the upload collaborator once a
	// recorded or attached response has finished uploading.
	MediaRef string `json:"mediaRef,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`

	// DurationSeconds is how long the visitor spent on the step.
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

// NPS builds an nps answer.
func NPS(score int) Answer {
	return Answer{NPSScore: &score}
}

// Selected builds a multiple-choice or button answer.
func Selected(value string) Answer {
	return Answer{Value: value}
}

// Skip builds a skipped answer.
func Skip() Answer {
	return Answer{Skipped: true}
}

// Submission is the payload handed to the response-recording collaborator
// for every answered step.
type Submission struct {
	SessionID       string    `json:"sessionId"`
	StepID          string    `json:"stepId"`
	StepOrder       int       `json:"stepOrder"`
	Mechanism       Mechanism `json:"answerMechanism"`
	Answer          Answer    `json:"answerData"`
	Completed       bool      `json:"completed"`
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	DeviceClass     string    `json:"deviceClass,omitempty"`
	ClientSignature string    `json:"clientSignature,omitempty"`
}
