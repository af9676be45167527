package domain

import "time"

// AnswerRecord is one answered step within a session. Re-submitting an
// answer for the same step replaces the record in place.
type AnswerRecord struct {
	NodeID     string    `json:"nodeId"`
	StepOrder  int       `json:"stepOrder"`
	Mechanism  Mechanism `json:"answerMechanism"`
	Answer     Answer    `json:"answer"`
	RecordedAt time.Time `json:"recordedAt"`
}

// SessionState is a single visitor's traversal state through a graph.
type SessionState struct {
	SessionID     string         `json:"sessionId"`
	GraphID       string         `json:"graphId"`
	CurrentNodeID string         `json:"currentNodeId"`
	Answers       []AnswerRecord `json:"answers"`
	Completed     bool           `json:"completed"`
	StartedAt     time.Time      `json:"startedAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// RecordAnswer stores the answer for the node, replacing any existing
// record for the same node id.
func (s *SessionState) RecordAnswer(rec AnswerRecord) {
	for i := range s.Answers {
		if s.Answers[i].NodeID == rec.NodeID {
			s.Answers[i] = rec
			return
		}
	}
	s.Answers = append(s.Answers, rec)
}

// AnswerFor returns the recorded answer for the node, if any.
func (s *SessionState) AnswerFor(nodeID string) (AnswerRecord, bool) {
	for i := range s.Answers {
		if s.Answers[i].NodeID == nodeID {
			return s.Answers[i], true
		}
	}
	return AnswerRecord{}, false
}

// Clone returns a deep copy of the session state.
func (s *SessionState) Clone() *SessionState {
	out := *s
	out.Answers = append([]AnswerRecord(nil), s.Answers...)
	return &out
}
