package entities

import (
	"bytes"
	"encoding/json"
	"time"
)

// Meeting is the persisted record of one processed recording. It is created
// once at the end of a successful pipeline run and never updated or deleted.
type Meeting struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	Transcription string    `json:"transcription"`
	StructuredNotes
	CreatedAt time.Time `json:"created_at"`
}

// MeetingSummary is the list-view projection of a Meeting.
type MeetingSummary struct {
	ID        uint      `json:"id"`
	Filename  string    `json:"filename"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// StructuredNotes is the canonical structured shape extracted from a
// transcript by the language-understanding service.
type StructuredNotes struct {
	MeetingTopics []string      `json:"meeting_topics"`
	Participants  []Participant `json:"participants"`
	KeyPoints     []KeyPoint    `json:"key_points"`
	NextSteps     []ActionItem  `json:"next_steps"`
	Summary       string        `json:"summary"`
}

// Older records stored sequence elements as bare strings; current records
// store objects. Each element type below carries a Legacy flag recording the
// shape it was decoded from, and re-emits that shape on encode so stored
// records round-trip without loss. Consumers must never conflate the two
// shapes: the normalizer branches on Legacy explicitly.

// Participant is a meeting attendee: either a bare name (legacy) or
// {name, role} (current).
type Participant struct {
	Name   string
	Role   string
	Legacy bool
}

type participantJSON struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (p Participant) MarshalJSON() ([]byte, error) {
	if p.Legacy {
		return json.Marshal(p.Name)
	}
	return json.Marshal(participantJSON{Name: p.Name, Role: p.Role})
}

func (p *Participant) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Participant{Name: s, Legacy: true}
		return nil
	}
	var obj participantJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Participant{Name: obj.Name, Role: obj.Role}
	return nil
}

// KeyPoint is a discussion highlight: either a bare string (legacy) or
// {title, content} (current).
type KeyPoint struct {
	Title   string
	Content string
	Legacy  bool
}

type keyPointJSON struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (k KeyPoint) MarshalJSON() ([]byte, error) {
	if k.Legacy {
		return json.Marshal(k.Title)
	}
	return json.Marshal(keyPointJSON{Title: k.Title, Content: k.Content})
}

func (k *KeyPoint) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = KeyPoint{Title: s, Legacy: true}
		return nil
	}
	var obj keyPointJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*k = KeyPoint{Title: obj.Title, Content: obj.Content}
	return nil
}

// ActionItem is a follow-up task: either a bare string (legacy) or
// {action, owner} (current).
type ActionItem struct {
	Action string
	Owner  string
	Legacy bool
}

type actionItemJSON struct {
	Action string `json:"action"`
	Owner  string `json:"owner"`
}

func (a ActionItem) MarshalJSON() ([]byte, error) {
	if a.Legacy {
		return json.Marshal(a.Action)
	}
	return json.Marshal(actionItemJSON{Action: a.Action, Owner: a.Owner})
}

func (a *ActionItem) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ActionItem{Action: s, Legacy: true}
		return nil
	}
	var obj actionItemJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = ActionItem{Action: obj.Action, Owner: obj.Owner}
	return nil
}

func isJSONString(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '"'
}
