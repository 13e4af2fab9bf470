package minutes

import "github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"

// Normalize rewrites structured notes into the current shape before they are
// persisted: legacy bare-string elements become objects with an empty
// secondary field, and nil sequences become empty ones. It is pure and
// idempotent; records already in the current shape pass through unchanged.
func Normalize(n entities.StructuredNotes) entities.StructuredNotes {
	out := entities.StructuredNotes{
		MeetingTopics: make([]string, len(n.MeetingTopics)),
		Participants:  make([]entities.Participant, len(n.Participants)),
		KeyPoints:     make([]entities.KeyPoint, len(n.KeyPoints)),
		NextSteps:     make([]entities.ActionItem, len(n.NextSteps)),
		Summary:       n.Summary,
	}
	copy(out.MeetingTopics, n.MeetingTopics)

	for i, p := range n.Participants {
		if p.Legacy {
			p = entities.Participant{Name: p.Name}
		}
		out.Participants[i] = p
	}
	for i, k := range n.KeyPoints {
		if k.Legacy {
			k = entities.KeyPoint{Title: k.Title}
		}
		out.KeyPoints[i] = k
	}
	for i, a := range n.NextSteps {
		if a.Legacy {
			a = entities.ActionItem{Action: a.Action}
		}
		out.NextSteps[i] = a
	}
	return out
}
