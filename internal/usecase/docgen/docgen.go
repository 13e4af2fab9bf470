package docgen

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
)

// Section placeholders. Empty sequences render these instead of an empty
// list or a headers-only table.
const noData = "(no data)"

// Render produces the meeting minutes document: a centered title followed by
// five fixed sections. The verbatim transcript is deliberately left out of
// the document.
func Render(title string, notes entities.StructuredNotes) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	heading := w.AddParagraph()
	heading.AddText(title).Size("36").Bold()
	heading.Justification("center")

	addHeading(w, "1. Meeting Topics")
	if len(notes.MeetingTopics) == 0 {
		w.AddParagraph().AddText(noData)
	} else {
		for _, topic := range notes.MeetingTopics {
			w.AddParagraph().AddText("• " + topic)
		}
	}

	addHeading(w, "2. Participants")
	renderParticipants(w, notes.Participants)

	addHeading(w, "3. Key Points")
	if len(notes.KeyPoints) == 0 {
		w.AddParagraph().AddText(noData)
	} else {
		for i, kp := range notes.KeyPoints {
			if kp.Legacy {
				w.AddParagraph().AddText("• " + kp.Title)
				continue
			}
			w.AddParagraph().AddText(fmt.Sprintf("%d. %s", i+1, kp.Title)).Bold()
			if kp.Content != "" {
				w.AddParagraph().AddText("    " + kp.Content)
			}
		}
	}

	addHeading(w, "4. Conclusions and Action Items")
	renderActionItems(w, notes.NextSteps)

	addHeading(w, "5. Summary")
	if notes.Summary == "" {
		w.AddParagraph().AddText(noData)
	} else {
		w.AddParagraph().AddText(notes.Summary)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("failed to write document: %w", err))
	}
	return buf.Bytes(), nil
}

func addHeading(w *docx.Docx, text string) {
	w.AddParagraph().AddText(text).Size("28").Bold()
}

func renderParticipants(w *docx.Docx, participants []entities.Participant) {
	rows := len(participants)
	if rows == 0 {
		rows = 1
	}
	tbl := w.AddTable(rows+1, 2, 0, nil)
	setCell(tbl, 0, 0, "Name")
	setCell(tbl, 0, 1, "Role or Contribution")

	if len(participants) == 0 {
		setCell(tbl, 1, 0, noData)
		setCell(tbl, 1, 1, "")
		return
	}
	for i, p := range participants {
		setCell(tbl, i+1, 0, p.Name)
		if p.Legacy {
			setCell(tbl, i+1, 1, "")
		} else {
			setCell(tbl, i+1, 1, p.Role)
		}
	}
}

func renderActionItems(w *docx.Docx, steps []entities.ActionItem) {
	rows := len(steps)
	if rows == 0 {
		rows = 1
	}
	tbl := w.AddTable(rows+1, 2, 0, nil)
	setCell(tbl, 0, 0, "Action Item")
	setCell(tbl, 0, 1, "Owner")

	if len(steps) == 0 {
		setCell(tbl, 1, 0, noData)
		setCell(tbl, 1, 1, "")
		return
	}
	for i, step := range steps {
		setCell(tbl, i+1, 0, step.Action)
		if step.Legacy {
			setCell(tbl, i+1, 1, "")
		} else {
			setCell(tbl, i+1, 1, step.Owner)
		}
	}
}

func setCell(tbl *docx.Table, row int, col int, text string) {
	tbl.TableRows[row].TableCells[col].AddParagraph().AddText(text)
}
