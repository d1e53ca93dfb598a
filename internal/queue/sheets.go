package queue

import "attendance-tracker/internal/model"

// TypeSheetSaved is published after attendance marks are committed.
const TypeSheetSaved = "sheet.saved"

// SheetSaved names the students whose history changed.
type SheetSaved struct {
	ClassID  int64      `json:"class_id,omitempty"`
	Date     model.Date `json:"date"`
	Students []int64    `json:"students"`
}

// NewSheetSaved builds a sheet.saved message.
func NewSheetSaved(ev SheetSaved) (Message, error) {
	return NewMessage(TypeSheetSaved, ev)
}
