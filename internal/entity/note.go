package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NoteCapacity is the number of follow-up slots a lead carries.
const NoteCapacity = 10

var ErrNotesFull = errors.New("all follow-up slots are filled")

type Note struct {
	ID        string    `json:"id"`
	Slot      int       `json:"slot"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteLedger holds the follow-up slots of one lead. Slot n lives at index n-1.
// A slot counts as empty when it is blank or whitespace only; filled slots
// are never rewritten.
type NoteLedger [NoteCapacity]string

// NextSlot returns the lowest empty slot number (1-based).
func (l NoteLedger) NextSlot() (int, error) {
	for i, v := range l {
		if strings.TrimSpace(v) == "" {
			return i + 1, nil
		}
	}
	return 0, ErrNotesFull
}

// Append writes content into the lowest empty slot.
func (l *NoteLedger) Append(content string) (int, error) {
	slot, err := l.NextSlot()
	if err != nil {
		return 0, err
	}
	l[slot-1] = content
	return slot, nil
}

// Slot returns the content of slot n (1-based).
func (l NoteLedger) Slot(n int) string {
	if n < 1 || n > NoteCapacity {
		return ""
	}
	return l[n-1]
}

func (l NoteLedger) Filled() int {
	n := 0
	for _, v := range l {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Notes lists the filled slots in slot order. Every note carries the same
// timestamp because the store keeps a single last-modified stamp per lead.
func (l NoteLedger) Notes(at time.Time, author string) []Note {
	notes := make([]Note, 0, NoteCapacity)
	for i, v := range l {
		if strings.TrimSpace(v) == "" {
			continue
		}
		notes = append(notes, Note{
			ID:        NoteID(i + 1),
			Slot:      i + 1,
			UserID:    author,
			Content:   v,
			CreatedAt: at,
		})
	}
	return notes
}

func NoteID(slot int) string {
	return fmt.Sprintf("f%d", slot)
}
