package store

import (
	"encoding/json"
	"fmt"
)

// BillDraft is the in-progress bill-creation state persisted between app
// launches: the participant selections and their amounts, kept as one JSON
// blob.
type BillDraft struct {
	Name         string             `json:"name"`
	TotalAmount  string             `json:"totalAmount"`
	Interval     string             `json:"interval"`
	Deadline     string             `json:"deadline,omitempty"`
	Participants []DraftParticipant `json:"participants"`
}

// DraftParticipant is one selected contact plus their share.
type DraftParticipant struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Contribution string `json:"contribution"`
}

// SaveBillDraft persists the draft, replacing any previous one.
func (s *Store) SaveBillDraft(d BillDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: encode bill draft: %w", err)
	}
	return s.Set(keyBillDraft, data)
}

// BillDraft returns the persisted draft, if any. A corrupt blob counts as
// absent.
func (s *Store) BillDraft() (BillDraft, bool) {
	data, ok := s.Get(keyBillDraft)
	if !ok {
		return BillDraft{}, false
	}
	var d BillDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return BillDraft{}, false
	}
	return d, true
}

// ClearBillDraft removes the persisted draft. Idempotent.
func (s *Store) ClearBillDraft() error {
	return s.Delete(keyBillDraft)
}
