package models

// SlotType distinguishes car and bike parking spaces.
type SlotType string

const (
	SlotTypeCar  SlotType = "car"
	SlotTypeBike SlotType = "bike"
)

// Slot is a uniquely identified physical parking space. Slots are loaded
// once from the static catalog and never mutated.
type Slot struct {
	ID   string   `json:"id"`
	Type SlotType `json:"type"`
}

// SlotStatus describes a slot's availability for a requested time window.
type SlotStatus struct {
	Slot        Slot         `json:"slot"`
	Status      string       `json:"status"` // available, reserved
	Reservation *Reservation `json:"reservation,omitempty"`
}

// DefaultSlots returns the static slot catalog: five car slots and eight
// bike slots.
func DefaultSlots() []Slot {
	return []Slot{
		{ID: "C1", Type: SlotTypeCar},
		{ID: "C2", Type: SlotTypeCar},
		{ID: "C3", Type: SlotTypeCar},
		{ID: "C4", Type: SlotTypeCar},
		{ID: "C5", Type: SlotTypeCar},
		{ID: "B1", Type: SlotTypeBike},
		{ID: "B2", Type: SlotTypeBike},
		{ID: "B3", Type: SlotTypeBike},
		{ID: "B4", Type: SlotTypeBike},
		{ID: "B5", Type: SlotTypeBike},
		{ID: "B6", Type: SlotTypeBike},
		{ID: "B7", Type: SlotTypeBike},
		{ID: "B8", Type: SlotTypeBike},
	}
}
