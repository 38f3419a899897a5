package models

import "time"

type Task struct {
	BaseModel
	OwnerID     string `gorm:"type:uuid;not null;index"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"not null;index"`
	Urgency     TaskUrgency
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	// HelperID is set by the claim transaction and only by it.
	// Invariant: non-null exactly when Status is matched/in-progress/completed.
	HelperID *string `gorm:"type:uuid;index"`

	WindowStart  *time.Time
	WindowEnd    *time.Time
	EffortLevel  string // light, moderate, heavy
	PeopleNeeded int    `gorm:"default:1"`
	CreditReward int    `gorm:"default:1"`
	Lat          float64
	Lng          float64
}

// HelperInvariantHolds checks the helper/status coupling. Exposed so tests
// and the lifecycle paths can assert it before and after every transition.
func (t *Task) HelperInvariantHolds() bool {
	claimed := t.Status == TaskStatusMatched ||
		t.Status == TaskStatusInProgress ||
		t.Status == TaskStatusCompleted
	return claimed == (t.HelperID != nil)
}
