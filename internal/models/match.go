package models

// Match records a successful claim. The partial unique index backs the
// invariant that at most one non-cancelled match exists per task, even if a
// bug ever bypassed the claim transaction.
type Match struct {
	BaseModel
	TaskID   string      `gorm:"type:uuid;not null;index;index:idx_matches_task_active,unique,where:status <> 'cancelled'"`
	HelperID string      `gorm:"type:uuid;not null;index"`
	Status   MatchStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	Task *Task `gorm:"foreignKey:TaskID"`
}
