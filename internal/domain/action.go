package domain

import "github.com/google/uuid"

// Action is a reusable named unit of work shared by plans and executions.
// Names are unique and compared exactly.
type Action struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;uniqueIndex:idx_actions_name" json:"name"`
}

func (Action) TableName() string { return "actions" }
