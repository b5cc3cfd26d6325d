package models

import "time"

// ImportLock is a named lease row. A row whose ExpiresAt has passed may be
// taken over by the next caller.
type ImportLock struct {
	Name      string    `gorm:"column:name;size:100;primaryKey"`
	Token     string    `gorm:"column:token;size:64;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ImportLock) TableName() string { return "import_locks" }
