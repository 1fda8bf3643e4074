package persistence

import (
	"encoding/json"
	"time"
)

// UserModel represents an account in the database.
type UserModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UUID         string    `gorm:"column:uuid;uniqueIndex;size:36;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;size:320;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	DisplayName  string    `gorm:"column:display_name;size:255"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (UserModel) TableName() string {
	return "users"
}

// FormModel represents a generated form in the database. The embedding
// vector lives in the form_embeddings table, keyed by form id.
type FormModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UUID       string    `gorm:"column:uuid;uniqueIndex;size:36;not null"`
	OwnerID    string    `gorm:"column:owner_id;index;size:36;not null"`
	Prompt     string    `gorm:"column:prompt;type:text"`
	SchemaJSON string    `gorm:"column:schema_json;type:text;not null"`
	Summary    string    `gorm:"column:summary;type:text"`
	Category   string    `gorm:"column:category;index;size:64"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (FormModel) TableName() string {
	return "forms"
}

// TaskModel represents a task in the database.
type TaskModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string          `gorm:"column:dedup_key;type:varchar(255);uniqueIndex;not null"`
	Type      string          `gorm:"column:type;type:varchar(255);index;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	Priority  int             `gorm:"column:priority;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (TaskModel) TableName() string {
	return "tasks"
}
