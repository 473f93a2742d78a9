package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrInvalidID = errors.New("invalid_id")
)

// Kind drives the icon and color the client renders for the entry.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindSuccess, KindWarning:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID      snowflake.ID `json:"user_id" gorm:"column:user_id;not null;index"`
	Title       string       `json:"title" gorm:"type:text;not null"`
	Message     string       `json:"message" gorm:"type:text;not null"`
	Kind        Kind         `json:"kind" gorm:"type:text;not null;default:'info'"`
	TargetRoute *string      `json:"target_route,omitempty" gorm:"column:target_route;type:text"`
	Read        bool         `json:"read" gorm:"not null;default:false"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Notification) TableName() string { return "notifications" }
