package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	// Recent returns the newest entries for the user, newest first.
	Recent(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]*Notification, error)
	// UnreadCount is the authoritative unread total, independent of how many
	// entries Recent returned.
	UnreadCount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	// MarkRead flips one entry; marking an already-read entry is a no-op.
	// Returns the number of rows that actually changed.
	MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
