package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Notification, error)
	List(ctx context.Context, userID snowflake.ID) (ListResponse, error)
	MarkRead(ctx context.Context, userID snowflake.ID, id string) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) error
}

type CreateRequest struct {
	UserID      snowflake.ID `json:"user_id"`
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	Kind        Kind         `json:"kind"`
	TargetRoute *string      `json:"target_route,omitempty"`
}

// ListResponse carries the recent window plus the authoritative unread
// count. The count can exceed len(Notifications) when older unread entries
// fell outside the window.
type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}
