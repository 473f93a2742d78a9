package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, user_id, title, message, kind, target_route, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Kind,
		notification.TargetRoute,
		notification.Read,
		notification.CreatedAt,
	).Error
}

func (r *repo) Recent(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, title, message, kind, target_route, read, created_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID,
		limit,
	).Scan(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) UnreadCount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM notifications WHERE user_id = ? AND read = ?`,
		userID,
		false,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE notifications SET read = ? WHERE user_id = ? AND id = ? AND read = ?`,
		true,
		userID,
		id,
		false,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE notifications SET read = ? WHERE user_id = ? AND read = ?`,
		true,
		userID,
		false,
	)
	return result.RowsAffected, result.Error
}
