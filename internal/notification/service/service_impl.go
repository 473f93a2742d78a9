package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/notification/domain"
	"github.com/quipuerp/quipu/internal/notification/hub"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recentWindow caps the dropdown list; the unread count stays authoritative
// beyond it.
const recentWindow = 20

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Hub   *hub.Hub
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	hub   *hub.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		repo:  p.Repo,
		hub:   p.Hub,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Notification, error) {
	if req.UserID == 0 {
		return domain.Notification{}, domain.ErrInvalidID
	}

	kind := req.Kind
	if !kind.Valid() {
		kind = domain.KindInfo
	}

	notification := domain.Notification{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Message:     strings.TrimSpace(req.Message),
		Kind:        kind,
		TargetRoute: req.TargetRoute,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}

	// Push after the write commits so a reconnecting client never sees a
	// pushed entry the list endpoint cannot return.
	s.hub.Push(req.UserID, hub.KindNewNotification, notification)
	return notification, nil
}

func (s *Service) List(ctx context.Context, userID snowflake.ID) (domain.ListResponse, error) {
	items, err := s.repo.Recent(ctx, s.db, userID, recentWindow)
	if err != nil {
		return domain.ListResponse{}, err
	}

	count, err := s.repo.UnreadCount(ctx, s.db, userID)
	if err != nil {
		return domain.ListResponse{}, err
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	return domain.ListResponse{
		Notifications: notifications,
		UnreadCount:   count,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID snowflake.ID, id string) error {
	notificationID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	// Zero rows affected covers both "not found" and "already read"; only
	// the former is an error the client must see.
	affected, err := s.repo.MarkRead(ctx, s.db, userID, notificationID)
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int64
		if err := s.db.WithContext(ctx).
			Raw(`SELECT COUNT(1) FROM notifications WHERE user_id = ? AND id = ?`, userID, notificationID).
			Scan(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID snowflake.ID) error {
	affected, err := s.repo.MarkAllRead(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.log.Debug("notifications marked read",
			zap.String("user_id", userID.String()),
			zap.Int64("count", affected),
		)
	}
	return nil
}
