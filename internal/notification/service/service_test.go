package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/notification/domain"
	"github.com/quipuerp/quipu/internal/notification/hub"
	"github.com/quipuerp/quipu/internal/notification/repository"
	"github.com/quipuerp/quipu/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Hub:   hub.New(zap.NewNop()),
	})
	return svc, node
}

func seed(t *testing.T, svc domain.Service, userID snowflake.ID, n int) []domain.Notification {
	t.Helper()
	out := make([]domain.Notification, 0, n)
	for i := 0; i < n; i++ {
		notification, err := svc.Create(context.Background(), domain.CreateRequest{
			UserID:  userID,
			Title:   fmt.Sprintf("Aviso %d", i),
			Message: "Stock bajo en almacén principal",
			Kind:    domain.KindWarning,
		})
		require.NoError(t, err)
		out = append(out, notification)
	}
	return out
}

func TestListReturnsWindowAndAuthoritativeCount(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()

	seed(t, svc, userID, 25)

	resp, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 20, "list is capped to the recent window")
	assert.Equal(t, int64(25), resp.UnreadCount, "count covers entries beyond the window")
}

func TestListIsScopedToUser(t *testing.T) {
	svc, node := newTestService(t)
	alice := node.Generate()
	bob := node.Generate()

	seed(t, svc, alice, 3)
	seed(t, svc, bob, 1)

	resp, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 3)
	for _, n := range resp.Notifications {
		assert.Equal(t, alice, n.UserID)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()
	created := seed(t, svc, userID, 2)

	require.NoError(t, svc.MarkRead(context.Background(), userID, created[0].ID.String()))
	require.NoError(t, svc.MarkRead(context.Background(), userID, created[0].ID.String()))

	resp, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.UnreadCount)
}

func TestMarkReadUnknownID(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()
	seed(t, svc, userID, 1)

	err := svc.MarkRead(context.Background(), userID, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkReadOtherUsersEntry(t *testing.T) {
	svc, node := newTestService(t)
	alice := node.Generate()
	bob := node.Generate()
	created := seed(t, svc, alice, 1)

	err := svc.MarkRead(context.Background(), bob, created[0].ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound, "cross-user marking must look like not found")
}

func TestMarkAllRead(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()
	seed(t, svc, userID, 5)

	require.NoError(t, svc.MarkAllRead(context.Background(), userID))

	resp, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.UnreadCount)

	// A second pass over an already-clean inbox is fine.
	require.NoError(t, svc.MarkAllRead(context.Background(), userID))
}

func TestCreateInvalidKindDegradesToInfo(t *testing.T) {
	svc, node := newTestService(t)

	notification, err := svc.Create(context.Background(), domain.CreateRequest{
		UserID:  node.Generate(),
		Title:   "Aviso",
		Message: "mensaje",
		Kind:    domain.Kind("fatal"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindInfo, notification.Kind)
}
