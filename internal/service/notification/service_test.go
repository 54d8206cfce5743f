package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	items     map[string]*notification.Notification
	batches   int
	nextID    int
	createErr error
	purgedAt  time.Time
}

func newFakeRepo(items ...*notification.Notification) *fakeRepo {
	r := &fakeRepo{items: make(map[string]*notification.Notification)}
	for _, n := range items {
		r.items[n.ID] = n
	}
	return r
}

func (r *fakeRepo) assignID(n *notification.Notification) {
	if n.ID == "" {
		r.nextID++
		n.ID = fmt.Sprintf("generated-%d", r.nextID)
	}
}

func (r *fakeRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.assignID(n)
	r.items[n.ID] = n
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.batches++
	for _, n := range ns {
		r.assignID(n)
		r.items[n.ID] = n
	}
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string, userID string) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.RecipientID != userID || n.IsDeleted {
		return nil, notification.ErrNotificationNotFound
	}
	return n, nil
}

func (r *fakeRepo) live(userID string, unreadOnly bool) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range r.items {
		if n.RecipientID != userID || n.IsDeleted || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeRepo) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.live(userID, unreadOnly)
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r *fakeRepo) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live(userID, true)), nil
}

func (r *fakeRepo) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if n, ok := r.items[id]; ok && n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.live(userID, true) {
		n.IsRead = true
	}
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.RecipientID != userID || n.IsDeleted {
		return notification.ErrNotificationNotFound
	}
	n.IsDeleted = true
	return nil
}

func (r *fakeRepo) PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgedAt = olderThan
	var purged int64
	for id, n := range r.items {
		if n.IsDeleted && n.CreatedAt.Before(olderThan) {
			delete(r.items, id)
			purged++
		}
	}
	return purged, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fakeSchedules struct {
	snap     *schedule.Snapshot
	err      error
	from, to time.Time
	calls    int
}

func (f *fakeSchedules) GetSnapshot(ctx context.Context, userID string, from, to time.Time) (*schedule.Snapshot, error) {
	f.calls++
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func packingSnapshot() *schedule.Snapshot {
	return &schedule.Snapshot{
		UserID: "u1",
		Entries: []schedule.TrackEntry{
			{ID: "t1", Shift: &schedule.Shift{
				ShiftID:         "s1",
				WorkstationCode: strPtr("PACK"),
				Start:           timePtr(time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)),
				End:             timePtr(time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)),
			}},
		},
	}
}

const helpCallAppData = `{"eventType":"HELP_CALL","initiatorShift":{"shiftId":"s1"},"initiatingAssociateFirstName":"Ann","initiatingAssociateLastName":"Lee"}`

func newTestService(t *testing.T, repo notification.Repository, schedules schedule.SnapshotRepository, hub *Hub, cfg Config) *service {
	t.Helper()
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := newService(repo, schedules, hub, cfg, func() time.Time { return fixedNow })
	t.Cleanup(s.Stop)
	return s
}

func TestGetNotifications_RendersWithSnapshot(t *testing.T) {
	repo := newFakeRepo(
		&notification.Notification{
			ID:             "n1",
			RecipientID:    "u1",
			Message:        strPtr("fallback"),
			AppData:        strPtr(helpCallAppData),
			CreateDateTime: strPtr("2024-03-15T10:05:00Z"),
			CreatedAt:      fixedNow.Add(-time.Hour),
		},
		&notification.Notification{
			ID:          "n2",
			RecipientID: "u1",
			Message:     strPtr("<p>Plain <b>update</b></p>"),
			IsRead:      true,
			CreatedAt:   fixedNow.Add(-2 * time.Hour),
		},
		&notification.Notification{ID: "n3", RecipientID: "u2", Message: strPtr("other user")},
	)
	schedules := &fakeSchedules{snap: packingSnapshot()}
	s := newTestService(t, repo, schedules, nil, Config{ScheduleWindowDays: 3})

	resp, err := s.GetNotifications(context.Background(), "u1", 0, 0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.UnreadCount)
	require.Len(t, resp.Notifications, 2)

	first := resp.Notifications[0]
	assert.Equal(t, "n1", first.ID)
	assert.Equal(t, "Ann Lee needs help covering Packing 2:30pm-10:00pm on 3/15.", first.Preview)
	assert.Equal(t, "3/15/24 10:05am", first.CreatedDisplay)

	second := resp.Notifications[1]
	assert.Equal(t, "Plain update", second.Preview)
	assert.Equal(t, "3/15/24 7:00am", second.CreatedDisplay)
	assert.True(t, second.IsRead)

	assert.Equal(t, 1, schedules.calls)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), schedules.from)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), schedules.to)
}

func TestGetNotification_ScheduleFailureStillRenders(t *testing.T) {
	repo := newFakeRepo(&notification.Notification{
		ID:          "n1",
		RecipientID: "u1",
		Message:     strPtr("Original text"),
		AppData:     strPtr(helpCallAppData),
	})
	s := newTestService(t, repo, &fakeSchedules{err: errors.New("db down")}, nil, Config{})

	resp, err := s.GetNotification(context.Background(), "u1", "n1")
	require.NoError(t, err)
	// no snapshot and no payload times: the message is kept
	assert.Equal(t, "Original text", resp.Preview)
	assert.Equal(t, "", resp.CreatedDisplay)

	_, err = s.GetNotification(context.Background(), "u2", "n1")
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestRender_UsesRequestSnapshot(t *testing.T) {
	s := newTestService(t, newFakeRepo(), nil, nil, Config{})

	resp, err := s.Render(context.Background(), notification.RenderRequest{
		Notification: notification.RecordRequest{
			ID:             "n1",
			Message:        strPtr("<p>Summary</p><table><tr><th>When</th></tr><tr><td>2024-03-15T00:00:00</td></tr></table>"),
			CreateDateTime: strPtr("not a date"),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 2)
	assert.Equal(t, render.BlockText, resp.Blocks[0].Type())
	assert.Equal(t, render.BlockTable, resp.Blocks[1].Type())
	assert.Equal(t, "Summary\nWhen\n3/15/24", resp.Preview)
	assert.Equal(t, "not a date", resp.CreatedDisplay)
}

func TestRender_InvalidSnapshot(t *testing.T) {
	s := newTestService(t, newFakeRepo(), nil, nil, Config{})

	_, err := s.Render(context.Background(), notification.RenderRequest{
		Notification: notification.RecordRequest{Message: strPtr("hi")},
		Snapshot: &schedule.SnapshotRequest{Entries: []schedule.TrackEntryRequest{
			{ID: "t1", Shift: &schedule.ShiftRequest{ShiftID: "s1", Start: strPtr("yesterday")}},
		}},
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestQueueNotification_FlushesAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	hub := sse.NewHub[notification.RenderedNotificationResponse](4)
	s := newTestService(t, repo, &fakeSchedules{snap: packingSnapshot()}, hub, Config{
		BatchSize:     2,
		FlushInterval: time.Hour,
		WorkerCount:   1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := s.Subscribe(ctx, "u1")
	defer cleanup()

	require.NoError(t, s.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "u1",
		AppData:     strPtr(helpCallAppData),
	}))
	require.NoError(t, s.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "u2",
		Message:     strPtr("hello"),
	}))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Ann Lee needs help covering Packing 2:30pm-10:00pm on 3/15.", ev.Data.Preview)
		assert.Equal(t, "3/15/24 9:00am", ev.Data.CreatedDisplay)
		assert.NotEmpty(t, ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a rendered notification event")
	}

	assert.Equal(t, 2, repo.count())
}

func TestQueueNotification_Validation(t *testing.T) {
	s := newTestService(t, newFakeRepo(), nil, nil, Config{})

	err := s.QueueNotification(context.Background(), notification.CreateNotificationRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestQueueNotification_FullQueueInsertsDirectly(t *testing.T) {
	repo := newFakeRepo()
	// no workers are started, so the single buffered slot stays occupied
	s := &service{
		repo:   repo,
		config: Config{Location: time.UTC, ScheduleWindowDays: 7},
		now:    func() time.Time { return fixedNow },
		queue:  make(chan notification.CreateNotificationRequest, 1),
		stopCh: make(chan struct{}),
	}
	s.queue <- notification.CreateNotificationRequest{RecipientID: "u1", Message: strPtr("one")}

	require.NoError(t, s.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Message:     strPtr("two"),
	}))
	assert.Equal(t, 1, repo.count())

	repo.createErr = errors.New("insert failed")
	err := s.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Message:     strPtr("three"),
	})
	assert.EqualError(t, err, "insert failed")
}

func TestStop_FlushesPendingAndRejectsNew(t *testing.T) {
	repo := newFakeRepo()
	s := newService(repo, nil, nil, Config{BatchSize: 50, FlushInterval: time.Hour, WorkerCount: 1, Location: time.UTC}, func() time.Time { return fixedNow })

	for i := 0; i < 3; i++ {
		require.NoError(t, s.QueueNotification(context.Background(), notification.CreateNotificationRequest{
			RecipientID: "u1",
			Message:     strPtr("queued"),
		}))
	}

	s.Stop()
	s.Stop()
	assert.Equal(t, 3, repo.count())

	err := s.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Message:     strPtr("late"),
	})
	assert.ErrorIs(t, err, notification.ErrQueueClosed)
}

func TestDeleteAndPurge(t *testing.T) {
	repo := newFakeRepo(
		&notification.Notification{ID: "n1", RecipientID: "u1", CreatedAt: fixedNow.AddDate(0, 0, -40)},
		&notification.Notification{ID: "n2", RecipientID: "u1", CreatedAt: fixedNow.AddDate(0, 0, -1)},
	)
	s := newTestService(t, repo, nil, nil, Config{})
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "u1", "n1"))
	require.NoError(t, s.Delete(ctx, "u1", "n2"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "n1"), notification.ErrNotificationNotFound)

	purged, err := s.PurgeDeleted(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, fixedNow.Add(-30*24*time.Hour), repo.purgedAt)
	assert.Equal(t, 1, repo.count())
}

func TestMarkAsRead(t *testing.T) {
	repo := newFakeRepo(&notification.Notification{ID: "01890a5d-ac96-774b-bcce-b302099a8057", RecipientID: "u1"})
	s := newTestService(t, repo, nil, nil, Config{})
	ctx := context.Background()

	var verrs validator.ValidationErrors
	require.ErrorAs(t, s.MarkAsRead(ctx, "u1", notification.MarkAsReadRequest{}), &verrs)

	require.NoError(t, s.MarkAsRead(ctx, "u1", notification.MarkAsReadRequest{
		NotificationIDs: []string{"01890a5d-ac96-774b-bcce-b302099a8057"},
	}))
	count, err := s.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSubscribe_WithoutHub(t *testing.T) {
	s := newTestService(t, newFakeRepo(), nil, nil, Config{})
	ch, cleanup := s.Subscribe(context.Background(), "u1")
	defer cleanup()
	_, ok := <-ch
	assert.False(t, ok)
}
