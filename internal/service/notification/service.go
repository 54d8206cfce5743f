package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000

	RenderConcurrency  int // default: 8
	ScheduleWindowDays int // default: 7

	Location *time.Location
	Aliases  render.Aliases
}

// Event is the payload pushed to SSE subscribers
type Event = notification.RenderedNotificationResponse

// Hub is the SSE hub carrying rendered notifications
type Hub = sse.Hub[Event]

type service struct {
	repo      notification.Repository
	schedules schedule.SnapshotRepository
	hub       *Hub
	config    Config
	now       func() time.Time

	queue   chan notification.CreateNotificationRequest
	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers.
// schedules may be nil, in which case records render without a schedule snapshot.
func NewNotificationService(repo notification.Repository, schedules schedule.SnapshotRepository, hub *Hub, cfg Config) notification.Service {
	return newService(repo, schedules, hub, cfg, time.Now)
}

func newService(repo notification.Repository, schedules schedule.SnapshotRepository, hub *Hub, cfg Config, now func() time.Time) *service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.RenderConcurrency == 0 {
		cfg.RenderConcurrency = 8
	}
	if cfg.ScheduleWindowDays == 0 {
		cfg.ScheduleWindowDays = 7
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &service{
		repo:      repo,
		schedules: schedules,
		hub:       hub,
		config:    cfg,
		now:       now,
		queue:     make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	log.Printf("[NotificationService] Started with %d workers, batch size %d, flush interval %v",
		cfg.WorkerCount, cfg.BatchSize, cfg.FlushInterval)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.toEntity(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			log.Printf("[NotificationWorker-%d] Failed to batch insert: %v", id, err)
		} else {
			log.Printf("[NotificationWorker-%d] Inserted %d notifications", id, len(notifications))
			s.publish(ctx, notifications...)
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain whatever is still buffered before exiting
			for drained := false; !drained; {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					drained = true
				}
			}
			flush()
			return
		}
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return notification.ErrQueueClosed
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, try direct insert
		return s.directInsert(ctx, req)
	}
}

// directInsert inserts a notification directly when queue is full
func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := s.toEntity(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(ctx, n)
	return nil
}

func (s *service) toEntity(req notification.CreateNotificationRequest) *notification.Notification {
	now := s.now()
	createDateTime := req.CreateDateTime
	if createDateTime == nil {
		formatted := now.UTC().Format(time.RFC3339)
		createDateTime = &formatted
	}
	return &notification.Notification{
		RecipientID:    req.RecipientID,
		Subject:        req.Subject,
		Message:        req.Message,
		AppData:        req.AppData,
		CreateDateTime: createDateTime,
		CreatedAt:      now,
	}
}

// publish renders each notification against its recipient's schedule and
// pushes it to SSE subscribers
func (s *service) publish(ctx context.Context, notifications ...*notification.Notification) {
	if s.hub == nil {
		return
	}

	snapshots := make(map[string]*schedule.Snapshot)
	for _, n := range notifications {
		if s.hub.SubscriberCount(n.RecipientID) == 0 {
			continue
		}
		snap, ok := snapshots[n.RecipientID]
		if !ok {
			snap = s.loadSnapshot(ctx, n.RecipientID)
			snapshots[n.RecipientID] = snap
		}
		s.hub.Publish(n.RecipientID, sse.Event[Event]{
			UserID: n.RecipientID,
			Event:  "notification",
			Data:   s.renderNotification(n, snap),
		})
	}
}

func (s *service) renderOptions() render.Options {
	return render.Options{Location: s.config.Location, Aliases: s.config.Aliases}
}

// loadSnapshot fetches the user's schedule around today. Failures are logged
// and yield a nil snapshot, which the pipeline accepts.
func (s *service) loadSnapshot(ctx context.Context, userID string) *schedule.Snapshot {
	if s.schedules == nil {
		return nil
	}

	now := s.now().In(s.config.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.config.Location)
	from := today.AddDate(0, 0, -s.config.ScheduleWindowDays)
	to := today.AddDate(0, 0, s.config.ScheduleWindowDays)

	snap, err := s.schedules.GetSnapshot(ctx, userID, from, to)
	if err != nil {
		log.Printf("[NotificationService] Failed to load schedule for user %s: %v", userID, err)
		return nil
	}
	return snap
}

func (s *service) createdDisplay(createDateTime *string, createdAt time.Time) string {
	if createDateTime != nil {
		return render.FormatCreated(*createDateTime, s.config.Location)
	}
	if createdAt.IsZero() {
		return ""
	}
	return render.FormatCreated(createdAt.Format(time.RFC3339Nano), s.config.Location)
}

func (s *service) renderNotification(n *notification.Notification, snap *schedule.Snapshot) notification.RenderedNotificationResponse {
	blocks := render.Render(render.Input{
		Message:  n.Message,
		AppData:  n.AppData,
		Snapshot: snap,
	}, s.renderOptions())

	return notification.RenderedNotificationResponse{
		ID:             n.ID,
		Subject:        n.Subject,
		Blocks:         blocks,
		Preview:        render.PlainText(blocks),
		CreatedDisplay: s.createdDisplay(n.CreateDateTime, n.CreatedAt),
		IsRead:         n.IsRead,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
}

// GetNotifications retrieves paginated rendered notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.RenderedListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := s.loadSnapshot(ctx, userID)

	responses := make([]notification.RenderedNotificationResponse, len(notifications))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.RenderConcurrency)
	for i, n := range notifications {
		i, n := i, n // per-iteration copy (Go <1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			responses[i] = s.renderNotification(n, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &notification.RenderedListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetNotification retrieves and renders a single notification
func (s *service) GetNotification(ctx context.Context, userID string, notificationID string) (*notification.RenderedNotificationResponse, error) {
	n, err := s.repo.GetByID(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}

	resp := s.renderNotification(n, s.loadSnapshot(ctx, userID))
	return &resp, nil
}

// Render runs the pipeline over a caller-supplied record and snapshot
func (s *service) Render(ctx context.Context, req notification.RenderRequest) (*notification.RenderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var snap *schedule.Snapshot
	if req.Snapshot != nil {
		snap = req.Snapshot.ToSnapshot()
	}

	blocks := render.Render(render.Input{
		Message:  req.Notification.Message,
		AppData:  req.Notification.AppData,
		Snapshot: snap,
	}, s.renderOptions())

	created := ""
	if req.Notification.CreateDateTime != nil {
		created = render.FormatCreated(*req.Notification.CreateDateTime, s.config.Location)
	}

	return &notification.RenderResponse{
		Blocks:         blocks,
		Preview:        render.PlainText(blocks),
		CreatedDisplay: created,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete soft-deletes a notification
func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.SoftDelete(ctx, notificationID, userID)
}

// PurgeDeleted hard-deletes soft-deleted notifications older than retention
func (s *service) PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.PurgeDeleted(ctx, s.now().Add(-retention))
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	out := make(chan notification.SSEEvent, 10)
	if s.hub == nil {
		close(out)
		return out, func() {}
	}

	ch, cleanup := s.hub.Subscribe(userID)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued notifications and stops the workers. Safe to call twice.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("[NotificationService] Stopped")
}
