package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/models"
)

// Notification types pushed by the booking, payment and messaging flows.
const (
	TypeBookingCreated   = "booking_created"
	TypeBookingConfirmed = "booking_confirmed"
	TypeBookingCancelled = "booking_cancelled"
	TypePaymentReceived  = "payment_received"
	TypePaymentFailed    = "payment_failed"
	TypeNewMessage       = "new_message"
)

// Event is what goes over the per-user realtime channel. Clients treat it
// as a cache-invalidation hint and refetch; there is no replay.
type Event struct {
	Kind    string          `json:"kind"` // "notification" or "message"
	Payload json.RawMessage `json:"payload"`
}

func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d:events", userID)
}

// Notifier persists notifications and fans them out over Redis pub/sub.
type Notifier struct {
	db  *gorm.DB
	rdb *redis.Client
	log zerolog.Logger
}

func New(db *gorm.DB, rdb *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{db: db, rdb: rdb, log: log}
}

// Notify stores a notification row and publishes it to the user's channel.
// Publish failures are logged, not returned: the row is the source of
// truth and the client reconciles on next fetch.
func (n *Notifier) Notify(ctx context.Context, userID uint, typ, message string) (*models.Notification, error) {
	notif := models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
	}

	if err := n.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return nil, err
	}

	n.publish(ctx, userID, "notification", notif)
	return &notif, nil
}

// PublishMessage pushes a chat message to the receiver's channel. The row
// was already persisted by the caller.
func (n *Notifier) PublishMessage(ctx context.Context, msg *models.Message) {
	n.publish(ctx, msg.ReceiverID, "message", msg)
}

func (n *Notifier) publish(ctx context.Context, userID uint, kind string, payload any) {
	if n.rdb == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Msg("notify: marshal payload")
		return
	}

	ev, err := json.Marshal(Event{Kind: kind, Payload: raw})
	if err != nil {
		n.log.Error().Err(err).Msg("notify: marshal event")
		return
	}

	if err := n.rdb.Publish(ctx, UserChannel(userID), ev).Err(); err != nil {
		n.log.Warn().Err(err).Uint("user_id", userID).Msg("notify: publish failed")
	}
}
