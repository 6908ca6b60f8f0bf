package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingType string

const (
	WalkIn     BookingType = "WALK_IN"
	PreBooking BookingType = "PRE_BOOKING"
)

type BookingStatus string

const (
	BookingBooked    BookingStatus = "BOOKED"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type ConfirmationStatus string

const (
	ConfirmationPending       ConfirmationStatus = "PENDING"
	ConfirmationConfirmed     ConfirmationStatus = "CONFIRMED"
	ConfirmationClientDelayed ConfirmationStatus = "CLIENT_DELAYED"
	ConfirmationCancelled     ConfirmationStatus = "CANCELLED"
)

const DefaultDurationMinutes = 60

type Booking struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableID      string `gorm:"type:varchar(36);index;not null" json:"tableId"`
	Table        *Table `gorm:"foreignKey:TableID" json:"Table,omitempty"`
	CustomerName string `gorm:"type:varchar(100);not null" json:"customerName"`
	Mobile       string `gorm:"type:varchar(20);not null" json:"mobile"`
	Email        string `gorm:"type:varchar(100)" json:"email,omitempty"`
	PeopleCount  int    `gorm:"not null" json:"peopleCount"`

	// Canonical start instant. BookingDate/BookingTimeSlot keep the local
	// date and time a pre-booking was made for.
	BookingTime     time.Time `gorm:"not null;index" json:"bookingTime"`
	BookingDate     string    `gorm:"type:varchar(10)" json:"bookingDate,omitempty"`
	BookingTimeSlot string    `gorm:"type:varchar(5)" json:"bookingTimeSlot,omitempty"`
	DurationMinutes int       `gorm:"not null;default:60" json:"durationMinutes"`

	BookingType        BookingType        `gorm:"type:varchar(20);not null" json:"bookingType"`
	Status             BookingStatus      `gorm:"type:varchar(20);not null;default:'BOOKED'" json:"status"`
	ConfirmationStatus ConfirmationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"confirmationStatus"`
	ConfirmedAt        *time.Time         `json:"confirmedAt,omitempty"`
	DelayMinutes       int                `gorm:"not null;default:0" json:"delayMinutes"`
	Priority           int                `gorm:"not null;default:0" json:"priority"`

	// JSON-encoded list of alert tags already delivered for this booking,
	// so a re-sweep never sends the same alert twice.
	NotificationsSent string `gorm:"type:text;default:'[]'" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}

// EffectiveStart shifts the window by the announced delay, so conflict checks
// and reminders treat a delayed party as arriving later.
func (b *Booking) EffectiveStart() time.Time {
	if b.ConfirmationStatus == ConfirmationClientDelayed && b.DelayMinutes > 0 {
		return b.BookingTime.Add(time.Duration(b.DelayMinutes) * time.Minute)
	}
	return b.BookingTime
}

func (b *Booking) EffectiveEnd() time.Time {
	return b.EffectiveStart().Add(time.Duration(b.DurationMinutes) * time.Minute)
}

func (b *Booking) SentNotifications() []string {
	var tags []string
	if b.NotificationsSent == "" {
		return tags
	}
	_ = json.Unmarshal([]byte(b.NotificationsSent), &tags)
	return tags
}

func (b *Booking) HasNotification(tag string) bool {
	for _, t := range b.SentNotifications() {
		if t == tag {
			return true
		}
	}
	return false
}

func (b *Booking) MarkNotificationSent(tag string) {
	if b.HasNotification(tag) {
		return
	}
	tags := append(b.SentNotifications(), tag)
	raw, err := json.Marshal(tags)
	if err != nil {
		return
	}
	b.NotificationsSent = string(raw)
}
