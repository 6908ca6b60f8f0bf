package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitingStatus string

const (
	WaitingWaiting   WaitingStatus = "WAITING"
	WaitingNotified  WaitingStatus = "NOTIFIED"
	WaitingAssigned  WaitingStatus = "ASSIGNED"
	WaitingCancelled WaitingStatus = "CANCELLED"
)

type WaitingList struct {
	ID                 string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerName       string      `gorm:"type:varchar(100);not null" json:"customerName"`
	Mobile             string      `gorm:"type:varchar(20);not null" json:"mobile"`
	Email              string      `gorm:"type:varchar(100)" json:"email,omitempty"`
	PeopleCount        int         `gorm:"not null" json:"peopleCount"`
	PreferredTableSize TableSize   `gorm:"type:varchar(20);not null" json:"preferredTableSize"`
	BookingType        BookingType `gorm:"type:varchar(20);not null" json:"bookingType"`

	// Pre-booking waiters keep the slot they originally asked for.
	BookingDate     string `gorm:"type:varchar(10)" json:"bookingDate,omitempty"`
	BookingTimeSlot string `gorm:"type:varchar(5)" json:"bookingTimeSlot,omitempty"`

	Priority             int           `gorm:"not null;default:0;index" json:"priority"`
	Status               WaitingStatus `gorm:"type:varchar(20);not null;default:'WAITING'" json:"status"`
	EstimatedWaitMinutes *int          `json:"estimatedWaitMinutes,omitempty"`
	NotifiedAt           *time.Time    `json:"notifiedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (w *WaitingList) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// WaitingMinutes is the basis for long-waiting alerts.
func (w *WaitingList) WaitingMinutes(now time.Time) int {
	return int(now.Sub(w.CreatedAt) / time.Minute)
}
