package models

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableSize string

const (
	SizeSmall  TableSize = "SMALL"
	SizeMedium TableSize = "MEDIUM"
	SizeLarge  TableSize = "LARGE"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableBooked    TableStatus = "BOOKED"
	TableOccupied  TableStatus = "OCCUPIED"
)

// Nominal party capacity per size class. Actual seat counts live on the
// table itself; the class is only used for waiting-list recommendations.
var sizeCapacity = map[TableSize]int{
	SizeSmall:  2,
	SizeMedium: 4,
	SizeLarge:  6,
}

// RecommendedSize returns the smallest size class whose nominal capacity
// fits the party.
func RecommendedSize(peopleCount int) TableSize {
	switch {
	case peopleCount <= sizeCapacity[SizeSmall]:
		return SizeSmall
	case peopleCount <= sizeCapacity[SizeMedium]:
		return SizeMedium
	default:
		return SizeLarge
	}
}

type Table struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableNumber string      `gorm:"type:varchar(50);not null" json:"tableNumber"`
	Size        TableSize   `gorm:"type:varchar(20);not null" json:"size"`
	Seats       int         `gorm:"not null" json:"seats"`
	Status      TableStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	FloorID     string      `gorm:"type:varchar(36);index;not null" json:"floorId"`

	// Set only when a party is physically seated.
	OccupiedSince *time.Time `json:"occupiedSince"`

	// Staff-set ETA override, independent of any booking's computed end.
	AvailableInMinutes *int `json:"availableInMinutes"`

	// Marks that the current status came from a staff override rather than
	// the state machine, so reconciliation repairs drift instead of
	// treating it as corruption.
	ManualOverride bool `gorm:"not null;default:false" json:"manualOverride"`

	Bookings []Booking `gorm:"foreignKey:TableID" json:"Bookings,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// CompareTableNumbers orders display labels numerically where possible, so
// "T2" sorts before "T10". Labels without a numeric part fall back to plain
// string comparison.
func CompareTableNumbers(a, b string) int {
	na, oka := trailingNumber(a)
	nb, okb := trailingNumber(b)
	if oka && okb && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trailingNumber(s string) (int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortTables orders tables for display within a floor.
func SortTables(tables []Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return CompareTableNumbers(tables[i].TableNumber, tables[j].TableNumber) < 0
	})
}
