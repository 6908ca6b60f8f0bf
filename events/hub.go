package events

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kanuma/frontdesk/utils"
)

// Event names observed by the front-of-house client.
const (
	EventFloorCreated       = "floorCreated"
	EventFloorUpdated       = "floorUpdated"
	EventTableCreated       = "tableCreated"
	EventTableStatusUpdated = "tableStatusUpdated"
	EventBookingCreated     = "bookingCreated"
	EventBookingUpdated     = "bookingUpdated"
	EventBookingCancelled   = "bookingCancelled"
	EventBookingConfirmed   = "bookingConfirmed"
	EventWaitingListUpdated = "waitingListUpdated"
	EventDashboardUpdated   = "dashboardUpdated"
	EventUpcomingBooking    = "upcomingBookingNotification"
	EventLongWaiting        = "longWaitingCustomer"
)

// Message is the wire format of the push channel. Delivery is at-least-once;
// consumers de-duplicate on ID.
type Message struct {
	ID    string      `json:"id"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected front-of-house client and fans events out to all
// of them. There is no per-client filtering; the client re-fetches whatever
// the event names.
type Hub struct {
	clients map[*websocket.Conn]struct{}
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]struct{}),
}

func RegisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = struct{}{}
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// Broadcast sends an event to every connected client, stamping a fresh
// message id.
func Broadcast(event string, data interface{}) {
	broadcast(Message{
		ID:    uuid.NewString(),
		Event: event,
		Data:  data,
	})
}

// BroadcastMessage sends a pre-built message. Used by the reminder sweep,
// which controls its own ids for idempotent re-delivery.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", msg.Event, err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to client: %v", msg.Event, err)
			continue
		}
	}
}

// ClientCount is reported by the health endpoint.
func ClientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}
