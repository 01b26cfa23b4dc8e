package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mezonai/currency/logx"
)

const subscriberBuffer = 256

type SubscriberID string

type Subscriber struct {
	ID      SubscriberID
	Channel chan LedgerEvent
	// accounts filters delivery; empty means every account
	accounts map[string]struct{}
}

// EventBus fans ledger events out to subscribers. Publishing never blocks: a subscriber whose
// buffer is full misses the event.
type EventBus struct {
	subscribers map[SubscriberID]*Subscriber
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[SubscriberID]*Subscriber),
	}
}

func (eb *EventBus) generateUUIDID() SubscriberID {
	id := uuid.Must(uuid.NewV7())
	return SubscriberID(id.String())
}

// Subscribe registers a subscriber for events of the given accounts, or of all accounts when
// none are given.
func (eb *EventBus) Subscribe(accounts ...string) (SubscriberID, <-chan LedgerEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.generateUUIDID()
	subscriber := &Subscriber{
		ID:       id,
		Channel:  make(chan LedgerEvent, subscriberBuffer),
		accounts: make(map[string]struct{}, len(accounts)),
	}
	for _, a := range accounts {
		subscriber.accounts[a] = struct{}{}
	}
	eb.subscribers[id] = subscriber

	logx.Info("EVENTBUS", fmt.Sprintf("Subscribed | subscriber_id=%s | accounts=%d | total_subscribers=%d", id, len(accounts), len(eb.subscribers)))
	return id, subscriber.Channel
}

// Unsubscribe removes a subscription by ID and closes its channel
func (eb *EventBus) Unsubscribe(id SubscriberID) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscriber, exists := eb.subscribers[id]
	if !exists {
		logx.Warn("EVENTBUS", fmt.Sprintf("Attempted to unsubscribe non-existent subscriber | subscriber_id=%s", id))
		return false
	}

	delete(eb.subscribers, id)
	close(subscriber.Channel)

	logx.Info("EVENTBUS", fmt.Sprintf("Unsubscribed | subscriber_id=%s | remaining_subscribers=%d", id, len(eb.subscribers)))
	return true
}

// Publish delivers event to every interested subscriber
func (eb *EventBus) Publish(event LedgerEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	account := string(event.Account())
	for id, subscriber := range eb.subscribers {
		if len(subscriber.accounts) > 0 {
			if _, ok := subscriber.accounts[account]; !ok {
				continue
			}
		}
		select {
		case subscriber.Channel <- event:
		default:
			logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full | subscriber_id=%s | event_type=%s | account=%s", id, event.Type(), account))
		}
	}
}

// GetTotalSubscriptions returns the total number of active subscriptions
func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subscribers)
}

// HasSubscriber checks if a subscriber with the given ID exists
func (eb *EventBus) HasSubscriber(id SubscriberID) bool {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	_, exists := eb.subscribers[id]
	return exists
}
