package eventpubsub

import (
	"errors"
	"sync"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

var ErrBusNotInitialized = errors.New("event bus not initialized")

var (
	bus EventBus.Bus
	mu  sync.RWMutex
)

func Init() {
	mu.Lock()
	defer mu.Unlock()

	bus = EventBus.New()
}

func current() EventBus.Bus {
	mu.RLock()
	defer mu.RUnlock()

	return bus
}

// Publish is a no-op until Init has been called.
func Publish(topic string, event interface{}) {
	if b := current(); b != nil {
		b.Publish(topic, event)
	}
}

func Subscribe(topic string, callbackFn interface{}) error {
	b := current()
	if b == nil {
		return ErrBusNotInitialized
	}

	if err := b.SubscribeAsync(topic, callbackFn, false); err != nil {
		return err
	}

	log.Debugf("Subscribed to topic %s", topic)
	return nil
}

func Unsubscribe(topic string, callbackFn interface{}) error {
	b := current()
	if b == nil {
		return ErrBusNotInitialized
	}

	return b.Unsubscribe(topic, callbackFn)
}

// WaitAsync blocks until every asynchronous subscriber has returned.
func WaitAsync() {
	if b := current(); b != nil {
		b.WaitAsync()
	}
}
