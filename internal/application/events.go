package application

import (
	"context"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/pkg/helpers"
)

const (
	EventUserRegistered     = "user.registered"
	EventReservationCreated = "reservation.created"
)

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// publishEvent never fails the caller; a lost event is logged and dropped.
func publishEvent(ctx context.Context, pub EventPublisher, logger *logrus.Logger, eventType string, payload any) {
	if isNil(pub) {
		return
	}
	if err := pub.Publish(ctx, eventType, payload); err != nil {
		helpers.LogWarn(logger, "publish event failed", err, logrus.Fields{"event": eventType})
	}
}

func isNil(pub EventPublisher) bool {
	if pub == nil {
		return true
	}
	v := reflect.ValueOf(pub)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
