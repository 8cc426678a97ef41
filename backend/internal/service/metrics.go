package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/parley-chat/parley/shared/errors"
)

var (
	messagesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_messages_created_total",
			Help: "Messages stored, by container kind and how they were created",
		},
		[]string{"container", "source"},
	)

	notificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_notifications_created_total",
			Help: "Notifications created, by type",
		},
		[]string{"type"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_operations_total",
			Help: "Service operations by outcome status code",
		},
		[]string{"operation", "status"},
	)
)

// observe counts the outcome of op and passes err through.
func observe(op string, err error) error {
	status := 200
	if err != nil {
		status = errors.StatusCode(err)
	}
	operationsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	return err
}
