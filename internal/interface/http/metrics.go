package handlers

import "expvar"

// metrics is published under "rentivu" on /api/debug/vars.
var metrics = expvar.NewMap("rentivu")

const (
	metricLoginOK            = "logins_ok"
	metricLoginFailed        = "logins_failed"
	metricRegistrations      = "registrations"
	metricReservations       = "reservations_created"
	metricReservationsDenied = "reservations_rejected"
)
