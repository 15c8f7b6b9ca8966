// Package prometheus renders session manager metrics in Prometheus text
// exposition format.
//
// [NewExporter] accepts an [authsession.Manager] and exposes an
// http.Handler. Counter names are prefixed authsession_*_total; the
// single histogram is authsession_login_latency_seconds. Nothing is
// registered in a global Prometheus registry; callers mount the Handler.
package prometheus
