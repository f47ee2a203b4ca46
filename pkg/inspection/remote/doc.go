// Package remote moves inspection snapshots over HTTP.
//
// [Handler] publishes any [inspection.Source] on two routes:
//
//	GET /inspection   the current snapshot as JSON
//	GET /healthz      liveness probe
//
// [Client] is the matching [inspection.Source]: each request runs one GET in
// its own goroutine. A failed request is logged and its channel is closed
// without a value, so a poller simply re-arms on the next frame.
//
// Every request carries an X-Request-ID header, generated by the client and
// echoed by the handler.
package remote
