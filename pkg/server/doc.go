// Package server runs todoui pages live over WebSocket.
//
// Each connection to /live/{page} gets its own session. The page fixture is
// parsed into a document and the engine is loaded on a real-time loop.
// Client events (clicks, input, submits) are posted onto that loop, and the
// page HTML is pushed back whenever it changes, including changes made by
// timers such as notification expiry.
//
// # Routes
//
//	GET /healthz          liveness
//	GET /pages            JSON list of page fixtures
//	GET /pages/{page}     raw fixture HTML
//	GET /live/{page}      WebSocket session (?path= sets the page URL path)
//	GET /metrics          Prometheus metrics, when a gatherer is configured
//
// # Messages
//
// Messages are JSON text frames. The client sends:
//
//	{"type":"click","target":"//form[@id='add']//button"}
//	{"type":"input","target":"//input[@name='title']","value":"Buy milk"}
//	{"type":"submit","target":"//form[@id='add']"}
//	{"type":"hover","target":"//button","enter":true}
//	{"type":"confirm","id":"…","accepted":true}
//	{"type":"settle","target":"//form[@id='add']"}
//
// The server sends hello, html, confirm, navigate and error messages. A
// navigate message is the last one of a session: the page has gone away.
package server
