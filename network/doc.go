// Package network carries game messages between the session controller and
// its clients.
//
// # Core Components
//
// Conn: one client connection. Sending never blocks: every connection owns a
// buffered queue drained by its own writer goroutine, and a connection whose
// queue is full is closed instead of stalling the sender.
//
// Handler: the receiver of connection events. The session controller
// implements it.
//
// Server: a TCP listener. Every connection carries a stream of JSON objects,
// one per line.
//
// Gateway: a WebSocket endpoint carrying the same messages, one JSON object
// per text frame.
//
// # TLS
//
// Both transports can be wrapped in TLS with WithCertificate. Self-signed
// certificates for local games come from GenerateSelfSignedCert.
package network
