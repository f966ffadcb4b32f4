// Package ws streams download progress over WebSocket.
//
// Message Types (Server → Client):
//   - system: connection established
//   - download: a download task snapshot in "task"
//   - pong: reply to a client ping
//   - error: the client sent something unexpected
//
// Message Types (Client → Server):
//   - ping: keep-alive
//
// Example Usage:
//
//	handler := ws.NewHandler(service, metrics, logger)
//	router.GET("/downloads/stream", handler.HandleConnection)
package ws
