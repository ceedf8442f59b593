// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game socket.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "uno"
