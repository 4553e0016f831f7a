package constant

// Stream delta types delivered over the websocket. They mirror the upstream
// frame types one to one so the web client can share handling code.
const (
	DeltaStart    = "start"
	DeltaToken    = "token"
	DeltaSources  = "sources"
	DeltaComplete = "complete"
	DeltaError    = "error"
)
