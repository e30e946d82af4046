package domain

// PushTarget is the opaque device address the push provider uses to route a
// notification to one installed client.
type PushTarget struct {
	Token        string
	RegisteredAt int64
}
