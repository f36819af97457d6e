package types

// Envelope is the uniform JSON response shape of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps a payload in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
