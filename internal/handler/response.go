package handler

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope every JSON endpoint returns. Data is only
// set on success, Message only on error; empty fields stay off the
// wire.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: statusSuccess, Data: data}
}

func NewErrorResponse(message string) *Response {
	return &Response{Status: statusError, Message: message}
}
