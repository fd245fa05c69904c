package domain

// StatusSuccess is the meta.status value the backend uses for
// business-level success.
const StatusSuccess = "success"

// Meta is the business-status header carried by every response.
type Meta struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Envelope is the standard {meta, data} wrapper around every response
// payload. Data stays nil when the server sends "data": null.
type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data *T   `json:"data"`
}
