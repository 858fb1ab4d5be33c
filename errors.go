package docsift

// ClientError reports bad or unsatisfiable input: a missing query, an
// unparsable or out-of-range parameter, or a page number past the last
// page. It is always user-correctable and maps to a 4xx response.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError reports an infrastructure fault, such as the search backend
// being unreachable. It maps to a 5xx response.
type ServerError struct {
	Message string
	Err     error
}

func (e *ServerError) Error() string { return e.Message }

func (e *ServerError) Unwrap() error { return e.Err }
