package compass

// Response is the standard envelope every list/read endpoint returns.
// Total/Skip/Limit are only set on list responses.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Detail  string `json:"detail,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Skip    *int   `json:"skip,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// OKList wraps a page of data with pagination metadata.
func OKList[T any](data T, total, skip, limit int) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
		Total:   &total,
		Skip:    &skip,
		Limit:   &limit,
	}
}

// Fail builds a failure envelope with a user facing detail message.
func Fail[T any](detail string) Response[T] {
	return Response[T]{Success: false, Detail: detail}
}
