package gateway

import (
	"encoding/json"
)

const (
	successJsonKey = "success"
	errorJsonKey   = "error"
	dataJsonKey    = "data"
)

// GenericApiResponseBody is the uniform response envelope. Domain failures
// report {success:false, error} at HTTP 200; only malformed requests get a
// non-200 status.
type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody() GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
	}
}

func NewGenericApiDataResponseBody(data any) GenericApiResponseBody {
	body := NewGenericApiSuccessResponseBody()
	body[dataJsonKey] = data
	return body
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}
