package api

import "encoding/json"

// List is the normalized shape for list endpoints. The backend returns
// either a bare array or an {items,total,pages} envelope depending on
// endpoint; both normalize here, and anything else coerces to empty rather
// than failing the view. The backend evolves independently, so a surprise
// shape must never crash the console.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func DecodeList[T any](raw []byte) List[T] {
	var bare []T
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == nil {
			bare = []T{}
		}
		return List[T]{Items: bare, Total: len(bare), Pages: 1}
	}
	var env List[T]
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Items == nil {
			env.Items = []T{}
		}
		if env.Pages == 0 {
			env.Pages = 1
		}
		return env
	}
	return List[T]{Items: []T{}, Pages: 1}
}

// DecodeObject coerces a malformed body to the zero value of T.
func DecodeObject[T any](raw []byte) T {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}
