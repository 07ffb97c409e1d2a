package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/outbreak/internal/chain"
	"github.com/roach88/outbreak/internal/trace"
)

// marshalTimes converts infection times to canonical JSON TEXT.
func marshalTimes(tInf []int) (string, error) {
	arr := make([]any, len(tInf))
	for i, t := range tInf {
		arr[i] = t
	}
	data, err := trace.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal t_inf: %w", err)
	}
	return string(data), nil
}

// marshalAncestry converts infectors to canonical JSON TEXT. Roots are 0.
func marshalAncestry(alpha []chain.Case) (string, error) {
	arr := make([]any, len(alpha))
	for i, a := range alpha {
		arr[i] = int(a)
	}
	data, err := trace.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal alpha: %w", err)
	}
	return string(data), nil
}

func unmarshalTimes(data string) ([]int, error) {
	var out []int
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal t_inf: %w", err)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func unmarshalAncestry(data string) ([]chain.Case, error) {
	var raw []int
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal alpha: %w", err)
	}
	out := make([]chain.Case, len(raw))
	for i, a := range raw {
		out[i] = chain.Case(a)
	}
	return out, nil
}
