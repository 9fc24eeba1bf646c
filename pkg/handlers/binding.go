package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/PrivateRookie/psql/pkg/template"
)

// maxBodyBytes bounds the request body read for parameter envelopes.
const maxBodyBytes = 1 << 20

// paramsEnvelope is the JSON body shape for non-GET queries:
// {"params": {"name": value-or-array}}.
type paramsEnvelope struct {
	Params map[string]json.RawMessage `json:"params"`
}

// suppliedValues extracts the raw string form of every supplied
// parameter. GET requests carry them in the query string, other
// methods in a JSON body envelope.
func suppliedValues(r *http.Request) (map[string][]string, error) {
	if r.Method == http.MethodGet {
		return r.URL.Query(), nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return map[string][]string{}, nil
	}
	var envelope paramsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	supplied := make(map[string][]string, len(envelope.Params))
	for name, raw := range envelope.Params {
		values, err := jsonToStrings(raw)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		supplied[name] = values
	}
	return supplied, nil
}

// jsonToStrings converts a JSON parameter value into the raw string
// form the binding layer parses. Arrays flatten to one string per
// element; scalars become a single-element slice.
func jsonToStrings(raw json.RawMessage) ([]string, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		values := make([]string, 0, len(arr))
		for _, item := range arr {
			v, err := jsonScalarToString(item)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}
	v, err := jsonScalarToString(raw)
	if err != nil {
		return nil, err
	}
	return []string{v}, nil
}

func jsonScalarToString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value %s, expected string or number", string(raw))
}

// bindRequest builds a render context for the program's parameters
// from the request.
func bindRequest(r *http.Request, params []template.Param) (template.Context, error) {
	supplied, err := suppliedValues(r)
	if err != nil {
		return nil, err
	}
	return template.BuildContext(params, supplied)
}
