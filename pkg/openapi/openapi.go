// Package openapi renders the registered queries as an OpenAPI 3.0
// document so the serving surface is browsable without reading the
// plan file.
package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/registry"
	"github.com/PrivateRookie/psql/pkg/template"
)

// rawPattern documents the #...# form raw parameters must arrive in.
const rawPattern = "^#[^#]*#$"

type Document struct {
	OpenAPI string              `json:"openapi"`
	Info    Info                `json:"info"`
	Paths   map[string]PathItem `json:"paths"`
}

type Info struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version"`
	Contact     *Contact `json:"contact,omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// PathItem holds the operations of one route keyed by lowercase HTTP
// method, matching the OpenAPI wire shape.
type PathItem map[string]*Operation

type Operation struct {
	Summary     string               `json:"summary,omitempty"`
	OperationID string               `json:"operationId"`
	Tags        []string             `json:"tags,omitempty"`
	Parameters  []Parameter          `json:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses"`
}

type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required"`
	Schema      *Schema `json:"schema"`
	Explode     bool    `json:"explode,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

type Schema struct {
	Type        string             `json:"type,omitempty"`
	Pattern     string             `json:"pattern,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Default     any                `json:"default,omitempty"`
	Description string             `json:"description,omitempty"`
}

// Generate builds the document for the current registry snapshot.
// prefix is the URL segment query routes are served under; version is
// surfaced in the info block.
func Generate(p *plan.Plan, entries map[string]*registry.Entry, version string) *Document {
	doc := &Document{
		OpenAPI: "3.0.0",
		Info: Info{
			Title:       p.Title,
			Description: p.Description,
			Version:     version,
		},
		Paths: make(map[string]PathItem, len(entries)),
	}
	if doc.Info.Title == "" {
		doc.Info.Title = "psql"
	}
	if p.Contact != nil {
		doc.Info.Contact = &Contact{Name: p.Contact.Name, URL: p.Contact.URL, Email: p.Contact.Email}
	}

	routes := make([]string, 0, len(entries))
	for route := range entries {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	for _, route := range routes {
		entry := entries[route]
		path := "/" + p.Prefix + "/" + route
		op := operationFor(entry)
		item, ok := doc.Paths[path]
		if !ok {
			item = make(PathItem)
			doc.Paths[path] = item
		}
		item[strings.ToLower(entry.Query.Method)] = op
	}
	return doc
}

func operationFor(e *registry.Entry) *Operation {
	op := &Operation{
		Summary:     e.Query.Summary,
		OperationID: e.Query.Name,
		Tags:        e.Query.Tags,
		Responses: map[string]*Response{
			"200": {
				Description: "query result rows",
				Content: map[string]MediaType{
					"application/json": {Schema: resultSchema()},
				},
			},
			"400": {Description: "invalid or missing parameters"},
		},
	}
	params := e.Program.Params()
	if e.Query.Method == "GET" {
		for _, param := range params {
			op.Parameters = append(op.Parameters, queryParameter(param))
		}
		return op
	}
	op.RequestBody = bodyFor(params)
	return op
}

func queryParameter(p template.Param) Parameter {
	return Parameter{
		Name:        p.Name,
		In:          "query",
		Description: p.Help,
		Required:    p.Required(),
		Schema:      paramSchema(p),
		Explode:     p.Type.IsArray,
	}
}

// bodyFor wraps the parameters in the {"params": {...}} envelope the
// non-GET binding path reads.
func bodyFor(params []template.Param) *RequestBody {
	props := make(map[string]*Schema, len(params))
	var required []string
	for _, p := range params {
		props[p.Name] = paramSchema(p)
		if p.Required() {
			required = append(required, p.Name)
		}
	}
	envelope := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"params": {Type: "object", Properties: props, Required: required},
		},
		Required: []string{"params"},
	}
	return &RequestBody{
		Required: true,
		Content:  map[string]MediaType{"application/json": {Schema: envelope}},
	}
}

func paramSchema(p template.Param) *Schema {
	inner := innerSchema(p.Type.Inner)
	inner.Description = p.Help
	if p.Type.IsArray {
		arr := &Schema{Type: "array", Items: inner}
		if p.Default != nil {
			arr.Default = schemaDefault(p.Default)
		}
		return arr
	}
	if p.Default != nil {
		inner.Default = schemaDefault(p.Default)
	}
	return inner
}

func innerSchema(t template.InnerType) *Schema {
	switch t {
	case template.InnerNumber:
		return &Schema{Type: "number"}
	case template.InnerRaw:
		return &Schema{Type: "string", Pattern: rawPattern}
	default:
		return &Schema{Type: "string"}
	}
}

// schemaDefault converts a template default into its JSON-native
// counterpart. Raw values keep their #...# source form since that is
// what a caller would send.
func schemaDefault(v template.ParamValue) any {
	switch val := v.(type) {
	case template.Str:
		return string(val)
	case template.Num:
		return float64(val)
	case template.Raw:
		return fmt.Sprintf("#%s#", string(val))
	case template.Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = schemaDefault(item)
		}
		return out
	default:
		return v.String()
	}
}

func resultSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"columns": {Type: "array", Items: &Schema{Type: "string"}},
			"rows":    {Type: "array", Items: &Schema{Type: "object"}},
		},
	}
}
