// Package plan loads the YAML serving plan: the set of named database
// connections plus the templated queries exposed over HTTP.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPrefix  = "api"
	DefaultDocPath = "_doc"
	DefaultAddress = "127.0.0.1:12345"
)

// Contact is surfaced verbatim in the generated API document.
type Contact struct {
	Name  string `yaml:"name,omitempty"`
	URL   string `yaml:"url,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Query describes one HTTP endpoint backed by a templated statement.
// SQL holds the template inline, or "@<path>" to load it from a file
// relative to the plan document.
type Query struct {
	Name    string   `yaml:"name"`
	Conn    string   `yaml:"conn"`
	SQL     string   `yaml:"sql"`
	Path    string   `yaml:"path,omitempty"`
	Method  string   `yaml:"method,omitempty"`
	Summary string   `yaml:"summary,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
}

// Route returns the URL path segment the query is served under.
func (q Query) Route() string {
	if q.Path != "" {
		return strings.Trim(q.Path, "/")
	}
	return q.Name
}

// Plan is the root of the serving configuration document.
type Plan struct {
	Title       string            `yaml:"title,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Contact     *Contact          `yaml:"contact,omitempty"`
	Prefix      string            `yaml:"prefix,omitempty"`
	DocPath     string            `yaml:"doc_path,omitempty"`
	Addresses   []string          `yaml:"addresses,omitempty"`
	Conns       map[string]string `yaml:"conns"`
	Queries     []Query           `yaml:"queries"`
}

// Load reads and validates a plan document. SQL templates referenced
// with the "@<path>" form are resolved relative to the plan file and
// inlined before the plan is returned.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	for i := range p.Queries {
		if err := p.Queries[i].resolveSQL(base); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse decodes a plan document and applies defaults. It does not
// resolve "@<path>" SQL references; Load does that.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) applyDefaults() {
	if p.Prefix == "" {
		p.Prefix = DefaultPrefix
	}
	p.Prefix = strings.Trim(p.Prefix, "/")
	if p.DocPath == "" {
		p.DocPath = DefaultDocPath
	}
	p.DocPath = strings.Trim(p.DocPath, "/")
	if len(p.Addresses) == 0 {
		p.Addresses = []string{DefaultAddress}
	}
	for i := range p.Queries {
		if p.Queries[i].Method == "" {
			p.Queries[i].Method = "GET"
		} else {
			p.Queries[i].Method = strings.ToUpper(p.Queries[i].Method)
		}
	}
}

func (p *Plan) validate() error {
	seen := make(map[string]struct{}, len(p.Queries))
	for _, q := range p.Queries {
		if q.Name == "" {
			return fmt.Errorf("plan: query without a name")
		}
		if _, dup := seen[q.Name]; dup {
			return fmt.Errorf("plan: duplicated query name %q", q.Name)
		}
		seen[q.Name] = struct{}{}
		if q.Conn == "" {
			return fmt.Errorf("plan: query %q has no conn", q.Name)
		}
		if _, ok := p.Conns[q.Conn]; !ok {
			return fmt.Errorf("plan: query %q references unknown conn %q", q.Name, q.Conn)
		}
		if q.SQL == "" {
			return fmt.Errorf("plan: query %q has no sql", q.Name)
		}
	}
	return nil
}

func (q *Query) resolveSQL(base string) error {
	if !strings.HasPrefix(q.SQL, "@") {
		return nil
	}
	rel := strings.TrimPrefix(q.SQL, "@")
	data, err := os.ReadFile(filepath.Join(base, rel))
	if err != nil {
		return fmt.Errorf("plan: query %q: read sql file: %w", q.Name, err)
	}
	q.SQL = string(data)
	return nil
}
