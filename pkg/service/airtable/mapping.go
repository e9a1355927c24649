package airtable

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// Role is a semantic slot in a contact table. Each role resolves to a concrete
// field name through an ordered candidate list, so the client works against
// bases whose field names differ.
type Role string

const (
	RoleName    Role = "name"
	RoleEmail   Role = "email"
	RolePhone   Role = "phone"
	RoleCompany Role = "company"
	RoleStatus  Role = "status"
	RoleNotes   Role = "notes"
)

// Field describes one column of an Airtable table schema.
type Field struct {
	Name string
	Type string
}

// Mapping resolves semantic roles to concrete field names.
type Mapping struct {
	Candidates map[Role][]string
}

// DefaultMapping carries the field-name candidates observed across customer
// bases, most specific first.
func DefaultMapping() *Mapping {
	return &Mapping{
		Candidates: map[Role][]string{
			RoleName:    {"Name", "Full Name", "Contact Name", "First Name", "Title"},
			RoleEmail:   {"Email", "Email Address", "Contact Email", "Primary Email"},
			RolePhone:   {"Phone", "Phone Number", "Mobile", "Contact Number"},
			RoleCompany: {"Company", "Organization", "Company Name", "Business"},
			RoleStatus:  {"Status", "Stage", "Contact Status"},
			RoleNotes:   {"Notes", "Description", "Comments", "Details"},
		},
	}
}

// mappingFile is the TOML shape for candidate overrides:
//
//	[candidates]
//	name = ["Name", "Person"]
//	email = ["Email"]
type mappingFile struct {
	Candidates map[string][]string `toml:"candidates"`
}

// LoadMapping reads candidate overrides from a TOML file. Roles absent from
// the file keep the defaults.
func LoadMapping(path string) (*Mapping, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from CLI flag
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read mapping file", goerr.V("path", path))
	}

	var file mappingFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse mapping file", goerr.V("path", path))
	}

	m := DefaultMapping()
	for role, candidates := range file.Candidates {
		if len(candidates) == 0 {
			continue
		}
		m.Candidates[Role(role)] = candidates
	}
	return m, nil
}

// Resolve returns the first candidate field present in the schema, matched
// case-insensitively. Empty schema means no introspection was possible; the
// first candidate is assumed to exist.
func (m *Mapping) Resolve(schema []Field, role Role) string {
	candidates := m.Candidates[role]
	if len(candidates) == 0 {
		return ""
	}
	if len(schema) == 0 {
		return candidates[0]
	}

	names := make(map[string]string, len(schema))
	for _, f := range schema {
		names[strings.ToLower(f.Name)] = f.Name
	}
	for _, candidate := range candidates {
		if name, ok := names[strings.ToLower(candidate)]; ok {
			return name
		}
	}
	return ""
}

// MapFields maps role values onto concrete schema fields. Empty values are
// dropped. When the name role has no candidate match it falls back to the
// first text field of the schema; an error means nothing could be mapped.
func (m *Mapping) MapFields(schema []Field, values map[Role]string) (map[string]any, error) {
	fields := make(map[string]any)
	for role, value := range values {
		if value == "" {
			continue
		}
		name := m.Resolve(schema, role)
		if name == "" && role == RoleName {
			name = firstTextField(schema)
		}
		if name == "" {
			continue
		}
		fields[name] = value
	}

	if len(fields) == 0 {
		return nil, goerr.New("no field could be mapped onto the table schema")
	}
	return fields, nil
}

func firstTextField(schema []Field) string {
	for _, f := range schema {
		switch f.Type {
		case "singleLineText", "multilineText", "richText", "text", "":
			return f.Name
		}
	}
	return ""
}
