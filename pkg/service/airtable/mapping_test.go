package airtable_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/createai-lab/createai/pkg/service/airtable"
	"github.com/m-mizutani/gt"
)

func TestMapFields(t *testing.T) {
	mapping := airtable.DefaultMapping()

	t.Run("maps roles onto matching schema fields", func(t *testing.T) {
		schema := []airtable.Field{
			{Name: "Full Name", Type: "singleLineText"},
			{Name: "Email Address", Type: "email"},
			{Name: "Company", Type: "singleLineText"},
		}

		fields, err := mapping.MapFields(schema, map[airtable.Role]string{
			airtable.RoleName:    "Jane Doe",
			airtable.RoleEmail:   "jane@example.com",
			airtable.RoleCompany: "Acme",
			airtable.RolePhone:   "+15551234567", // no phone column
		})
		gt.NoError(t, err).Required()

		gt.Value(t, fields["Full Name"]).Equal("Jane Doe")
		gt.Value(t, fields["Email Address"]).Equal("jane@example.com")
		gt.Value(t, fields["Company"]).Equal("Acme")
		gt.Value(t, fields["Phone"]).Nil()
	})

	t.Run("matches field names case-insensitively", func(t *testing.T) {
		schema := []airtable.Field{{Name: "EMAIL", Type: "email"}}

		fields, err := mapping.MapFields(schema, map[airtable.Role]string{
			airtable.RoleEmail: "jane@example.com",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, fields["EMAIL"]).Equal("jane@example.com")
	})

	t.Run("name falls back to first text field", func(t *testing.T) {
		schema := []airtable.Field{
			{Name: "Created", Type: "dateTime"},
			{Name: "Person", Type: "singleLineText"},
		}

		fields, err := mapping.MapFields(schema, map[airtable.Role]string{
			airtable.RoleName: "Jane Doe",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, fields["Person"]).Equal("Jane Doe")
	})

	t.Run("empty schema assumes canonical names", func(t *testing.T) {
		fields, err := mapping.MapFields(nil, map[airtable.Role]string{
			airtable.RoleName:  "Jane Doe",
			airtable.RoleEmail: "jane@example.com",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, fields["Name"]).Equal("Jane Doe")
		gt.Value(t, fields["Email"]).Equal("jane@example.com")
	})

	t.Run("error when nothing maps", func(t *testing.T) {
		schema := []airtable.Field{{Name: "Created", Type: "dateTime"}}

		_, err := mapping.MapFields(schema, map[airtable.Role]string{
			airtable.RoleEmail: "jane@example.com",
		})
		gt.Error(t, err)
	})

	t.Run("empty values are dropped", func(t *testing.T) {
		_, err := mapping.MapFields(nil, map[airtable.Role]string{
			airtable.RoleName: "",
		})
		gt.Error(t, err)
	})
}

func TestLoadMapping(t *testing.T) {
	t.Run("overrides only listed roles", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.toml")
		content := `
[candidates]
name = ["Person", "Handle"]
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		mapping, err := airtable.LoadMapping(path)
		gt.NoError(t, err).Required()

		gt.Value(t, mapping.Candidates[airtable.RoleName]).Equal([]string{"Person", "Handle"})
		gt.Value(t, mapping.Candidates[airtable.RoleEmail][0]).Equal("Email")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := airtable.LoadMapping(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Error(t, err)
	})
}
