package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/createai-lab/createai/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const defaultAPIURL = "https://api.airtable.com/v0"

const (
	defaultContactsTable    = "Contacts"
	defaultMeetingsTable    = "Meetings"
	defaultTranscriptsTable = "Transcripts"
)

type Client struct {
	apiKey     string
	baseID     string
	apiURL     string
	httpClient *http.Client
	mapping    *Mapping

	contactsTable    string
	meetingsTable    string
	transcriptsTable string

	schemaMu     sync.Mutex
	schemas      map[string][]Field
	schemaLoaded bool
}

var (
	_ interfaces.MeetingCRM       = &Client{}
	_ interfaces.ConnectionTester = &Client{}
)

type Option func(*Client)

func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(apiURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMapping(mapping *Mapping) Option {
	return func(c *Client) {
		c.mapping = mapping
	}
}

func WithTables(contacts, meetings, transcripts string) Option {
	return func(c *Client) {
		if contacts != "" {
			c.contactsTable = contacts
		}
		if meetings != "" {
			c.meetingsTable = meetings
		}
		if transcripts != "" {
			c.transcriptsTable = transcripts
		}
	}
}

func New(apiKey, baseID string, opts ...Option) (*Client, error) {
	if apiKey == "" || baseID == "" {
		return nil, goerr.New("airtable API key and base ID are required")
	}

	c := &Client{
		apiKey:           apiKey,
		baseID:           baseID,
		apiURL:           defaultAPIURL,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		mapping:          DefaultMapping(),
		contactsTable:    defaultContactsTable,
		meetingsTable:    defaultMeetingsTable,
		transcriptsTable: defaultTranscriptsTable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type record struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type recordsBody struct {
	Records []record `json:"records"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, table, query string, payload, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.apiURL, c.baseID, url.PathEscape(table))
	if query != "" {
		endpoint += "?" + query
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal airtable payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return goerr.Wrap(err, "failed to create airtable request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "airtable request failed",
			goerr.V("table", table), goerr.V("method", method))
	}
	defer safe.Close(ctx, resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read airtable response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return goerr.New("airtable returned an error",
			goerr.V("table", table),
			goerr.V("status", resp.StatusCode),
			goerr.V("type", apiErr.Error.Type),
			goerr.V("message", apiErr.Error.Message))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return goerr.Wrap(err, "failed to decode airtable response", goerr.V("table", table))
		}
	}
	return nil
}

// formulaString quotes a value for use inside filterByFormula.
func formulaString(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// SearchContactsByEmail matches contacts by exact case-insensitive email
// equality.
func (c *Client) SearchContactsByEmail(ctx context.Context, email string) ([]model.CRMContact, error) {
	schema := c.tableSchema(ctx, c.contactsTable)
	emailField := c.mapping.Resolve(schema, RoleEmail)
	if emailField == "" {
		return nil, goerr.New("contact table has no email field")
	}

	formula := fmt.Sprintf(`LOWER({%s}) = %s`, emailField, formulaString(strings.ToLower(email)))
	query := "filterByFormula=" + url.QueryEscape(formula)

	var resp recordsBody
	if err := c.do(ctx, http.MethodGet, c.contactsTable, query, nil, &resp); err != nil {
		return nil, err
	}

	contacts := make([]model.CRMContact, 0, len(resp.Records))
	for _, rec := range resp.Records {
		contacts = append(contacts, c.toContact(rec))
	}
	return contacts, nil
}

func (c *Client) toContact(rec record) model.CRMContact {
	return model.CRMContact{
		RecordID: rec.ID,
		Name:     c.fieldString(rec.Fields, RoleName),
		Email:    c.fieldString(rec.Fields, RoleEmail),
		Phone:    c.fieldString(rec.Fields, RolePhone),
		Company:  c.fieldString(rec.Fields, RoleCompany),
		Status:   c.fieldString(rec.Fields, RoleStatus),
	}
}

// fieldString probes the record fields with the role's candidate names.
func (c *Client) fieldString(fields map[string]any, role Role) string {
	lowered := make(map[string]any, len(fields))
	for name, value := range fields {
		lowered[strings.ToLower(name)] = value
	}
	for _, candidate := range c.mapping.Candidates[role] {
		if v, ok := lowered[strings.ToLower(candidate)]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// CreateOrUpdateContact creates a contact, or patches recordID when given.
func (c *Client) CreateOrUpdateContact(ctx context.Context, fields model.ContactFields, recordID string) (string, error) {
	schema := c.tableSchema(ctx, c.contactsTable)
	mapped, err := c.mapping.MapFields(schema, map[Role]string{
		RoleName:    fields.Name,
		RoleEmail:   fields.Email,
		RolePhone:   fields.Phone,
		RoleCompany: fields.Company,
		RoleStatus:  fields.Status,
	})
	if err != nil {
		return "", err
	}

	rec := record{Fields: mapped}
	method := http.MethodPost
	if recordID != "" {
		rec.ID = recordID
		method = http.MethodPatch
	}

	var resp recordsBody
	if err := c.do(ctx, method, c.contactsTable, "", recordsBody{Records: []record{rec}}, &resp); err != nil {
		return "", err
	}
	if len(resp.Records) == 0 {
		return "", goerr.New("airtable returned no contact record")
	}
	return resp.Records[0].ID, nil
}

// CreateMeeting creates a meeting record carrying the idempotency key.
func (c *Client) CreateMeeting(ctx context.Context, fields model.MeetingFields) (string, error) {
	name := fields.Name
	if name == "" {
		name = "Meeting"
	}

	payload := map[string]any{
		"Name":                name,
		"External Meeting ID": fields.ExternalMeetingID,
		"Source":              fields.Source,
		"Idempotency Key":     fields.IdempotencyKey,
		"Status":              fields.Status,
	}
	if !fields.MeetingDate.IsZero() {
		payload["Meeting Date"] = fields.MeetingDate.UTC().Format(time.RFC3339)
	}
	if fields.TranscriptRecordID != "" {
		payload["Transcript"] = []string{fields.TranscriptRecordID}
	}
	if len(fields.Attendees) > 0 {
		payload["Attendees"] = strings.Join(fields.Attendees, ", ")
	}
	if fields.Description != "" {
		payload["Description"] = fields.Description
	}

	var resp recordsBody
	if err := c.do(ctx, http.MethodPost, c.meetingsTable, "",
		recordsBody{Records: []record{{Fields: payload}}}, &resp); err != nil {
		return "", err
	}
	if len(resp.Records) == 0 {
		return "", goerr.New("airtable returned no meeting record")
	}
	return resp.Records[0].ID, nil
}

// CreateTranscript creates a transcript record.
func (c *Client) CreateTranscript(ctx context.Context, fields model.TranscriptFields) (string, error) {
	title := fields.Title
	if title == "" {
		title = "Meeting Transcript"
	}

	payload := map[string]any{
		"Title":             title,
		"Content":           fields.Content,
		"Processing Status": fields.ProcessingStatus,
	}
	if !fields.MeetingDate.IsZero() {
		payload["Meeting Date"] = fields.MeetingDate.UTC().Format(time.RFC3339)
	}

	var resp recordsBody
	if err := c.do(ctx, http.MethodPost, c.transcriptsTable, "",
		recordsBody{Records: []record{{Fields: payload}}}, &resp); err != nil {
		return "", err
	}
	if len(resp.Records) == 0 {
		return "", goerr.New("airtable returned no transcript record")
	}
	return resp.Records[0].ID, nil
}

// LinkMeetingToContact links an existing meeting record to a contact.
func (c *Client) LinkMeetingToContact(ctx context.Context, meetingRecordID, contactRecordID string) error {
	body := recordsBody{Records: []record{{
		ID:     meetingRecordID,
		Fields: map[string]any{"Contact": []string{contactRecordID}},
	}}}
	return c.do(ctx, http.MethodPatch, c.meetingsTable, "", body, nil)
}

// FindMeetingByIdemKey returns the record ID of a meeting already carrying
// the given idempotency key, or empty when none exists.
func (c *Client) FindMeetingByIdemKey(ctx context.Context, key string) (string, error) {
	formula := fmt.Sprintf(`{Idempotency Key} = %s`, formulaString(key))
	query := "filterByFormula=" + url.QueryEscape(formula) + "&maxRecords=1"

	var resp recordsBody
	if err := c.do(ctx, http.MethodGet, c.meetingsTable, query, nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Records) == 0 {
		return "", nil
	}
	return resp.Records[0].ID, nil
}

// TestConnection verifies the credentials can read the contact table.
func (c *Client) TestConnection(ctx context.Context) error {
	var resp recordsBody
	if err := c.do(ctx, http.MethodGet, c.contactsTable, "maxRecords=1", nil, &resp); err != nil {
		return goerr.Wrap(err, "airtable connection test failed")
	}
	return nil
}

// tableSchema fetches and caches the base schema. Introspection failing is
// not fatal: the mapping falls back to its first candidates.
func (c *Client) tableSchema(ctx context.Context, table string) []Field {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()

	if !c.schemaLoaded {
		c.schemaLoaded = true
		c.schemas = c.fetchSchemas(ctx)
	}
	return c.schemas[strings.ToLower(table)]
}

func (c *Client) fetchSchemas(ctx context.Context) map[string][]Field {
	endpoint := fmt.Sprintf("%s/meta/bases/%s/tables", c.apiURL, c.baseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.From(ctx).Debug("airtable schema introspection failed", "error", err)
		return nil
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		logging.From(ctx).Debug("airtable schema introspection rejected", "status", resp.StatusCode)
		return nil
	}

	var meta struct {
		Tables []struct {
			Name   string `json:"name"`
			Fields []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"fields"`
		} `json:"tables"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil
	}

	schemas := make(map[string][]Field, len(meta.Tables))
	for _, table := range meta.Tables {
		fields := make([]Field, 0, len(table.Fields))
		for _, f := range table.Fields {
			fields = append(fields, Field{Name: f.Name, Type: f.Type})
		}
		schemas[strings.ToLower(table.Name)] = fields
	}
	return schemas
}
