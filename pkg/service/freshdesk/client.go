package freshdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/createai-lab/createai/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// Client is a Freshdesk helpdesk client. Meetings land in Freshdesk as closed
// tickets attached to the requester contact, not as CRM meeting records.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

var _ interfaces.ConnectionTester = &Client{}

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

func New(apiKey, domain string, opts ...Option) (*Client, error) {
	if apiKey == "" || domain == "" {
		return nil, goerr.New("freshdesk API key and domain are required")
	}

	c := &Client{
		apiKey:     apiKey,
		apiURL:     fmt.Sprintf("https://%s.freshdesk.com/api/v2", domain),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type contact struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	CompanyName string      `json:"company_name"`
	Phone       string      `json:"phone"`
	Mobile      string      `json:"mobile"`
}

func (c contact) toCRMContact() model.CRMContact {
	name := c.Name
	if name == "" {
		name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	phone := c.Phone
	if phone == "" {
		phone = c.Mobile
	}
	return model.CRMContact{
		RecordID: c.ID.String(),
		Name:     name,
		Email:    c.Email,
		Phone:    phone,
		Company:  c.CompanyName,
	}
}

func (c *Client) do(ctx context.Context, method, path, query string, payload any) (int, []byte, error) {
	endpoint := c.apiURL + path
	if query != "" {
		endpoint += "?" + query
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, goerr.Wrap(err, "failed to marshal freshdesk payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to create freshdesk request")
	}
	// Freshdesk authenticates with basic auth, API key as the user name.
	req.SetBasicAuth(c.apiKey, "X")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "freshdesk request failed",
			goerr.V("path", path), goerr.V("method", method))
	}
	defer safe.Close(ctx, resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to read freshdesk response")
	}
	return resp.StatusCode, raw, nil
}

// SearchContacts looks up contacts by email first and falls back to a name
// search. Non-2xx responses from either endpoint degrade to an empty result.
func (c *Client) SearchContacts(ctx context.Context, query string) ([]model.CRMContact, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/contacts",
		"email="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var found []contact
	if status == http.StatusOK {
		if err := json.Unmarshal(raw, &found); err != nil {
			return nil, goerr.Wrap(err, "failed to decode freshdesk contacts")
		}
	}

	if len(found) == 0 {
		status, raw, err = c.do(ctx, http.MethodGet, "/search/contacts",
			"query="+url.QueryEscape("name:"+query), nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusOK {
			var resp struct {
				Results []contact `json:"results"`
			}
			if err := json.Unmarshal(raw, &resp); err != nil {
				return nil, goerr.Wrap(err, "failed to decode freshdesk search results")
			}
			found = resp.Results
		} else {
			logging.From(ctx).Warn("freshdesk contact search returned non-OK status",
				"status", status, "query", query)
		}
	}

	contacts := make([]model.CRMContact, 0, len(found))
	for _, fc := range found {
		contacts = append(contacts, fc.toCRMContact())
	}
	return contacts, nil
}

// CreateContact creates a contact and returns it with the assigned record ID.
func (c *Client) CreateContact(ctx context.Context, name, email, description string) (model.CRMContact, error) {
	payload := map[string]any{
		"name":        name,
		"email":       email,
		"description": description,
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/contacts", "", payload)
	if err != nil {
		return model.CRMContact{}, err
	}
	if status < 200 || status >= 300 {
		return model.CRMContact{}, goerr.New("freshdesk contact creation failed",
			goerr.V("status", status), goerr.V("email", email))
	}

	var created contact
	if err := json.Unmarshal(raw, &created); err != nil {
		return model.CRMContact{}, goerr.Wrap(err, "failed to decode freshdesk contact")
	}
	return created.toCRMContact(), nil
}

// TicketInput is a finished meeting to record as a Freshdesk ticket.
type TicketInput struct {
	Title     string
	Date      time.Time
	Summary   string
	ContactID string
	Attendees []string
}

// Freshdesk ticket field codes.
const (
	ticketPriorityLow  = 1
	ticketStatusClosed = 5
	ticketSourceEmail  = 2
)

// CreateTicketFromMeeting records a completed meeting as a closed ticket and
// returns the ticket ID.
func (c *Client) CreateTicketFromMeeting(ctx context.Context, input TicketInput) (string, error) {
	payload := map[string]any{
		"subject":     "Meeting: " + input.Title,
		"description": buildMeetingDescription(input),
		"priority":    ticketPriorityLow,
		"status":      ticketStatusClosed,
		"source":      ticketSourceEmail,
		"type":        "Incident",
	}
	if requesterID, err := strconv.ParseInt(input.ContactID, 10, 64); err == nil {
		payload["requester_id"] = requesterID
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/tickets", "", payload)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", goerr.New("freshdesk ticket creation failed",
			goerr.V("status", status), goerr.V("title", input.Title))
	}

	var created struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", goerr.Wrap(err, "failed to decode freshdesk ticket")
	}
	return created.ID.String(), nil
}

func buildMeetingDescription(input TicketInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", input.Title)
	fmt.Fprintf(&b, "Date: %s\n", input.Date.Format("2006-01-02"))
	if len(input.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(input.Attendees, ", "))
	}
	if input.Summary != "" {
		fmt.Fprintf(&b, "\nSummary:\n%s", input.Summary)
	}
	b.WriteString("\n\nCreated by CreateAI Meeting Intelligence")
	return b.String()
}

// TestConnection verifies the API key with a minimal contact listing.
func (c *Client) TestConnection(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/contacts", "per_page=1", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return goerr.New("freshdesk connection test returned non-OK status",
			goerr.V("status", status))
	}
	return nil
}
