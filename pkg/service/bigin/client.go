package bigin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/createai-lab/createai/pkg/utils/safe"
)

const (
	defaultAPIURL   = "https://www.zohoapis.com/bigin/v1"
	defaultTokenURL = "https://accounts.zoho.com/oauth/v2/token"

	searchPageSize = 20
)

// ErrInvalidGrant marks a refresh rejected by the authorization server. The
// refresh token is dead and the user has to re-authorize.
var ErrInvalidGrant = goerr.New("bigin: refresh token rejected")

// Client talks to the Zoho Bigin REST API. Token state is owned by the
// injected TokenStore, not by the client: every request reads the current
// access token through the store, and a refresh triggered by a 401 is
// persisted back before the request is retried.
type Client struct {
	store      interfaces.TokenStore
	apiURL     string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.MeetingCRM = &Client{}
var _ interfaces.ConnectionTester = &Client{}

type Option func(*Client)

func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(u, "/")
	}
}

func WithTokenURL(u string) Option {
	return func(c *Client) {
		c.tokenURL = u
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(store interfaces.TokenStore, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, goerr.New("bigin: token store is required")
	}

	c := &Client{
		store:    store,
		apiURL:   defaultAPIURL,
		tokenURL: defaultTokenURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RefreshAccessToken exchanges the refresh token for a new access token and
// persists the result through the token store. The returned token set is the
// persisted one.
func (c *Client) RefreshAccessToken(ctx context.Context) (*model.OAuthTokens, error) {
	tokens, err := c.store.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tokens for refresh")
	}
	if tokens == nil || tokens.RefreshToken == "" {
		return nil, goerr.New("bigin: no refresh token available")
	}

	form := url.Values{}
	form.Set("refresh_token", tokens.RefreshToken)
	form.Set("client_id", tokens.ClientID)
	form.Set("client_secret", tokens.ClientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token refresh request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call token endpoint")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusBadRequest || strings.Contains(string(body), "invalid_grant") {
			return nil, goerr.Wrap(ErrInvalidGrant, "token refresh rejected",
				goerr.V("status", resp.StatusCode),
				goerr.V("body", string(body)),
			)
		}
		return nil, goerr.New("bigin: token refresh failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token response")
	}
	// Zoho reports grant errors (e.g. invalid_grant) with HTTP 200.
	if grant.Error != "" {
		return nil, goerr.Wrap(ErrInvalidGrant, "token refresh rejected", goerr.V("error", grant.Error))
	}
	if grant.AccessToken == "" {
		return nil, goerr.New("bigin: token response has no access token")
	}

	now := c.now()
	refreshed := *tokens
	refreshed.AccessToken = grant.AccessToken
	refreshed.ExpiresAt = now.Add(time.Duration(grant.ExpiresIn) * time.Second)
	refreshed.LastRefreshed = now

	if err := c.store.Persist(ctx, &refreshed); err != nil {
		return nil, goerr.Wrap(err, "failed to persist refreshed tokens")
	}

	logging.From(ctx).Debug("refreshed bigin access token",
		"expires_at", refreshed.ExpiresAt,
	)

	return &refreshed, nil
}

// do sends an authenticated request. On a 401 it refreshes the access token
// once and retries once with the new token; if the refresh fails, the
// original 401 is surfaced to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	tokens, err := c.store.Get(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load tokens")
	}
	if tokens == nil || tokens.AccessToken == "" {
		return goerr.New("bigin: no access token available")
	}

	resp, err := c.send(ctx, method, path, query, body, tokens.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		safe.Close(ctx, resp.Body)

		refreshed, refreshErr := c.RefreshAccessToken(ctx)
		if refreshErr != nil {
			logging.From(ctx).Warn("bigin token refresh after 401 failed",
				"error", refreshErr,
			)
			return goerr.New("bigin: unauthorized",
				goerr.V("status", http.StatusUnauthorized),
				goerr.V("path", path),
			)
		}

		resp, err = c.send(ctx, method, path, query, body, refreshed.AccessToken)
		if err != nil {
			return err
		}
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return goerr.New("bigin: request failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("path", path),
			goerr.V("body", string(respBody)),
		)
	}

	// Zoho returns 204 when a search matches nothing.
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode bigin response", goerr.V("path", path))
	}

	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, accessToken string) (*http.Response, error) {
	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal request body")
		}
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("path", path))
	}

	return resp, nil
}

type contactRecord struct {
	ID          string `json:"id"`
	FullName    string `json:"Full_Name"`
	Name        string `json:"Name"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone"`
	Mobile      string `json:"Mobile"`
	AccountName struct {
		AccountName string `json:"Account_Name"`
	} `json:"Account_Name"`
}

func (r *contactRecord) toContact() model.CRMContact {
	name := r.FullName
	if name == "" {
		name = r.Name
	}
	phone := r.Phone
	if phone == "" {
		phone = r.Mobile
	}
	return model.CRMContact{
		RecordID: r.ID,
		Name:     name,
		Email:    r.Email,
		Phone:    phone,
		Company:  r.AccountName.AccountName,
	}
}

// SearchContacts runs one compound search combining prefix and substring
// matches over name, email and company, then ranks exact-prefix name matches
// ahead of the rest.
func (c *Client) SearchContacts(ctx context.Context, q string) ([]model.CRMContact, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	criteria := fmt.Sprintf(
		"((Full_Name:starts_with:%s) or (Full_Name:contains:%s) or (Email:starts_with:%s) or (Email:contains:%s) or (Account_Name.Account_Name:contains:%s))",
		q, q, q, q, q,
	)

	query := url.Values{}
	query.Set("criteria", criteria)
	query.Set("per_page", fmt.Sprintf("%d", searchPageSize))

	var body struct {
		Data []contactRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/Contacts/search", query, nil, &body); err != nil {
		return nil, goerr.Wrap(err, "failed to search contacts", goerr.V("query", q))
	}

	contacts := make([]model.CRMContact, 0, len(body.Data))
	for i := range body.Data {
		contacts = append(contacts, body.Data[i].toContact())
	}

	lower := strings.ToLower(q)
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.HasPrefix(strings.ToLower(contacts[i].Name), lower) &&
			!strings.HasPrefix(strings.ToLower(contacts[j].Name), lower)
	})

	logging.From(ctx).Debug("bigin contact search",
		"query", q,
		"count", len(contacts),
	)

	return contacts, nil
}

// SearchContactsByVariations runs the search with case and wildcard variants
// of the query and unions the results, deduped by record ID. Bigin's search
// can be literal on case, so a single query misses records that differ only
// in capitalization.
func (c *Client) SearchContactsByVariations(ctx context.Context, q string) ([]model.CRMContact, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	variants := queryVariations(q)

	var merged []model.CRMContact
	seen := map[string]bool{}
	for _, v := range variants {
		contacts, err := c.SearchContacts(ctx, v)
		if err != nil {
			logging.From(ctx).Warn("bigin contact search variant failed",
				"variant", v,
				"error", err,
			)
			continue
		}
		for _, contact := range contacts {
			if seen[contact.RecordID] {
				continue
			}
			seen[contact.RecordID] = true
			merged = append(merged, contact)
		}
	}

	return merged, nil
}

func queryVariations(q string) []string {
	variants := []string{q}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		variants = append(variants, v)
	}

	add(strings.ToLower(q))
	add(titleCase(q))
	add(q + "*")

	return variants
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SearchContactsByEmail matches contacts by exact case-insensitive email
// equality, filtering the ranked search result down to true matches.
func (c *Client) SearchContactsByEmail(ctx context.Context, email string) ([]model.CRMContact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	contacts, err := c.SearchContactsByVariations(ctx, email)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(email)
	var matched []model.CRMContact
	for _, contact := range contacts {
		if strings.ToLower(contact.Email) == lower {
			matched = append(matched, contact)
		}
	}

	return matched, nil
}

type writeResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

func (r *writeResponse) recordID() (string, error) {
	if len(r.Data) == 0 {
		return "", goerr.New("bigin: empty write response")
	}
	if r.Data[0].Code != "SUCCESS" {
		return "", goerr.New("bigin: write rejected",
			goerr.V("code", r.Data[0].Code),
			goerr.V("message", r.Data[0].Message),
		)
	}
	return r.Data[0].Details.ID, nil
}

// CreateOrUpdateContact creates or patches a contact record.
func (c *Client) CreateOrUpdateContact(ctx context.Context, fields model.ContactFields, recordID string) (string, error) {
	record := map[string]any{}
	if fields.Name != "" {
		record["Last_Name"] = fields.Name
	}
	if fields.Email != "" {
		record["Email"] = fields.Email
	}
	if fields.Phone != "" {
		record["Phone"] = fields.Phone
	}
	if fields.Company != "" {
		record["Account_Name"] = map[string]any{"name": fields.Company}
	}
	if len(record) == 0 {
		return "", goerr.New("bigin: contact has no fields to write")
	}

	method := http.MethodPost
	if recordID != "" {
		method = http.MethodPut
		record["id"] = recordID
	}

	var resp writeResponse
	if err := c.do(ctx, method, "/Contacts", nil, map[string]any{"data": []any{record}}, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to write contact")
	}

	id, err := resp.recordID()
	if err != nil {
		return "", err
	}
	if recordID != "" {
		return recordID, nil
	}
	return id, nil
}

// CreateMeeting creates an Events record for the meeting. Bigin has no
// transcript table, so the description carries the transcript summary along
// with the meeting metadata; the idempotency key rides in the description
// since Events has no custom key field out of the box.
func (c *Client) CreateMeeting(ctx context.Context, fields model.MeetingFields) (string, error) {
	subject := fields.Name
	if subject == "" {
		subject = "Meeting"
	}

	event := map[string]any{
		"Subject":      subject,
		"Duration":     60,
		"Meeting_Type": "Meeting",
		"Description":  buildMeetingDescription(fields),
	}
	if !fields.MeetingDate.IsZero() {
		event["Start_DateTime"] = fields.MeetingDate.Format(time.RFC3339)
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodPost, "/Events", nil, map[string]any{"data": []any{event}}, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to create meeting event")
	}

	return resp.recordID()
}

func buildMeetingDescription(fields model.MeetingFields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", fields.Name)
	if !fields.MeetingDate.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", fields.MeetingDate.Format(time.RFC3339))
	}
	if fields.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", fields.Source)
	}
	if len(fields.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(fields.Attendees, ", "))
	}
	if fields.IdempotencyKey != "" {
		fmt.Fprintf(&b, "Sync Key: %s\n", fields.IdempotencyKey)
	}
	if fields.Description != "" {
		fmt.Fprintf(&b, "\nSummary:\n%s\n", fields.Description)
	}
	return b.String()
}

// CreateTranscript returns an empty record ID: Bigin has no transcript table,
// so transcript content is folded into the meeting description instead.
func (c *Client) CreateTranscript(ctx context.Context, fields model.TranscriptFields) (string, error) {
	return "", nil
}

// LinkMeetingToContact sets the event's related record to the contact.
func (c *Client) LinkMeetingToContact(ctx context.Context, meetingRecordID, contactRecordID string) error {
	event := map[string]any{
		"id":      meetingRecordID,
		"What_Id": contactRecordID,
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodPut, "/Events", nil, map[string]any{"data": []any{event}}, &resp); err != nil {
		return goerr.Wrap(err, "failed to link meeting to contact",
			goerr.V("meetingRecordID", meetingRecordID),
			goerr.V("contactRecordID", contactRecordID),
		)
	}

	if _, err := resp.recordID(); err != nil {
		return err
	}
	return nil
}

// FindMeetingByIdemKey searches Events whose description carries the key.
func (c *Client) FindMeetingByIdemKey(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	query := url.Values{}
	query.Set("criteria", fmt.Sprintf("(Description:contains:%s)", key))
	query.Set("per_page", "1")

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/Events/search", query, nil, &body); err != nil {
		return "", goerr.Wrap(err, "failed to search meetings by key", goerr.V("key", key))
	}

	if len(body.Data) == 0 {
		return "", nil
	}
	return body.Data[0].ID, nil
}

// TestConnection verifies the stored credentials with a minimal read.
func (c *Client) TestConnection(ctx context.Context) error {
	query := url.Values{}
	query.Set("per_page", "1")

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/Contacts", query, nil, &body); err != nil {
		return goerr.Wrap(err, "bigin connection test failed")
	}

	return nil
}
