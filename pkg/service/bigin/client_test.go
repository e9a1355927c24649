package bigin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/service/bigin"
)

type memoryTokenStore struct {
	mu        sync.Mutex
	tokens    model.OAuthTokens
	persisted int
}

func (s *memoryTokenStore) Get(ctx context.Context) (*model.OAuthTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens := s.tokens
	return &tokens, nil
}

func (s *memoryTokenStore) Persist(ctx context.Context, tokens *model.OAuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = *tokens
	s.persisted++
	return nil
}

func newTokenStore(accessToken string) *memoryTokenStore {
	return &memoryTokenStore{
		tokens: model.OAuthTokens{
			AccessToken:  accessToken,
			RefreshToken: "refresh-1",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		},
	}
}

func TestSearchContacts(t *testing.T) {
	var gotCriteria string
	mux := http.NewServeMux()
	mux.HandleFunc("/Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Zoho-oauthtoken token-1")
		gotCriteria = r.URL.Query().Get("criteria")
		gt.Value(t, r.URL.Query().Get("per_page")).Equal("20")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"id":        "3000000001",
					"Full_Name": "Acme Jane",
					"Email":     "jane@acme.com",
					"Account_Name": map[string]any{
						"Account_Name": "Acme Inc",
					},
					"Mobile": "+15550001111",
				},
				{
					"id":        "3000000002",
					"Full_Name": "Jane Doe",
					"Email":     "jane.doe@example.com",
					"Phone":     "+15550002222",
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	contacts := gt.R1(client.SearchContacts(context.Background(), "Jane")).NoError(t)
	gt.A(t, contacts).Length(2)

	// Exact-prefix name match ranks first.
	gt.Value(t, contacts[0].Name).Equal("Jane Doe")
	gt.Value(t, contacts[0].RecordID).Equal("3000000002")
	gt.Value(t, contacts[0].Phone).Equal("+15550002222")
	gt.Value(t, contacts[1].Company).Equal("Acme Inc")
	gt.Value(t, contacts[1].Phone).Equal("+15550001111")

	gt.True(t, strings.Contains(gotCriteria, "(Full_Name:starts_with:Jane)"))
	gt.True(t, strings.Contains(gotCriteria, "(Email:contains:Jane)"))
	gt.True(t, strings.Contains(gotCriteria, "(Account_Name.Account_Name:contains:Jane)"))
}

func TestSearchContactsByVariations(t *testing.T) {
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		criteria := r.URL.Query().Get("criteria")
		queries = append(queries, criteria)

		// Same record shows up under every variant; the union must dedupe it.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "3000000001", "Full_Name": "Jane Doe", "Email": "jane@acme.com"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	contacts := gt.R1(client.SearchContactsByVariations(context.Background(), "jane doe")).NoError(t)
	gt.A(t, contacts).Length(1)
	gt.Value(t, contacts[0].RecordID).Equal("3000000001")

	// "jane doe" is already lowercase, so the variants are the original,
	// the title-cased form and the wildcard form.
	gt.A(t, queries).Length(3)
	gt.True(t, strings.Contains(queries[1], "Jane Doe"))
	gt.True(t, strings.Contains(queries[2], "jane doe*"))
}

func TestRefreshOn401(t *testing.T) {
	var apiCalls, refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if r.Header.Get("Authorization") != "Zoho-oauthtoken token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "3000000001", "Full_Name": "Jane Doe"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		gt.NoError(t, r.ParseForm())
		gt.Value(t, r.Form.Get("refresh_token")).Equal("refresh-1")
		gt.Value(t, r.Form.Get("client_id")).Equal("client-id")
		gt.Value(t, r.Form.Get("client_secret")).Equal("client-secret")
		gt.Value(t, r.Form.Get("grant_type")).Equal("refresh_token")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-2",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	store := newTokenStore("token-expired")
	client := gt.R1(bigin.New(store,
		bigin.WithAPIURL(srv.URL),
		bigin.WithTokenURL(tokenSrv.URL),
	)).NoError(t)

	contacts := gt.R1(client.SearchContacts(context.Background(), "Jane")).NoError(t)
	gt.A(t, contacts).Length(1)

	// Exactly one refresh and one retry.
	gt.Value(t, refreshCalls).Equal(1)
	gt.Value(t, apiCalls).Equal(2)

	// The refreshed token was persisted with a tracked expiry.
	gt.Value(t, store.persisted).Equal(1)
	gt.Value(t, store.tokens.AccessToken).Equal("token-2")
	gt.True(t, store.tokens.ExpiresAt.After(time.Now().Add(50*time.Minute)))
	gt.False(t, store.tokens.LastRefreshed.IsZero())
}

func TestRefreshFailureSurfaces401(t *testing.T) {
	var apiCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/Contacts/search", func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// invalid_grant comes back with HTTP 200 from Zoho.
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	}))
	defer tokenSrv.Close()

	store := newTokenStore("token-revoked")
	client := gt.R1(bigin.New(store,
		bigin.WithAPIURL(srv.URL),
		bigin.WithTokenURL(tokenSrv.URL),
	)).NoError(t)

	_, err := client.SearchContacts(context.Background(), "Jane")
	gt.Error(t, err)
	gt.True(t, strings.Contains(err.Error(), "unauthorized"))

	// No retry loop: a single request, no persisted token change.
	gt.Value(t, apiCalls).Equal(1)
	gt.Value(t, store.persisted).Equal(0)
	gt.Value(t, store.tokens.AccessToken).Equal("token-revoked")
}

func TestCreateMeeting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Events", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)

		var body struct {
			Data []map[string]any `json:"data"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.A(t, body.Data).Length(1)

		event := body.Data[0]
		gt.Value(t, event["Subject"]).Equal("Intro Call")
		gt.Value(t, event["Start_DateTime"]).Equal("2025-03-01T15:00:00Z")
		gt.Value(t, event["Duration"]).Equal(float64(60))
		gt.Value(t, event["Meeting_Type"]).Equal("Meeting")

		desc, ok := event["Description"].(string)
		gt.True(t, ok)
		gt.True(t, strings.Contains(desc, "Meeting: Intro Call"))
		gt.True(t, strings.Contains(desc, "Attendees: jane@acme.com"))
		gt.True(t, strings.Contains(desc, "Sync Key: outlook:evt-42:2025-03-01T15:00:00Z"))
		gt.True(t, strings.Contains(desc, "Summary:\nDiscussed the rollout."))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"code": "SUCCESS", "details": map[string]any{"id": "4000000001"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	id := gt.R1(client.CreateMeeting(context.Background(), model.MeetingFields{
		Name:              "Intro Call",
		ExternalMeetingID: "evt-42",
		Source:            "outlook",
		IdempotencyKey:    "outlook:evt-42:2025-03-01T15:00:00Z",
		MeetingDate:       time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		Attendees:         []string{"jane@acme.com"},
		Description:       "Discussed the rollout.",
	})).NoError(t)
	gt.Value(t, id).Equal("4000000001")
}

func TestCreateMeetingRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Events", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"code": "INVALID_DATA", "message": "invalid start time"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	_, err := client.CreateMeeting(context.Background(), model.MeetingFields{Name: "Broken"})
	gt.Error(t, err)
	gt.True(t, strings.Contains(err.Error(), "write rejected"))
}

func TestLinkMeetingToContact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Events", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPut)

		var body struct {
			Data []map[string]any `json:"data"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.A(t, body.Data).Length(1)
		gt.Value(t, body.Data[0]["id"]).Equal("4000000001")
		gt.Value(t, body.Data[0]["What_Id"]).Equal("3000000001")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"code": "SUCCESS", "details": map[string]any{"id": "4000000001"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	gt.NoError(t, client.LinkMeetingToContact(context.Background(), "4000000001", "3000000001"))
}

func TestConnectionCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Contacts", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("per_page")).Equal("1")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newTokenStore("token-1")
	client := gt.R1(bigin.New(store, bigin.WithAPIURL(srv.URL))).NoError(t)

	gt.NoError(t, client.TestConnection(context.Background()))
}
