package freshdesk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/createai-lab/createai/pkg/service/freshdesk"
	"github.com/m-mizutani/gt"
)

func newClient(t *testing.T, handler http.Handler) *freshdesk.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := freshdesk.New("fd-key", "acme", freshdesk.WithAPIURL(srv.URL))
	gt.NoError(t, err).Required()
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := freshdesk.New("", "acme")
	gt.Error(t, err)

	_, err = freshdesk.New("fd-key", "")
	gt.Error(t, err)
}

func TestSearchContactsByEmail(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gt.True(t, ok)
		gt.Value(t, user).Equal("fd-key")
		gt.Value(t, pass).Equal("X")
		gt.Value(t, r.URL.Query().Get("email")).Equal("jane@acme.com")
		_, _ = w.Write([]byte(`[
			{"id": 101, "name": "Jane Doe", "email": "jane@acme.com", "company_name": "Acme", "phone": "+15551234567"}
		]`))
	})

	contacts, err := newClient(t, mux).SearchContacts(ctx, "jane@acme.com")
	gt.NoError(t, err).Required()

	gt.Array(t, contacts).Length(1)
	gt.Value(t, contacts[0].RecordID).Equal("101")
	gt.Value(t, contacts[0].Name).Equal("Jane Doe")
	gt.Value(t, contacts[0].Company).Equal("Acme")
	gt.Value(t, contacts[0].Phone).Equal("+15551234567")
}

func TestSearchContactsFallsBackToName(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/search/contacts", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("query")).Equal("name:Jane")
		_, _ = w.Write([]byte(`{"results": [
			{"id": 102, "first_name": "Jane", "last_name": "Doe", "mobile": "+15550000000"}
		]}`))
	})

	contacts, err := newClient(t, mux).SearchContacts(ctx, "Jane")
	gt.NoError(t, err).Required()

	gt.Array(t, contacts).Length(1)
	gt.Value(t, contacts[0].RecordID).Equal("102")
	gt.Value(t, contacts[0].Name).Equal("Jane Doe")
	gt.Value(t, contacts[0].Phone).Equal("+15550000000")
}

func TestSearchContactsDegradesOnProviderError(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/search/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	contacts, err := newClient(t, mux).SearchContacts(ctx, "jane@acme.com")
	gt.NoError(t, err).Required()
	gt.Array(t, contacts).Length(0)
}

func TestCreateContact(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)

		var body map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
		gt.Value(t, body["name"]).Equal("Jane Doe")
		gt.Value(t, body["email"]).Equal("jane@acme.com")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 103, "name": "Jane Doe", "email": "jane@acme.com"}`))
	})

	created, err := newClient(t, mux).CreateContact(ctx, "Jane Doe", "jane@acme.com", "Met at expo")
	gt.NoError(t, err).Required()
	gt.Value(t, created.RecordID).Equal("103")
	gt.Value(t, created.Email).Equal("jane@acme.com")
}

func TestCreateTicketFromMeeting(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/tickets", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)

		var body map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
		gt.Value(t, body["subject"]).Equal("Meeting: Quarterly Review")
		gt.Value(t, body["status"]).Equal(float64(5))
		gt.Value(t, body["source"]).Equal(float64(2))
		gt.Value(t, body["type"]).Equal("Incident")
		gt.Value(t, body["requester_id"]).Equal(float64(101))

		description, ok := body["description"].(string)
		gt.True(t, ok)
		gt.True(t, strings.Contains(description, "Meeting: Quarterly Review"))
		gt.True(t, strings.Contains(description, "Date: 2025-03-01"))
		gt.True(t, strings.Contains(description, "Attendees: jane@acme.com, bob@acme.com"))
		gt.True(t, strings.Contains(description, "Summary:\nDiscussed renewal terms."))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 9001}`))
	})

	ticketID, err := newClient(t, mux).CreateTicketFromMeeting(ctx, freshdesk.TicketInput{
		Title:     "Quarterly Review",
		Date:      time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		Summary:   "Discussed renewal terms.",
		ContactID: "101",
		Attendees: []string{"jane@acme.com", "bob@acme.com"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, ticketID).Equal("9001")
}

func TestCreateTicketFailure(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/tickets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := newClient(t, mux).CreateTicketFromMeeting(ctx, freshdesk.TicketInput{
		Title: "Quarterly Review",
		Date:  time.Now(),
	})
	gt.Error(t, err)
}

func TestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Query().Get("per_page")).Equal("1")
			_, _ = w.Write([]byte(`[]`))
		})
		gt.NoError(t, newClient(t, mux).TestConnection(ctx))
	})

	t.Run("rejected key", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		gt.Error(t, newClient(t, mux).TestConnection(ctx))
	})
}
