package airtable_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/service/airtable"
	"github.com/m-mizutani/gt"
)

func newClient(t *testing.T, handler http.Handler) *airtable.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := airtable.New("pat-test", "appBase123", airtable.WithAPIURL(srv.URL))
	gt.NoError(t, err).Required()
	return client
}

func TestSearchContactsByEmail(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/meta/bases/appBase123/tables", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tables": [{"name": "Contacts", "fields": [
			{"name": "Name", "type": "singleLineText"},
			{"name": "Email", "type": "email"},
			{"name": "Phone", "type": "phoneNumber"},
			{"name": "Status", "type": "singleSelect"}
		]}]}`))
	})
	mux.HandleFunc("/appBase123/Contacts", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer pat-test")
		formula := r.URL.Query().Get("filterByFormula")
		gt.Value(t, formula).Equal(`LOWER({Email}) = "jane.doe@example.com"`)
		_, _ = w.Write([]byte(`{"records": [
			{"id": "recContact1", "fields": {"Name": "Jane Doe", "Email": "Jane.Doe@Example.com", "Status": "Prospect"}}
		]}`))
	})

	contacts, err := newClient(t, mux).SearchContactsByEmail(ctx, "Jane.Doe@Example.com")
	gt.NoError(t, err).Required()

	gt.Array(t, contacts).Length(1)
	gt.Value(t, contacts[0].RecordID).Equal("recContact1")
	gt.Value(t, contacts[0].Name).Equal("Jane Doe")
	gt.Value(t, contacts[0].Status).Equal("Prospect")
}

func TestCreateOrUpdateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("create posts new record", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/meta/bases/appBase123/tables", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden) // introspection unavailable
		})
		mux.HandleFunc("/appBase123/Contacts", func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPost)

			var body struct {
				Records []struct {
					Fields map[string]any `json:"fields"`
				} `json:"records"`
			}
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
			gt.Array(t, body.Records).Length(1)
			gt.Value(t, body.Records[0].Fields["Name"]).Equal("Jane Doe")
			gt.Value(t, body.Records[0].Fields["Status"]).Equal("Prospect")

			_, _ = w.Write([]byte(`{"records": [{"id": "recNew1", "fields": {}}]}`))
		})

		id, err := newClient(t, mux).CreateOrUpdateContact(ctx, model.ContactFields{
			Name:   "Jane Doe",
			Email:  "jane@example.com",
			Status: "Prospect",
		}, "")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("recNew1")
	})

	t.Run("update patches existing record", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/meta/bases/appBase123/tables", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		mux.HandleFunc("/appBase123/Contacts", func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPatch)

			var body struct {
				Records []struct {
					ID string `json:"id"`
				} `json:"records"`
			}
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
			gt.Value(t, body.Records[0].ID).Equal("recExisting")

			_, _ = w.Write([]byte(`{"records": [{"id": "recExisting", "fields": {}}]}`))
		})

		id, err := newClient(t, mux).CreateOrUpdateContact(ctx, model.ContactFields{
			Name: "Jane Doe",
		}, "recExisting")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("recExisting")
	})
}

func TestCreateMeeting(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/meta/bases/appBase123/tables", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/appBase123/Meetings", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()

		fields := body.Records[0].Fields
		gt.Value(t, fields["Idempotency Key"]).Equal("otter:m-1:2026-08-20T10:00:00Z")
		gt.Value(t, fields["Source"]).Equal("otter")
		gt.Value(t, fields["Transcript"]).Equal([]any{"recTranscript1"})

		_, _ = w.Write([]byte(`{"records": [{"id": "recMeeting1", "fields": {}}]}`))
	})

	id, err := newClient(t, mux).CreateMeeting(ctx, model.MeetingFields{
		Name:               "Sales Call",
		ExternalMeetingID:  "m-1",
		Source:             "otter",
		IdempotencyKey:     "otter:m-1:2026-08-20T10:00:00Z",
		MeetingDate:        time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Status:             "Processed",
		TranscriptRecordID: "recTranscript1",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal("recMeeting1")
}

func TestFindMeetingByIdemKey(t *testing.T) {
	ctx := context.Background()

	t.Run("returns record ID when key exists", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/appBase123/Meetings", func(w http.ResponseWriter, r *http.Request) {
			formula := r.URL.Query().Get("filterByFormula")
			gt.Value(t, formula).Equal(`{Idempotency Key} = "otter:m-1:2026-08-20T10:00:00Z"`)
			_, _ = w.Write([]byte(`{"records": [{"id": "recMeeting1", "fields": {}}]}`))
		})

		id, err := newClient(t, mux).FindMeetingByIdemKey(ctx, "otter:m-1:2026-08-20T10:00:00Z")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("recMeeting1")
	})

	t.Run("returns empty when no match", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/appBase123/Meetings", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"records": []}`))
		})

		id, err := newClient(t, mux).FindMeetingByIdemKey(ctx, "unknown")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("")
	})
}

func TestLinkMeetingToContact(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/appBase123/Meetings", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPatch)

		var body struct {
			Records []struct {
				ID     string         `json:"id"`
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
		gt.Value(t, body.Records[0].ID).Equal("recMeeting1")
		gt.Value(t, body.Records[0].Fields["Contact"]).Equal([]any{"recContact1"})

		_, _ = w.Write([]byte(`{"records": [{"id": "recMeeting1", "fields": {}}]}`))
	})

	gt.NoError(t, newClient(t, mux).LinkMeetingToContact(ctx, "recMeeting1", "recContact1"))
}

func TestConnectionCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/appBase123/Contacts", func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Query().Get("maxRecords")).Equal("1")
			_, _ = w.Write([]byte(`{"records": []}`))
		})

		gt.NoError(t, newClient(t, mux).TestConnection(ctx))
	})

	t.Run("reports API error message", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/appBase123/Contacts", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"type": "AUTHENTICATION_REQUIRED", "message": "Invalid API key"}}`))
		})

		gt.Error(t, newClient(t, mux).TestConnection(ctx))
	})
}
