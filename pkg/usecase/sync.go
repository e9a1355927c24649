package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/utils/async"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

// SyncMeeting pushes one inbound meeting into the user's CRM: resolve a
// contact from the attendee list, capture the transcript if the payload
// carries one, create the meeting record and link it to the contact.
//
// The pipeline never fails for missing optional data. Only a required CRM
// write (contact creation when attempted, meeting creation) propagates an
// error. A meeting whose idempotency key already exists in the CRM returns
// the prior record with Created=false instead of duplicating it.
func (uc *UseCases) SyncMeeting(ctx context.Context, userID types.UserID, meeting *model.InboundMeeting) (*model.SyncResult, error) {
	logger := logging.From(ctx)

	if err := meeting.Validate(); err != nil {
		return nil, err
	}

	crm, err := uc.crmFactory(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve CRM for sync",
			goerr.V("userID", userID),
		)
	}

	idemKey := meeting.IdempotencyKey()

	// Repeat processing of the same logical meeting is recognized before any
	// write happens.
	if existingID, err := crm.FindMeetingByIdemKey(ctx, idemKey); err != nil {
		logger.Warn("idempotency pre-check failed, proceeding with sync",
			"idemKey", idemKey, "error", err)
	} else if existingID != "" {
		logger.Info("meeting already synced, skipping",
			"idemKey", idemKey,
			"meetingRecordID", existingID,
		)
		return &model.SyncResult{
			MeetingRecordID: existingID,
			Created:         false,
		}, nil
	}

	contactRecordID, err := uc.resolveContact(ctx, crm, meeting)
	if err != nil {
		return nil, err
	}

	transcriptRecordID := uc.captureTranscript(ctx, crm, meeting)

	meetingFields := model.MeetingFields{
		Name:               meeting.Title,
		ExternalMeetingID:  meeting.ExternalMeetingID,
		Source:             meeting.Source,
		IdempotencyKey:     idemKey,
		MeetingDate:        meeting.StartTime(),
		Status:             "Synced",
		TranscriptRecordID: transcriptRecordID,
		Attendees:          attendeeEmails(meeting),
	}

	meetingRecordID, err := crm.CreateMeeting(ctx, meetingFields)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create meeting record",
			goerr.V("idemKey", idemKey),
		)
	}

	linked := false
	if contactRecordID != "" {
		if err := crm.LinkMeetingToContact(ctx, meetingRecordID, contactRecordID); err != nil {
			// The meeting record exists; an unlinked record beats a failed sync.
			logger.Warn("failed to link meeting to contact",
				"meetingRecordID", meetingRecordID,
				"contactRecordID", contactRecordID,
				"error", err,
			)
		} else {
			linked = true
		}
	} else {
		logger.Info("meeting synced without a contact", "idemKey", idemKey)
	}

	logger.Info("meeting synced",
		"idemKey", idemKey,
		"meetingRecordID", meetingRecordID,
		"contactRecordID", contactRecordID,
		"transcriptRecordID", transcriptRecordID,
		"linked", linked,
	)

	// Bookkeeping off the request path.
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.recordSyncTime(ctx, userID)
	})

	return &model.SyncResult{
		MeetingRecordID:    meetingRecordID,
		ContactRecordID:    contactRecordID,
		TranscriptRecordID: transcriptRecordID,
		Created:            true,
		Linked:             linked,
	}, nil
}

// recordSyncTime stamps LastSync on the user's connected CRM integration.
func (uc *UseCases) recordSyncTime(ctx context.Context, userID types.UserID) error {
	for _, provider := range []types.IntegrationProvider{types.ProviderAirtable, types.ProviderBigin} {
		integration, err := uc.repo.Integration().GetByProvider(ctx, userID, provider)
		if err != nil || integration.Status != types.IntegrationStatusConnected {
			continue
		}
		integration.LastSync = time.Now().UTC()
		if _, err := uc.repo.Integration().Upsert(ctx, integration); err != nil {
			return goerr.Wrap(err, "failed to record sync time",
				goerr.V("provider", provider),
			)
		}
		return nil
	}
	return nil
}

// resolveContact turns the meeting's attendee list into a CRM contact record
// ID. Returns an empty ID when no attendee carries usable data; that is a
// warning, not an error.
func (uc *UseCases) resolveContact(ctx context.Context, crm interfaces.MeetingCRM, meeting *model.InboundMeeting) (string, error) {
	logger := logging.From(ctx)

	contact := meeting.ExtractContact()
	if contact == nil {
		logger.Warn("no usable attendee data, syncing without a contact",
			"externalMeetingID", meeting.ExternalMeetingID,
		)
		return "", nil
	}

	if contact.HasEmail() {
		matches, err := crm.SearchContactsByEmail(ctx, contact.Email)
		if err != nil {
			logger.Warn("contact search failed, creating a new contact",
				"email", contact.Email, "error", err)
		} else if len(matches) > 0 {
			existing := matches[0]
			patch := patchFields(&existing, contact)
			if patch == nil {
				return existing.RecordID, nil
			}
			recordID, err := crm.CreateOrUpdateContact(ctx, *patch, existing.RecordID)
			if err != nil {
				return "", goerr.Wrap(err, "failed to patch existing contact",
					goerr.V("recordID", existing.RecordID),
				)
			}
			return recordID, nil
		}
	} else {
		// Identifiable but unmatchable: a human has to look at it.
		contact.Status = model.ContactStatusNeedsReview
	}

	recordID, err := crm.CreateOrUpdateContact(ctx, model.ContactFields{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Company: contact.Company,
		Status:  contact.Status,
	}, "")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create contact",
			goerr.V("email", contact.Email),
		)
	}

	return recordID, nil
}

// patchFields returns the fields of the input that the existing record is
// missing, or nil when there is nothing to patch.
func patchFields(existing *model.CRMContact, input *model.ContactInput) *model.ContactFields {
	patch := model.ContactFields{}
	changed := false

	if existing.Name == "" && input.Name != "" {
		patch.Name = input.Name
		changed = true
	}
	if existing.Phone == "" && input.Phone != "" {
		patch.Phone = input.Phone
		changed = true
	}
	if existing.Company == "" && input.Company != "" {
		patch.Company = input.Company
		changed = true
	}

	if !changed {
		return nil
	}
	return &patch
}

// captureTranscript creates a transcript record when the payload carries
// transcript, notes or raw data. Failures degrade to no transcript record;
// the meeting sync continues.
func (uc *UseCases) captureTranscript(ctx context.Context, crm interfaces.MeetingCRM, meeting *model.InboundMeeting) string {
	if !meeting.HasTranscriptData() {
		return ""
	}

	title := meeting.Title
	if title == "" {
		title = "Meeting Transcript"
	}

	recordID, err := crm.CreateTranscript(ctx, model.TranscriptFields{
		Title:            title,
		Content:          transcriptContent(meeting),
		MeetingDate:      meeting.StartTime(),
		ProcessingStatus: "Processed",
	})
	if err != nil {
		logging.From(ctx).Warn("failed to create transcript record",
			"externalMeetingID", meeting.ExternalMeetingID,
			"error", err,
		)
		return ""
	}

	return recordID
}

// transcriptContent assembles the stored transcript text: the transcript
// itself, then notes, then the raw payload as indented JSON.
func transcriptContent(meeting *model.InboundMeeting) string {
	var parts []string
	if meeting.Transcript != "" {
		parts = append(parts, meeting.Transcript)
	}
	if meeting.Notes != "" {
		parts = append(parts, "Notes:\n"+meeting.Notes)
	}
	if len(meeting.Raw) > 0 {
		if raw, err := json.MarshalIndent(meeting.Raw, "", "  "); err == nil {
			parts = append(parts, "Raw:\n"+string(raw))
		}
	}
	return strings.Join(parts, "\n\n")
}

func attendeeEmails(meeting *model.InboundMeeting) []string {
	var emails []string
	for _, att := range meeting.Attendees {
		if att.Email != "" {
			emails = append(emails, strings.ToLower(strings.TrimSpace(att.Email)))
		}
	}
	return emails
}
