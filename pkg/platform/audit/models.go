package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"masjid/pkg/domain"
	"masjid/pkg/requestcontext"
)

// EventCategory separates actions taken by the community from actions taken
// by moderators so downstream consumers can apply different retention.
type EventCategory string

const (
	CategoryCommunity  EventCategory = "community"
	CategoryModeration EventCategory = "moderation"
)

// Action names one lifecycle transition.
type Action string

const (
	ActionSuggestionCreated   Action = "suggestion_created"
	ActionSuggestionConfirmed Action = "suggestion_confirmed"
	ActionSuggestionApproved  Action = "suggestion_approved"
	ActionSuggestionRejected  Action = "suggestion_rejected"
	ActionSuggestionDeleted   Action = "suggestion_deleted"

	ActionEditCreated   Action = "edit_created"
	ActionEditConfirmed Action = "edit_confirmed"
	ActionEditApproved  Action = "edit_approved"
	ActionEditRejected  Action = "edit_rejected"
	ActionEditDeleted   Action = "edit_deleted"

	ActionMosqueCreated  Action = "mosque_created"
	ActionMosqueUpdated  Action = "mosque_updated"
	ActionMosqueDeleted  Action = "mosque_deleted"
	ActionMosqueImported Action = "mosque_imported"

	ActionReviewCreated  Action = "review_created"
	ActionReviewApproved Action = "review_approved"
	ActionReviewRejected Action = "review_rejected"
	ActionReviewDeleted  Action = "review_deleted"
)

var moderationActions = map[Action]bool{
	ActionSuggestionRejected: true,
	ActionSuggestionDeleted:  true,
	ActionEditRejected:       true,
	ActionEditDeleted:        true,
	ActionMosqueDeleted:      true,
	ActionMosqueImported:     true,
	ActionReviewApproved:     true,
	ActionReviewRejected:     true,
	ActionReviewDeleted:      true,
}

// Category returns the category for the action. Approvals reached by the
// confirmation threshold are community actions; the caller overrides the
// category when a moderator approved directly.
func (a Action) Category() EventCategory {
	if moderationActions[a] {
		return CategoryModeration
	}
	return CategoryCommunity
}

// Event is one audit record. It is transport-agnostic so the outbox store and
// the in-memory store can share it.
type Event struct {
	ID          uuid.UUID
	Category    EventCategory
	Timestamp   time.Time
	Action      Action
	ActorID     domain.UserID
	ActorRole   domain.Role
	SubjectType string
	SubjectID   int64
	Detail      string
	RequestID   string
	ClientIP    string
	Client      string
}

// Store persists audit events. Implementations must join the unit of work in ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// NewEvent builds an event for the caller in ctx, filling id, time, category
// and request metadata.
func NewEvent(ctx context.Context, action Action, subjectType string, subjectID int64) Event {
	p := requestcontext.Principal(ctx)
	ev := Event{
		ID:          uuid.New(),
		Category:    action.Category(),
		Timestamp:   requestcontext.Now(ctx),
		Action:      action,
		ActorID:     p.UserID,
		ActorRole:   p.Role,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		Client:      ClientLabel(requestcontext.UserAgent(ctx)),
	}
	if p.IsPrivileged() {
		ev.Category = CategoryModeration
	}
	return ev
}

// By attributes the event to p, which overrides the principal found in ctx.
func (e Event) By(p domain.Principal) Event {
	e.ActorID = p.UserID
	e.ActorRole = p.Role
	e.Category = e.Action.Category()
	if p.IsPrivileged() {
		e.Category = CategoryModeration
	}
	return e
}

// WithDetail attaches a short free-form note.
func (e Event) WithDetail(detail string) Event {
	e.Detail = detail
	return e
}

// ClientLabel condenses a User-Agent header into "browser/os", "bot:name" or "".
func ClientLabel(header string) string {
	if header == "" {
		return ""
	}
	ua := useragent.New(header)
	name, _ := ua.Browser()
	if ua.Bot() {
		return "bot:" + name
	}
	if os := ua.OS(); os != "" {
		return name + "/" + os
	}
	return name
}
