package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClient struct {
	detail     *MessageDetail
	detailErr  error
	member     *Member
	memberErr  error
	memberCall int
}

func (c *fakeClient) GetMessage(ctx context.Context, name string) (*MessageDetail, error) {
	return c.detail, c.detailErr
}

func (c *fakeClient) GetMember(ctx context.Context, name string) (*Member, error) {
	c.memberCall++
	return c.member, c.memberErr
}

func baseEvent() *Event {
	return &Event{
		Name:           "spaces/AAA/messages/BBB",
		SpaceName:      "spaces/AAA",
		MessageID:      "BBB",
		SenderUserID:   "users/111",
		SenderName:     "Tanaka",
		SenderType:     SenderHuman,
		Text:           "hello",
		MessageType:    MessageTypeMessage,
		MentionedUsers: []string{},
		Annotations:    []Annotation{},
		Attachments:    []Attachment{},
		CreatedAt:      time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestEnrichFallsBackOnLookupFailure(t *testing.T) {
	event := baseEvent()
	client := &fakeClient{detailErr: errors.New("timeout")}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if result.Enriched {
		t.Fatal("expected fallback result")
	}
	if result.Event != event {
		t.Fatal("expected original event returned unchanged")
	}
}

func TestEnrichOverridesOnlySuppliedFields(t *testing.T) {
	event := baseEvent()
	event.FormattedText = "original"
	createTime := event.CreatedAt
	client := &fakeClient{detail: &MessageDetail{
		Name:       event.Name,
		CreateTime: createTime,
		Sender:     &User{Name: "users/111", DisplayName: "Tanaka Ichiro"},
	}}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if !result.Enriched {
		t.Fatal("expected enriched result")
	}
	if result.Event.FormattedText != "original" {
		t.Fatalf("expected formatted text kept, got %q", result.Event.FormattedText)
	}
	if result.Event.SenderName != "Tanaka Ichiro" {
		t.Fatalf("expected display name preferred, got %q", result.Event.SenderName)
	}
	if result.Event.IsEdited || result.Event.IsDeleted {
		t.Fatal("expected no edit/delete flags")
	}
}

func TestEnrichDetectsEditAndDelete(t *testing.T) {
	event := baseEvent()
	createTime := event.CreatedAt
	client := &fakeClient{detail: &MessageDetail{
		CreateTime:     createTime,
		LastUpdateTime: createTime.Add(time.Minute),
		DeleteTime:     createTime.Add(2 * time.Minute),
	}}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if !result.Event.IsEdited {
		t.Fatal("expected isEdited")
	}
	if !result.Event.IsDeleted {
		t.Fatal("expected isDeleted")
	}
}

func TestEnrichRecomputesMentions(t *testing.T) {
	event := baseEvent()
	client := &fakeClient{detail: &MessageDetail{
		Annotations: []Annotation{{
			Type:        "USER_MENTION",
			UserMention: &UserMention{User: User{Name: "users/333"}},
		}},
	}}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if len(result.Event.MentionedUsers) != 1 || result.Event.MentionedUsers[0] != "users/333" {
		t.Fatalf("unexpected mentions: %v", result.Event.MentionedUsers)
	}
}

func TestEnrichMemberFallbackOnlyWhenNameEmpty(t *testing.T) {
	event := baseEvent()
	event.SenderName = ""
	client := &fakeClient{
		detail: &MessageDetail{Sender: &User{Name: "users/111"}},
		member: &Member{Name: "spaces/AAA/members/111", DisplayName: "Tanaka via member"},
	}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if result.Event.SenderName != "Tanaka via member" {
		t.Fatalf("expected member display name, got %q", result.Event.SenderName)
	}
	if client.memberCall != 1 {
		t.Fatalf("expected one member lookup, got %d", client.memberCall)
	}

	// A populated sender name must not trigger the member lookup.
	event = baseEvent()
	client = &fakeClient{detail: &MessageDetail{Sender: &User{Name: "users/111"}}}
	result = Enrich(context.Background(), event, client, zap.NewNop())
	if client.memberCall != 0 {
		t.Fatal("expected no member lookup when sender name already known")
	}
	if result.Event.SenderName != "Tanaka" {
		t.Fatalf("expected original sender name kept, got %q", result.Event.SenderName)
	}
}

func TestEnrichMemberFailureDegradesToEmpty(t *testing.T) {
	event := baseEvent()
	event.SenderName = ""
	client := &fakeClient{
		detail:    &MessageDetail{},
		memberErr: errors.New("permission denied"),
	}

	result := Enrich(context.Background(), event, client, zap.NewNop())
	if result.Event.SenderName != "" {
		t.Fatalf("expected empty sender name, got %q", result.Event.SenderName)
	}
}
