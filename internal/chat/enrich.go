package chat

import (
	"context"

	"go.uber.org/zap"
)

// EnrichResult makes the best-effort nature of enrichment explicit: Event is
// always usable, Enriched reports whether the detail lookup contributed.
type EnrichResult struct {
	Event    *Event
	Enriched bool
	Reason   string
}

// Enrich completes fields the push payload may have omitted by fetching the
// full message detail. It never fails: any lookup error falls back to the
// original event unchanged.
func Enrich(ctx context.Context, event *Event, client Client, logger *zap.Logger) EnrichResult {
	detail, err := client.GetMessage(ctx, event.Name)
	if err != nil {
		logger.Debug("message detail lookup failed, keeping push payload",
			zap.String("messageId", event.MessageID),
			zap.Error(err))
		return EnrichResult{Event: event, Enriched: false, Reason: err.Error()}
	}

	enriched := *event
	if detail.FormattedText != "" {
		enriched.FormattedText = detail.FormattedText
	}
	if len(detail.Annotations) > 0 {
		enriched.Annotations = detail.Annotations
	}
	if len(detail.Attachments) > 0 {
		enriched.Attachments = detail.Attachments
	}
	enriched.MentionedUsers = MentionedFrom(enriched.Annotations)
	enriched.IsEdited = !detail.LastUpdateTime.IsZero() && !detail.LastUpdateTime.Equal(detail.CreateTime)
	enriched.IsDeleted = !detail.DeleteTime.IsZero()

	if detail.Sender != nil && detail.Sender.DisplayName != "" {
		enriched.SenderName = detail.Sender.DisplayName
	} else if enriched.SenderName == "" {
		enriched.SenderName = lookupMemberName(ctx, event, client, logger)
	}

	return EnrichResult{Event: &enriched, Enriched: true}
}

func lookupMemberName(ctx context.Context, event *Event, client Client, logger *zap.Logger) string {
	if event.SenderUserID == "" {
		return ""
	}
	memberName := event.SpaceName + "/members/" + lastSegment(event.SenderUserID)
	member, err := client.GetMember(ctx, memberName)
	if err != nil {
		logger.Debug("member lookup failed",
			zap.String("member", memberName),
			zap.Error(err))
		return ""
	}
	return member.DisplayName
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}
