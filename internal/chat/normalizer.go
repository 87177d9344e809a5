package chat

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParseError marks a delivery that can never be processed; redelivery cannot fix it.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

const eventTypeAttribute = "ce-type"

// Delivery types that carry message content. Everything else (deletions,
// membership changes, reactions) is filtered, not failed.
var contentEventTypes = map[string]bool{
	"google.workspace.chat.message.v1.created": true,
	"google.workspace.chat.message.v1.updated": true,
}

type pushEnvelope struct {
	Message      *pushMessage `json:"message"`
	Subscription string       `json:"subscription"`
}

type pushMessage struct {
	Data       string            `json:"data"`
	Attributes map[string]string `json:"attributes"`
	MessageID  string            `json:"messageId"`
}

type payloadShape int

const (
	shapeUnknown payloadShape = iota
	shapeMessage
	shapeInteraction
)

// chatPayload covers both known inner payload shapes: the events API delivery
// carrying only a message body, and the interaction payload with a top-level
// type discriminator.
type chatPayload struct {
	Type      string       `json:"type"`
	EventTime string       `json:"eventTime"`
	Message   *messageBody `json:"message"`
	Space     *spaceBody   `json:"space"`
	User      *User        `json:"user"`
}

type messageBody struct {
	Name           string       `json:"name"`
	Sender         *User        `json:"sender"`
	Text           string       `json:"text"`
	FormattedText  string       `json:"formattedText"`
	CreateTime     string       `json:"createTime"`
	LastUpdateTime string       `json:"lastUpdateTime"`
	DeleteTime     string       `json:"deleteTime"`
	Thread         *threadBody  `json:"thread"`
	QuotedMessage  *quotedRef   `json:"quotedMessageMetadata"`
	Annotations    []Annotation `json:"annotations"`
	Attachments    []Attachment `json:"attachment"`
}

type threadBody struct {
	Name string `json:"name"`
}

type quotedRef struct {
	Name string `json:"name"`
}

type spaceBody struct {
	Name string `json:"name"`
}

func detectShape(p *chatPayload) payloadShape {
	if p.Type != "" {
		return shapeInteraction
	}
	if p.Message != nil {
		return shapeMessage
	}
	return shapeUnknown
}

// Normalize turns a raw push delivery into an Event. It returns (nil, nil) for
// deliveries that are valid but carry nothing to process: non-content event
// types, non-message interactions, and bot-authored messages.
func Normalize(body []byte, now func() time.Time) (*Event, error) {
	var envelope pushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, parseErrorf("malformed envelope: %v", err)
	}
	if envelope.Message == nil || envelope.Message.Data == "" {
		return nil, parseErrorf("envelope has no data payload")
	}

	if eventType, ok := envelope.Message.Attributes[eventTypeAttribute]; ok {
		if !contentEventTypes[eventType] {
			return nil, nil
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return nil, parseErrorf("payload is not valid base64: %v", err)
	}

	var payload chatPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, parseErrorf("payload is not valid JSON: %v", err)
	}

	switch detectShape(&payload) {
	case shapeInteraction:
		// Added/removed-from-space and UI-click callbacks have no message text.
		if payload.Type != "MESSAGE" {
			return nil, nil
		}
		if payload.Message == nil {
			return nil, parseErrorf("interaction payload of type MESSAGE has no message body")
		}
	case shapeMessage:
	default:
		return nil, parseErrorf("unrecognized payload shape")
	}

	msg := payload.Message
	if msg.Sender != nil && msg.Sender.Type == SenderBot {
		return nil, nil
	}

	spaceName, messageID, err := parseMessageName(msg.Name)
	if err != nil {
		return nil, err
	}

	event := &Event{
		Name:           msg.Name,
		SpaceName:      spaceName,
		MessageID:      messageID,
		Text:           msg.Text,
		FormattedText:  msg.FormattedText,
		MessageType:    MessageTypeMessage,
		MentionedUsers: MentionedFrom(msg.Annotations),
		Annotations:    msg.Annotations,
		Attachments:    msg.Attachments,
		CreatedAt:      now(),
	}
	if event.Annotations == nil {
		event.Annotations = []Annotation{}
	}
	if event.Attachments == nil {
		event.Attachments = []Attachment{}
	}

	if msg.Sender != nil {
		event.SenderUserID = msg.Sender.Name
		event.SenderName = msg.Sender.DisplayName
		event.SenderType = msg.Sender.Type
	}
	if event.SenderType == "" {
		event.SenderType = SenderHuman
	}

	if msg.Thread != nil && msg.Thread.Name != "" {
		event.ThreadName = msg.Thread.Name
		event.MessageType = MessageTypeThreadReply
	}
	if msg.QuotedMessage != nil && msg.QuotedMessage.Name != "" {
		if _, parentID, err := parseMessageName(msg.QuotedMessage.Name); err == nil {
			event.ParentMessageID = parentID
		}
	}

	if msg.CreateTime != "" {
		if createdAt, err := time.Parse(time.RFC3339, msg.CreateTime); err == nil {
			event.CreatedAt = createdAt
		}
	}

	return event, nil
}

// parseMessageName validates the resource name spaces/{space}/messages/{message}
// and returns the container name and the message identifier.
func parseMessageName(name string) (spaceName, messageID string, err error) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "spaces" || parts[2] != "messages" || parts[1] == "" || parts[3] == "" {
		return "", "", parseErrorf("malformed message resource name %q", name)
	}
	return parts[0] + "/" + parts[1], parts[3], nil
}
