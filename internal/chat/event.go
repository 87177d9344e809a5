package chat

import "time"

const (
	SenderHuman = "HUMAN"
	SenderBot   = "BOT"

	MessageTypeMessage     = "MESSAGE"
	MessageTypeThreadReply = "THREAD_REPLY"
)

// Event is the normalized form of one inbound chat message. MessageID is the
// upstream message identifier and the sole idempotency key.
type Event struct {
	Name            string       `json:"name"`
	SpaceName       string       `json:"spaceName"`
	MessageID       string       `json:"messageId"`
	SenderUserID    string       `json:"senderUserId"`
	SenderName      string       `json:"senderName"`
	SenderType      string       `json:"senderType"`
	Text            string       `json:"text"`
	FormattedText   string       `json:"formattedText,omitempty"`
	MessageType     string       `json:"messageType"`
	ThreadName      string       `json:"threadName,omitempty"`
	ParentMessageID string       `json:"parentMessageId,omitempty"`
	MentionedUsers  []string     `json:"mentionedUsers"`
	Annotations     []Annotation `json:"annotations"`
	Attachments     []Attachment `json:"attachments"`
	IsEdited        bool         `json:"isEdited"`
	IsDeleted       bool         `json:"isDeleted"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type Annotation struct {
	Type        string       `json:"type"`
	StartIndex  int          `json:"startIndex"`
	Length      int          `json:"length"`
	UserMention *UserMention `json:"userMention,omitempty"`
}

type UserMention struct {
	User User   `json:"user"`
	Type string `json:"type"`
}

type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

type Attachment struct {
	Name        string `json:"name"`
	ContentName string `json:"contentName"`
	ContentType string `json:"contentType"`
	DownloadURI string `json:"downloadUri"`
}

// MentionedFrom collects user resource names from USER_MENTION annotations.
func MentionedFrom(annotations []Annotation) []string {
	users := []string{}
	for _, a := range annotations {
		if a.Type != "USER_MENTION" || a.UserMention == nil {
			continue
		}
		if a.UserMention.User.Name != "" {
			users = append(users, a.UserMention.User.Name)
		}
	}
	return users
}
