package chat

import (
	"context"
	"time"
)

// MessageDetail is the full message resource as returned by the chat platform.
// Zero time values mean the platform did not supply the field.
type MessageDetail struct {
	Name           string
	Text           string
	FormattedText  string
	Sender         *User
	CreateTime     time.Time
	LastUpdateTime time.Time
	DeleteTime     time.Time
	Annotations    []Annotation
	Attachments    []Attachment
}

type Member struct {
	Name        string
	DisplayName string
}

// Client is the chat platform lookup contract consumed by the enricher.
type Client interface {
	GetMessage(ctx context.Context, name string) (*MessageDetail, error)
	GetMember(ctx context.Context, name string) (*Member, error)
}
