package chatapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payflow/internal/chat"
)

// RESTClient implements chat.Client against the chat platform's REST surface.
// Timeouts are governed by the injected http.Client.
type RESTClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{baseURL: baseURL, token: token, http: httpClient}
}

type messageResource struct {
	Name           string            `json:"name"`
	Text           string            `json:"text"`
	FormattedText  string            `json:"formattedText"`
	Sender         *chat.User        `json:"sender"`
	CreateTime     string            `json:"createTime"`
	LastUpdateTime string            `json:"lastUpdateTime"`
	DeleteTime     string            `json:"deleteTime"`
	Annotations    []chat.Annotation `json:"annotations"`
	Attachments    []chat.Attachment `json:"attachment"`
}

type memberResource struct {
	Name   string `json:"name"`
	Member *struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"member"`
}

func (c *RESTClient) GetMessage(ctx context.Context, name string) (*chat.MessageDetail, error) {
	var resource messageResource
	if err := c.get(ctx, name, &resource); err != nil {
		return nil, err
	}

	detail := &chat.MessageDetail{
		Name:          resource.Name,
		Text:          resource.Text,
		FormattedText: resource.FormattedText,
		Sender:        resource.Sender,
		Annotations:   resource.Annotations,
		Attachments:   resource.Attachments,
	}
	detail.CreateTime = parseTime(resource.CreateTime)
	detail.LastUpdateTime = parseTime(resource.LastUpdateTime)
	detail.DeleteTime = parseTime(resource.DeleteTime)
	return detail, nil
}

func (c *RESTClient) GetMember(ctx context.Context, name string) (*chat.Member, error) {
	var resource memberResource
	if err := c.get(ctx, name, &resource); err != nil {
		return nil, err
	}
	member := &chat.Member{Name: resource.Name}
	if resource.Member != nil {
		member.DisplayName = resource.Member.DisplayName
	}
	return member, nil
}

func (c *RESTClient) get(ctx context.Context, name string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat api returned %d for %s", resp.StatusCode, name)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
