package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"kinobot/internal/pkg/httpclient"
)

// BotAPI provides a direct Telegram Bot API client.
// Used for calls made outside a telebot handler context: membership checks,
// invite links, broadcast and scheduled reports.
type BotAPI struct {
	token  string
	client *resty.Client
}

// APIResponse is the envelope every Bot API method answers with.
type APIResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// APIError is a response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Sprintf("telegram %s failed with code %d", e.Method, e.Code)
	}
	return fmt.Sprintf("telegram %s: %s", e.Method, e.Description)
}

// ChatMember is the subset of getChatMember used by the subscription gate.
type ChatMember struct {
	Status   string `json:"status"`
	IsMember bool   `json:"is_member"`
}

// NewBotAPI creates a direct Bot API client for baseURL
// (https://api.telegram.org or a self-hosted Bot API server).
func NewBotAPI(token, baseURL string, logger *zap.Logger) *BotAPI {
	return &BotAPI{
		token: token,
		client: httpclient.New(strings.TrimRight(baseURL, "/")+"/bot"+token, httpclient.Options{
			Timeout: 30 * time.Second,
			Logger:  logger,
		}),
	}
}

// Call makes a raw API call and decodes the response envelope.
func (b *BotAPI) Call(ctx context.Context, method string, params map[string]interface{}) (*APIResponse, error) {
	var out APIResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return nil, fmt.Errorf("telegram API call %s failed: %w", method, err)
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("telegram API call %s: bad response (HTTP %d): %w", method, resp.StatusCode(), err)
	}
	if !out.OK {
		return &out, &APIError{Method: method, Code: out.ErrorCode, Description: out.Description}
	}
	return &out, nil
}

// SendMessage sends a text message.
func (b *BotAPI) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup interface{}) error {
	params := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if replyMarkup != nil {
		params["reply_markup"] = replyMarkup
	}
	_, err := b.Call(ctx, "sendMessage", params)
	return err
}

// SendVideo re-sends an uploaded video by file_id.
func (b *BotAPI) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	_, err := b.Call(ctx, "sendVideo", map[string]interface{}{
		"chat_id": chatID,
		"video":   fileID,
		"caption": caption,
	})
	return err
}

// GetChatMember gets a chat member's status.
func (b *BotAPI) GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error) {
	resp, err := b.Call(ctx, "getChatMember", map[string]interface{}{
		"chat_id": chatIDParam(chatID),
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}
	var member ChatMember
	if err := json.Unmarshal(resp.Result, &member); err != nil {
		return nil, fmt.Errorf("decode chat member: %w", err)
	}
	return &member, nil
}

// ExportChatInviteLink asks Telegram for the primary invite link of a chat.
// The bot must be an admin of the chat.
func (b *BotAPI) ExportChatInviteLink(ctx context.Context, chatID string) (string, error) {
	resp, err := b.Call(ctx, "exportChatInviteLink", map[string]interface{}{
		"chat_id": chatIDParam(chatID),
	})
	if err != nil {
		return "", err
	}
	var link string
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link: %w", err)
	}
	return link, nil
}

// chatIDParam sends numeric ids as numbers and @usernames as strings.
func chatIDParam(chatID string) interface{} {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}
