// Package telegram implements the Bot API transport over plain HTTP:
// long polling for updates, message management, and media download.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Mave-full/konspektbot/internal/config"
	"github.com/Mave-full/konspektbot/internal/domain"
)

// Client talks to the Telegram Bot API.
type Client struct {
	baseURL    string
	fileURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Bot API client. The HTTP timeout leaves
// headroom over the long-poll timeout so getUpdates is never cut short
// by the transport.
func NewClient(cfg config.TelegramConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    cfg.APIBase + "/bot" + cfg.Token,
		fileURL:    cfg.APIBase + "/file/bot" + cfg.Token,
		httpClient: &http.Client{Timeout: time.Duration(cfg.PollTimeout+30) * time.Second},
		logger:     logger.With("component", "telegram"),
	}
}

// apiCall makes a POST request to one Bot API method.
func (c *Client) apiCall(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: creating request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("telegram: decoding %s response: %w", method, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram: %s: %s", method, result.Description)
	}
	return result.Result, nil
}

// GetMe verifies the bot token and returns the bot account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	data, err := c.apiCall(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("telegram: parsing getMe: %w", err)
	}
	return &user, nil
}

// GetUpdates fetches new updates using long polling.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSecs int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"limit":   100,
		"timeout": timeoutSecs,
		"allowed_updates": []string{
			"message", "callback_query",
		},
	}
	data, err := c.apiCall(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(data, &updates); err != nil {
		return nil, fmt.Errorf("telegram: parsing updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends a text message and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if opts != nil {
		if opts.ReplyToMessageID != 0 {
			payload["reply_parameters"] = map[string]any{"message_id": opts.ReplyToMessageID}
		}
		if opts.ReplyMarkup != nil {
			payload["reply_markup"] = opts.ReplyMarkup
		}
	}

	data, err := c.apiCall(ctx, "sendMessage", payload)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("telegram: parsing sendMessage: %w", err)
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	_, err := c.apiCall(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	})
	return err
}

// DeleteMessage removes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	_, err := c.apiCall(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	})
	return err
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := c.apiCall(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

// GetFile resolves a file_id into a downloadable file path.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	data, err := c.apiCall(ctx, "getFile", map[string]any{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("telegram: parsing getFile: %w", err)
	}
	return &file, nil
}

// DownloadFile fetches the payload behind fileID into dstPath.
func (c *Client) DownloadFile(ctx context.Context, fileID, dstPath string) error {
	file, err := c.GetFile(ctx, fileID)
	if err != nil {
		return &domain.DownloadError{FileID: fileID, Err: err}
	}
	if file.FilePath == "" {
		return &domain.DownloadError{FileID: fileID, Err: fmt.Errorf("empty file_path in getFile response")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL+"/"+file.FilePath, nil)
	if err != nil {
		return &domain.DownloadError{FileID: fileID, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.DownloadError{FileID: fileID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &domain.DownloadError{
			FileID: fileID,
			Err:    fmt.Errorf("file download returned status %d", resp.StatusCode),
		}
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return &domain.DownloadError{FileID: fileID, Err: err}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		_ = dst.Close()
		return &domain.DownloadError{FileID: fileID, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &domain.DownloadError{FileID: fileID, Err: err}
	}

	c.logger.Debug("media downloaded", "file_id", fileID, "size", file.FileSize)
	return nil
}
