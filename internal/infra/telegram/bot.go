package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	maxPhotoBytes    = 10 << 20
	maxCaptionLength = 1024
	defaultWorkers   = 8
	shardBuffer      = 64
)

type Bot struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
	logger     *zap.Logger
	workers    int
}

type CommandUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	Args     string
}

type TextUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

type PhotoUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	FileID   string
}

type CallbackUpdate struct {
	CallbackID string
	ChatID     int64
	UserID     int64
	Username   string
	Data       string
}

type Handlers struct {
	OnCommand  func(context.Context, CommandUpdate) error
	OnText     func(context.Context, TextUpdate) error
	OnPhoto    func(context.Context, PhotoUpdate) error
	OnCallback func(context.Context, CallbackUpdate) error
}

func NewBot(token string, httpClient *http.Client, workers int, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPIWithClient(strings.TrimSpace(token), tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{
		api:        api,
		httpClient: httpClient,
		logger:     logger,
		workers:    workers,
	}, nil
}

// Listen long-polls for updates until ctx is done. Updates are spread over
// a fixed set of workers by sender, so one user's updates are handled one at
// a time and in arrival order. A handler error or panic only affects its own
// update.
func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	shards := make([]chan tgbotapi.Update, b.workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, shardBuffer)
		wg.Add(1)
		go func(queue <-chan tgbotapi.Update) {
			defer wg.Done()
			for update := range queue {
				b.handle(ctx, handlers, update)
			}
		}(shards[i])
	}
	defer func() {
		for _, queue := range shards {
			close(queue)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			queue := shards[shardFor(update, len(shards))]
			select {
			case queue <- update:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// shardFor keys an update by its sender. Updates without one share shard 0.
func shardFor(update tgbotapi.Update, shards int) int {
	var userID int64
	switch {
	case update.Message != nil && update.Message.From != nil:
		userID = update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		userID = update.CallbackQuery.From.ID
	}
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(shards))
}

func (b *Bot) handle(ctx context.Context, handlers Handlers, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("telegram handler panic", zap.Int("update_id", update.UpdateID), zap.Any("panic", r))
		}
	}()

	if err := route(ctx, handlers, update); err != nil {
		b.logger.Error("handle telegram update", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

func route(ctx context.Context, handlers Handlers, update tgbotapi.Update) error {
	if msg := update.Message; msg != nil && msg.From != nil {
		switch {
		case msg.IsCommand():
			if handlers.OnCommand == nil {
				return nil
			}
			return handlers.OnCommand(ctx, CommandUpdate{
				ChatID:   msg.Chat.ID,
				UserID:   msg.From.ID,
				Username: msg.From.UserName,
				Command:  msg.Command(),
				Args:     msg.CommandArguments(),
			})
		case len(msg.Photo) > 0:
			if handlers.OnPhoto == nil {
				return nil
			}
			return handlers.OnPhoto(ctx, PhotoUpdate{
				ChatID:   msg.Chat.ID,
				UserID:   msg.From.ID,
				Username: msg.From.UserName,
				FileID:   largestPhoto(msg.Photo).FileID,
			})
		case strings.TrimSpace(msg.Text) != "":
			if handlers.OnText == nil {
				return nil
			}
			return handlers.OnText(ctx, TextUpdate{
				ChatID:   msg.Chat.ID,
				UserID:   msg.From.ID,
				Username: msg.From.UserName,
				Text:     strings.TrimSpace(msg.Text),
			})
		}
		return nil
	}

	if query := update.CallbackQuery; query != nil && query.From != nil && handlers.OnCallback != nil {
		chatID := query.From.ID
		if query.Message != nil && query.Message.Chat != nil {
			chatID = query.Message.Chat.ID
		}
		return handlers.OnCallback(ctx, CallbackUpdate{
			CallbackID: query.ID,
			ChatID:     chatID,
			UserID:     query.From.ID,
			Username:   query.From.UserName,
			Data:       query.Data,
		})
	}
	return nil
}

// SendMessage sends text with an optional inline keyboard.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string, rows [][]InlineButton) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(rows) > 0 {
		msg.ReplyMarkup = BuildInlineKeyboard(rows)
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// SendPhoto resends a stored Telegram photo. Captions over the Telegram limit
// go out as a separate message carrying the keyboard.
func (b *Bot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, rows [][]InlineButton) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(fileID) == "" {
		return b.SendMessage(ctx, chatID, caption, rows)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	long := len([]rune(caption)) > maxCaptionLength
	if !long {
		photo.Caption = caption
		if len(rows) > 0 {
			photo.ReplyMarkup = BuildInlineKeyboard(rows)
		}
	}
	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}
	if long {
		return b.SendMessage(ctx, chatID, caption, rows)
	}
	return nil
}

func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}

	cfg := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// DownloadPhoto fetches the file behind a Telegram file id. It returns the
// bytes, a file name and the content type.
func (b *Bot) DownloadPhoto(ctx context.Context, fileID string) ([]byte, string, string, error) {
	if b == nil || b.api == nil {
		return nil, "", "", fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(fileID) == "" {
		return nil, "", "", fmt.Errorf("file id is required")
	}

	tgFile, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", "", fmt.Errorf("get telegram file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tgFile.Link(b.api.Token), nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("create file request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", fmt.Errorf("unexpected telegram file status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("read telegram file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, "", "", fmt.Errorf("telegram file exceeds %d bytes", maxPhotoBytes)
	}

	name := path.Base(strings.TrimSpace(tgFile.FilePath))
	if name == "." || name == "/" || name == "" {
		name = "photo.jpg"
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" || contentType == "application/octet-stream" {
		contentType = "image/jpeg"
	}

	return data, name, contentType, nil
}

// largestPhoto picks the biggest of the sizes Telegram sends for one photo.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	var best tgbotapi.PhotoSize
	for _, size := range sizes {
		if size.Width*size.Height >= best.Width*best.Height {
			best = size
		}
	}
	return best
}
