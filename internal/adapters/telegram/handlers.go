package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

const callbackStatusPrefix = "status_"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		user, err := b.auth.Authorize(userID)
		if err != nil {
			b.replyDenied(ctx, chatID, userID)
			return
		}
		b.reply(ctx, chatID, welcomeText(user))

	case "help":
		if _, err := b.auth.Authorize(userID); err != nil {
			b.replyDenied(ctx, chatID, userID)
			return
		}
		b.reply(ctx, chatID, helpText())

	case "query":
		b.handleQuery(ctx, message)

	default:
		b.reply(ctx, chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleQuery(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	question := strings.TrimSpace(message.CommandArguments())
	if question == "" {
		b.reply(ctx, chatID, "Usage: /query <your question>")
		return
	}

	statusID, err := b.SendMessage(ctx, chatID, fmt.Sprintf("Searching for: %s ...", question))
	if err != nil {
		b.log.Error("send_failed", "chat_id", chatID, "error", err)
		return
	}

	answer, err := b.querier.Answer(ctx, userID, question)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			_ = b.EditMessage(ctx, chatID, statusID, deniedText(userID))
			return
		}
		b.log.Error("query_failed", "user_id", userID, "error", err)
		_ = b.EditMessage(ctx, chatID, statusID, "Search failed, please try again later.")
		return
	}

	if err := b.EditMessage(ctx, chatID, statusID, answerText(question, answer)); err != nil {
		b.log.Error("edit_failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleFile(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	fileID, filename, mimeType := extractFileInfo(message)
	if fileID == "" {
		b.reply(ctx, chatID, "Unsupported file type. Send a photo or a document.")
		return
	}

	statusID, err := b.SendMessage(ctx, chatID, fmt.Sprintf("Uploading %s ...", filename))
	if err != nil {
		b.log.Error("send_failed", "chat_id", chatID, "error", err)
		return
	}

	body, err := b.openFile(ctx, fileID)
	if err != nil {
		b.log.Error("file_download_failed", "user_id", userID, "error", err)
		_ = b.EditMessage(ctx, chatID, statusID, "Could not download the file, please try again.")
		return
	}
	defer body.Close()

	job, events, err := b.uploader.Upload(ctx, userID, chatID, filename, mimeType, body)
	if err != nil {
		_ = b.EditMessage(ctx, chatID, statusID, uploadErrorText(userID, filename, err))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Check status", callbackStatusPrefix+job.ID),
		),
	)
	if err := b.editWithKeyboard(ctx, chatID, statusID, progressText(job.Filename, domain.StatusQueued), keyboard); err != nil {
		b.log.Error("edit_failed", "chat_id", chatID, "error", err)
	}

	b.forwardProgress(ctx, chatID, statusID, job.Filename, events)
}

// forwardProgress relays tracker events as edits of the status message.
// It returns once the event channel is closed.
func (b *Bot) forwardProgress(ctx context.Context, chatID int64, messageID int, filename string, events <-chan domain.ProgressEvent) {
	for event := range events {
		if err := b.EditMessage(ctx, chatID, messageID, progressText(filename, event.Status)); err != nil {
			b.log.Error("progress_edit_failed", "chat_id", chatID, "status", string(event.Status), "error", err)
		}
		if event.Terminal {
			return
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("callback_ack_failed", "error", err)
	}

	if callback.Message == nil || !strings.HasPrefix(callback.Data, callbackStatusPrefix) {
		return
	}
	taskID := strings.TrimPrefix(callback.Data, callbackStatusPrefix)
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	status, err := b.checker.CheckStatus(ctx, userID, taskID)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			_ = b.EditMessage(ctx, chatID, messageID, deniedText(userID))
			return
		}
		b.log.Error("status_check_failed", "user_id", userID, "task_id", taskID, "error", err)
		_ = b.EditMessage(ctx, chatID, messageID, "Could not check status, please try again.")
		return
	}

	_ = b.EditMessage(ctx, chatID, messageID, manualStatusText(status))
}

func (b *Bot) replyDenied(ctx context.Context, chatID, userID int64) {
	b.log.Warn("unauthorized_access", "user_id", userID)
	b.reply(ctx, chatID, deniedText(userID))
}

func extractFileInfo(message *tgbotapi.Message) (fileID, filename, mimeType string) {
	if message.Document != nil {
		name := message.Document.FileName
		if name == "" {
			name = fmt.Sprintf("document_%d", message.MessageID)
		}
		return message.Document.FileID, name, message.Document.MimeType
	}
	if len(message.Photo) > 0 {
		photo := message.Photo[len(message.Photo)-1]
		return photo.FileID, fmt.Sprintf("photo_%d.jpg", message.MessageID), "image/jpeg"
	}
	return "", "", ""
}
