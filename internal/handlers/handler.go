package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"variant-studio/internal/catalog"
	"variant-studio/internal/session"
	"variant-studio/internal/studio"
	"variant-studio/internal/telegram"
)

// Messenger is the subset of the Telegram client the handler needs.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendAlbum(chatID int64, paths []string, caption string) error
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string, alert bool) error
}

type Generator interface {
	Generate(ctx context.Context, req studio.Request) (studio.Result, error)
}

type Options struct {
	Telegram Messenger
	Studio   Generator
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg       Messenger
	studio   Generator
	sessions *session.Store
	logger   *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}

	return &Handler{
		tg:       opts.Telegram,
		studio:   opts.Studio,
		sessions: sessions,
		logger:   logger,
	}
}

const helpText = "🎨 Variant Studio\n\n" +
	"Send a description and I will draw several variations of it.\n\n" +
	"Commands:\n" +
	"/imagine <prompt> - generate with your settings\n" +
	"/imagine <prompt> | style | tone | count | size - override settings\n" +
	"/imagine <prompt> style=watercolor tone=warm n=2 size=256\n" +
	"/again - repeat the last prompt\n" +
	"/settings - choose style, tone, count and size\n" +
	"/history - recent prompts\n" +
	"/reset - restore default settings\n" +
	"/help - this message"

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil || update.Message.Chat == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.handleText(ctx, chatID, userID, msg.Text)
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "imagine", "image":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			return h.tg.SendText(chatID, "❌ Please describe the image.\nExample: /imagine a red fox in snow | watercolor | warm | 2 | 256")
		}
		st := h.sessions.Get(chatID, userID)
		return h.generate(ctx, chatID, userID, parseRequest(args, st.Options("")))
	case "again":
		st := h.sessions.Get(chatID, userID)
		if st.LastPrompt == "" {
			return h.tg.SendText(chatID, "Nothing to repeat yet. Send a prompt first.")
		}
		return h.generate(ctx, chatID, userID, catalog.Normalize(st.Options(st.LastPrompt)))
	case "settings":
		h.sessions.Update(chatID, userID, func(st *session.Settings) { st.Menu = session.MenuMain })
		return h.renderSettings(chatID, userID, 0, false)
	case "history":
		return h.tg.SendText(chatID, historyText(h.sessions.Get(chatID, userID)))
	case "reset":
		h.sessions.Reset(chatID, userID)
		return h.tg.SendText(chatID, "✅ Settings restored to defaults.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(ctx context.Context, chatID int64, userID int64, text string) error {
	st := h.sessions.Get(chatID, userID)
	return h.generate(ctx, chatID, userID, parseRequest(text, st.Options("")))
}

func (h *Handler) generate(ctx context.Context, chatID int64, userID int64, opts catalog.Options) error {
	if opts.Prompt == "" {
		return h.tg.SendText(chatID, "❌ The prompt is empty.")
	}

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, fmt.Sprintf("🎨 Generating %d image(s), please wait...", opts.NumImages))

	res, err := h.studio.Generate(ctx, studio.Request{
		Prompt:          opts.Prompt,
		BackgroundStyle: opts.BackgroundStyle,
		Tone:            opts.Tone,
		NumImages:       opts.NumImages,
		ImageSize:       opts.ImageSize,
	})
	if err != nil {
		if errors.Is(err, studio.ErrEmptyPrompt) {
			return h.tg.SendText(chatID, "❌ The prompt is empty.")
		}
		h.logger.Error("generation failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, "❌ Something went wrong. Please try again.")
	}

	h.sessions.Remember(chatID, userID, opts.Prompt, res.BatchID)

	if len(res.Paths) == 0 {
		return h.tg.SendText(chatID, "❌ No images could be generated. Please try again later.")
	}

	if err := h.tg.SendAlbum(chatID, res.Paths, resultCaption(opts, res)); err != nil {
		h.logger.Error("send album failed", "chat_id", chatID, "err", err)
		return err
	}
	return nil
}

func resultCaption(opts catalog.Options, res studio.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ %q\n", opts.Prompt))
	b.WriteString(fmt.Sprintf("Style: %s, tone: %s, %dpx", opts.BackgroundStyle, opts.Tone, opts.ImageSize))
	if res.Partial() {
		b.WriteString(fmt.Sprintf("\n⚠️ %d of %d images were generated", len(res.Paths), res.Requested))
	}
	return b.String()
}

func historyText(st session.Settings) string {
	if len(st.History) == 0 {
		return "No prompts yet."
	}

	var b strings.Builder
	b.WriteString("Recent prompts:\n")
	for i := len(st.History) - 1; i >= 0; i-- {
		b.WriteString(fmt.Sprintf("%d) %s\n", len(st.History)-i, truncateLine(st.History[i], 80)))
	}
	return strings.TrimSpace(b.String())
}
