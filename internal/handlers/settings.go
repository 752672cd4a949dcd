package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"variant-studio/internal/catalog"
	"variant-studio/internal/session"
)

const settingsCallbackPrefix = "vs"

var (
	countChoices = []int{1, 2, 4, 6, 8}
	sizeChoices  = []int{256, 512, 768, 1024}
)

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, settingsCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	updated := h.sessions.Update(chatID, ownerID, func(st *session.Settings) {
		st.MessageID = msgID

		switch action {
		case "menu":
			if len(args) >= 1 {
				st.Menu = args[0]
			}
		case "style":
			if len(args) >= 1 {
				st.Style = catalogKey(args[0])
				st.Menu = session.MenuMain
			}
		case "tone":
			if len(args) >= 1 {
				st.Tone = catalogKey(args[0])
				st.Menu = session.MenuMain
			}
		case "count":
			if len(args) >= 1 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					st.NumImages = catalog.ClampCount(n)
				}
				st.Menu = session.MenuMain
			}
		case "size":
			if len(args) >= 1 {
				if px, err := strconv.Atoi(args[0]); err == nil {
					st.ImageSize = catalog.ClampSize(px)
				}
				st.Menu = session.MenuMain
			}
		case "close":
			st.Menu = session.MenuMain
		}
	})

	switch action {
	case "reset":
		_ = h.tg.AnswerCallback(q.ID, "Defaults restored", false)
		h.sessions.Reset(chatID, ownerID)
	case "again":
		if updated.LastPrompt == "" {
			_ = h.tg.AnswerCallback(q.ID, "Send a prompt first.", true)
			return nil
		}
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		return h.generate(ctx, chatID, ownerID, catalog.Normalize(updated.Options(updated.LastPrompt)))
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "Saved", false)
		return h.tg.EditTextWithKeyboard(chatID, msgID, settingsText(updated), emptyKeyboard())
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}
	return h.renderSettings(chatID, ownerID, msgID, true)
}

func (h *Handler) renderSettings(chatID int64, userID int64, messageID int, edit bool) error {
	st := h.sessions.Get(chatID, userID)
	if messageID == 0 {
		messageID = st.MessageID
	}

	text := settingsText(st)
	kb := settingsKeyboard(userID, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.sessions.Update(chatID, userID, func(st *session.Settings) { st.MessageID = msgID })
	return nil
}

func settingsText(st session.Settings) string {
	var b strings.Builder
	b.WriteString("⚙️ Generation settings\n\n")
	b.WriteString(fmt.Sprintf("Style: %s\n", optionName(catalog.BackgroundStyles(), st.Style)))
	b.WriteString(fmt.Sprintf("Tone: %s\n", optionName(catalog.Tones(), st.Tone)))
	b.WriteString(fmt.Sprintf("Images: %d\n", st.NumImages))
	b.WriteString(fmt.Sprintf("Size: %dpx\n", st.ImageSize))
	if st.LastPrompt != "" {
		b.WriteString("\nLast prompt: " + truncateLine(st.LastPrompt, 80) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func settingsKeyboard(ownerID int64, st session.Settings) tgbotapi.InlineKeyboardMarkup {
	switch st.Menu {
	case session.MenuStyle:
		return optionKeyboard(ownerID, "style", catalog.BackgroundStyles(), st.Style)
	case session.MenuTone:
		return optionKeyboard(ownerID, "tone", catalog.Tones(), st.Tone)
	case session.MenuCount:
		return numberKeyboard(ownerID, "count", countChoices, st.NumImages, "")
	case session.MenuSize:
		return numberKeyboard(ownerID, "size", sizeChoices, st.ImageSize, "px")
	default:
		return mainKeyboard(ownerID, st)
	}
}

func mainKeyboard(ownerID int64, st session.Settings) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("Style", cb(ownerID, "menu", session.MenuStyle)),
			tgbotapi.NewInlineKeyboardButtonData("Tone", cb(ownerID, "menu", session.MenuTone)),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Images (%d)", st.NumImages), cb(ownerID, "menu", session.MenuCount)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Size (%d)", st.ImageSize), cb(ownerID, "menu", session.MenuSize)),
		},
	}
	if st.LastPrompt != "" {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate again", cb(ownerID, "again")),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
		tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func optionKeyboard(ownerID int64, action string, opts []catalog.NamedOption, current string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, opt := range opts {
		label := opt.Name
		if opt.Key == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, action, callbackKey(opt.Key))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, backRow(ownerID))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func numberKeyboard(ownerID int64, action string, choices []int, current int, suffix string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range choices {
		label := strconv.Itoa(n) + suffix
		if n == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, action, strconv.Itoa(n))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, backRow(ownerID))
}

// emptyKeyboard removes the inline keyboard from an edited message.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

func backRow(ownerID int64) []tgbotapi.InlineKeyboardButton {
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", session.MenuMain)),
	}
}

func optionName(opts []catalog.NamedOption, key string) string {
	for _, o := range opts {
		if o.Key == key {
			return o.Name
		}
	}
	return key
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", settingsCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
