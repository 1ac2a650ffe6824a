package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
)

const callbackPrefix = "pp"

var errUnknownPreset = errors.New("pilihan tidak dikenal")

var optionMenus = map[menu]string{
	menuSize:       photo.OptionSize,
	menuColor:      photo.OptionBackgroundColor,
	menuOutfit:     photo.OptionOutfit,
	menuExpression: photo.OptionExpression,
	menuLighting:   photo.OptionLighting,
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, callbackPrefix+":") {
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
		_ = h.tg.AnswerCallback(q.ID, "Menu ini bukan untuk Anda.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	key := sessionKey(chatID, ownerID)

	h.wizard.Update(chatID, ownerID, func(st *wizardState) {
		st.MessageID = msgID
	})

	answer := "OK"
	switch action {
	case "menu":
		if len(args) >= 1 {
			h.wizard.Update(chatID, ownerID, func(st *wizardState) { st.Menu = menu(args[0]) })
		}
	case "set":
		if len(args) >= 2 {
			if err := h.applyPreset(key, args[0], args[1]); err != nil {
				answer = err.Error()
			}
		}
		h.wizard.Update(chatID, ownerID, func(st *wizardState) { st.Menu = menuMain })
	case "await":
		if len(args) >= 1 {
			if s, ok := parseSlot(args[0]); ok {
				h.wizard.Update(chatID, ownerID, func(st *wizardState) {
					st.Awaiting = awaitFor(s)
					st.Menu = menuMain
				})
				answer = "Kirim foto: " + s.label()
			}
		}
	case "clear":
		if len(args) >= 1 {
			if s, ok := parseSlot(args[0]); ok {
				_, _ = h.sessions.Update(key, func(sess *session.Session) error {
					clearSlot(sess, s)
					return nil
				})
				answer = s.label() + " dihapus"
			}
		}
	case "outfit_text":
		h.wizard.Update(chatID, ownerID, func(st *wizardState) {
			st.Awaiting = awaitOutfitText
			st.Menu = menuMain
		})
		answer = "Ketik deskripsi outfit"
		_ = h.tg.SendText(chatID, "👔 Ketik deskripsi outfit (batal: /cancel).")
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "AI sedang bekerja...", false)
		if err := h.generate(ctx, chatID, ownerID); err != nil {
			return err
		}
		return h.renderWizard(chatID, ownerID, 0, false)
	case "reset":
		h.sessions.Delete(key)
		h.wizard.Update(chatID, ownerID, func(st *wizardState) {
			st.Menu = menuMain
			st.Awaiting = awaitMain
		})
		answer = "Direset"
	case "close":
		h.wizard.Update(chatID, ownerID, func(st *wizardState) {
			st.Awaiting = awaitNone
			st.Menu = menuMain
		})
	}

	_ = h.tg.AnswerCallback(q.ID, answer, false)
	return h.renderWizard(chatID, ownerID, msgID, true)
}

// applyPreset sets an option from its catalog index. Callback data is
// limited to 64 bytes, so buttons carry indexes rather than values.
func (h *Handler) applyPreset(key, option, index string) error {
	presets := photo.Options(option)
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(presets) {
		return errUnknownPreset
	}
	_, err = h.sessions.Update(key, func(sess *session.Session) error {
		return sess.SetOption(option, presets[i].Key)
	})
	return err
}

func (h *Handler) renderWizard(chatID, userID int64, messageID int, edit bool) error {
	st := h.wizard.Get(chatID, userID)
	sess := h.sessions.Get(sessionKey(chatID, userID))
	if messageID == 0 {
		messageID = st.MessageID
	}

	text := wizardText(sess, st)
	kb := wizardKeyboard(userID, sess, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.wizard.Update(chatID, userID, func(st *wizardState) { st.MessageID = msgID })
	return nil
}

func wizardText(sess session.Session, st wizardState) string {
	cfg := sess.Config

	var b strings.Builder
	b.WriteString("📸 Kamia Pas Photo\n\n")
	b.WriteString(fmt.Sprintf("Ukuran: %s\n", photo.Label(photo.OptionSize, cfg.Size)))
	b.WriteString(fmt.Sprintf("Latar: %s\n", photo.Label(photo.OptionBackgroundColor, cfg.BackgroundColor)))
	b.WriteString(fmt.Sprintf("Outfit: %s\n", truncateLine(photo.Label(photo.OptionOutfit, cfg.Outfit), 80)))
	b.WriteString(fmt.Sprintf("Ekspresi: %s\n", photo.Label(photo.OptionExpression, cfg.Expression)))
	b.WriteString(fmt.Sprintf("Pencahayaan: %s\n\n", photo.Label(photo.OptionLighting, cfg.Lighting)))

	b.WriteString(fmt.Sprintf("%s: %s\n", slotMain.label(), uploadLine(sess.Main)))
	b.WriteString(fmt.Sprintf("%s: %s\n", slotOutfit.label(), uploadLine(sess.Outfit)))
	b.WriteString(fmt.Sprintf("%s: %s\n\n", slotLogo.label(), uploadLine(sess.Logo)))

	b.WriteString(statusLine(sess.Status))

	switch st.Awaiting {
	case awaitOutfitText:
		b.WriteString("\n\n👔 Ketik deskripsi outfit (batal: /cancel).")
	case awaitMain, awaitOutfit, awaitLogo:
		s, _ := st.Awaiting.slot()
		b.WriteString("\n\n📷 Kirim foto untuk: " + s.label())
	}

	return strings.TrimSpace(b.String())
}

func uploadLine(a *photo.Attachment) string {
	if a == nil {
		return "-"
	}
	return fmt.Sprintf("✅ %dx%d", a.Width, a.Height)
}

func statusLine(st session.Status) string {
	switch v := st.(type) {
	case session.Uploaded:
		return "Siap. Tekan 🎨 Generate."
	case session.Generating:
		return "AI sedang bekerja..."
	case session.Failed:
		return "❌ Oops! Terjadi Kesalahan: " + v.Reason
	case session.Succeeded:
		return "✅ Foto hasil edit sudah dikirim."
	}
	return "Hasil editan foto akan muncul di sini. Kirim foto untuk memulai."
}

func wizardKeyboard(ownerID int64, sess session.Session, st wizardState) tgbotapi.InlineKeyboardMarkup {
	if key, ok := optionMenus[st.Menu]; ok {
		current, _ := sess.Config.Get(key)
		return optionKeyboard(ownerID, key, current)
	}
	return mainKeyboard(ownerID, sess)
}

func mainKeyboard(ownerID int64, sess session.Session) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		slotRow(ownerID, slotMain, sess.Main != nil),
		slotRow(ownerID, slotOutfit, sess.Outfit != nil),
		slotRow(ownerID, slotLogo, sess.Logo != nil),
		{
			tgbotapi.NewInlineKeyboardButtonData("Ukuran", cb(ownerID, "menu", string(menuSize))),
			tgbotapi.NewInlineKeyboardButtonData("Warna latar", cb(ownerID, "menu", string(menuColor))),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Outfit preset", cb(ownerID, "menu", string(menuOutfit))),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Outfit teks", cb(ownerID, "outfit_text")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Ekspresi", cb(ownerID, "menu", string(menuExpression))),
			tgbotapi.NewInlineKeyboardButtonData("Pencahayaan", cb(ownerID, "menu", string(menuLighting))),
		},
	}

	if sess.Main != nil && !sess.Generating() {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate", cb(ownerID, "generate")),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
		tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func slotRow(ownerID int64, s slot, filled bool) []tgbotapi.InlineKeyboardButton {
	label := "📷 " + s.label()
	if filled {
		label = "✅ " + s.label()
	}
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "await", s.String())),
	}
	if filled {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", cb(ownerID, "clear", s.String())))
	}
	return row
}

func optionKeyboard(ownerID int64, key, current string) tgbotapi.InlineKeyboardMarkup {
	perRow := 2
	if key == photo.OptionOutfit || key == photo.OptionLighting {
		perRow = 1
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, opt := range photo.Options(key) {
		label := opt.Name
		if opt.Key == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "set", key, strconv.Itoa(i))))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Kembali", cb(ownerID, "menu", string(menuMain))),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
