package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/mediagroup"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/photo"
	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
)

// Messenger is the part of the Telegram client the handler talks to.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendPhoto(chatID int64, img photo.Image, caption string) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type Options struct {
	Telegram  Messenger
	Generator session.Generator
	Sessions  *session.Store
	Logger    *slog.Logger
	Now       func() time.Time
}

type Handler struct {
	tg         Messenger
	gen        session.Generator
	sessions   *session.Store
	wizard     *stateStore
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:       opts.Telegram,
		gen:      opts.Generator,
		sessions: opts.Sessions,
		wizard:   newStateStore(opts.Now),
		logger:   logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

// Sweep drops wizard states idle for longer than maxIdle. Sessions are swept
// by their own store.
func (h *Handler) Sweep(maxIdle time.Duration) int {
	return h.wizard.Sweep(maxIdle)
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("tg:%d:%d", chatID, userID)
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if fileID, name, ok := imageFile(msg); ok {
		return h.handlePhoto(ctx, chatID, userID, msg, fileID, name)
	}

	if msg.Text != "" {
		return h.handleText(chatID, userID, msg.Text)
	}

	return nil
}

// imageFile returns the largest photo size or an image document.
func imageFile(msg *tgbotapi.Message) (string, string, bool) {
	if len(msg.Photo) > 0 {
		p := msg.Photo[len(msg.Photo)-1]
		return p.FileID, "telegram-photo.jpg", true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, msg.Document.FileName, true
	}
	return "", "", false
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "new":
		return h.startWizard(chatID, userID, msg.CommandArguments())
	case "help":
		return h.tg.SendText(chatID, helpText)
	case "cancel":
		h.wizard.Update(chatID, userID, func(st *wizardState) {
			st.Awaiting = awaitNone
			st.Menu = menuMain
		})
		_ = h.tg.SendText(chatID, "Dibatalkan.")
		return h.renderWizard(chatID, userID, 0, false)
	case "generate":
		return h.generate(ctx, chatID, userID)
	case "reset":
		h.sessions.Delete(sessionKey(chatID, userID))
		h.wizard.Update(chatID, userID, func(st *wizardState) {
			st.Awaiting = awaitMain
			st.Menu = menuMain
		})
		return h.renderWizard(chatID, userID, 0, false)
	default:
		return h.tg.SendText(chatID, "Perintah tidak dikenal. Gunakan /help.")
	}
}

const helpText = "📸 Kamia Pas Photo\n\n" +
	"1. Kirim foto wajah Anda (foto utama).\n" +
	"2. Opsional: kirim foto dengan caption `outfit` untuk referensi pakaian, atau `logo` untuk logo saku.\n" +
	"3. Atur ukuran, warna latar, outfit, ekspresi, dan pencahayaan lewat tombol.\n" +
	"4. Tekan 🎨 Generate.\n\n" +
	"Album hingga 3 foto diisi berurutan: foto utama, referensi outfit, logo.\n\n" +
	"/start [3x4 merah senyum ...] - mulai dengan opsi\n" +
	"/generate - buat pas foto\n" +
	"/reset - hapus foto dan opsi\n" +
	"/cancel - batal menunggu input"

func (h *Handler) startWizard(chatID, userID int64, args string) error {
	key := sessionKey(chatID, userID)
	if _, err := h.sessions.Update(key, func(sess *session.Session) error {
		sess.Config = photo.ParseArgs(args, photo.DefaultConfig())
		return nil
	}); err != nil {
		return err
	}

	sess := h.sessions.Get(key)
	h.wizard.Update(chatID, userID, func(st *wizardState) {
		st.Menu = menuMain
		st.Awaiting = awaitNone
		if sess.Main == nil {
			st.Awaiting = awaitMain
		}
	})
	return h.renderWizard(chatID, userID, 0, false)
}

func (h *Handler) handleText(chatID, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	st := h.wizard.Get(chatID, userID)
	if st.Awaiting != awaitOutfitText {
		return h.tg.SendText(chatID, "Kirim foto untuk diedit, atau gunakan /start untuk membuka menu.")
	}

	if _, err := h.sessions.Update(sessionKey(chatID, userID), func(sess *session.Session) error {
		return sess.SetOption(photo.OptionOutfit, text)
	}); err != nil {
		return err
	}
	h.wizard.Update(chatID, userID, func(st *wizardState) {
		st.Awaiting = awaitNone
		st.Menu = menuMain
	})
	return h.renderWizard(chatID, userID, 0, false)
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message, fileID, name string) error {
	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       fileID,
			FileName:     name,
		})
		return nil
	}

	target, rest := slotFromCaption(msg.Caption)
	if s, ok := h.wizard.Get(chatID, userID).Awaiting.slot(); ok {
		target, rest = s, ""
	}

	atts, err := h.download(ctx, []string{fileID}, []string{name})
	if err != nil {
		h.logger.Error("photo download failed", "err", err)
		return h.tg.SendText(chatID, "❌ "+err.Error())
	}

	_, err = h.sessions.Update(sessionKey(chatID, userID), func(sess *session.Session) error {
		setSlot(sess, target, atts[0])
		switch {
		case rest == "":
		case target == slotMain:
			sess.Config = photo.ParseArgs(rest, sess.Config)
		case target == slotOutfit:
			return sess.SetOption(photo.OptionOutfit, rest)
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.wizard.Update(chatID, userID, func(st *wizardState) {
		st.Awaiting = awaitNone
		st.Menu = menuMain
	})
	return h.renderWizard(chatID, userID, 0, false)
}

// HandleMediaGroup fills main, outfit reference and logo from an album in
// order. The album caption becomes the outfit description.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if err := h.processAlbum(ctx, group); err != nil {
		h.logger.Error("media group processing failed", "chat_id", group.ChatID, "err", err)
	}
}

func (h *Handler) processAlbum(ctx context.Context, group mediagroup.Group) error {
	chatID, userID := group.ChatID, group.UserID
	h.tg.SendTyping(chatID)

	atts, err := h.download(ctx, group.FileIDs, group.FileNames)
	if err != nil {
		return h.tg.SendText(chatID, "❌ "+err.Error())
	}

	caption := strings.TrimSpace(group.Caption)
	_, err = h.sessions.Update(sessionKey(chatID, userID), func(sess *session.Session) error {
		for i, att := range atts {
			if i >= len(albumSlots) {
				break
			}
			setSlot(sess, albumSlots[i], att)
		}
		if caption != "" {
			return sess.SetOption(photo.OptionOutfit, caption)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if group.Dropped > 0 {
		_ = h.tg.SendText(chatID, fmt.Sprintf("Hanya %d foto pertama yang dipakai.", len(albumSlots)))
	}
	h.wizard.Update(chatID, userID, func(st *wizardState) {
		st.Awaiting = awaitNone
		st.Menu = menuMain
	})
	return h.renderWizard(chatID, userID, 0, false)
}

// download fetches files in parallel and decodes each into an attachment,
// keeping input order.
func (h *Handler) download(ctx context.Context, fileIDs, names []string) ([]*photo.Attachment, error) {
	atts := make([]*photo.Attachment, len(fileIDs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, fileID := range fileIDs {
		name := fmt.Sprintf("telegram-%d.jpg", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}

		eg.Go(func() error {
			data, err := h.tg.DownloadFile(egCtx, fileID)
			if err != nil {
				return fmt.Errorf("gagal mengunduh foto: %w", err)
			}
			att, err := photo.DecodeUpload(name, data)
			if err != nil {
				return err
			}
			atts[i] = att
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return atts, nil
}

func setSlot(sess *session.Session, s slot, att *photo.Attachment) {
	switch s {
	case slotOutfit:
		sess.SetOutfitReference(att)
	case slotLogo:
		sess.SetLogo(att)
	default:
		sess.SetMainPhoto(att)
	}
}

func clearSlot(sess *session.Session, s slot) {
	switch s {
	case slotOutfit:
		sess.ClearOutfitReference()
	case slotLogo:
		sess.ClearLogo()
	default:
		sess.ClearMainPhoto()
	}
}

func (h *Handler) generate(ctx context.Context, chatID, userID int64) error {
	key := sessionKey(chatID, userID)

	h.tg.SendTyping(chatID)
	if h.sessions.Get(key).Main != nil {
		_ = h.tg.SendText(chatID, "🎨 AI sedang bekerja...")
	}

	start := time.Now()
	img, err := h.sessions.Generate(ctx, key, h.gen)
	h.logger.Info("generate finished",
		"chat_id", chatID,
		"user_id", userID,
		"status", string(h.sessions.Get(key).Status.Kind()),
		"dur_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case errors.Is(err, session.ErrBusy):
		return h.tg.SendText(chatID, "⏳ Foto sedang diproses. Tunggu hingga selesai.")
	case errors.Is(err, session.ErrDiscarded):
		return h.tg.SendText(chatID, "🔄 "+err.Error())
	case errors.Is(err, session.ErrNoMainPhoto):
		h.wizard.Update(chatID, userID, func(st *wizardState) { st.Awaiting = awaitMain })
		return h.tg.SendText(chatID, "📷 "+err.Error())
	case err != nil:
		h.logger.Error("generate failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, "❌ Oops! Terjadi Kesalahan\n"+err.Error())
	}

	cfg := h.sessions.Get(key).Config
	caption := fmt.Sprintf("✅ Selesai! %s, latar %s", cfg.Size, photo.Label(photo.OptionBackgroundColor, cfg.BackgroundColor))
	if err := h.tg.SendPhoto(chatID, img, caption); err != nil {
		return err
	}
	return h.tg.SendDocument(chatID, "kamia-pas-photo"+img.Extension(), img.Data, "Unduh Foto Hasil Edit")
}
