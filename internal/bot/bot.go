// Package bot wires the Telegram transport to the extraction pipeline,
// the language model and durable storage.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anna-secretary/anna/internal/engine"
	"github.com/anna-secretary/anna/internal/llm"
	"github.com/anna-secretary/anna/internal/notes"
	"github.com/anna-secretary/anna/internal/storage"
)

// Options configures a Bot.
type Options struct {
	Token       string
	AdminID     int64
	HistorySize int
	LLM         *llm.Client
	Notes       *notes.Store
	Store       *storage.Store
}

// Bot is the long-polling Telegram frontend.
type Bot struct {
	api     *tgbotapi.BotAPI
	llm     *llm.Client
	notes   *notes.Store
	store   *storage.Store
	adminID int64
	hist    *historyBook
}

// New connects to the Telegram API and returns a ready Bot.
func New(opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("bot: connect: %w", err)
	}
	size := opts.HistorySize
	if size <= 0 {
		size = 20
	}
	return &Bot{
		api:     api,
		llm:     opts.LLM,
		notes:   opts.Notes,
		store:   opts.Store,
		adminID: opts.AdminID,
		hist:    newHistoryBook(size),
	}, nil
}

// Username returns the bot account's username.
func (b *Bot) Username() string { return b.api.Self.UserName }

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	slog.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case <-ticker.C:
			b.deliverReminders(ctx)
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil {
				continue
			}
			b.handleMessage(ctx, upd.Message)
		}
	}
}

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Skip backlog older than two minutes so a restart does not replay
	// the inbox.
	if time.Since(msg.Time()) > 2*time.Minute {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	slog.Debug("incoming message",
		"chat", msg.Chat.ID, "user", msg.From.ID, "len", len(text))

	// The bot is a personal assistant: in private chats only the owner
	// gets past /start.
	if msg.Chat.IsPrivate() && msg.From.ID != b.adminID {
		if !strings.HasPrefix(text, "/start") {
			b.send(msg.Chat.ID, "Извини, я личный ассистент и настроена на общение только со своим владельцем.")
		}
		return
	}

	switch {
	case strings.HasPrefix(text, "/reset"):
		b.hist.reset(msg.Chat.ID)
		b.send(msg.Chat.ID, "🧹 Я очистила контекст диалога. Можем начать новую тему.")
		return
	case strings.HasPrefix(text, "/start"):
		b.send(msg.Chat.ID, "Привет! Я Анна. Пришли мне ссылку — сохраню конспект, или просто поболтаем.")
		return
	case strings.HasPrefix(text, "/stats") && msg.From.ID == b.adminID:
		b.send(msg.Chat.ID, formatStats(engine.GetMetrics()))
		return
	}

	if text == "" {
		return
	}

	b.hist.add(msg.Chat.ID, msg.From.FirstName, text)

	// Short message containing a URL means "clip this for me".
	if m := urlRe.FindString(text); m != "" && len(text) < 500 {
		b.handleLink(ctx, msg, m)
		return
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "напомни") {
		if b.handleReminder(ctx, msg, text) {
			return
		}
	}

	if q, ok := noteQuery(text); ok {
		if b.handleNoteLookup(ctx, msg, q, text) {
			return
		}
	}

	b.handleChat(ctx, msg, text)
}

// handleLink runs the clip flow: extract, structure, file into the
// notebook, report. On extraction failure the user gets a translated
// reply instead of a stack of wrapped errors.
func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message, url string) {
	b.action(msg.Chat.ID, tgbotapi.ChatUploadDocument)

	doc, err := engine.Extract(ctx, url)
	if err != nil {
		slog.Warn("clip failed", "url", url, "error", err)
		b.send(msg.Chat.ID, "⚠️ Не удалось сохранить заметку.\n\n"+replyForError(err))
		return
	}

	title, body := doc.Title, doc.Body
	structured, err := b.llm.StructureArticle(ctx, doc.SourceURL, doc.Body)
	if err != nil {
		// The raw extraction is still worth keeping.
		slog.Warn("structuring failed, saving raw", "url", url, "error", err)
	} else {
		title, body = structured.Title, structured.Body
	}
	if title == "" {
		title = doc.SourceURL
	}

	name, err := b.notes.Save(title, body, doc.SourceURL, []string{"клиппер"})
	if err != nil {
		slog.Error("note save failed", "url", url, "error", err)
		b.send(msg.Chat.ID, "⚠️ Не удалось сохранить заметку: ошибка записи файла.")
		return
	}

	slog.Info("note saved", "file", name, "method", doc.Method)
	b.send(msg.Chat.ID, fmt.Sprintf("✍️ *Добавила эту заметку тебе в блокнот.*\n\n📄 *Название:* _%s_\n📂 *Статус:* ✅ Успешно", title))
}

// handleReminder tries to parse a reminder out of the message. Returns
// false when no time could be extracted, so the normal chat flow answers.
func (b *Bot) handleReminder(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	replyContext := ""
	if msg.ReplyToMessage != nil {
		replyContext = msg.ReplyToMessage.Text
	}

	parsed, err := b.llm.ParseReminder(ctx, text, replyContext, time.Now())
	if err != nil {
		slog.Warn("reminder parse failed", "error", err)
		return false
	}
	if parsed == nil {
		return false
	}

	username := msg.From.FirstName
	if msg.From.UserName != "" {
		username = "@" + msg.From.UserName
	}
	if _, err := b.store.AddReminder(ctx, storage.Reminder{
		ChatID:   msg.Chat.ID,
		Username: username,
		Text:     parsed.Text,
		DueAt:    parsed.DueAt,
	}); err != nil {
		slog.Error("reminder save failed", "error", err)
		return false
	}

	slog.Info("reminder scheduled", "chat", msg.Chat.ID, "due", parsed.DueAt)
	b.send(msg.Chat.ID, parsed.Confirmation)
	return true
}

var noteTriggerRe = regexp.MustCompile(`(?i)(?:найди|прочитай|открой|покажи)\s+заметк\S*\s*(.*)`)

// noteQuery detects a note-lookup request ("прочитай заметку про ...")
// and extracts the search text.
func noteQuery(text string) (string, bool) {
	m := noteTriggerRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	q := strings.TrimSpace(m[1])
	q = strings.TrimSpace(strings.TrimPrefix(q, "про "))
	return q, true
}

// A note fed to the model is capped so one huge clip cannot blow up the
// prompt.
const noteReadLimit = 12000

// handleNoteLookup finds the closest saved note and lets the model answer
// from it. Returns false when there is nothing to search for, so the
// normal chat flow answers.
func (b *Bot) handleNoteLookup(ctx context.Context, msg *tgbotapi.Message, query, original string) bool {
	if query == "" {
		return false
	}

	name := b.notes.Find(query)
	if name == "" {
		b.send(msg.Chat.ID, fmt.Sprintf("🔍 Не нашла в блокноте заметку по запросу «%s».", query))
		return true
	}
	content, err := b.notes.Read(name, noteReadLimit)
	if err != nil {
		slog.Error("note read failed", "file", name, "error", err)
		b.send(msg.Chat.ID, "⚠️ Нашла заметку, но не смогла её прочитать.")
		return true
	}

	b.action(msg.Chat.ID, tgbotapi.ChatTyping)
	reply, err := b.llm.DiscussNote(ctx, name, content, original)
	if err != nil {
		slog.Warn("note discussion failed", "file", name, "error", err)
		b.send(msg.Chat.ID, replyForError(err))
		return true
	}

	slog.Info("note lookup answered", "file", name, "chat", msg.Chat.ID)
	b.hist.add(msg.Chat.ID, "Анна", reply)
	b.sendChunks(msg.Chat.ID, reply)
	return true
}

func (b *Bot) handleChat(ctx context.Context, msg *tgbotapi.Message, text string) {
	b.action(msg.Chat.ID, tgbotapi.ChatTyping)

	var dossier *llm.Dossier
	if profile, err := b.store.GetProfile(ctx, msg.From.ID); err == nil {
		dossier = &llm.Dossier{Relationship: profile.Relationship, Facts: profile.Facts}
	}

	history := b.hist.get(msg.Chat.ID)
	// The current message is already in history; the prompt carries it
	// separately.
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	reply, err := b.llm.Chat(ctx, llm.BuildChatMessages(history, text, dossier, time.Now()))
	if err != nil {
		slog.Warn("chat completion failed", "chat", msg.Chat.ID, "error", err)
		b.send(msg.Chat.ID, replyForError(err))
		return
	}

	b.hist.add(msg.Chat.ID, "Анна", reply)
	b.sendChunks(msg.Chat.ID, reply)
}

func (b *Bot) deliverReminders(ctx context.Context) {
	pending, err := b.store.Pending(ctx, time.Now())
	if err != nil {
		slog.Error("reminder query failed", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	ids := make([]int64, 0, len(pending))
	for _, r := range pending {
		b.send(r.ChatID, fmt.Sprintf("⏰ %s, напоминаю!\n\n%s", r.Username, r.Text))
		ids = append(ids, r.ID)
	}
	if err := b.store.Remove(ctx, ids); err != nil {
		slog.Error("reminder cleanup failed", "error", err)
	}
	slog.Info("reminders delivered", "count", len(ids))
}

const (
	maxReplyChars = 8500
	chunkChars    = 4000
)

// sendChunks normalizes model markdown for Telegram and splits long
// replies into message-sized pieces.
func (b *Bot) sendChunks(chatID int64, text string) {
	text = formatForTelegram(text)
	runes := []rune(text)
	if len(runes) > maxReplyChars {
		runes = append(runes[:maxReplyChars], []rune("...")...)
	}
	for len(runes) > 0 {
		n := min(len(runes), chunkChars)
		b.send(chatID, string(runes[:n]))
		runes = runes[n:]
	}
}

func (b *Bot) send(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.DisableWebPagePreview = true
	if _, err := b.api.Send(m); err != nil {
		// Markdown from the model is not always balanced; retry plain.
		m.ParseMode = ""
		if _, err := b.api.Send(m); err != nil {
			slog.Error("send failed", "chat", chatID, "error", err)
		}
	}
}

func (b *Bot) action(chatID int64, action string) {
	_, _ = b.api.Request(tgbotapi.NewChatAction(chatID, action))
}

// formatStats renders the engine counters as a stable-ordered report.
func formatStats(m map[string]int64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("📊 *Статистика движка*\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "`%s`: %d\n", k, m[k])
	}
	return sb.String()
}

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.*)$`)
	boldRe    = regexp.MustCompile(`(?s)\*\*(.+?)\*\*`)
	bulletRe  = regexp.MustCompile(`(?m)^(\s*)[*\-]\s+`)
)

// formatForTelegram downgrades model markdown to Telegram's legacy
// Markdown dialect: headings become bold lines, ** becomes *, list
// markers become bullets.
func formatForTelegram(s string) string {
	s = headingRe.ReplaceAllString(s, "\n*$1*")
	s = boldRe.ReplaceAllString(s, "*$1*")
	s = bulletRe.ReplaceAllString(s, "$1• ")
	return s
}
