package bot

import (
	"sync"

	"github.com/anna-secretary/anna/internal/llm"
)

// historyBook keeps a bounded per-chat conversation window in memory.
// History is deliberately not persisted: a restart starts a clean dialog.
type historyBook struct {
	mu    sync.Mutex
	limit int
	chats map[int64][]llm.ChatMessage
}

func newHistoryBook(limit int) *historyBook {
	return &historyBook{limit: limit, chats: make(map[int64][]llm.ChatMessage)}
}

func (h *historyBook) add(chatID int64, role, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.chats[chatID], llm.ChatMessage{Role: role, Text: text})
	if len(msgs) > h.limit {
		msgs = msgs[len(msgs)-h.limit:]
	}
	h.chats[chatID] = msgs
}

func (h *historyBook) get(chatID int64) []llm.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.chats[chatID]
	out := make([]llm.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

func (h *historyBook) reset(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.chats, chatID)
}
