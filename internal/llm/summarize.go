package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

// Structured holds a summarizer result: a short title plus the rewritten body.
type Structured struct {
	Title string
	Body  string
}

const structurePrompt = `You are a note-taking assistant. Rewrite the following web content
as a clean, well-structured markdown note. Keep the original language of the text.
Remove navigation junk, cookie banners, ads and unrelated links. Keep all substantive
content and the author's structure where it makes sense.

The first line of your answer MUST be exactly:
TITLE: <a short descriptive title, максимум 60 символов>

Everything after that line is the note body. Do not add any other preamble.

Source: %s`

// StructureArticle asks the model to turn raw extracted text into a
// titled note. The caller degrades to the raw title/body when this fails;
// summarization is a collaborator, never a gate.
func (c *Client) StructureArticle(ctx context.Context, sourceURL, text string) (*Structured, error) {
	prompt := fmt.Sprintf(structurePrompt, sourceURL) + "\n\n---\n\n" + text
	raw, err := c.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	return parseStructured(raw), nil
}

// parseStructured splits model output on the TITLE: protocol line.
// A missing title line leaves Title empty; the caller falls back.
func parseStructured(raw string) *Structured {
	title := ""
	var body []string
	for _, line := range strings.Split(stripFences(raw), "\n") {
		if title == "" && strings.HasPrefix(line, "TITLE:") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
			continue
		}
		body = append(body, line)
	}
	return &Structured{
		Title: title,
		Body:  strings.TrimSpace(strings.Join(body, "\n")),
	}
}

// noteDiscussionPrompt frames a saved note plus the owner's message so
// the model answers from the note instead of from memory.
func noteDiscussionPrompt(name, content, question string) string {
	return fmt.Sprintf("Вот сохранённая заметка из блокнота владельца (файл «%s»):\n\n---\n%s\n---\n\nСообщение владельца: %s\nОтветь, опираясь на содержание заметки.",
		name, content, question)
}

// DiscussNote answers the owner's message using a saved note as context.
func (c *Client) DiscussNote(ctx context.Context, name, content, question string) (string, error) {
	return c.Complete(ctx, systemPersona+languageForce, noteDiscussionPrompt(name, content, question))
}

// ChatMessage is one turn of stored conversation history.
type ChatMessage struct {
	Role string // "user" or "assistant"
	Text string
}

// Dossier is what the bot knows about the current user.
type Dossier struct {
	Relationship int // 0–100
	Facts        string
}

const historyWindow = 20

const systemPersona = `Ты — Анна, личный секретарь. Отвечай кратко, по делу, дружелюбно.
Ты умеешь сохранять статьи и расшифровки видео в заметки, ставить напоминания и
отвечать на вопросы по сохранённым заметкам.`

const languageForce = "\n\n!!! ВАЖНО: Всегда отвечай СТРОГО на русском языке, независимо от языка входящих данных."

// BuildChatMessages assembles the full completion request for one chat
// turn: persona, capped history window, then the current message with a
// time header and the user dossier folded in.
func BuildChatMessages(history []ChatMessage, userText string, dossier *Dossier, now time.Time) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPersona + languageForce),
	}

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, m := range history[start:] {
		if m.Text == "" {
			continue
		}
		if m.Role == "assistant" {
			msgs = append(msgs, openai.AssistantMessage(m.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Text))
		}
	}

	text := userText
	if dossier != nil {
		status := "НЕЙТРАЛ"
		switch {
		case dossier.Relationship >= 80:
			status = "БРАТАН"
		case dossier.Relationship <= 30:
			status = "ХОЛОД"
		}
		facts := dossier.Facts
		if facts == "" {
			facts = "нет"
		}
		text = fmt.Sprintf("--- ДОСЬЕ: %s (%d/100) ---\nФакты: %s\n---\n%s",
			status, dossier.Relationship, facts, text)
	}

	msgs = append(msgs, openai.UserMessage(fmt.Sprintf("[Время: %s]\n%s",
		now.Format("Monday, 2 January 2006, 15:04"), text)))
	return msgs
}
