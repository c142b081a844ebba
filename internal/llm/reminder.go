package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reminder is a parsed reminder request.
type Reminder struct {
	DueAt        time.Time
	Text         string
	Confirmation string
}

const reminderPrompt = `Ты парсер напоминаний. Из сообщения пользователя извлеки время и текст напоминания.
Текущее время: %s

Сообщение: %s
%s
Ответь СТРОГО одним JSON-объектом без пояснений:
{"target_time": "2006-01-02T15:04:05+03:00", "reminder_text": "...", "confirmation": "..."}

target_time — абсолютное время в RFC3339. confirmation — короткий дружелюбный ответ,
что напоминание поставлено. Если время извлечь нельзя, верни {"target_time": ""}.`

type reminderJSON struct {
	TargetTime   string `json:"target_time"`
	ReminderText string `json:"reminder_text"`
	Confirmation string `json:"confirmation"`
}

// ParseReminder asks the model to turn free-form text ("напомни завтра в
// 9 купить хлеб") into an absolute timestamp plus the reminder body.
// Returns nil when the model could not find a time in the message.
func (c *Client) ParseReminder(ctx context.Context, text, replyContext string, now time.Time) (*Reminder, error) {
	extra := ""
	if replyContext != "" {
		extra = "Контекст (сообщение, на которое ответили): " + replyContext + "\n"
	}
	prompt := fmt.Sprintf(reminderPrompt, now.Format(time.RFC3339), text, extra)

	out, err := c.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	var parsed reminderJSON
	if err := json.Unmarshal([]byte(stripFences(strings.TrimSpace(out))), &parsed); err != nil {
		return nil, fmt.Errorf("llm: reminder parse: %w", err)
	}
	if parsed.TargetTime == "" {
		return nil, nil
	}
	due, err := time.Parse(time.RFC3339, parsed.TargetTime)
	if err != nil {
		return nil, fmt.Errorf("llm: reminder time %q: %w", parsed.TargetTime, err)
	}
	if parsed.Confirmation == "" {
		parsed.Confirmation = "⏰ Хорошо, напомню."
	}
	return &Reminder{DueAt: due, Text: parsed.ReminderText, Confirmation: parsed.Confirmation}, nil
}
