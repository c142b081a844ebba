package bot

import (
	"errors"
	"math/rand/v2"

	"github.com/anna-secretary/anna/internal/engine"
)

var overloadedReplies = []string{
	"💤 Сервера сейчас перегружены. Дай мне минутку выдохнуть, и я отвечу.",
	"⏳ Большая нагрузка на сеть. Подожди немного, пожалуйста.",
	"🐌 Нейросеть отвечает медленнее обычного. Нужно чуть-чуть подождать.",
}

var blockedReplies = []string{
	"🛑 Фильтры безопасности заблокировали этот ответ. Давай попробуем переформулировать тему мягче?",
	"🤐 Я бы хотела ответить, но это нарушает правила безопасности. Прости, я не могу это обсудить.",
	"⚠️ Тема слишком чувствительная для алгоритмов. Они заблокировали генерацию.",
}

// replyForError translates an internal failure into something Anna would
// actually say in chat. Raw error text never reaches the user.
func replyForError(err error) string {
	var exhausted *engine.ExhaustedError
	if errors.As(err, &exhausted) {
		return "📵 Я перепробовала все способы, но сайт так и не отдал содержимое. Возможно, он закрыт от ботов."
	}
	if errors.Is(err, engine.ErrNoTranscript) {
		return "🎬 У этого видео нет субтитров, мне не из чего сделать конспект."
	}
	if errors.Is(err, engine.ErrInvalidVideoURL) {
		return "🤔 Не смогла разобрать ссылку на видео. Проверь, пожалуйста, что она видовая."
	}

	switch engine.Classify(err) {
	case engine.ClassRateLimited:
		return "⏳ Мы общаемся слишком быстро, лимиты исчерпаны. Давай сделаем небольшую паузу."
	case engine.ClassBlocked:
		return blockedReplies[rand.IntN(len(blockedReplies))]
	case engine.ClassInvalidRequest:
		return "🐘 Сообщение или файл слишком большие для обработки. Попробуй сократить или разбить на части."
	case engine.ClassTransient:
		return overloadedReplies[rand.IntN(len(overloadedReplies))]
	default:
		return "🛠 Возникла техническая ошибка. Попробуй спросить еще раз."
	}
}
