package bot

import "testing"

func TestNoteQuery(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		ok    bool
	}{
		{"прочитай про", "прочитай заметку про устройство планировщика", "устройство планировщика", true},
		{"найди", "найди заметку кеширование в nginx", "кеширование в nginx", true},
		{"открой", "Открой заметку про Go", "Go", true},
		{"покажи без запроса", "покажи заметку", "", true},
		{"склонение", "найди заметки про котов", "котов", true},
		{"просто упоминание", "я вчера сохранила заметку", "", false},
		{"обычный чат", "как дела?", "", false},
		{"пусто", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, ok := noteQuery(tt.text)
			if ok != tt.ok {
				t.Fatalf("noteQuery(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if query != tt.query {
				t.Errorf("noteQuery(%q) = %q, want %q", tt.text, query, tt.query)
			}
		})
	}
}
