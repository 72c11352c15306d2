package ui

import "testing"

func TestLocalization_FallsBackToEnglish(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("zh")
	if got := l.GetText(KeyTabRecycleBin); got != "回收站" {
		t.Errorf("Expected Chinese label, got %s", got)
	}

	delete(l.texts["zh"], KeyCreate)
	if got := l.GetText(KeyCreate); got != "Download" {
		t.Errorf("Expected English fallback, got %s", got)
	}

	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("Expected key itself for unknown key, got %s", got)
	}
}

func TestLocalization_UnsupportedLanguageIgnored(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("fr")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected language to stay en, got %s", l.GetCurrentLanguage())
	}
}

func TestLocalization_SystemLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")

	l := NewLocalization()
	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "zh" {
		t.Errorf("Expected zh from LANG, got %s", l.GetCurrentLanguage())
	}
}

func TestLocalization_StatusText(t *testing.T) {
	l := NewLocalization()
	if got := l.StatusText("paused"); got != "Paused" {
		t.Errorf("Expected Paused, got %s", got)
	}
	if got := l.StatusText("archived"); got != "archived" {
		t.Errorf("Expected unknown status verbatim, got %s", got)
	}
}

func TestLocalization_LanguagesHaveSameKeys(t *testing.T) {
	l := NewLocalization()
	for key := range l.texts["en"] {
		if _, ok := l.texts["zh"][key]; !ok {
			t.Errorf("Key %s missing from zh", key)
		}
	}
}
