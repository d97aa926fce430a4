package i18n

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{name: "english key", lang: "en", key: "live.ended", want: "Voice session ended."},
		{name: "hindi key", lang: "hi", key: "live.ended", want: "वॉयस सत्र समाप्त हुआ।"},
		{name: "unknown language falls back to english", lang: "fr", key: "live.ended", want: "Voice session ended."},
		{name: "unknown key returns key", lang: "en", key: "no.such.key", want: "no.such.key"},
		{name: "unknown key unknown language", lang: "fr", key: "no.such.key", want: "no.such.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := T(tt.lang, tt.key); got != tt.want {
				t.Fatalf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestEveryLanguageCoversEveryKey(t *testing.T) {
	for _, lang := range Languages() {
		catalog := catalogs[lang]
		for key := range english {
			if _, ok := catalog[key]; !ok {
				t.Errorf("language %s is missing key %s", lang, key)
			}
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported("ta") {
		t.Fatal("tamil should be supported")
	}
	if Supported("fr") {
		t.Fatal("french should not be supported")
	}
}
