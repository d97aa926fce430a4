// Package i18n provides the key to localized-string lookup used for
// user-visible messages. Lookup is a pure function: unknown languages fall
// back to English, and unknown keys fall back to the key itself.
package i18n

// Languages supported by the assistant UI.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
	LangTamil   = "ta"
)

var english = map[string]string{
	"chat.error":        "Sorry, something went wrong. Please try again.",
	"chat.greeting":     "Namaste! How can I help you with government services today?",
	"live.mic_denied":   "Microphone access was denied. Please allow it and try again.",
	"live.connect_fail": "Could not start the voice session. Please try again.",
	"live.ended":        "Voice session ended.",
	"form.analyzing":    "Analyzing your form...",
	"form.ready":        "I found the fields on your form. Tell me the details and I will fill them in.",
	"report.submitted":  "Your complaint has been recorded.",
	"vault.fetched":     "Document fetched from DigiLocker.",
}

var hindi = map[string]string{
	"chat.error":        "क्षमा करें, कुछ गलत हो गया। कृपया फिर से प्रयास करें।",
	"chat.greeting":     "नमस्ते! आज मैं सरकारी सेवाओं में आपकी कैसे मदद कर सकता हूँ?",
	"live.mic_denied":   "माइक्रोफ़ोन की अनुमति नहीं मिली। कृपया अनुमति देकर फिर से प्रयास करें।",
	"live.connect_fail": "वॉयस सत्र शुरू नहीं हो सका। कृपया फिर से प्रयास करें।",
	"live.ended":        "वॉयस सत्र समाप्त हुआ।",
	"form.analyzing":    "आपका फॉर्म जाँचा जा रहा है...",
	"form.ready":        "मुझे आपके फॉर्म के फ़ील्ड मिल गए हैं। विवरण बताइए, मैं भर दूँगा।",
	"report.submitted":  "आपकी शिकायत दर्ज कर ली गई है।",
	"vault.fetched":     "दस्तावेज़ डिजिलॉकर से प्राप्त हुआ।",
}

var tamil = map[string]string{
	"chat.error":        "மன்னிக்கவும், ஏதோ தவறு நடந்தது. மீண்டும் முயற்சிக்கவும்.",
	"chat.greeting":     "வணக்கம்! இன்று அரசு சேவைகளில் நான் எப்படி உதவலாம்?",
	"live.mic_denied":   "மைக்ரோஃபோன் அனுமதி மறுக்கப்பட்டது. அனுமதித்து மீண்டும் முயற்சிக்கவும்.",
	"live.connect_fail": "குரல் அமர்வைத் தொடங்க முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
	"live.ended":        "குரல் அமர்வு முடிந்தது.",
	"form.analyzing":    "உங்கள் படிவம் பரிசீலிக்கப்படுகிறது...",
	"form.ready":        "உங்கள் படிவத்தின் புலங்களைக் கண்டேன். விவரங்களைச் சொல்லுங்கள், நான் நிரப்புகிறேன்.",
	"report.submitted":  "உங்கள் புகார் பதிவு செய்யப்பட்டது.",
	"vault.fetched":     "ஆவணம் டிஜிலாக்கரிலிருந்து பெறப்பட்டது.",
}

var catalogs = map[string]map[string]string{
	LangEnglish: english,
	LangHindi:   hindi,
	LangTamil:   tamil,
}

// T returns the localized string for key in the given language. Unknown
// languages fall back to English; unknown keys return the key unchanged.
func T(lang, key string) string {
	if catalog, ok := catalogs[lang]; ok {
		if s, ok := catalog[key]; ok {
			return s
		}
	}
	if s, ok := english[key]; ok {
		return s
	}
	return key
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{LangEnglish, LangHindi, LangTamil}
}
