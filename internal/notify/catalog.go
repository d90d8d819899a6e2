package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/stolujeme/stolu-cli/internal/envelope"
)

// keyOther is the fallback message for types without a translation. It
// takes the type as its only argument.
const keyOther = "OTHER"

var translations = map[language.Tag]map[string]string{
	language.English: {
		string(envelope.TypeConnection):            "Could not reach the server. Check your connection.",
		string(envelope.TypeAuthenticationInvalid): "Your session has expired. Please log in again.",
		string(envelope.TypeUnknown):               "The server sent a response that could not be understood.",
		string(envelope.TypeNameNotUnique):         "That name is already taken.",
		string(envelope.TypeMealUUIDInvalid):       "No such meal.",
		keyOther:                                   "unknown error: %s",
	},
	language.Czech: {
		string(envelope.TypeConnection):            "Nepodařilo se spojit se serverem. Zkontrolujte připojení.",
		string(envelope.TypeAuthenticationInvalid): "Vaše přihlášení vypršelo. Přihlaste se prosím znovu.",
		string(envelope.TypeUnknown):               "Server odeslal odpověď, které nerozumíme.",
		string(envelope.TypeNameNotUnique):         "Toto jméno je již obsazené.",
		string(envelope.TypeMealUUIDInvalid):       "Takové jídlo neexistuje.",
		keyOther:                                   "neznámá chyba: %s",
	},
}

// supported lists the catalog languages, default first.
var supported = []language.Tag{language.English, language.Czech}

// messages is built once; English is the fallback language.
var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for _, tag := range supported {
		for key, text := range translations[tag] {
			if err := b.SetString(tag, key, text); err != nil {
				panic("notify: building catalog: " + err.Error())
			}
		}
	}

	return b
}

// hasTranslation reports whether key has an entry in the catalog.
func hasTranslation(key string) bool {
	_, ok := translations[language.English][key]
	return ok
}

func localize(p *message.Printer, t envelope.ErrorType) string {
	key := string(t)
	if key == keyOther || !hasTranslation(key) {
		return p.Sprintf(message.Key(keyOther, "unknown error: %s"), key)
	}

	return p.Sprintf(message.Key(key, key))
}
