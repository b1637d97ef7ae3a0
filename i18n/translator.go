// Package i18n localizes descriptor issue codes for human-facing output.
package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"nil_descriptor":     "descriptor is missing",
		"non_object_payload": "payload must be object-shaped",
		"missing_tag":        "tag member name is missing",
		"tag_content_clash":  "name clashes with the tag or content member",
		"duplicate_name":     "name is used more than once",
		"invalid_default":    "default value is not JSON-encodable",
		"invalid_shape":      "descriptor shape is invalid",
		"inline_cycle":       "type refers to itself only through inline schemas",
	},
	"ja": {
		"nil_descriptor":     "記述子がありません",
		"non_object_payload": "ペイロードはオブジェクト形式である必要があります",
		"missing_tag":        "タグのメンバー名がありません",
		"tag_content_clash":  "名前がタグまたはコンテンツのメンバーと衝突しています",
		"duplicate_name":     "名前が重複しています",
		"invalid_default":    "既定値を JSON に変換できません",
		"invalid_shape":      "記述子の形が不正です",
		"inline_cycle":       "インラインのスキーマだけを通して自身を参照しています",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if p := data["path"]; p != "" {
		return p + ": " + msg
	}
	return msg
}

var mu sync.RWMutex

var currentTranslator Translator = dictTranslator{lang: "en"}

// Languages lists the built-in dictionary languages.
func Languages() []string { return []string{"en", "ja"} }

// SetLanguage switches the built-in Translator language ("en"/"ja").
// Unknown languages fall back to English.
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
