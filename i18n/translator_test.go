package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sg "github.com/reoring/schemagen"
	"github.com/reoring/schemagen/i18n"
)

func TestTranslator_EveryIssueCode(t *testing.T) {
	t.Cleanup(func() { i18n.SetLanguage("en") })
	codes := []string{
		sg.CodeNilDescriptor, sg.CodeNonObjectPayload, sg.CodeMissingTag, sg.CodeTagContentClash,
		sg.CodeDuplicateName, sg.CodeInvalidDefault, sg.CodeInvalidShape, sg.CodeInlineCycle,
	}
	for _, lang := range i18n.Languages() {
		i18n.SetLanguage(lang)
		for _, code := range codes {
			assert.NotEqual(t, code, i18n.T(code, nil), "%s/%s", lang, code)
		}
	}
}

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	t.Cleanup(func() { i18n.SetLanguage("en") })

	assert.Equal(t, "name is used more than once", i18n.T(sg.CodeDuplicateName, nil))
	assert.Equal(t, "/A/cases/B: name is used more than once", i18n.T(sg.CodeDuplicateName, map[string]string{"path": "/A/cases/B"}))

	i18n.SetLanguage("ja")
	assert.Equal(t, "名前が重複しています", i18n.T(sg.CodeDuplicateName, nil))

	i18n.SetLanguage("fr")
	assert.Equal(t, "descriptor is missing", i18n.T(sg.CodeNilDescriptor, nil))
	assert.Equal(t, "something_else", i18n.T("something_else", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "!" + code }

func TestSetTranslator(t *testing.T) {
	t.Cleanup(func() { i18n.SetTranslator(nil) })
	i18n.SetTranslator(upper{})
	assert.Equal(t, "!missing_tag", i18n.T(sg.CodeMissingTag, nil))
	i18n.SetTranslator(nil)
	assert.Equal(t, "tag member name is missing", i18n.T(sg.CodeMissingTag, nil))
}
