package i18n

import (
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"mendel/pkg/genetics"
)

func defaultTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := Default("")
	require.NoError(t, err)
	return tr
}

func TestBaseCatalogMatchesEngineMessages(t *testing.T) {
	bundle, err := LoadEmbedded()
	require.NoError(t, err)
	base := bundle.LocaleMessages(BaseLocale)
	for code, tmpl := range genetics.DefaultMessages {
		assert.Equal(t, tmpl, base[string(code)], "code %s", code)
	}
}

func TestLocalesDefineSameKeys(t *testing.T) {
	bundle, err := LoadEmbedded()
	require.NoError(t, err)
	base := bundle.LocaleMessages(BaseLocale)
	for _, locale := range bundle.Locales() {
		messages := bundle.LocaleMessages(locale)
		assert.Len(t, messages, len(base), "locale %s", locale)
		for key := range base {
			assert.Contains(t, messages, key, "locale %s", locale)
		}
	}
}

func TestMatch(t *testing.T) {
	tr := defaultTranslator(t)
	ptBR := language.MustParse("pt-BR")
	enUS := language.MustParse("en-US")

	assert.Equal(t, ptBR, tr.Match("pt", ""))
	assert.Equal(t, ptBR, tr.Match("", "fr-FR;q=0.9, pt-PT;q=0.8"))
	assert.Equal(t, enUS, tr.Match("", "de"))
	assert.Equal(t, enUS, tr.Match("not a tag", ""))
	assert.Equal(t, enUS, tr.Match("en", "pt-BR"), "lang wins over Accept-Language")
}

func TestDefaultLocaleOverride(t *testing.T) {
	tr, err := Default("pt-BR")
	require.NoError(t, err)
	assert.Equal(t, language.MustParse("pt-BR"), tr.Match("", ""))

	_, err = Default("fr-FR")
	assert.Error(t, err)
}

func TestMessageRendering(t *testing.T) {
	tr := defaultTranslator(t)
	ptBR := language.MustParse("pt-BR")
	enUS := language.MustParse("en-US")

	v := genetics.Validate("ABb", genetics.Di)
	require.False(t, v.Valid)
	assert.Equal(t, v.Message, tr.Validation(enUS, v).Message)
	assert.Equal(t,
		"Genótipo di-híbrido inválido: esperados 4 alelos, recebidos 3. Use dois pares de alelos (ex.: AaBb).",
		tr.Validation(ptBR, v).Message)

	r := genetics.ProbabilityResult{Code: genetics.CodeImpossible, Args: []string{"AA"}}
	assert.Equal(t, "O genótipo 'AA' não é possível neste cruzamento.", tr.Result(ptBR, r).Message)

	ok := genetics.Validate("Aa", genetics.Mono)
	assert.Empty(t, tr.Validation(ptBR, ok).Message)

	assert.Equal(t, "unknown.key", tr.Text(enUS, "unknown.key"))
	assert.Equal(t, "no such code", tr.Message(enUS, genetics.MessageCode("no such code")))
}

func TestFieldValidationPrefixesLabel(t *testing.T) {
	tr := defaultTranslator(t)
	ptBR := language.MustParse("pt-BR")
	enUS := language.MustParse("en-US")

	v := genetics.Validate("Aab", genetics.Mono)
	assert.Equal(t, "Parent 2: "+v.Message, tr.FieldValidation(enUS, "parent2", v).Message)
	assert.Equal(t,
		"Progenitor 1: Genótipo mono-híbrido inválido: esperados 2 alelos, recebidos 3. Use um par de alelos (ex.: AA, Aa).",
		tr.FieldValidation(ptBR, "parent1", v).Message)
	assert.Equal(t, v.Message, tr.FieldValidation(enUS, "compatibility", v).Message)

	ok := genetics.Validate("Aa", genetics.Mono)
	assert.Empty(t, tr.FieldValidation(enUS, "parent1", ok).Message)
}

func TestLaw(t *testing.T) {
	tr := defaultTranslator(t)
	ptBR := language.MustParse("pt-BR")
	assert.Equal(t, genetics.Mono.Law(), tr.Law(ptBR, genetics.Mono))
	assert.Equal(t, genetics.Di.Law(), tr.Law(ptBR, genetics.Di))
	assert.Equal(t, "Mendel's First Law (Segregation)", tr.Law(language.MustParse("en-US"), genetics.Mono))
	assert.Empty(t, tr.Law(ptBR, genetics.Poly))
}

func TestLoadFromFSErrors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"empty": {},
		"locale mismatch": {
			"locales/en-US/messages.yaml": {Data: []byte("locale: pt-BR\nnamespace: messages\nmessages: {a: b}\n")},
		},
		"namespace mismatch": {
			"locales/en-US/messages.yaml": {Data: []byte("locale: en-US\nnamespace: other\nmessages: {a: b}\n")},
		},
		"missing base": {
			"locales/pt-BR/messages.yaml": {Data: []byte("locale: pt-BR\nnamespace: messages\nmessages: {a: b}\n")},
		},
		"bad yaml": {
			"locales/en-US/messages.yaml": {Data: []byte("locale: [\n")},
		},
		"duplicate key": {
			"locales/en-US/a.yaml": {Data: []byte("locale: en-US\nnamespace: a\nmessages: {k: one}\n")},
			"locales/en-US/b.yaml": {Data: []byte("locale: en-US\nnamespace: b\nmessages: {k: two}\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFS(fsys)
			assert.Error(t, err, fmt.Sprintf("%s should fail", name))
		})
	}
}
