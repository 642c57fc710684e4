package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"mendel/pkg/genetics"
)

// Translator renders catalog messages for a matched language.
type Translator struct {
	bundle   *Bundle
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
}

// New registers every locale of bundle in a private catalog. defaultLocale
// is used when nothing the caller asks for matches; blank means BaseLocale.
func New(bundle *Bundle, defaultLocale string) (*Translator, error) {
	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = BaseLocale
	}
	if !bundle.HasLocale(defaultLocale) {
		return nil, fmt.Errorf("default locale %s is not defined in catalogs", defaultLocale)
	}
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}
	t := &Translator{
		bundle:   bundle,
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		fallback: fallback,
	}
	// The matcher prefers its first tag on ties, so the default goes first.
	t.tags = append(t.tags, fallback)
	for _, locale := range bundle.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key, msg := range bundle.LocaleMessages(locale) {
			if err := t.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
		if tag != fallback {
			t.tags = append(t.tags, tag)
		}
	}
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

// Default returns a translator over the embedded catalogs.
func Default(defaultLocale string) (*Translator, error) {
	bundle, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return New(bundle, defaultLocale)
}

// Supported lists the tags the translator can render, default first.
func (t *Translator) Supported() []language.Tag {
	return append([]language.Tag(nil), t.tags...)
}

// Match resolves the language for a request: an explicit lang value wins,
// then the Accept-Language header, then the default.
func (t *Translator) Match(lang, acceptLanguage string) language.Tag {
	if lang = strings.TrimSpace(lang); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			if matched, ok := t.match(tag); ok {
				return matched
			}
		}
	}
	if acceptLanguage = strings.TrimSpace(acceptLanguage); acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if matched, ok := t.match(tags...); ok {
				return matched
			}
		}
	}
	return t.fallback
}

func (t *Translator) match(tags ...language.Tag) (language.Tag, bool) {
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.fallback, false
	}
	return t.tags[index], true
}

// Text renders key with positional string arguments. Unknown keys render as
// the key itself.
func (t *Translator) Text(tag language.Tag, key string, args ...string) string {
	if _, ok := t.bundle.Message(tag.String(), key); !ok {
		return key
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	p := message.NewPrinter(tag, message.Catalog(t.builder))
	return p.Sprintf(key, vals...)
}

// Message renders an engine message code. Codes missing from the catalogs
// fall back to the engine's English template.
func (t *Translator) Message(tag language.Tag, code genetics.MessageCode, args ...string) string {
	if _, ok := t.bundle.Message(tag.String(), string(code)); !ok {
		return genetics.RenderMessage(code, args...)
	}
	return t.Text(tag, string(code), args...)
}

// Validation returns v with its message rendered for tag.
func (t *Translator) Validation(tag language.Tag, v genetics.Validation) genetics.Validation {
	if !v.Valid && v.Code != "" {
		v.Message = t.Message(tag, v.Code, v.Args...)
	}
	return v
}

// FieldValidation renders v for tag and prefixes the message with the
// localized label of field ("form.<field>") when the catalog defines one.
func (t *Translator) FieldValidation(tag language.Tag, field string, v genetics.Validation) genetics.Validation {
	v = t.Validation(tag, v)
	if v.Valid || v.Message == "" || field == "" {
		return v
	}
	key := "form." + field
	if _, ok := t.bundle.Message(tag.String(), key); ok {
		v.Message = t.Text(tag, key) + ": " + v.Message
	}
	return v
}

// Result returns r with its message rendered for tag.
func (t *Translator) Result(tag language.Tag, r genetics.ProbabilityResult) genetics.ProbabilityResult {
	if !r.Valid && r.Code != "" {
		r.Message = t.Message(tag, r.Code, r.Args...)
	}
	return r
}

// Law names the Mendelian law a cross of arity demonstrates, or "" for poly.
func (t *Translator) Law(tag language.Tag, arity genetics.CrossArity) string {
	switch arity {
	case genetics.Mono, genetics.Di:
		return t.Text(tag, "law."+string(arity))
	}
	return ""
}
