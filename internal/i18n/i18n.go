// Package i18n provides the translate function injected into the rule
// labeling helpers, backed by per-language message catalogs.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// TranslateFunc resolves key to localized text. defaultText is used when no
// catalog has the key; args fill {{name}} placeholders.
type TranslateFunc func(key, defaultText string, args map[string]any) string

// builtin holds the English texts whose keys are not already English.
var builtin = map[string]string{
	"general.accountSmallCase":    "account",
	"notesSmallCase":              "notes",
	"general.invalidDateFormat":   "Invalid date format",
	"internalErrorContactSupport": "Internal error, sorry! Please get in touch https://actualbudget.github.io/docs/Contact/ for support",
}

// Catalog stores messages per language. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// NewCatalog returns a catalog holding the built-in English messages.
func NewCatalog() *Catalog {
	c := &Catalog{messages: make(map[language.Tag]map[string]string)}
	en := make(map[string]string, len(builtin))
	for k, v := range builtin {
		en[k] = v
	}
	c.messages[language.English] = en
	c.rebuild()
	return c
}

// LoadYAML replaces the loaded languages with a document of the form
// {lang: {key: text}}. The built-in English messages stay underneath. On
// error the catalog is left unchanged.
func (c *Catalog) LoadYAML(data []byte) error {
	var doc map[string]map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	messages := make(map[language.Tag]map[string]string, len(doc)+1)
	en := make(map[string]string, len(builtin))
	for k, v := range builtin {
		en[k] = v
	}
	messages[language.English] = en

	for lang, msgs := range doc {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", lang, err)
		}
		dst, ok := messages[tag]
		if !ok {
			dst = make(map[string]string, len(msgs))
			messages[tag] = dst
		}
		for k, v := range msgs {
			dst[k] = v
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = messages
	c.rebuild()
	return nil
}

// LoadFile reads a YAML catalog from disk.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}
	return c.LoadYAML(data)
}

// rebuild refreshes the matcher. Callers hold c.mu. English is always first
// so it is the fallback match.
func (c *Catalog) rebuild() {
	tags := []language.Tag{language.English}
	for tag := range c.messages {
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	c.tags = tags
	c.matcher = language.NewMatcher(tags)
}

// Languages returns the languages the catalog has messages for, English first.
func (c *Catalog) Languages() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Match picks the best catalog language for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	_, idx, conf := c.matcher.Match(desired...)
	if conf == language.No {
		return language.English
	}
	return c.tags[idx]
}

// Translator returns a TranslateFunc for tag. Lookup order is the tag's
// catalog, then English, then defaultText, then the key itself.
func (c *Catalog) Translator(tag language.Tag) TranslateFunc {
	return func(key, defaultText string, args map[string]any) string {
		c.mu.RLock()
		text, ok := c.messages[tag][key]
		if !ok {
			text, ok = c.messages[language.English][key]
		}
		c.mu.RUnlock()

		if !ok {
			text = defaultText
		}
		if text == "" {
			text = key
		}
		return interpolate(text, args)
	}
}

func interpolate(text string, args map[string]any) string {
	if len(args) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

var english = NewCatalog()

// English is the translate function over the built-in messages only.
func English(key, defaultText string, args map[string]any) string {
	return english.Translator(language.English)(key, defaultText, args)
}
