// Package i18n provides localized message catalogs for API error responses.
//
// Catalogs are YAML files keyed by message key. Text may contain named
// placeholders prefixed with a colon (":model not found."), which are
// substituted at translation time.
package i18n

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	kfs "github.com/knadh/koanf/providers/fs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no fallback is configured.
const DefaultLocale = "en"

//go:embed lang/*.yaml
var bundled embed.FS

// ErrUnsupportedLocale is returned for locales without plural rules.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// supportedLocales lists the locales with bundled catalogs.
func supportedLocales() []locales.Translator {
	return []locales.Translator{en.New(), ar.New()}
}

// Catalog translates message keys. Load catalogs before serving; after that
// a Catalog is safe for concurrent use.
type Catalog struct {
	uni      *ut.UniversalTranslator
	fallback string
	matcher  language.Matcher
	order    []string

	mu   sync.RWMutex
	keys map[string]map[string]struct{}
}

// NewCatalog creates a catalog with every bundled locale loaded.
func NewCatalog(fallback string) (*Catalog, error) {
	if fallback == "" {
		fallback = DefaultLocale
	}

	all := supportedLocales()

	var fb locales.Translator
	for _, l := range all {
		if l.Locale() == fallback {
			fb = l
		}
	}

	if fb == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, fallback)
	}

	// The fallback leads the matcher so that a failed match lands on it.
	order := []string{fallback}
	for _, l := range all {
		if l.Locale() != fallback {
			order = append(order, l.Locale())
		}
	}

	tags := make([]language.Tag, 0, len(order))
	for _, loc := range order {
		tags = append(tags, language.Make(loc))
	}

	c := &Catalog{
		uni:      ut.New(fb, all...),
		fallback: fallback,
		matcher:  language.NewMatcher(tags),
		order:    order,
		keys:     make(map[string]map[string]struct{}),
	}

	for _, loc := range order {
		if err := c.load(loc, kfs.Provider(bundled, "lang/"+loc+".yaml")); err != nil {
			return nil, fmt.Errorf("loading bundled %s catalog: %w", loc, err)
		}
	}

	return c, nil
}

// LoadFile merges a YAML catalog from disk into locale, overriding bundled
// messages with the same key.
func (c *Catalog) LoadFile(locale, path string) error {
	if err := c.load(locale, file.Provider(path)); err != nil {
		return fmt.Errorf("loading %s catalog from %s: %w", locale, path, err)
	}

	return nil
}

func (c *Catalog) load(locale string, provider koanf.Provider) error {
	trans, ok := c.uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	k := koanf.New(".")
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	known := c.keys[locale]
	if known == nil {
		known = make(map[string]struct{})
		c.keys[locale] = known
	}

	for _, key := range k.Keys() {
		if err := trans.Add(key, k.String(key), true); err != nil {
			return fmt.Errorf("adding %q: %w", key, err)
		}

		known[key] = struct{}{}
	}

	return nil
}

// Fallback returns the fallback locale.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Locales returns the loaded locales, fallback first.
func (c *Catalog) Locales() []string {
	return slices.Clone(c.order)
}

// Translate implements ports.Translator.
func (c *Catalog) Translate(locale, key string, placeholders map[string]string) string {
	text, ok := c.lookup(locale, key)
	if !ok {
		text, ok = c.lookup(c.fallback, key)
	}

	if !ok {
		return key
	}

	return substitute(text, placeholders)
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	if locale == "" {
		locale = c.fallback
	}

	trans, found := c.uni.GetTranslator(locale)
	if !found {
		trans, found = c.uni.GetTranslator(c.Match(locale))
		if !found {
			return "", false
		}
	}

	text, err := trans.T(key)
	if err != nil {
		return "", false
	}

	return text, true
}

// Match negotiates the best loaded locale for an Accept-Language value.
// It returns the fallback when nothing matches.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}

	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.fallback
	}

	return c.order[index]
}

// Name implements ports.HealthChecker.
func (c *Catalog) Name() string {
	return "translations"
}

// Check implements ports.HealthChecker. It fails when plural rules are
// incomplete or a locale lacks a key the fallback defines.
func (c *Catalog) Check(_ context.Context) error {
	if err := c.uni.VerifyTranslations(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var problems []string

	for _, loc := range c.order[1:] {
		for _, key := range slices.Sorted(maps.Keys(c.keys[c.fallback])) {
			if _, ok := c.keys[loc][key]; !ok {
				problems = append(problems, loc+"."+key)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("missing translations: %s", strings.Join(problems, ", "))
	}

	return nil
}

// substitute replaces ":name" placeholders. Longer names are replaced first
// so ":model" never clobbers ":model_id".
func substitute(text string, placeholders map[string]string) string {
	if len(placeholders) == 0 {
		return text
	}

	names := slices.SortedFunc(maps.Keys(placeholders), func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, ":"+name, placeholders[name])
	}

	return strings.NewReplacer(pairs...).Replace(text)
}
