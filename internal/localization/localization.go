package localization

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

// Languages lists the supported locale codes in menu order.
var Languages = []string{"ru", "en", "th"}

type Service struct {
	translations map[string]map[string]interface{}
	fallback     string
}

func NewService(fallback string) (*Service, error) {
	if !IsSupported(fallback) {
		return nil, fmt.Errorf("unsupported fallback language %q", fallback)
	}

	s := &Service{
		translations: make(map[string]map[string]interface{}),
		fallback:     fallback,
	}

	for _, lang := range Languages {
		data, err := translationsFS.ReadFile(fmt.Sprintf("translations/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}

		var translations map[string]interface{}
		if err := yaml.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}

		s.translations[lang] = translations
	}

	return s, nil
}

// IsSupported reports whether lang has a translation table.
func IsSupported(lang string) bool {
	return slices.Contains(Languages, lang)
}

// Resolve maps an arbitrary stored value onto a supported locale.
func (s *Service) Resolve(lang string) string {
	if IsSupported(lang) {
		return lang
	}
	return s.fallback
}

// Get renders key for lang. Keys are dotted paths ("order.start"),
// params fill {{name}} placeholders. A missing key in lang falls back
// to the fallback language and finally to the key itself.
func (s *Service) Get(lang, key string, params map[string]interface{}) string {
	lang = s.Resolve(lang)

	text, ok := s.lookup(lang, key)
	if !ok && lang != s.fallback {
		text, ok = s.lookup(s.fallback, key)
	}
	if !ok {
		return key
	}

	return s.replacePlaceholders(text, params)
}

func (s *Service) lookup(lang, key string) (string, bool) {
	var current interface{} = s.translations[lang]

	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current = m[part]
	}

	text, ok := current.(string)
	return text, ok
}

func (s *Service) replacePlaceholders(text string, params map[string]interface{}) string {
	if params == nil {
		return text
	}

	result := text
	for key, value := range params {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, fmt.Sprint(value))
	}

	return result
}
