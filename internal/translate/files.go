package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// dictionaryFile is the on-disk shape of translation data. Both sections are
// optional.
//
//	translations:
//	  "Incorrect.":
//	    es: "Incorrecto."
//	phrases:
//	  es:
//	    "Wrong tense.": "Tiempo verbal incorrecto."
type dictionaryFile struct {
	Translations map[string]map[string]string `yaml:"translations" toml:"translations" json:"translations"`
	Phrases      map[string]map[string]string `yaml:"phrases" toml:"phrases" json:"phrases"`
}

// LoadFile reads a YAML, TOML or JSON translation file and returns its exact
// translations and phrase substitutions.
func LoadFile(path string) (*Dictionary, *PhraseTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading translation file: %w", err)
	}

	var f dictionaryFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, nil, fmt.Errorf("unsupported translation file type %q", ext)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	dict := NewDictionary()
	for source, byLocale := range f.Translations {
		for locale, translation := range byLocale {
			dict.Add(source, locale, translation)
		}
	}

	phrases := NewPhraseTable()
	for locale, byPhrase := range f.Phrases {
		for phrase, replacement := range byPhrase {
			phrases.Add(locale, phrase, replacement)
		}
	}
	return dict, phrases, nil
}

// LoadFiles merges the contents of several translation files. Later files
// win on conflicting entries.
func LoadFiles(paths []string) (*Dictionary, *PhraseTable, error) {
	dict := NewDictionary()
	phrases := NewPhraseTable()
	for _, path := range paths {
		d, p, err := LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		dict.Merge(d)
		for locale, byPhrase := range p.phrases {
			for phrase, replacement := range byPhrase {
				phrases.Add(locale, phrase, replacement)
			}
		}
	}
	return dict, phrases, nil
}
