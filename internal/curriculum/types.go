// Package curriculum models the grammar-study content document: an ordered
// list of topics, each holding sentences whose question offers options, each
// option carrying a locale-keyed explanation record.
package curriculum

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-lingo/internal/jsondoc"
)

// Field names used by the grammar-study document.
const (
	fieldSentences   = "sentences"
	fieldQuestion    = "question"
	fieldOptions     = "options"
	fieldExplanation = "explanation"
	fieldChoice      = "choice"
	fieldName        = "name"
)

// ErrNoRecord is returned when an address does not point at an explanation record.
var ErrNoRecord = errors.New("no explanation record at address")

// Address locates one option by position in the document.
type Address struct {
	Topic    int `json:"topic"`
	Sentence int `json:"sentence"`
	Option   int `json:"option"`
}

func (a Address) String() string {
	return fmt.Sprintf("topic[%d].sentence[%d].option[%d]", a.Topic, a.Sentence, a.Option)
}

// Document is the in-memory content document. It exclusively owns its tree.
type Document struct {
	Root *jsondoc.Node

	// Duplicates lists object keys collapsed while decoding.
	Duplicates []jsondoc.Duplicate
	// Repaired is the number of trailing separators removed before decoding.
	Repaired int
}

// Option is an answer option that carries an explanation record. Topic is the
// enclosing topic's name and Choice the option's answer text.
type Option struct {
	Address     Address
	Topic       string
	Choice      string
	Explanation Explanation
}

// Explanation is a mapping from locale code to translated text.
type Explanation struct {
	node *jsondoc.Node
}

// Text returns the text stored for locale. Non-string values count as absent.
func (e Explanation) Text(locale string) (string, bool) {
	return e.node.StringValue(locale)
}

// Has reports whether locale is present, whatever its value.
func (e Explanation) Has(locale string) bool {
	return e.node.Has(locale)
}

// Locales returns the locale keys in document order.
func (e Explanation) Locales() []string {
	return e.node.Keys()
}

// Insert adds text under locale. An existing locale is never overwritten.
func (e Explanation) Insert(locale, text string) error {
	return e.node.Insert(locale, jsondoc.NewString(text))
}

// Parse repairs trailing separators in data and decodes it into a Document.
func Parse(data []byte) (*Document, error) {
	root, dups, removed, err := jsondoc.ParseRepaired(data)
	if err != nil {
		return nil, err
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("document root must be an array of topics, got %s", root.Kind)
	}

	return &Document{Root: root, Duplicates: dups, Repaired: removed}, nil
}

// Encode serializes the document deterministically.
func (d *Document) Encode() ([]byte, error) {
	return jsondoc.Encode(d.Root)
}

// Topics returns the number of topics.
func (d *Document) Topics() int {
	return d.Root.Len()
}

// Walk calls fn for every option that has an explanation record, in topic,
// sentence, option order. Topics, sentences and options lacking the expected
// shape are skipped. Walk stops at the first error returned by fn.
func (d *Document) Walk(fn func(Option) error) error {
	for ti, topic := range d.Root.Items {
		name, _ := topic.StringValue(fieldName)
		sentences := sentencesOf(topic)
		for si, sentence := range sentences.itemsOrNil() {
			options := optionsOf(sentence)
			for oi, option := range options.itemsOrNil() {
				exp, ok := explanationOf(option)
				if !ok {
					continue
				}
				choice, _ := option.StringValue(fieldChoice)
				if err := fn(Option{
					Address:     Address{Topic: ti, Sentence: si, Option: oi},
					Topic:       name,
					Choice:      choice,
					Explanation: Explanation{node: exp},
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Option returns the option at addr.
func (d *Document) Option(addr Address) (Option, error) {
	topic := d.Root.Index(addr.Topic)
	sentence := sentencesOf(topic).Index(addr.Sentence)
	option := optionsOf(sentence).Index(addr.Option)
	exp, ok := explanationOf(option)
	if !ok {
		return Option{}, fmt.Errorf("%s: %w", addr, ErrNoRecord)
	}
	name, _ := topic.StringValue(fieldName)
	choice, _ := option.StringValue(fieldChoice)
	return Option{Address: addr, Topic: name, Choice: choice, Explanation: Explanation{node: exp}}, nil
}

type nodeList struct{ *jsondoc.Node }

func (l nodeList) itemsOrNil() []*jsondoc.Node {
	if !l.IsArray() {
		return nil
	}
	return l.Items
}

func sentencesOf(topic *jsondoc.Node) nodeList {
	s, ok := topic.Get(fieldSentences)
	if !ok {
		return nodeList{}
	}
	return nodeList{s}
}

func optionsOf(sentence *jsondoc.Node) nodeList {
	q, ok := sentence.Get(fieldQuestion)
	if !ok {
		return nodeList{}
	}
	o, ok := q.Get(fieldOptions)
	if !ok {
		return nodeList{}
	}
	return nodeList{o}
}

func explanationOf(option *jsondoc.Node) (*jsondoc.Node, bool) {
	e, ok := option.Get(fieldExplanation)
	if !ok || !e.IsObject() {
		return nil, false
	}
	return e, true
}
