package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// MalformedInputError reports input that cannot be parsed as JSON.
type MalformedInputError struct {
	Offset int64
	Line   int
	Column int
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed JSON at line %d, column %d (offset %d): %v", e.Line, e.Column, e.Offset, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Duplicate records an object key that appeared more than once.
// The decoder keeps the first position and the last value.
type Duplicate struct {
	Path   string `json:"path"`
	Key    string `json:"key"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Parse decodes data into a Node tree.
func Parse(data []byte) (*Node, error) {
	n, _, err := ParseWithDuplicates(data)
	return n, err
}

// ParseWithDuplicates decodes data and also returns every duplicate object key
// it collapsed, in document order.
func ParseWithDuplicates(data []byte) (*Node, []Duplicate, error) {
	return parse(data, data, nil)
}

// parse decodes data, reporting positions in src. removed lists the src
// offsets dropped when data was derived from src.
func parse(data, src []byte, removed []int64) (*Node, []Duplicate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &parser{src: src, removed: removed, dec: dec}

	root, err := p.value("$")
	if err != nil {
		return nil, nil, p.malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, nil, p.malformed(err)
	}
	return root, p.dups, nil
}

// Position converts a byte offset into a 1-based line and column. Columns
// count characters, not bytes.
func Position(data []byte, offset int64) (line, column int) {
	line, column = 1, 1
	for i := 0; i < len(data) && int64(i) < offset; {
		if data[i] == '\n' {
			line++
			column = 1
			i++
			continue
		}
		_, size := utf8.DecodeRune(data[i:])
		i += size
		column++
	}
	return line, column
}

type parser struct {
	src     []byte
	removed []int64
	dec     *json.Decoder
	dups    []Duplicate
}

// locate maps a decoder offset to its offset, line and column in the source.
func (p *parser) locate(offset int64) (int64, int, int) {
	offset = originalOffset(p.removed, offset)
	line, col := Position(p.src, offset)
	return offset, line, col
}

func (p *parser) malformed(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	offset, line, col := p.locate(p.dec.InputOffset())
	return &MalformedInputError{Offset: offset, Line: line, Column: col, Err: err}
}

func (p *parser) value(path string) (*Node, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object(path)
		case '[':
			return p.array(path)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t), nil
	case string:
		return NewString(t), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (p *parser) object(path string) (*Node, error) {
	obj := NewObject()
	seen := make(map[string]int)

	for p.dec.More() {
		offset := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}

		child, err := p.value(memberPath(path, key))
		if err != nil {
			return nil, err
		}

		if i, dup := seen[key]; dup {
			_, line, col := p.locate(offset)
			p.dups = append(p.dups, Duplicate{Path: path, Key: key, Line: line, Column: col})
			obj.Members[i].Value = child
			continue
		}
		seen[key] = len(obj.Members)
		obj.Members = append(obj.Members, Member{Key: key, Value: child})
	}

	if _, err := p.dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) array(path string) (*Node, error) {
	arr := NewArray()
	for i := 0; p.dec.More(); i++ {
		child, err := p.value(fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, child)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func memberPath(path, key string) string {
	if identifier.MatchString(key) {
		return path + "." + key
	}
	return fmt.Sprintf("%s[%q]", path, key)
}
