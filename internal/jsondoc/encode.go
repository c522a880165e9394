package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const indent = "  "

// Encode serializes n with two-space indentation, one value per line, no
// trailing separators and a final newline. Member order is preserved and
// non-ASCII text is written as-is.
func Encode(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, n, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, n *Node, depth int) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !json.Valid([]byte(n.Number)) {
			return fmt.Errorf("invalid number literal %q", n.Number)
		}
		buf.WriteString(string(n.Number))
	case KindString:
		return writeString(buf, n.Text)
	case KindArray:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			writeIndent(buf, depth+1)
			if err := encodeValue(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	case KindObject:
		if len(n.Members) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, m := range n.Members {
			writeIndent(buf, depth+1)
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encodeValue(buf, m.Value, depth+1); err != nil {
				return err
			}
			if i < len(n.Members)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node kind %d", n.Kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}
