package jsondoc

// Repair removes every separator that is followed, after whitespace and other
// separators only, by a closing delimiter. Text inside string literals is
// never touched. It returns the rewritten input and the number of separators
// removed. Repair is idempotent.
func Repair(data []byte) ([]byte, int) {
	out, removed := repair(data)
	return out, len(removed)
}

// ParseRepaired repairs data and decodes the result. Error and duplicate
// positions refer to data as given, not to the repaired bytes. It also
// returns the number of separators removed.
func ParseRepaired(data []byte) (*Node, []Duplicate, int, error) {
	repaired, removed := repair(data)
	root, dups, err := parse(repaired, data, removed)
	return root, dups, len(removed), err
}

// repair returns the rewritten input and the ascending offsets in data of
// the bytes it dropped.
func repair(data []byte) ([]byte, []int64) {
	out := make([]byte, 0, len(data))
	var removed []int64
	inString, escaped := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			if closesAfter(data, i+1) {
				removed = append(removed, int64(i))
				continue
			}
		}
		out = append(out, c)
	}
	return out, removed
}

func closesAfter(data []byte, from int) bool {
	for j := from; j < len(data); j++ {
		switch data[j] {
		case ' ', '\t', '\n', '\r', ',':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// originalOffset maps an offset in repaired output back to the input, given
// the ascending input offsets that repair dropped.
func originalOffset(removed []int64, offset int64) int64 {
	for _, r := range removed {
		if r > offset {
			break
		}
		offset++
	}
	return offset
}
