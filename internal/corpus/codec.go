package corpus

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the dataset message.
const (
	fieldEntries     protowire.Number = 1
	fieldGlyphHeight protowire.Number = 2

	fieldFingerprint protowire.Number = 1
	fieldCharacter   protowire.Number = 2
)

// Decode parses a binary dataset into a Store.
func Decode(data []byte) (*Store, error) {
	return decode("", data)
}

// Open reads and decodes the dataset file at path.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	return decode(path, data)
}

// Encode serializes entries in the format read by Decode, in the given order.
func Encode(glyphHeight int, entries []Entry) []byte {
	var b []byte
	if glyphHeight > 0 {
		b = protowire.AppendTag(b, fieldGlyphHeight, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(glyphHeight))
	}

	for _, e := range entries {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldFingerprint, protowire.BytesType)
		entry = protowire.AppendString(entry, e.Fingerprint)
		entry = protowire.AppendTag(entry, fieldCharacter, protowire.BytesType)
		entry = protowire.AppendString(entry, string(e.Char))

		b = protowire.AppendTag(b, fieldEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func decode(source string, data []byte) (*Store, error) {
	if len(data) == 0 {
		return nil, loadError(source, ErrEmptyDataset)
	}

	glyphHeight := 0
	index := make(map[string]rune)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, loadError(source, fmt.Errorf("read tag: %w", protowire.ParseError(n)))
		}
		data = data[n:]

		switch {
		case num == fieldEntries && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, loadError(source, fmt.Errorf("read entry %d: %w", len(index), protowire.ParseError(n)))
			}
			data = data[n:]

			entry, err := decodeEntry(raw)
			if err != nil {
				return nil, loadError(source, fmt.Errorf("entry %d: %w", len(index), err))
			}
			index[entry.Fingerprint] = entry.Char

		case num == fieldGlyphHeight && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, loadError(source, fmt.Errorf("read glyph height: %w", protowire.ParseError(n)))
			}
			data = data[n:]
			glyphHeight = int(v)

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, loadError(source, fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n)))
			}
			data = data[n:]
		}
	}

	if len(index) == 0 {
		return nil, loadError(source, ErrNoEntries)
	}
	return newStore(glyphHeight, index), nil
}

func decodeEntry(b []byte) (Entry, error) {
	var (
		entry   Entry
		haveFP  bool
		haveChr bool
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.BytesType || (num != fieldFingerprint && num != fieldCharacter) {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return Entry{}, protowire.ParseError(n)
		}
		b = b[n:]

		if num == fieldFingerprint {
			entry.Fingerprint = string(v)
			haveFP = true
			continue
		}

		ch, size := utf8.DecodeRune(v)
		if ch == utf8.RuneError || size != len(v) {
			return Entry{}, fmt.Errorf("%w: %q", ErrInvalidCharacter, v)
		}
		entry.Char = ch
		haveChr = true
	}

	if !haveFP {
		return Entry{}, fmt.Errorf("%w: missing", ErrInvalidFingerprint)
	}
	if !haveChr {
		return Entry{}, errors.New("missing character")
	}
	if err := validateFingerprint(entry.Fingerprint); err != nil {
		return Entry{}, err
	}
	return entry, nil
}
