package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncodeDecode(t *testing.T) {
	entries := []Entry{
		{Fingerprint: "0110", Char: 'Z'},
		{Fingerprint: "1001", Char: 'é'},
	}

	store, err := Decode(Encode(2, entries))
	require.NoError(t, err)

	assert.Equal(t, 2, store.GlyphHeight())
	assert.Equal(t, 2, store.Len())

	ch, ok := store.Lookup("1001")
	require.True(t, ok)
	assert.Equal(t, 'é', ch)
}

func TestDecode_DuplicateLastWins(t *testing.T) {
	data := Encode(0, []Entry{
		{Fingerprint: "11", Char: 'A'},
		{Fingerprint: "11", Char: 'B'},
	})

	store, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	ch, _ := store.Lookup("11")
	assert.Equal(t, 'B', ch)
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	data := Encode(3, []Entry{{Fingerprint: "111", Char: 'I'}})
	data = protowire.AppendTag(data, 9, protowire.BytesType)
	data = protowire.AppendString(data, "future extension")
	data = protowire.AppendTag(data, 10, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)

	store, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestDecode_Failures(t *testing.T) {
	valid, err := os.ReadFile("dataset.bin")
	require.NoError(t, err)

	badKey := Encode(0, []Entry{{Fingerprint: "12", Char: 'A'}})

	var twoRunes []byte
	{
		var entry []byte
		entry = protowire.AppendTag(entry, fieldFingerprint, protowire.BytesType)
		entry = protowire.AppendString(entry, "01")
		entry = protowire.AppendTag(entry, fieldCharacter, protowire.BytesType)
		entry = protowire.AppendString(entry, "AB")
		twoRunes = protowire.AppendTag(twoRunes, fieldEntries, protowire.BytesType)
		twoRunes = protowire.AppendBytes(twoRunes, entry)
	}

	onlyHeight := protowire.AppendVarint(protowire.AppendTag(nil, fieldGlyphHeight, protowire.VarintType), 72)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"zero length", []byte{}, ErrEmptyDataset},
		{"nil", nil, ErrEmptyDataset},
		{"truncated", valid[:len(valid)-1], nil},
		{"truncated mid header", valid[:1], nil},
		{"garbage", []byte{0xff, 0xff, 0xff, 0xff}, nil},
		{"bad key", badKey, ErrInvalidFingerprint},
		{"multi rune character", twoRunes, ErrInvalidCharacter},
		{"no entries", onlyHeight, ErrNoEntries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Decode(tt.data)
			assert.Nil(t, store, "no partially initialised store may be returned")
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.bin")
	require.NoError(t, os.WriteFile(path, Encode(1, []Entry{{Fingerprint: "1", Char: 'L'}}), 0644))

	store, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestOpen_Missing(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Nil(t, store)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Source, "missing.bin")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
