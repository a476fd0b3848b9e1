package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/rockola/internal/domain/song"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("not really media"), 0o644))
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock/Zeta/Last.mp4")
	touch(t, root, "Rock/Alpha/First.MP3")
	touch(t, root, "Rock/Alpha/cover.jpg")
	touch(t, root, "Pop/Beta/Middle.mpeg")
	touch(t, root, "loose.mp3")
	touch(t, root, "Pop/stray.mp4")

	songs, err := (&Scanner{Root: root}).Scan()
	require.NoError(t, err)

	want := []song.Song{
		{ID: "00001", Title: "Middle", Artist: "Beta", Genre: "Pop", Path: "Pop/Beta/Middle.mpeg"},
		{ID: "00002", Title: "First", Artist: "Alpha", Genre: "Rock", Path: "Rock/Alpha/First.MP3"},
		{ID: "00003", Title: "Last", Artist: "Zeta", Genre: "Rock", Path: "Rock/Zeta/Last.mp4"},
	}
	assert.Equal(t, want, songs)
}

func TestScanner_ReadTagsFallsBackToFileName(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock/Alpha/Untagged.mp3")

	songs, err := (&Scanner{Root: root, ReadTags: true}).Scan()
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Untagged", songs[0].Title)
}

func TestScanner_StopsWhenCodesRunOut(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock/Alpha/One.mp3")
	touch(t, root, "Rock/Alpha/Two.mp3")
	touch(t, root, "Rock/Alpha/Three.mp3")

	songs, err := (&Scanner{Root: root, maxSongs: 3}).Scan()
	require.NoError(t, err)
	assert.Len(t, songs, 3)

	_, err = (&Scanner{Root: root, maxSongs: 2}).Scan()
	assert.ErrorIs(t, err, ErrTooManySongs)
}

func TestScanner_MissingRoot(t *testing.T) {
	_, err := (&Scanner{Root: filepath.Join(t.TempDir(), "nope")}).Scan()
	assert.Error(t, err)
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	songs := []song.Song{
		{ID: "00001", Title: "Rock & Roll", Artist: "Ñandú", Genre: "Rock", Path: "Rock/Ñandú/Rock & Roll.mp4"},
	}

	require.NoError(t, Write(path, songs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Rock & Roll"`)

	loaded, err := NewJSONSource(path).Load()
	require.NoError(t, err)
	assert.Equal(t, songs, loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestJSONSource_Load_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewJSONSource(filepath.Join(dir, "missing.json")).Load()
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = NewJSONSource(bad).Load()
	assert.Error(t, err)
}
