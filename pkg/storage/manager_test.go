package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

func testPost(id int64, nickname string) weverse.Post {
	body := "hello\nworld"
	return weverse.Post{
		ID:            id,
		CommunityUser: weverse.CommunityUser{Nickname: nickname},
		Community:     weverse.Community{ID: 1, Name: "Band"},
		Type:          weverse.PostTypeNormal,
		Body:          &body,
		CreatedAt:     "2022-01-02T23:30:00-05:00",
	}
}

func TestNewTarget(t *testing.T) {
	target, err := NewTarget("root", testPost(42, "Nick"))
	require.NoError(t, err)

	assert.Equal(t, "20220102-42-Nick", target.Prefix, "date uses the post's offset, not UTC")
	assert.Equal(t, filepath.Join("root", "20220102-42-Nick"), target.Dir())
	assert.Equal(t, filepath.Join("root", "20220102-42-Nick.temp"), target.ScratchDir())
	assert.Equal(t,
		filepath.Join("root", "20220102-42-Nick.temp", "20220102-42-Nick-img03.jpg"),
		target.MediaPath("img", 3, "https://cdn.example.com/a/b.jpg"))
	assert.Equal(t,
		filepath.Join("root", "20220102-42-Nick.temp", "20220102-42-Nick-content.txt"),
		target.ContentPath())
}

func TestNewTargetInvalidTimestamp(t *testing.T) {
	post := testPost(1, "x")
	post.CreatedAt = "not a date"
	_, err := NewTarget("root", post)
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Nick":         "Nick",
		"  spaced  ":   "spaced",
		"a/b\\c":       "a-b-c",
		`what?"*<>|:`:  "what-------",
		"dots...":      "dots",
		"ctrl\x01char": "ctrl-char",
		"한글":           "한글",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/a/b.jpg":          ".jpg",
		"https://cdn.example.com/a/b.mp4?type=hd":  ".mp4",
		"https://cdn.example.com/a.dir/noext":      "",
		"https://cdn.example.com/noext":            "",
		"https://cdn.example.com/a/archive.tar.gz": ".gz",
		"file":     "",
		"file.png": ".png",
	}
	for in, want := range tests {
		assert.Equal(t, want, Ext(in), in)
	}
}

func TestIsCommitted(t *testing.T) {
	root := t.TempDir()
	m := NewManager(logger.NewNopLogger())

	target, err := NewTarget(root, testPost(42, "Nick"))
	require.NoError(t, err)
	assert.False(t, m.IsCommitted(target))

	require.NoError(t, os.Mkdir(target.Dir(), 0755))
	assert.True(t, m.IsCommitted(target))
}

func TestIsCommittedRenamedAuthor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "20220102-42-OldName"), 0755))

	m := NewManager(logger.NewNopLogger())
	target, err := NewTarget(root, testPost(42, "NewName"))
	require.NoError(t, err)
	assert.True(t, m.IsCommitted(target))

	other, err := NewTarget(root, testPost(421, "NewName"))
	require.NoError(t, err)
	assert.False(t, m.IsCommitted(other), "id prefix must match up to the separator")
}

func TestIsCommittedIgnoresScratch(t *testing.T) {
	root := t.TempDir()
	m := NewManager(logger.NewNopLogger())
	target, err := NewTarget(root, testPost(7, "Nick"))
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(target.ScratchDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "20220102-7-file"), nil, 0644))
	assert.False(t, m.IsCommitted(target))
}

func TestPrepareAndCommit(t *testing.T) {
	root := t.TempDir()
	m := NewManager(logger.NewNopLogger())
	post := testPost(42, "Nick")
	target, err := NewTarget(root, post)
	require.NoError(t, err)

	// stale scratch from an earlier run, as a file
	require.NoError(t, os.WriteFile(target.ScratchDir(), []byte("junk"), 0644))
	require.NoError(t, m.Prepare(target))
	info, err := os.Stat(target.ScratchDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	content := Content("https://weverse.io/band/artist/42", post)
	require.NoError(t, m.WriteContent(target, content))
	assert.False(t, m.IsCommitted(target))

	require.NoError(t, m.Commit(target))
	assert.NoDirExists(t, target.ScratchDir())
	assert.True(t, m.IsCommitted(target))

	data, err := os.ReadFile(filepath.Join(target.Dir(), "20220102-42-Nick-content.txt"))
	require.NoError(t, err)
	assert.Equal(t, "https://weverse.io/band/artist/42\nNick (2022-01-02T23:30:00-05:00):\nhello\nworld", string(data))
}

func TestPrepareRemovesStaleScratchDir(t *testing.T) {
	root := t.TempDir()
	m := NewManager(logger.NewNopLogger())
	target, err := NewTarget(root, testPost(42, "Nick"))
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(target.ScratchDir(), 0755))
	stale := filepath.Join(target.ScratchDir(), "partial.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))

	require.NoError(t, m.Prepare(target))
	assert.NoFileExists(t, stale)
	assert.DirExists(t, target.ScratchDir())
}

func TestCommitWithoutScratch(t *testing.T) {
	m := NewManager(logger.NewNopLogger())
	target, err := NewTarget(t.TempDir(), testPost(1, "x"))
	require.NoError(t, err)

	err = m.Commit(target)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeFileIO))
}

func TestContentWithoutBody(t *testing.T) {
	post := testPost(1, "Nick")
	post.Body = nil
	assert.Equal(t, "u\nNick (2022-01-02T23:30:00-05:00):\n", Content("u", post))
}
