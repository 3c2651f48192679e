package shard

import (
	"context"
	"encoding/json"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtxerr/img2shard/internal/chunk"
	"github.com/xtxerr/img2shard/internal/dataset"
	"github.com/xtxerr/img2shard/internal/errors"
	"github.com/xtxerr/img2shard/internal/testutil"
)

func newChunk(t *testing.T, dir string) chunk.Chunk {
	t.Helper()
	c, err := chunk.New(dir)
	require.NoError(t, err)
	return c
}

func TestTranscodeSingleItem(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	image := testutil.FakeJPEG("one")

	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{
			"1": {Filename: "a.png", URL: "http://x", CogVLM: "cat"},
		},
		[]testutil.Member{{Name: "00001.jpg", Data: image}})

	res, err := Transcode(context.Background(), newChunk(t, dir), out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "000.tar"), res.TarPath)
	assert.Equal(t, 1, res.Count())
	assert.Equal(t, int64(1), res.Sizes.Count())

	entries, err := ReadAll(res.TarPath)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "000000000.jpg", entries[0].Name)
	assert.Equal(t, image, entries[0].Data)

	assert.Equal(t, "000000000.txt", entries[1].Name)
	assert.Equal(t, "cat", string(entries[1].Data))

	assert.Equal(t, "000000000.json", entries[2].Name)
	var rec dataset.Record
	require.NoError(t, json.Unmarshal(entries[2].Data, &rec))
	assert.Len(t, rec.UID, 32)
	assert.Equal(t, "000000000", rec.Key)
	assert.Equal(t, "cat", rec.Text)
	assert.Equal(t, "a.png", rec.OriginalImageFilename)
	assert.Equal(t, "http://x", rec.URL)

	assert.Equal(t, []dataset.Record{rec}, res.Metadata.Records())
}

func TestTranscodeOrderingAndCounts(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()

	sidecar := map[string]testutil.Entry{}
	// Written out of order, with non-image members mixed in.
	names := []string{"000010.jpg", "000002.jpg", "000001.jpg", "000100.jpg", "000003.jpg"}
	var members []testutil.Member
	for _, n := range names {
		key := dataset.ImageKey(n)
		sidecar[key] = testutil.Entry{Filename: "orig_" + key + ".png", URL: "http://x/" + key, CogVLM: "caption " + key}
		members = append(members, testutil.Member{Name: n, Data: testutil.FakeJPEG(key)})
	}
	members = append(members,
		testutil.Member{Name: "000004.txt", Data: []byte("ignored")},
		testutil.Member{Name: "000005.JPG", Data: []byte("case-sensitive suffix")},
	)

	dir := testutil.Chunk(t, root, "chunk_003", sidecar, members)

	res, err := Transcode(context.Background(), newChunk(t, dir), out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "002.tar"), res.TarPath)

	entries, err := ReadAll(res.TarPath)
	require.NoError(t, err)
	require.Len(t, entries, 3*len(names))
	require.Equal(t, len(names), res.Metadata.Len())

	// Sorted member order: 000001, 000002, 000003, 000010, 000100.
	wantKeys := []string{"1", "2", "3", "10", "100"}
	for i, key := range wantKeys {
		base := dataset.Basename(2, i)
		assert.Equal(t, base+".jpg", entries[3*i].Name)
		assert.Equal(t, testutil.FakeJPEG(key), entries[3*i].Data)
		assert.Equal(t, base+".txt", entries[3*i+1].Name)
		assert.Equal(t, "caption "+key, string(entries[3*i+1].Data))
		assert.Equal(t, base+".json", entries[3*i+2].Name)

		var rec dataset.Record
		require.NoError(t, json.Unmarshal(entries[3*i+2].Data, &rec))
		assert.Equal(t, res.Metadata.Row(i), rec)
		assert.Equal(t, "orig_"+key+".png", rec.OriginalImageFilename)
	}
}

func TestTranscodeCaptionSelection(t *testing.T) {
	root := t.TempDir()
	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{
			"7": {Filename: "f.jpg", URL: "u", CogVLM: "cog", LLaVA: "llava", AltTxt: "alt <b>&</b>"},
		},
		[]testutil.Member{{Name: "0007.jpg", Data: testutil.FakeJPEG("7")}})

	for field, want := range map[dataset.CaptionField]string{
		dataset.CaptionCogVLM: "cog",
		dataset.CaptionLLaVA:  "llava",
		dataset.CaptionAltTxt: "alt <b>&</b>",
	} {
		out := t.TempDir()
		opts := DefaultOptions()
		opts.Caption = field

		res, err := Transcode(context.Background(), newChunk(t, dir), out, opts)
		require.NoError(t, err, field)
		assert.Equal(t, want, res.Metadata.Text[0], field)

		entries, err := ReadAll(res.TarPath)
		require.NoError(t, err)
		assert.Equal(t, want, string(entries[1].Data))
		assert.Contains(t, string(entries[2].Data), want, "JSON entry is not HTML-escaped")
	}
}

func TestTranscodeMissingKeyRemovesShard(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()

	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{
			"1": {Filename: "a.png", URL: "http://x", CogVLM: "cat"},
		},
		[]testutil.Member{
			{Name: "00001.jpg", Data: testutil.FakeJPEG("1")},
			{Name: "00002.jpg", Data: testutil.FakeJPEG("2")},
		})

	_, err := Transcode(context.Background(), newChunk(t, dir), out, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrLookup)
	assert.Contains(t, err.Error(), "00002.jpg")

	_, statErr := os.Stat(filepath.Join(out, "000.tar"))
	assert.True(t, os.IsNotExist(statErr), "partial shard must be removed")
}

func TestTranscodeBogusMemberSize(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()

	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{"1": {Filename: "a.png", URL: "http://x", CogVLM: "cat"}},
		nil)

	f, err := os.Create(filepath.Join(dir, "chunk_001.zip"))
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "1.jpg",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte{0xFF}),
		CompressedSize64:   1,
		UncompressedSize64: 1 << 62,
	})
	require.NoError(t, err)
	_, err = w.Write([]byte{0xFF})
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Transcode(context.Background(), newChunk(t, dir), out, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1.jpg")
	assert.NoFileExists(t, filepath.Join(out, "000.tar"))
}

func TestTranscodeMissingCaptionField(t *testing.T) {
	root := t.TempDir()
	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{"1": {Filename: "a.png", URL: "http://x", CogVLM: "cat"}},
		[]testutil.Member{{Name: "1.jpg", Data: testutil.FakeJPEG("1")}})

	opts := DefaultOptions()
	opts.Caption = dataset.CaptionLLaVA

	_, err := Transcode(context.Background(), newChunk(t, dir), t.TempDir(), opts)
	assert.ErrorIs(t, err, errors.ErrLookup)
}

func TestTranscodeMissingFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "images", "chunk_001")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, err := Transcode(context.Background(), newChunk(t, dir), t.TempDir(), DefaultOptions())
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestTranscodeEmptyArchive(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	dir := testutil.Chunk(t, root, "chunk_005", map[string]testutil.Entry{}, nil)

	res, err := Transcode(context.Background(), newChunk(t, dir), out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count())

	n, err := Count(filepath.Join(out, "004.tar"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTranscodeCancelled(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{"1": {Filename: "a", URL: "u", CogVLM: "c"}},
		[]testutil.Member{{Name: "1.jpg", Data: testutil.FakeJPEG("1")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Transcode(ctx, newChunk(t, dir), out, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(out, "000.tar"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTranscodeNestedMembers(t *testing.T) {
	root := t.TempDir()
	dir := testutil.Chunk(t, root, "chunk_001",
		map[string]testutil.Entry{"42": {Filename: "x.webp", URL: "u", CogVLM: "c"}},
		[]testutil.Member{{Name: "imgs/000042.jpg", Data: testutil.FakeJPEG("42")}})

	res, err := Transcode(context.Background(), newChunk(t, dir), t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"000000000"}, res.Metadata.Key)
}

func TestWriterAbortAndClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000.tar")
	w, err := Create(path)
	require.NoError(t, err)

	require.NoError(t, w.Add("a.txt", []byte("hello")))
	assert.Equal(t, 1, w.Entries())
	assert.Equal(t, int64(5), w.Bytes())

	require.NoError(t, w.Abort())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	assert.ErrorIs(t, w.Add("b.txt", nil), ErrWriterClosed)
}

func TestCreateUnwritable(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "000.tar"))
	assert.ErrorIs(t, err, errors.ErrWrite)
}
