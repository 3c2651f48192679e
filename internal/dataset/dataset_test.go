package dataset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtxerr/img2shard/internal/errors"
)

func TestImageKey(t *testing.T) {
	tests := map[string]string{
		"000042.jpg":       "42",
		"5.jpg":            "5",
		"00001.jpg":        "1",
		"100.jpg":          "100",
		"imgs/000123.jpg":  "123",
		"a/b/0007.tar.jpg": "7.tar",
		"0000.jpg":         "",
		"000010":           "10",
	}
	for member, want := range tests {
		assert.Equal(t, want, ImageKey(member), member)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "000000000", Basename(0, 0))
	assert.Equal(t, "001000042", Basename(1, 42))
	assert.Equal(t, "123999999", Basename(123, 999999))

	assert.Equal(t, "007", ShardName(7))
	assert.Equal(t, filepath.Join("out", "002.tar"), TarPath("out", 2))
	assert.Equal(t, filepath.Join("out", "002.parquet"), ParquetPath("out", 2))
	assert.Equal(t, filepath.Join("out", "002_stats.json"), StatsPath("out", 2))
}

func TestParseCaptionField(t *testing.T) {
	for _, c := range CaptionFields() {
		got, err := ParseCaptionField(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCaptionField("blip_caption")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = ParseCaptionField("")
	assert.ErrorIs(t, err, errors.ErrValidation)

	assert.Equal(t, CaptionCogVLM, DefaultCaption)
}

func TestSidecar(t *testing.T) {
	doc := `{
		"1": {"filename": "a.png", "url": "http://x", "cogvlm_caption": "cat", "alt_txt": null, "llava_caption": 3}
	}`
	s, err := ReadSidecar(strings.NewReader(doc))
	require.NoError(t, err)

	e, err := s.Lookup("1")
	require.NoError(t, err)

	v, err := e.String("cogvlm_caption")
	require.NoError(t, err)
	assert.Equal(t, "cat", v)

	v, err = e.String(FieldFilename)
	require.NoError(t, err)
	assert.Equal(t, "a.png", v)

	_, err = e.String("alt_txt")
	assert.ErrorIs(t, err, errors.ErrLookup)

	_, err = e.String("missing")
	assert.ErrorIs(t, err, errors.ErrLookup)

	_, err = e.String("llava_caption")
	assert.ErrorIs(t, err, errors.ErrFormat)

	_, err = s.Lookup("01")
	assert.ErrorIs(t, err, errors.ErrLookup)
}

func TestReadSidecarInvalid(t *testing.T) {
	_, err := ReadSidecar(strings.NewReader(`[1, 2]`))
	assert.Error(t, err)
}

func TestNewUID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewUID()
		require.Len(t, id, 32)
		assert.Equal(t, strings.ToLower(id), id)
		assert.False(t, seen[id], "duplicate uid %s", id)
		seen[id] = true
	}
}

func TestMetadata(t *testing.T) {
	m := NewMetadata(2)
	assert.Equal(t, 0, m.Len())

	r1 := Record{UID: "u1", Key: "000000000", Text: "cat", OriginalImageFilename: "a.png", URL: "http://x"}
	r2 := Record{UID: "u2", Key: "000000001", Text: "dog", OriginalImageFilename: "b.png", URL: "http://y"}
	m.Append(r1)
	m.Append(r2)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, r2, m.Row(1))
	assert.Equal(t, []Record{r1, r2}, m.Records())
	assert.Equal(t, []string{"000000000", "000000001"}, m.Key)

	var nilMeta *Metadata
	assert.Equal(t, 0, nilMeta.Len())
}

func TestRecordJSONFields(t *testing.T) {
	data, err := json.Marshal(Record{UID: "u", Key: "k", Text: "t", OriginalImageFilename: "f", URL: "l"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"uid":"u","key":"k","text":"t","original_image_filename":"f","url":"l"}`,
		string(data))
}
