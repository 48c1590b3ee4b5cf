package client

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type part struct {
	name, fileName, contentType, value string
}

func readParts(t *testing.T, body []byte, contentType string) []part {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])

	var out []part
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		out = append(out, part{
			name:        p.FormName(),
			fileName:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			value:       string(data),
		})
	}
}

func TestPayload_EncodeKeepsOrderAndRepeats(t *testing.T) {
	p := NewPayload().
		AddField(FieldRoomNumber, "B-101").
		AddField(FieldUtilityTypeIDs, "3").
		AddField(FieldUtilityTypeIDs, "1").
		AddFile(FieldImages, "a.png", "", pngHeader).
		AddFile(FieldImages, "b.jpg", "image/jpeg", []byte("jpeg"))

	body, ct, err := p.Encode()
	require.NoError(t, err)
	assert.Contains(t, ct, "multipart/form-data; boundary=")

	parts := readParts(t, body, ct)
	require.Len(t, parts, 5)
	assert.Equal(t, part{name: "roomNumber", value: "B-101"}, parts[0])
	assert.Equal(t, "3", parts[1].value)
	assert.Equal(t, "1", parts[2].value)
	assert.Equal(t, "a.png", parts[3].fileName)
	assert.Equal(t, "image/png", parts[3].contentType)
	assert.Equal(t, "image/jpeg", parts[4].contentType)
}

func TestPayload_Accessors(t *testing.T) {
	p := NewPayload().
		AddField(FieldUtilityTypeIDs, "1").
		AddField(FieldRoomNumber, "X").
		AddField(FieldUtilityTypeIDs, "2").
		AddFile(FieldImages, "a.png", "", pngHeader)

	assert.Equal(t, []string{"1", "2"}, p.Fields(FieldUtilityTypeIDs))
	assert.Equal(t, []string{"utilityTypeIds", "roomNumber", "utilityTypeIds"}, p.FieldNames())
	assert.Len(t, p.Files(FieldImages), 1)
	assert.Nil(t, p.Fields(FieldImagesToRemove))
	assert.Equal(t, 4, p.Len())
}

func TestPayload_EncodeWithoutFilesIsMultipart(t *testing.T) {
	body, ct, err := NewPayload().AddField(FieldRoomNumber, "A").Encode()
	require.NoError(t, err)
	assert.Contains(t, ct, "multipart/form-data")
	assert.Len(t, readParts(t, body, ct), 1)
}
