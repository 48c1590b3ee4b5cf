package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is one binary attachment of a Payload.
type File struct {
	FileName    string
	ContentType string
	Data        []byte
}

type entry struct {
	name  string
	value string
	file  *File
}

// Payload 有序的 multipart 表单
// Entries keep insertion order and repeated names are emitted as repeated parts,
// so a list of ids arrives at the server as an ordered list.
type Payload struct {
	entries []entry
}

func NewPayload() *Payload { return &Payload{} }

func (p *Payload) AddField(name, value string) *Payload {
	p.entries = append(p.entries, entry{name: name, value: value})
	return p
}

// AddFile appends a binary part. An empty contentType is sniffed from data.
func (p *Payload) AddFile(name, fileName, contentType string, data []byte) *Payload {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	p.entries = append(p.entries, entry{name: name, file: &File{FileName: fileName, ContentType: contentType, Data: data}})
	return p
}

// Fields returns the scalar values stored under name, in order.
func (p *Payload) Fields(name string) []string {
	var out []string
	for _, e := range p.entries {
		if e.file == nil && e.name == name {
			out = append(out, e.value)
		}
	}
	return out
}

// FieldNames lists scalar entry names in insertion order, repeats included.
func (p *Payload) FieldNames() []string {
	var out []string
	for _, e := range p.entries {
		if e.file == nil {
			out = append(out, e.name)
		}
	}
	return out
}

func (p *Payload) Files(name string) []File {
	var out []File
	for _, e := range p.entries {
		if e.file != nil && e.name == name {
			out = append(out, *e.file)
		}
	}
	return out
}

func (p *Payload) Len() int { return len(p.entries) }

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode renders the multipart body and its Content-Type (boundary included).
func (p *Payload) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, e := range p.entries {
		if e.file == nil {
			if err := w.WriteField(e.name, e.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", e.name, err)
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(e.name), quoteEscaper.Replace(e.file.FileName)))
		h.Set("Content-Type", e.file.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", e.name, err)
		}
		if _, err := part.Write(e.file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
