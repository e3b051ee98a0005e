// ABOUTME: Typed request bodies: JSON values and multipart forms
// ABOUTME: Bodies are encoded once so a retried request resends identical bytes

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Payload is a request body. Build one with JSON or Multipart.
type Payload interface {
	// encode returns the body bytes and the Content-Type it requires.
	encode() ([]byte, string, error)
}

type jsonPayload struct {
	value any
}

// JSON sends v as an application/json body.
func JSON(v any) Payload {
	return jsonPayload{value: v}
}

func (p jsonPayload) encode() ([]byte, string, error) {
	b, err := json.Marshal(p.value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal body: %w", err)
	}
	return b, "application/json", nil
}

type multipartPayload struct {
	form *Form
}

// Multipart sends f as a multipart/form-data body. The boundary comes
// from the encoder; callers never set the content type themselves.
func Multipart(f *Form) Payload {
	return multipartPayload{form: f}
}

func (p multipartPayload) encode() ([]byte, string, error) {
	if p.form == nil {
		p.form = NewForm()
	}
	return p.form.encode()
}

// File is an in-memory upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileFromPath reads a file from disk and guesses its content type.
func FileFromPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return File{Name: name, ContentType: ct, Data: data}, nil
}

type formPart struct {
	name        string
	filename    string
	contentType string
	data        []byte
	value       any
	isJSON      bool
}

// Form accumulates multipart parts in order.
type Form struct {
	parts []formPart
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// AddField adds a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, data: []byte(value)})
	return f
}

// AddJSON adds a part holding v as application/json, the way the backend
// expects the "post" and "user" request parts.
func (f *Form) AddJSON(name string, v any) *Form {
	f.parts = append(f.parts, formPart{name: name, value: v, isJSON: true})
	return f
}

// AddFile adds a file part.
func (f *Form) AddFile(name string, file File) *Form {
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	filename := file.Name
	if filename == "" {
		filename = "upload.jpg"
	}
	f.parts = append(f.parts, formPart{name: name, filename: filename, contentType: ct, data: file.Data})
	return f
}

// Len returns the number of parts.
func (f *Form) Len() int {
	return len(f.parts)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.name))
		if p.filename != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(p.filename))
		}
		h.Set("Content-Disposition", disposition)

		data := p.data
		switch {
		case p.isJSON:
			b, err := json.Marshal(p.value)
			if err != nil {
				return nil, "", fmt.Errorf("failed to marshal part %q: %w", p.name, err)
			}
			data = b
			h.Set("Content-Type", "application/json")
		case p.contentType != "":
			h.Set("Content-Type", p.contentType)
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %q: %w", p.name, err)
		}
		if _, err := pw.Write(data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %q: %w", p.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
