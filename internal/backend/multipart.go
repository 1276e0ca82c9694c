package backend

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"

	"flyer-kart/internal/model"
)

// Multipart is an encoded multipart/form-data request body.
type Multipart struct {
	ContentType string
	Body        []byte
}

// Form decodes the payload back into fields and files.
func (m *Multipart) Form() (*multipart.Form, error) {
	_, params, err := mime.ParseMediaType(m.ContentType)
	if err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	r := multipart.NewReader(bytes.NewReader(m.Body), params["boundary"])
	return r.ReadForm(int64(len(m.Body)) + 1)
}

// FormBuilder accumulates fields and files for a multipart payload.
// The first error sticks and is reported by Build.
type FormBuilder struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

// NewFormBuilder creates an empty builder.
func NewFormBuilder() *FormBuilder {
	b := &FormBuilder{}
	b.w = multipart.NewWriter(&b.buf)
	return b
}

// Field writes a text field.
func (b *FormBuilder) Field(name, value string) *FormBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.w.WriteField(name, value)
	return b
}

// File writes an upload under name. Nil uploads are skipped.
func (b *FormBuilder) File(name string, u *model.Upload) *FormBuilder {
	if b.err != nil || u == nil {
		return b
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, u.Filename))
	h.Set("Content-Type", contentType)

	part, err := b.w.CreatePart(h)
	if err != nil {
		b.err = err
		return b
	}
	_, b.err = part.Write(u.Data)
	return b
}

// Build closes the writer and returns the payload.
func (b *FormBuilder) Build() (*Multipart, error) {
	if b.err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", b.err)
	}
	if err := b.w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart form: %w", err)
	}

	return &Multipart{
		ContentType: b.w.FormDataContentType(),
		Body:        b.buf.Bytes(),
	}, nil
}
