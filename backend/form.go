package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
)

// Form builds a multipart/form-data body. Every write against the backend
// uses multipart because any field may be a file; booleans are serialized as
// the literal strings "True"/"False", which is what the backend's form
// decoder expects.
type Form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

// NewForm returns an empty multipart form builder.
func NewForm() *Form {
	f := &Form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// Set writes a plain text field.
func (f *Form) Set(name, value string) *Form {
	if f.err == nil {
		f.err = f.w.WriteField(name, value)
	}
	return f
}

// SetInt writes an integer field.
func (f *Form) SetInt(name string, v int) *Form {
	return f.Set(name, strconv.Itoa(v))
}

// SetBool writes a boolean field as "True" or "False". The field is always
// present: an unchecked checkbox must transmit "False", never be omitted.
func (f *Form) SetBool(name string, v bool) *Form {
	if v {
		return f.Set(name, "True")
	}
	return f.Set(name, "False")
}

// SetList writes a list as one comma-joined string. Used for sub_services,
// which crosses the API boundary as a single string, never a structured list.
func (f *Form) SetList(name string, vals []string) *Form {
	trimmed := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	return f.Set(name, strings.Join(trimmed, ","))
}

// AddFile streams a file part. Empty filenames are skipped so optional
// uploads can be wired through unconditionally.
func (f *Form) AddFile(name, filename string, r io.Reader) *Form {
	if f.err != nil || filename == "" {
		return f
	}
	part, err := f.w.CreateFormFile(name, filename)
	if err != nil {
		f.err = err
		return f
	}
	if _, err := io.Copy(part, r); err != nil {
		f.err = err
	}
	return f
}

// Encode finalizes the form and returns the content type and body.
func (f *Form) Encode() (contentType string, body io.Reader, err error) {
	if f.err != nil {
		return "", nil, fmt.Errorf("build form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return "", nil, fmt.Errorf("close form: %w", err)
	}
	return f.w.FormDataContentType(), &f.buf, nil
}

// LeadForm serializes a full lead record. The backend's update contract
// requires the complete representation, not a partial patch, so status
// transitions re-send everything.
func LeadForm(l Lead) *Form {
	return NewForm().
		Set("name", l.Name).
		Set("email", l.Email).
		Set("phone", l.Phone).
		Set("company", l.Company).
		Set("service", l.Service).
		Set("sub_services", l.SubServices).
		Set("timeline", l.Timeline).
		Set("message", l.Message).
		Set("source", string(l.Source)).
		Set("status", string(l.Status))
}
