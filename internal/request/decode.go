package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/gorilla/schema"
)

// MaxBodySize bounds every decoded request body.
const MaxBodySize = 64 << 10

var (
	jsonMediaType      = contenttype.NewMediaType("application/json")
	formMediaType      = contenttype.NewMediaType("application/x-www-form-urlencoded")
	multipartMediaType = contenttype.NewMediaType("multipart/form-data")
)

// FormDecoder is implemented by payloads whose form fields cannot be
// described with struct tags. DecodeForm takes over the schema axis for them.
type FormDecoder interface {
	DecodeForm(values url.Values) error
}

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeJSON decodes a JSON body into dst and validates it. dst must be a
// pointer to a struct; its fields without omitempty are required.
func DecodeJSON(r *http.Request, dst any) error {
	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		return NewSchemaError("content type must be application/json")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return &SchemaError{Reason: "failed to read body", Err: err}
	}
	if len(body) > MaxBodySize {
		return NewSchemaError("body too large")
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return &SchemaError{Reason: "body must be a JSON object", Err: err}
	}
	if missing := missingJSONFields(dst, present); len(missing) > 0 {
		return NewSchemaError("missing required fields", missing...)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &SchemaError{Reason: "wrong field type", Fields: []string{typeErr.Field}, Err: err}
		}
		return &SchemaError{Reason: "malformed body", Err: err}
	}

	return Validate(dst)
}

// DecodeQuery decodes the URL query into dst using `schema` struct tags and
// validates it.
func DecodeQuery(r *http.Request, dst any) error {
	if err := decodeValues(r.URL.Query(), dst); err != nil {
		return err
	}
	return Validate(dst)
}

// DecodeForm decodes an urlencoded or multipart form body into dst and
// validates it.
func DecodeForm(r *http.Request, dst any) error {
	ctype, err := contenttype.GetMediaType(r)
	if err != nil {
		return NewSchemaError("content type must be a form")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)
	switch {
	case ctype.Matches(formMediaType):
		err = r.ParseForm()
	case ctype.Matches(multipartMediaType):
		err = r.ParseMultipartForm(MaxBodySize)
	default:
		return NewSchemaError("content type must be a form")
	}
	if err != nil {
		return &SchemaError{Reason: "malformed form", Err: err}
	}

	if fd, ok := dst.(FormDecoder); ok {
		if err := fd.DecodeForm(r.PostForm); err != nil {
			var serr *SchemaError
			if errors.As(err, &serr) {
				return serr
			}
			return &SchemaError{Reason: "malformed form", Err: err}
		}
	} else if err := decodeValues(r.PostForm, dst); err != nil {
		return err
	}

	return Validate(dst)
}

func decodeValues(values url.Values, dst any) error {
	err := formDecoder.Decode(dst, values)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if errors.As(err, &multi) {
		fields := make([]string, 0, len(multi))
		missing := true
		for field, ferr := range multi {
			fields = append(fields, field)
			var empty schema.EmptyFieldError
			if !errors.As(ferr, &empty) {
				missing = false
			}
		}
		sort.Strings(fields)
		if missing {
			return &SchemaError{Reason: "missing required fields", Fields: fields, Err: err}
		}
		return &SchemaError{Reason: "wrong field type", Fields: fields, Err: err}
	}
	return &SchemaError{Reason: "malformed parameters", Err: err}
}

// missingJSONFields lists the JSON names of required fields of dst absent
// from present. A field is required unless its json tag says omitempty.
// Explicit nulls count as absent.
func missingJSONFields(dst any, present map[string]json.RawMessage) []string {
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var missing []string
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || strings.Contains(opts, "omitempty") {
			continue
		}
		if name == "" {
			name = fld.Name
		}
		raw, ok := present[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			missing = append(missing, name)
		}
	}
	return missing
}
