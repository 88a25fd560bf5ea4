package dispatcher

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Request is a decoded request line.
type Request struct {
	// ID is the raw JSON of the request id, echoed back verbatim.
	ID   string
	Name string
	Kind Kind
	Args gjson.Result
}

// RequestID returns the id without JSON quoting, for logs.
func (r *Request) RequestID() string {
	if s, err := strconv.Unquote(r.ID); err == nil {
		return s
	}
	return r.ID
}

// Decode parses a request line. The returned Request carries an id even when
// err is non-nil, so the failure can still be answered.
func Decode(line []byte) (*Request, error) {
	req := &Request{ID: strconv.Quote(uuid.NewString())}

	if !gjson.ValidBytes(line) {
		return req, badRequest("malformed JSON")
	}
	root := gjson.ParseBytes(line)
	if !root.IsObject() {
		return req, badRequest("request must be an object")
	}

	if id := root.Get("id"); id.Exists() && id.Type != gjson.Null {
		if id.Type != gjson.String && id.Type != gjson.Number {
			return req, badRequest("id must be a string or number")
		}
		req.ID = id.Raw
	}

	cmd := root.Get("cmd")
	if cmd.Type != gjson.String {
		return req, badRequest("missing cmd")
	}
	req.Name = cmd.Str

	args := root.Get("args")
	switch {
	case !args.Exists() || args.Type == gjson.Null:
		args = gjson.Parse("{}")
	case !args.IsObject():
		return req, badRequest("args must be an object")
	}
	req.Args = args

	kind, ok := ParseKind(req.Name)
	if !ok {
		return req, ErrUnknownCommand
	}
	req.Kind = kind
	return req, nil
}

// EncodeResult builds a success response line.
func EncodeResult(id string, result any) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes([]byte("{}"), "id", []byte(id))
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "ok", true); err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, "result", raw)
}

// EncodeError builds a failure response line.
func EncodeError(id string, err error) []byte {
	out, _ := sjson.SetRawBytes([]byte("{}"), "id", []byte(id))
	out, _ = sjson.SetBytes(out, "ok", false)
	out, _ = sjson.SetBytes(out, "error.kind", ErrorKind(err))
	out, _ = sjson.SetBytes(out, "error.message", err.Error())
	return out
}

// arg looks up a field by its snake_case name, falling back to camelCase.
func arg(args gjson.Result, name string) gjson.Result {
	if v := args.Get(name); v.Exists() {
		return v
	}
	if strings.Contains(name, "_") {
		return args.Get(camel(name))
	}
	return gjson.Result{}
}

func camel(name string) string {
	parts := strings.Split(name, "_")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

func argInt(args gjson.Result, name string) (int64, error) {
	v := arg(args, name)
	if !v.Exists() {
		return 0, badRequest("missing %s", name)
	}
	if v.Type != gjson.Number {
		return 0, badRequest("%s must be a number", name)
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return n, nil
}

func argString(args gjson.Result, name string, required bool) (string, error) {
	v := arg(args, name)
	if !v.Exists() || v.Type == gjson.Null {
		if required {
			return "", badRequest("missing %s", name)
		}
		return "", nil
	}
	if v.Type != gjson.String {
		return "", badRequest("%s must be a string", name)
	}
	return v.Str, nil
}

func argBool(args gjson.Result, name string) (bool, error) {
	v := arg(args, name)
	switch v.Type {
	case gjson.True:
		return true, nil
	case gjson.False, gjson.Null:
		return false, nil
	default:
		return false, badRequest("%s must be a boolean", name)
	}
}
