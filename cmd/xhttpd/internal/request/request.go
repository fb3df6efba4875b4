package request

import (
	"strings"
)

const (
	hostHeader      = "Host"
	userAgentHeader = "User-Agent"
)

// Request is the structured form of one raw request buffer.
// Callers must check Valid before trusting any other field.
type Request struct {
	Valid bool

	Method   string
	Target   string // request-target exactly as received
	Document string // decoded path part of Target
	Query    string // everything after the first '?' in Target
	Version  string

	Headers   []string // raw header lines in arrival order
	Host      string
	UserAgent string

	Body           string
	PostParameters string // Body, for POST requests
}

// Param is one key/value pair of the query string.
type Param struct {
	Key   string
	Value string
}

// Parse builds a Request from one raw buffer. It never fails: a malformed
// request line yields a Request with Valid == false and empty fields.
func Parse(raw []byte) *Request {
	return ParseString(string(raw))
}

// ParseString is Parse for text input.
func ParseString(raw string) *Request {
	r := &Request{}

	line, rest := nextLine(raw)
	if !r.parseRequestLine(line) {
		return r
	}

	for rest != "" {
		line, rest = nextLine(rest)
		if line == "" {
			r.Body = rest
			break
		}
		r.Headers = append(r.Headers, line)
	}

	r.Host = r.Header(hostHeader)
	r.UserAgent = r.Header(userAgentHeader)

	if r.Method == "POST" {
		r.PostParameters = r.Body
	}
	r.Valid = true
	return r
}

// parseRequestLine splits "METHOD SP TARGET SP VERSION" on every single space.
// Anything other than three non-empty tokens is rejected, so repeated or
// surrounding spaces make the line invalid.
func (r *Request) parseRequestLine(line string) bool {
	tokens := strings.Split(line, " ")
	if len(tokens) != 3 {
		return false
	}
	for _, tok := range tokens {
		if tok == "" {
			return false
		}
	}

	r.Method, r.Target, r.Version = tokens[0], tokens[1], tokens[2]

	path, query, _ := strings.Cut(r.Target, "?")
	r.Document = Decode(path)
	r.Query = query
	return true
}

// Header returns the trimmed value of the first header line starting with
// "name:". The match is case-sensitive.
func (r *Request) Header(name string) string {
	prefix := name + ":"
	for _, h := range r.Headers {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	return ""
}

// Params splits Query on '&' and '=' and decodes each key and value.
// Empty segments are skipped; a segment without '=' has an empty Value.
func (r *Request) Params() []Param {
	if r.Query == "" {
		return nil
	}
	var params []Param
	for _, seg := range strings.Split(r.Query, "&") {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		params = append(params, Param{Key: Decode(k), Value: Decode(v)})
	}
	return params
}

// nextLine returns the text up to the first LF with one trailing CR removed,
// and the remainder after the LF.
func nextLine(s string) (line, rest string) {
	line, rest, _ = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest
}
