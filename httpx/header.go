package httpx

import (
	"bytes"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
)

var statusPattern = regexp.MustCompile(`^HTTP/\d+(?:\.\d+)?\s+(\d+)`)

// headerParser consumes raw header bytes as the engine delivers them. A line
// may arrive split over several callbacks. Each new final status line starts
// a fresh header set, so after redirects only the last response's headers
// remain. Interim 100 responses are skipped.
type headerParser struct {
	pending    []byte
	status     int
	statusLine string
	header     textproto.MIMEHeader
}

func newHeaderParser() *headerParser {
	return &headerParser{header: make(textproto.MIMEHeader)}
}

// Write implements the header callback contract: it always consumes p.
func (hp *headerParser) Write(p []byte) int {
	hp.pending = append(hp.pending, p...)
	for {
		i := bytes.IndexByte(hp.pending, '\n')
		if i < 0 {
			break
		}
		hp.line(string(hp.pending[:i]))
		hp.pending = hp.pending[i+1:]
	}
	return len(p)
}

// flush handles a trailing line without a newline.
func (hp *headerParser) flush() {
	if len(hp.pending) > 0 {
		hp.line(string(hp.pending))
		hp.pending = nil
	}
}

func (hp *headerParser) line(raw string) {
	line := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}

	if m := statusPattern.FindStringSubmatch(line); m != nil {
		code, err := strconv.Atoi(m[1])
		if err != nil || code == 100 {
			return
		}
		hp.status = code
		hp.statusLine = strings.TrimSpace(line)
		hp.header = make(textproto.MIMEHeader)
		return
	}

	name, value, ok := strings.Cut(line, ":")
	if !ok {
		Logger().Sugar().Debugf("ignoring header line %q", line)
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	hp.header.Add(name, strings.TrimSpace(value))
}
