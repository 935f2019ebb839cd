package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// hostMarker delimits the name/value prefix of a cookie line from the
// host-scoped fields that follow it.
const hostMarker = ".weibo.com"

// Cookie is a single session cookie as name/value pair.
type Cookie struct {
	Name  string
	Value string
}

// Set is the immutable collection of session cookies loaded at run
// start. It is injected into the HTTP client and never re-read or
// mutated during a run.
type Set struct {
	cookies []Cookie
}

// Cookies returns the loaded cookies in file order.
func (s *Set) Cookies() []Cookie {
	return s.cookies
}

// Len returns the number of loaded cookies.
func (s *Set) Len() int {
	return len(s.cookies)
}

// Load reads a line-oriented cookie file where each line holds
// tab-separated host-scoped cookie fields. Only the name and value
// before the host marker are kept. A malformed line is a fatal load
// error: the pipeline cannot authenticate with partial credentials.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	set := &Set{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		cookie, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("cookie file line %d: %w", lineNo, err)
		}
		set.cookies = append(set.cookies, cookie)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	if len(set.cookies) == 0 {
		return nil, fmt.Errorf("cookie file %s holds no credentials", path)
	}

	return set, nil
}

// parseLine extracts the name/value pair from one cookie line. The
// fields before the host marker are tab-separated: name first, value
// second.
func parseLine(line string) (Cookie, error) {
	prefix := line
	if idx := strings.Index(line, hostMarker); idx >= 0 {
		prefix = line[:idx]
	}

	fields := strings.Split(prefix, "\t")
	if len(fields) < 2 {
		return Cookie{}, fmt.Errorf("expected tab-separated name and value, got %q", prefix)
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return Cookie{}, fmt.Errorf("empty cookie name in %q", prefix)
	}

	return Cookie{Name: name, Value: fields[1]}, nil
}
