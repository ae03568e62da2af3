// Package envfile reads KEY=VALUE secret files into ordered entries.
//
// Two formats are supported. The lines format splits every line at its first
// '=' and strips a layer of quote characters from the value; this is the
// format deploy scripts have always used. The dotenv format hands the file to
// godotenv and accepts everything it does (export prefixes, inline comments,
// escape sequences).
package envfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Format selects the parser used by Load.
type Format string

const (
	FormatLines  Format = "lines"
	FormatDotenv Format = "dotenv"
)

// QuoteMode controls how quote characters around values are removed.
type QuoteMode string

const (
	// QuoteLenient strips one leading and one trailing quote character
	// independently, whether or not they pair up.
	QuoteLenient QuoteMode = "lenient"
	// QuoteBalanced strips quotes only when both ends carry the same one.
	QuoteBalanced QuoteMode = "balanced"
)

// Entry is a single secret read from the file.
type Entry struct {
	Key   string
	Value string
	Line  int
}

func (e Entry) String() string {
	return e.Key + "=" + e.Value
}

// Result is the outcome of parsing a file.
type Result struct {
	Entries  []Entry
	Warnings []string
}

// Keys returns entry keys in file order.
func (r *Result) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatLines, FormatDotenv:
		return f, nil
	}
	return "", fmt.Errorf("unknown env-format %q (must be lines or dotenv)", s)
}

// ParseQuoteMode validates a quote mode name.
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch m := QuoteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case QuoteLenient, QuoteBalanced:
		return m, nil
	}
	return "", fmt.Errorf("unknown quote-mode %q (must be lenient or balanced)", s)
}

// maxLineSize caps a single line. Single-line certificates exceed bufio's
// 64 KiB default.
const maxLineSize = 16 << 20

// Parse reads the lines format from r.
func Parse(r io.Reader, mode QuoteMode) (*Result, error) {
	result := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: no '=' found, skipped", lineNo))
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		result.Entries = append(result.Entries, Entry{
			Key:   key,
			Value: StripQuotes(value, mode),
			Line:  lineNo,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	return result, nil
}

// ParseDotenv reads r with godotenv. Entries are ordered by key since
// godotenv does not keep file order.
func ParseDotenv(r io.Reader) (*Result, error) {
	values, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dotenv file: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &Result{Entries: make([]Entry, 0, len(keys))}
	for _, k := range keys {
		result.Entries = append(result.Entries, Entry{Key: k, Value: values[k]})
	}
	return result, nil
}

// Load parses the file at path. found is false, with a nil error, when the
// file does not exist.
func Load(fsys afero.Fs, path string, format Format, mode QuoteMode) (result *Result, found bool, err error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch format {
	case FormatDotenv:
		result, err = ParseDotenv(bytes.NewReader(data))
	default:
		result, err = Parse(bytes.NewReader(data), mode)
	}
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}

	return result, true, nil
}

// StripQuotes removes a single layer of quote characters from value.
func StripQuotes(value string, mode QuoteMode) string {
	if mode == QuoteBalanced {
		if len(value) >= 2 && isQuote(value[0]) && value[len(value)-1] == value[0] {
			return value[1 : len(value)-1]
		}
		return value
	}

	if len(value) > 0 && isQuote(value[0]) {
		value = value[1:]
	}
	if len(value) > 0 && isQuote(value[len(value)-1]) {
		value = value[:len(value)-1]
	}
	return value
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}
