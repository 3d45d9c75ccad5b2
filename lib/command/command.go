package command

import (
	"errors"
	"strings"

	"github.com/ValentinKolb/minidb/lib/store"
)

// --------------------------------------------------------------------------
// Protocol Types
// --------------------------------------------------------------------------

// Verb is the first token of a command line
type Verb string

const (
	VerbPost   Verb = "POST"
	VerbGet    Verb = "GET"
	VerbDelete Verb = "DELETE"
)

// Status is the first token of every response line
type Status int

const (
	StatusOK       Status = iota // 0: command executed successfully
	StatusNotFound               // 1: key does not exist
	StatusInvalid                // 2: empty, unknown or malformed command
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NotFound"
	case StatusInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

var (
	// ErrEmpty is returned by Parse for lines without any token
	ErrEmpty = errors.New("empty command")
	// ErrInvalid is returned by Parse for unknown verbs or wrong arity
	ErrInvalid = errors.New("invalid command")
)

// Command is a parsed request line
type Command struct {
	Verb  Verb
	Key   string
	Value string // only set for POST
}

// Response is the result of executing a Command
type Response struct {
	Status Status
	Value  string // only set for a successful GET
}

// Bytes renders the response as a newline terminated protocol line
// e.g. "0\n", "0 value\n", "1\n", "2\n"
func (r Response) Bytes() []byte {
	out := make([]byte, 0, len(r.Value)+4)
	out = append(out, byte('0'+r.Status))
	if r.Status == StatusOK && r.Value != "" {
		out = append(out, ' ')
		out = append(out, r.Value...)
	}
	return append(out, '\n')
}

func (r Response) String() string {
	return string(r.Bytes())
}

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

// isSpace reports whether b is one of the ASCII whitespace characters
// (space, \t, \n, \v, \f, \r)
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Tokenize splits a line on runs of ASCII whitespace
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, isSpace)
}

// Parse converts a single line (without its trailing newline) into a Command.
// The verb is case-sensitive and the number of tokens must match the verb exactly.
func Parse(line string) (Command, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}

	switch verb := Verb(tokens[0]); {
	case verb == VerbPost && len(tokens) == 3:
		return Command{Verb: verb, Key: tokens[1], Value: tokens[2]}, nil
	case verb == VerbGet && len(tokens) == 2:
		return Command{Verb: verb, Key: tokens[1]}, nil
	case verb == VerbDelete && len(tokens) == 2:
		return Command{Verb: verb, Key: tokens[1]}, nil
	default:
		return Command{}, ErrInvalid
	}
}

// --------------------------------------------------------------------------
// Execution
// --------------------------------------------------------------------------

// Execute applies a parsed command to the store and returns the response
func Execute(cmd Command, s store.IStore) Response {
	switch cmd.Verb {
	case VerbPost:
		s.Set(cmd.Key, cmd.Value)
		return Response{Status: StatusOK}
	case VerbGet:
		if value, ok := s.Get(cmd.Key); ok {
			return Response{Status: StatusOK, Value: value}
		}
		return Response{Status: StatusNotFound}
	case VerbDelete:
		if s.Delete(cmd.Key) {
			return Response{Status: StatusOK}
		}
		return Response{Status: StatusNotFound}
	default:
		return Response{Status: StatusInvalid}
	}
}
