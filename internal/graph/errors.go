package graph

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownResource = errors.New("unknown_resource")

const codeInvalidJWT = "invalid-jwt"

// ErrorEntry is one element of a GraphQL "errors" array.
type ErrorEntry struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
		Path string `json:"path"`
	} `json:"extensions"`
}

// Error carries the errors the graph service reported for a request.
type Error struct {
	Entries []ErrorEntry
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Entries))
	for _, en := range e.Entries {
		if en.Extensions.Code != "" {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", en.Message, en.Extensions.Code))
		} else {
			msgs = append(msgs, en.Message)
		}
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Code is the extension code of the first entry.
func (e *Error) Code() string {
	if len(e.Entries) == 0 {
		return ""
	}
	return e.Entries[0].Extensions.Code
}

// Message is the message of the first entry.
func (e *Error) Message() string {
	if len(e.Entries) == 0 {
		return ""
	}
	return e.Entries[0].Message
}

func hasCode(entries []ErrorEntry, code string) bool {
	for _, en := range entries {
		if en.Extensions.Code == code {
			return true
		}
	}
	return false
}
