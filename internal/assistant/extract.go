package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Spans are greedy: first opening bracket to last closing one.
var (
	arraySpan  = regexp.MustCompile(`(?s)\[.*\]`)
	objectSpan = regexp.MustCompile(`(?s)\{.*\}`)
	digitRun   = regexp.MustCompile(`[0-9]+`)
)

// Extraction is either a parsed value or the reason parsing failed.
// A failed extraction is an expected outcome, not an error.
type Extraction[T any] struct {
	Value   T
	Failure string
}

func Parsed[T any](v T) Extraction[T] {
	return Extraction[T]{Value: v}
}

func Failed[T any](reason string) Extraction[T] {
	return Extraction[T]{Failure: reason}
}

func (e Extraction[T]) OK() bool {
	return e.Failure == ""
}

// ExtractArray decodes the bracketed span of text as a JSON array of T.
func ExtractArray[T any](text string) Extraction[[]T] {
	span := arraySpan.FindString(text)
	if span == "" {
		return Failed[[]T]("no JSON array in completion")
	}

	var items []T
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return Failed[[]T](fmt.Sprintf("decode JSON array: %v", err))
	}
	return Parsed(items)
}

// ExtractObject decodes the braced span of text as a JSON object into T.
func ExtractObject[T any](text string) Extraction[T] {
	span := objectSpan.FindString(text)
	if span == "" {
		return Failed[T]("no JSON object in completion")
	}

	var v T
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return Failed[T](fmt.Sprintf("decode JSON object: %v", err))
	}
	return Parsed(v)
}

// ExtractInt returns the first run of digits in text. Runs too large for an int
// come back as math.MaxInt so callers clamp them instead of rejecting them.
func ExtractInt(text string) Extraction[int] {
	digits := digitRun.FindString(text)
	if digits == "" {
		return Failed[int]("no number in completion")
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Parsed(math.MaxInt)
		}
		return Failed[int](fmt.Sprintf("parse number: %v", err))
	}
	return Parsed(n)
}

// ExtractName returns the trimmed completion verbatim.
func ExtractName(text string) Extraction[string] {
	name := strings.TrimSpace(text)
	if name == "" {
		return Failed[string]("empty completion")
	}
	return Parsed(name)
}
