package engine

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/lazypower/recognition/internal/graph"
)

// maxContentChars caps stored content in characters; longer text is cut at a
// word boundary.
const maxContentChars = 20000

// AddInput is a request to add a moment connected to an existing one.
type AddInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,min=10"`
	Target  int    `json:"target" validate:"required,gt=0"`
	Kind    string `json:"kind" validate:"omitempty,oneof=resonance tension evolution"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessage renders one validator failure the way the add form words it.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "required" {
			return "Title is required"
		}
		return fmt.Sprintf("Title must be at most %s characters", fe.Param())
	case "content":
		if fe.Tag() == "required" {
			return "Content is required"
		}
		return fmt.Sprintf("Content should be at least %s characters", fe.Param())
	case "target":
		return "Connection is required"
	case "kind":
		return fmt.Sprintf("Connection type must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// prepare trims and validates in, returning the node and link to store. The
// node id and link source are left for the store to assign.
func prepare(in AddInput) (graph.Node, graph.Link, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))

	if err := validate.Struct(in); err != nil {
		ves, ok := err.(validator.ValidationErrors)
		if !ok {
			return graph.Node{}, graph.Link{}, graph.NewInput(err.Error(), nil)
		}
		fields := make(map[string]string, len(ves))
		msgs := make([]string, 0, len(ves))
		for _, fe := range ves {
			m := fieldMessage(fe)
			fields[fe.Field()] = m
			msgs = append(msgs, m)
		}
		return graph.Node{}, graph.Link{}, graph.NewInput(strings.Join(msgs, "; "), fields)
	}

	kind, err := graph.ParseKind(in.Kind)
	if err != nil {
		return graph.Node{}, graph.Link{}, graph.NewInput(err.Error(), map[string]string{"kind": err.Error()})
	}

	content := truncateClean(in.Content, maxContentChars)
	return graph.Node{Title: in.Title, Content: content}, graph.Link{Target: in.Target, Kind: kind}, nil
}

// truncateClean truncates s to at most maxRunes characters, cutting at the
// last word boundary within the final 200 characters when there is one.
// The cut always falls on a rune boundary.
func truncateClean(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	cut, n := len(s), 0
	for i := range s {
		if n == maxRunes {
			cut = i
			break
		}
		n++
	}
	truncated := s[:cut]
	if idx := strings.LastIndexFunc(truncated, unicode.IsSpace); idx >= 0 && utf8.RuneCountInString(truncated[idx:]) <= 200 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}
