package grounding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrShape = errors.New("coordinates are not a box or a list of boxes")
)

type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid coordinates at offset %d: %s", e.Offset, e.Msg)
}

var fullWidth = strings.NewReplacer(
	"，", ",",
	"、", ",",
	"；", ",",
	"【", "[",
	"】", "]",
	"［", "[",
	"］", "]",
	"－", "-",
	"．", ".",
)

// ParseCoordinates reads a numeric array literal such as "[[1,2,3,4],[5,6,7,8]]"
// or "[1,2,3,4]" and returns its boxes. Nothing but brackets, commas, numbers
// and whitespace is accepted.
func ParseCoordinates(s string) ([]Box, error) {
	p := &literalParser{
		src: fullWidth.Replace(s),
	}

	v, err := p.parse()

	if err != nil {
		return nil, err
	}

	return toBoxes(v)
}

// literal is either a number or a list.
type literal struct {
	list   []literal
	number float64
	isList bool
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) parse() (literal, error) {
	p.skipSpace()

	v, err := p.value()

	if err != nil {
		return literal{}, err
	}

	p.skipSpace()

	if p.pos < len(p.src) {
		return literal{}, p.errorf("unexpected %q after literal", p.src[p.pos])
	}

	return v, nil
}

func (p *literalParser) value() (literal, error) {
	p.skipSpace()

	if p.pos >= len(p.src) {
		return literal{}, p.errorf("unexpected end of input")
	}

	if p.src[p.pos] == '[' {
		return p.list()
	}

	return p.number()
}

func (p *literalParser) list() (literal, error) {
	p.pos++

	result := literal{
		isList: true,
	}

	p.skipSpace()

	if p.peek() == ']' {
		p.pos++
		return result, nil
	}

	for {
		item, err := p.value()

		if err != nil {
			return literal{}, err
		}

		result.list = append(result.list, item)

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.pos++

		case ']':
			p.pos++
			return result, nil

		case 0:
			return literal{}, p.errorf("unterminated list")

		default:
			return literal{}, p.errorf("expected ',' or ']', got %q", p.src[p.pos])
		}
	}
}

func (p *literalParser) number() (literal, error) {
	start := p.pos

	if p.peek() == '-' {
		p.pos++
	}

	digits := p.digits()

	if digits == 0 {
		return literal{}, p.errorf("expected number")
	}

	if p.peek() == '.' {
		p.pos++

		if p.digits() == 0 {
			return literal{}, p.errorf("expected digits after decimal point")
		}
	}

	val, err := strconv.ParseFloat(p.src[start:p.pos], 64)

	if err != nil {
		return literal{}, &SyntaxError{Offset: start, Msg: err.Error()}
	}

	return literal{number: val}, nil
}

func (p *literalParser) digits() int {
	n := 0

	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		n++
	}

	return n
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Offset: p.pos,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func toBoxes(v literal) ([]Box, error) {
	if !v.isList || len(v.list) == 0 {
		return nil, ErrShape
	}

	if box, ok := toBox(v); ok {
		return []Box{box}, nil
	}

	var boxes []Box

	for _, item := range v.list {
		box, ok := toBox(item)

		if !ok {
			return nil, ErrShape
		}

		boxes = append(boxes, box)
	}

	return boxes, nil
}

func toBox(v literal) (Box, bool) {
	if !v.isList || len(v.list) != 4 {
		return Box{}, false
	}

	var box Box

	for i, item := range v.list {
		if item.isList {
			return Box{}, false
		}

		box[i] = item.number
	}

	return box, true
}
