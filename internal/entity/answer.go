package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnswerKind tags the scalar held by an Answer.
type AnswerKind int

const (
	KindText AnswerKind = iota
	KindFloat
	KindInteger
	KindBool
)

func (k AnswerKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Answer is the single scalar submitted to the grading server.
type Answer struct {
	kind AnswerKind
	f    float64
	i    int64
	b    bool
	s    string
}

func FloatAnswer(v float64) Answer { return Answer{kind: KindFloat, f: v} }
func IntegerAnswer(v int64) Answer { return Answer{kind: KindInteger, i: v} }
func BoolAnswer(v bool) Answer { return Answer{kind: KindBool, b: v} }
func TextAnswer(v string) Answer { return Answer{kind: KindText, s: v} }
func (a Answer) Kind() AnswerKind { return a.kind }
func (a Answer) Float() float64 { return a.f }
func (a Answer) Integer() int64 { return a.i }
func (a Answer) Bool() bool { return a.b }
func (a Answer) Text() string { return a.s }

// Value returns the answer as a plain Go value.
func (a Answer) Value() any {
	switch a.kind {
	case KindFloat:
		return a.f
	case KindInteger:
		return a.i
	case KindBool:
		return a.b
	default:
		return a.s
	}
}

func (a Answer) String() string {
	switch a.kind {
	case KindFloat:
		return formatFloat(a.f)
	case KindInteger:
		return strconv.FormatInt(a.i, 10)
	case KindBool:
		return strconv.FormatBool(a.b)
	default:
		return a.s
	}
}

// MarshalJSON keeps floats distinguishable from integers on the wire: 60 is
// sent as 60.0. NaN and infinities have no JSON form and are sent as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindFloat:
		if math.IsNaN(a.f) || math.IsInf(a.f, 0) {
			return []byte("null"), nil
		}
		return []byte(formatFloat(a.f)), nil
	case KindInteger:
		return []byte(strconv.FormatInt(a.i, 10)), nil
	case KindBool:
		return json.Marshal(a.b)
	default:
		return json.Marshal(a.s)
	}
}

// UnmarshalJSON accepts any JSON scalar.
func (a *Answer) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "true" || raw == "false":
		*a = BoolAnswer(raw == "true")
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	default:
		if !strings.ContainsAny(raw, ".eE") {
			if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
				*a = IntegerAnswer(i)
				return nil
			}
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("answer is not a JSON scalar: %s", raw)
		}
		*a = FloatAnswer(f)
	}
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
