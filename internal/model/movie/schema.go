package movie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zhouzirui/movies/backend/internal/validator"
)

const (
	minYear = 1888
	maxYear = 2100
	minRate = 0.0
	maxRate = 10.0
)

// ValidateMovie checks a complete movie payload. On failure the returned error is a
// *validator.Error listing every violation. The rate defaults to DefaultRate.
func ValidateMovie(payload []byte) (Movie, error) {
	v := validator.New()
	fields, ok := decodeObject(v, payload)
	if !ok {
		return Movie{}, v.Err()
	}

	p := parseFields(v, fields, true)
	if err := v.Err(); err != nil {
		return Movie{}, err
	}

	m := Movie{Rate: DefaultRate}.Apply(p)
	return m, nil
}

// ValidatePartialMovie checks a partial movie payload. Every field is optional; an
// empty object or empty body yields an empty patch.
func ValidatePartialMovie(payload []byte) (Patch, error) {
	v := validator.New()
	fields, ok := decodeObject(v, payload)
	if !ok {
		return Patch{}, v.Err()
	}

	p := parseFields(v, fields, false)
	if err := v.Err(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func decodeObject(v *validator.Validator, payload []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return map[string]json.RawMessage{}, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		v.AddError(validator.CodeInvalidType, "Expected object, received "+describeRaw(trimmed))
		return nil, false
	}
	return fields, true
}

// parseFields walks the schema in field order so violations come out stable.
func parseFields(v *validator.Validator, fields map[string]json.RawMessage, required bool) Patch {
	var p Patch

	// mandatory marks fields that must be present when required is set.
	lookup := func(name, label string, mandatory bool) (any, bool) {
		raw, present := fields[name]
		if !present {
			if required && mandatory {
				v.AddError(validator.CodeRequired, label+" is required", name)
			}
			return nil, false
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			v.AddError(validator.CodeInvalidType, label+" is not valid JSON", name)
			return nil, false
		}
		return value, true
	}

	if value, ok := lookup("title", "Movie title", true); ok {
		if s, ok := expectString(v, value, "Movie title", "title"); ok {
			v.Check(strings.TrimSpace(s) != "", validator.CodeTooSmall, "Movie title must not be empty", "title")
			p.Title = &s
		}
	}

	if value, ok := lookup("year", "Movie year", true); ok {
		if n, ok := expectInt(v, value, "Movie year", "year"); ok {
			v.Check(n >= minYear, validator.CodeTooSmall, fmt.Sprintf("Movie year must be at least %d", minYear), "year")
			v.Check(n <= maxYear, validator.CodeTooBig, fmt.Sprintf("Movie year must be at most %d", maxYear), "year")
			p.Year = &n
		}
	}

	if value, ok := lookup("director", "Movie director", true); ok {
		if s, ok := expectString(v, value, "Movie director", "director"); ok {
			v.Check(strings.TrimSpace(s) != "", validator.CodeTooSmall, "Movie director must not be empty", "director")
			p.Director = &s
		}
	}

	if value, ok := lookup("duration", "Movie duration", true); ok {
		if n, ok := expectInt(v, value, "Movie duration", "duration"); ok {
			v.Check(n > 0, validator.CodeTooSmall, "Movie duration must be a positive number of minutes", "duration")
			p.Duration = &n
		}
	}

	if value, ok := lookup("poster", "Movie poster", true); ok {
		if s, ok := expectString(v, value, "Movie poster", "poster"); ok {
			v.Check(validator.IsHTTPURL(s), validator.CodeInvalidURL, "Poster must be a valid URL", "poster")
			p.Poster = &s
		}
	}

	if value, ok := lookup("genre", "Movie genre", true); ok {
		if genres, ok := expectGenres(v, value); ok {
			p.Genre = genres
		}
	}

	if value, ok := lookup("rate", "Movie rate", false); ok {
		if f, ok := value.(float64); ok {
			v.Check(f >= minRate, validator.CodeTooSmall, "Movie rate must be at least 0", "rate")
			v.Check(f <= maxRate, validator.CodeTooBig, "Movie rate must be at most 10", "rate")
			p.Rate = &f
		} else {
			v.AddError(validator.CodeInvalidType, "Expected number, received "+describe(value), "rate")
		}
	}

	return p
}

func expectString(v *validator.Validator, value any, label, path string) (string, bool) {
	s, ok := value.(string)
	if !ok {
		v.AddError(validator.CodeInvalidType, label+" must be a string, received "+describe(value), path)
		return "", false
	}
	return s, true
}

func expectInt(v *validator.Validator, value any, label, path string) (int, bool) {
	f, ok := value.(float64)
	if !ok {
		v.AddError(validator.CodeInvalidType, label+" must be a number, received "+describe(value), path)
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		v.AddError(validator.CodeInvalidType, label+" must be an integer", path)
		return 0, false
	}
	return int(f), true
}

func expectGenres(v *validator.Validator, value any) ([]Genre, bool) {
	items, ok := value.([]any)
	if !ok {
		v.AddError(validator.CodeInvalidType, "Movie genre must be an array of enum Genre, received "+describe(value), "genre")
		return nil, false
	}
	if len(items) == 0 {
		v.AddError(validator.CodeTooSmall, "Movie genre must contain at least one genre", "genre")
		return nil, false
	}

	allowed := make([]string, 0, len(Genres()))
	for _, g := range Genres() {
		allowed = append(allowed, string(g))
	}

	valid := true
	names := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			v.AddError(validator.CodeInvalidType, "Expected string, received "+describe(item), "genre", i)
			valid = false
			continue
		}
		if !validator.In(s, allowed...) {
			v.AddError(validator.CodeInvalidEnum,
				fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", strings.Join(allowed, " | "), s),
				"genre", i)
			valid = false
			continue
		}
		names = append(names, s)
	}
	if !valid {
		return nil, false
	}
	if !validator.Unique(names) {
		v.AddError(validator.CodeNotUnique, "Movie genre must not contain duplicates", "genre")
		return nil, false
	}

	genres := make([]Genre, len(names))
	for i, name := range names {
		genres[i] = Genre(name)
	}
	return genres, true
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func describeRaw(raw []byte) string {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "malformed JSON"
	}
	return describe(value)
}
