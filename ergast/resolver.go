package ergast

import (
	"fmt"
	"net/url"
	"strings"

	"racebot/temperrors"
)

// Resolve picks the single canonical URL for kind and q. Required fields are
// checked first, then the kind's routes are tried in precedence order and
// the first one whose placeholders are all present wins. Range rules apply
// to the required fields, the winning route's fields and paging; every other
// field is ignored. Limit and Offset, when present, are appended as query
// parameters.
func Resolve(baseURL string, kind Kind, q Query) (string, error) {
	res, ok := resources[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", temperrors.ErrUnknownKind, kind)
	}

	for _, f := range res.required {
		if !q.Has(f) {
			return "", temperrors.NewMissingFieldError(string(kind), string(f))
		}
	}

	for _, route := range res.routes {
		path, ok := render(route, q)
		if !ok {
			continue
		}

		checked := append(routeFields(route), FieldLimit, FieldOffset)
		checked = append(checked, res.required...)
		if err := validateQuery(kind, q, checked); err != nil {
			return "", err
		}
		return strings.TrimRight(baseURL, "/") + "/" + path + "/" + paging(q), nil
	}

	return "", &temperrors.InputError{Kind: string(kind), Field: "query", Reason: "matches no route"}
}

func routeFields(route string) []Field {
	var fields []Field
	for _, seg := range strings.Split(route, "/") {
		if f, ok := placeholder(seg); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// render fills the placeholders of route from q, or reports false when one
// of them is unset.
func render(route string, q Query) (string, bool) {
	segments := strings.Split(route, "/")
	for i, seg := range segments {
		f, isPlaceholder := placeholder(seg)
		if !isPlaceholder {
			continue
		}
		v, ok := q.Value(f)
		if !ok {
			return "", false
		}
		segments[i] = url.PathEscape(v)
	}
	return strings.Join(segments, "/"), true
}

func paging(q Query) string {
	params := url.Values{}
	if v, ok := q.Value(FieldLimit); ok {
		params.Set("limit", v)
	}
	if v, ok := q.Value(FieldOffset); ok {
		params.Set("offset", v)
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func placeholder(seg string) (Field, bool) {
	if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
		return "", false
	}
	return Field(seg[1 : len(seg)-1]), true
}

// Filters returns the fields that can change the URL resolved for kind, in
// the order they first appear in its routes, followed by the paging fields.
func Filters(kind Kind) []Field {
	res, ok := resources[kind]
	if !ok {
		return nil
	}

	seen := make(map[Field]bool)
	var fields []Field
	for _, route := range res.routes {
		for _, seg := range strings.Split(route, "/") {
			if f, ok := placeholder(seg); ok && !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return append(fields, FieldLimit, FieldOffset)
}
