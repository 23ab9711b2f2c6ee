package document

import (
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// splitFieldPath parses a dot-separated field path and strips the optional
// leading "data" segment: the traversal root is already the section's data.
func splitFieldPath(path string) []string {
	segments := strings.Split(path, ".")
	if len(segments) > 0 && segments[0] == "data" {
		segments = segments[1:]
	}
	out := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// setAtPath returns a copy of root with the value at the segment path
// replaced. Containers along the path are cloned (clone-on-write); siblings
// not on the path stay shared with the input. Missing intermediate segments
// are created as empty maps. Numeric segments index into slices; indexing
// past the end of an existing slice is rejected.
func setAtPath(root Data, segments []string, value any) (Data, error) {
	if len(segments) == 0 {
		return root, ferrors.ValidationError("empty field path").Build()
	}
	cloned, err := setInContainer(root, segments, value)
	if err != nil {
		return root, err
	}
	return cloned.(Data), nil
}

func setInContainer(container any, segments []string, value any) (any, error) {
	seg := segments[0]

	switch c := container.(type) {
	case Data:
		out := make(Data, len(c)+1)
		for k, v := range c {
			out[k] = v
		}
		if len(segments) == 1 {
			out[seg] = value
			return out, nil
		}
		child, ok := out[seg]
		if !ok || child == nil {
			child = Data{}
		}
		updated, err := setInContainer(child, segments[1:], value)
		if err != nil {
			return nil, err
		}
		out[seg] = updated
		return out, nil

	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, ferrors.NotFoundWarning("field path index out of range").
				WithContext("segment", seg).
				WithContext("length", len(c)).
				Build()
		}
		out := append([]any(nil), c...)
		if len(segments) == 1 {
			out[idx] = value
			return out, nil
		}
		child := out[idx]
		if child == nil {
			child = Data{}
		}
		updated, err := setInContainer(child, segments[1:], value)
		if err != nil {
			return nil, err
		}
		out[idx] = updated
		return out, nil

	default:
		// A scalar sits where the path expects a container; replace it with a
		// fresh map so the edit lands instead of failing.
		return setInContainer(Data{}, segments, value)
	}
}
