package nbt

import (
	"fmt"
	"io"
	"strings"
)

// maxExplainArray caps how many array elements Explain prints before eliding the rest.
const maxExplainArray = 16

// Explain writes an indented, human readable rendering of the tree rooted at t.
func Explain(w io.Writer, t *Tag) error {
	return explain(w, t, 0)
}

func explain(w io.Writer, t *Tag, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := ""
	if t.Name != "" {
		name = fmt.Sprintf("(%q)", t.Name)
	}

	switch v := t.Value.(type) {
	case *Compound:
		if _, err := fmt.Fprintf(w, "%s%s%s: %d entries\n", indent, t.Kind(), name, len(v.Tags)); err != nil {
			return err
		}
		for _, c := range v.Tags {
			if err := explain(w, c, depth+1); err != nil {
				return err
			}
		}
		return nil

	case *List:
		if _, err := fmt.Fprintf(w, "%s%s%s: %d entries of %s\n", indent, t.Kind(), name, len(v.Items), v.Elem); err != nil {
			return err
		}
		for _, c := range v.Items {
			if err := explain(w, c, depth+1); err != nil {
				return err
			}
		}
		return nil

	case ByteArray:
		_, err := fmt.Fprintf(w, "%s%s%s: [%d bytes] %s\n", indent, t.Kind(), name, len(v), elide([]byte(v)))
		return err

	case IntArray:
		_, err := fmt.Fprintf(w, "%s%s%s: [%d ints] %s\n", indent, t.Kind(), name, len(v), elide([]int32(v)))
		return err

	case String:
		_, err := fmt.Fprintf(w, "%s%s%s: %q\n", indent, t.Kind(), name, string(v))
		return err
	}

	_, err := fmt.Fprintf(w, "%s%s%s: %v\n", indent, t.Kind(), name, t.Value)
	return err
}

func elide[T any](s []T) string {
	if len(s) <= maxExplainArray {
		return fmt.Sprint(s)
	}
	return strings.TrimSuffix(fmt.Sprint(s[:maxExplainArray]), "]") + " ...]"
}
