// Package serialize implements the `show` and `xmls` builtins (spec.md
// §6.2): turning a value.Value back into source-ish text, or into a
// small XML encoding of its tree shape. Grounded on the teacher's
// Inspect()-per-type dispatch pattern (object.Object.Inspect), adapted
// from a single string-returning method to two free functions operating
// over the value package's Kind-tagged variants.
package serialize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"implish/value"
)

// Show renders v as source-ish text, the way it would have to be typed
// to reproduce it (modulo whitespace), per spec.md §6.2.
func Show(v value.Value) string {
	var sb strings.Builder
	show(&sb, v)
	return sb.String()
}

func show(sb *strings.Builder, v value.Value) {
	switch x := v.(type) {
	case *value.Top:
		showJoined(sb, x.Items)
	case *value.Lst:
		sb.WriteString(x.Open)
		showJoined(sb, x.Items)
		sb.WriteString(x.Close)
	case *value.Sep:
		sb.WriteByte(x.Ch)
	case *value.End:
		// nothing prints for a virtual end-of-input sentinel
	case *value.Int:
		sb.WriteString(strconv.FormatInt(x.V, 10))
	case *value.Num:
		sb.WriteString(strconv.FormatFloat(x.V, 'g', -1, 64))
	case *value.Str:
		b, _ := json.Marshal(x.V)
		sb.Write(b)
	case *value.Mls:
		sb.WriteString("```")
		sb.WriteString(x.V)
		sb.WriteString("```")
	case *value.Nil:
		sb.WriteString("nil")
	case *value.Err:
		sb.WriteString("?")
		sb.WriteString(x.Message)
	case *value.Sym:
		lead, trail := value.Sigil(x.Variant)
		sb.WriteString(lead)
		sb.WriteString(x.Name())
		sb.WriteString(trail)
	case *value.Ints:
		for i, n := range x.Vs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatInt(n, 10))
		}
	case *value.Nums:
		for i, n := range x.Vs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		}
	case *value.Syms:
		for i, s := range x.Vs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			show(sb, s)
		}
	case *value.Jsf:
		name := x.SourceName
		if name == "" {
			name = "fn"
		}
		fmt.Fprintf(sb, "%s/*jsf arity=%d*/", name, x.Arity)
	case *value.Ifn:
		sb.WriteString("{")
		showJoined(sb, x.Body)
		sb.WriteString("}")
	case *value.Dct:
		sb.WriteString(":[")
		first := true
		for k, val := range x.M {
			if !first {
				sb.WriteString("; ")
			}
			first = false
			sb.WriteString("`")
			sb.WriteString(k)
			sb.WriteByte(' ')
			show(sb, val)
		}
		sb.WriteString("]")
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

func showJoined(sb *strings.Builder, items []value.Value) {
	for i, it := range items {
		if i > 0 {
			if _, isSep := it.(*value.Sep); !isSep {
				if _, prevSep := items[i-1].(*value.Sep); !prevSep {
					sb.WriteByte(' ')
				}
			}
		}
		show(sb, it)
	}
}

// XML renders v as the small imp:* XML encoding used by the `xmls`
// builtin, per spec.md §6's literal example table.
func XML(v value.Value) string {
	var sb strings.Builder
	xml(&sb, v)
	return sb.String()
}

func xml(sb *strings.Builder, v value.Value) {
	switch x := v.(type) {
	case *value.Top:
		sb.WriteString("<imp:top>")
		xmlJoined(sb, x.Items)
		sb.WriteString("</imp:top>")
	case *value.Lst:
		fmt.Fprintf(sb, `<imp:lst open=%q close=%q>`, x.Open, x.Close)
		xmlJoined(sb, x.Items)
		sb.WriteString("</imp:lst>")
	case *value.Sep:
		fmt.Fprintf(sb, `<imp:sep v=%q/>`, string(x.Ch))
	case *value.Int:
		fmt.Fprintf(sb, `<imp:int v="%d"/>`, x.V)
	case *value.Num:
		fmt.Fprintf(sb, `<imp:num v="%s"/>`, strconv.FormatFloat(x.V, 'g', -1, 64))
	case *value.Str:
		fmt.Fprintf(sb, `<imp:str v=%q/>`, x.V)
	case *value.Mls:
		fmt.Fprintf(sb, `<imp:mls v=%q/>`, x.V)
	case *value.Nil:
		sb.WriteString(`<imp:nil/>`)
	case *value.Err:
		fmt.Fprintf(sb, `<imp:err v=%q/>`, x.Message)
	case *value.Sym:
		fmt.Fprintf(sb, `<imp:sym v=%q/>`, x.Name())
	case *value.Ints:
		for _, n := range x.Vs {
			fmt.Fprintf(sb, `<imp:int v="%d"/>`, n)
		}
	case *value.Nums:
		for _, n := range x.Vs {
			fmt.Fprintf(sb, `<imp:num v="%s"/>`, strconv.FormatFloat(n, 'g', -1, 64))
		}
	case *value.Syms:
		for _, s := range x.Vs {
			xml(sb, s)
		}
	case *value.Jsf:
		fmt.Fprintf(sb, `<imp:jsf name=%q arity="%d"/>`, x.SourceName, x.Arity)
	case *value.Ifn:
		fmt.Fprintf(sb, `<imp:ifn arity="%d">`, x.Arity)
		xmlJoined(sb, x.Body)
		sb.WriteString("</imp:ifn>")
	case *value.Dct:
		sb.WriteString(`<imp:dct>`)
		for k, val := range x.M {
			fmt.Fprintf(sb, `<imp:entry key=%q>`, k)
			xml(sb, val)
			sb.WriteString(`</imp:entry>`)
		}
		sb.WriteString(`</imp:dct>`)
	default:
		fmt.Fprintf(sb, `<imp:unknown/>`)
	}
}

func xmlJoined(sb *strings.Builder, items []value.Value) {
	for _, it := range items {
		xml(sb, it)
	}
}
