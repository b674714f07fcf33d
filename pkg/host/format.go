package host

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Format renders v in q console notation.
func Format(v Value) string {
	var sb strings.Builder
	format(&sb, v)
	return sb.String()
}

func format(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil, Null:
		sb.WriteString("::")
	case Bool:
		sb.WriteString(boolChar(bool(x)) + "b")
	case GUID:
		sb.WriteString(uuid.UUID(x).String())
	case Byte:
		sb.WriteString("0x" + hex.EncodeToString([]byte{byte(x)}))
	case Short:
		sb.WriteString(strconv.Itoa(int(x)) + "h")
	case Int:
		sb.WriteString(strconv.Itoa(int(x)) + "i")
	case Long:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Real:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32) + "e")
	case Float:
		sb.WriteString(formatFloat(float64(x)))
	case Symbol:
		sb.WriteString("`" + string(x))
	case Timestamp:
		sb.WriteString(formatTimestamp(x))
	case Date:
		sb.WriteString(x.Time().Format("2006.01.02"))
	case Timespan:
		sb.WriteString(formatTimespan(time.Duration(x)))
	case Time:
		sb.WriteString(formatTime(x))
	case Bools:
		if len(x) == 0 {
			sb.WriteString("`boolean$()")
			return
		}
		sb.WriteString(strings.Join(lo.Map(x, func(b bool, _ int) string { return boolChar(b) }), "") + "b")
	case GUIDs:
		vector(sb, "guid", lo.Map(x, func(g GUID, _ int) string { return uuid.UUID(g).String() }), "")
	case Bytes:
		if len(x) == 0 {
			sb.WriteString("`byte$()")
			return
		}
		sb.WriteString("0x" + hex.EncodeToString(x))
	case Shorts:
		vector(sb, "short", lo.Map(x, func(i int16, _ int) string { return strconv.Itoa(int(i)) }), "h")
	case Ints:
		vector(sb, "int", lo.Map(x, func(i int32, _ int) string { return strconv.Itoa(int(i)) }), "i")
	case Longs:
		vector(sb, "long", lo.Map(x, func(i int64, _ int) string { return strconv.FormatInt(i, 10) }), "")
	case Reals:
		vector(sb, "real", lo.Map(x, func(f float32, _ int) string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }), "e")
	case Floats:
		vector(sb, "float", lo.Map(x, func(f float64, _ int) string { return strconv.FormatFloat(f, 'g', -1, 64) }), "f")
	case Chars:
		sb.WriteString(strconv.Quote(string(x)))
	case Symbols:
		if len(x) == 0 {
			sb.WriteString("`symbol$()")
			return
		}
		for _, s := range x {
			sb.WriteString("`" + s)
		}
	case Timestamps:
		vector(sb, "timestamp", lo.Map(x, func(ts int64, _ int) string { return formatTimestamp(Timestamp(ts)) }), "")
	case Dates:
		vector(sb, "date", lo.Map(x, func(d int32, _ int) string { return Date(d).Time().Format("2006.01.02") }), "")
	case Timespans:
		vector(sb, "timespan", lo.Map(x, func(n int64, _ int) string { return formatTimespan(time.Duration(n)) }), "")
	case Times:
		vector(sb, "time", lo.Map(x, func(t int32, _ int) string { return formatTime(Time(t)) }), "")
	case List:
		switch len(x) {
		case 0:
			sb.WriteString("()")
		case 1:
			sb.WriteString("enlist ")
			format(sb, x[0])
		default:
			sb.WriteByte('(')
			for i, item := range x {
				if i > 0 {
					sb.WriteByte(';')
				}
				format(sb, item)
			}
			sb.WriteByte(')')
		}
	case Dict:
		format(sb, x.Keys)
		sb.WriteByte('!')
		format(sb, x.Values)
	default:
		fmt.Fprintf(sb, "<%s>", v.Type())
	}
}

func vector(sb *strings.Builder, name string, items []string, suffix string) {
	switch len(items) {
	case 0:
		sb.WriteString("`" + name + "$()")
	case 1:
		sb.WriteString("enlist " + items[0] + suffix)
	default:
		sb.WriteString(strings.Join(items, " ") + suffix)
	}
}

func boolChar(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += "f"
	}
	return s
}

func formatTimestamp(ts Timestamp) string {
	return ts.Time().Format("2006.01.02D15:04:05.000000000")
}

func formatTimespan(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%s%dD%02d:%02d:%02d.%09d", sign, days, h, m, s, d)
}

func formatTime(t Time) string {
	ms := int64(t)
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}
