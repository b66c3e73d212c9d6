package schema

// CompactHours turns a sparse per-day map into opening-hours intervals.
// Consecutive active days with identical open and close times collapse into
// one "Mo-We 09:00-17:00" entry; a lone day renders as "Sa 10:00-14:00".
// Output follows calendar order and is nil when no day is active.
func CompactHours(days map[DayCode]DayHours) []string {
	var out []string
	for i := 0; i < len(Week); {
		d, ok := days[Week[i]]
		if !ok || !d.Active {
			i++
			continue
		}
		j := i
		for j+1 < len(Week) && sameHours(d, days[Week[j+1]]) {
			j++
		}
		out = append(out, interval(Week[i], Week[j], d))
		i = j + 1
	}
	return out
}

func sameHours(a, b DayHours) bool {
	return a.Active && b.Active && a.Open == b.Open && a.Close == b.Close
}

func interval(first, last DayCode, d DayHours) string {
	span := string(first)
	if last != first {
		span += "-" + string(last)
	}
	if r := d.Range(); r != "" {
		return span + " " + r
	}
	return span
}
