package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Malformed or
// out-of-range q values count as 1.0 and a bare type such as "text" is read
// as "text/*".
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: strings.TrimSpace(typ), subtype: strings.TrimSpace(subtype), q: 1.0}
		for _, param := range params[1:] {
			key, value, _ := strings.Cut(param, "=")
			if !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || q < 0 || q > 1 {
				q = 1.0
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how precisely r names the format with the given
// structured syntax suffix ("json" or "cbor"). -1 means no match.
func (r mediaRange) specificity(suffix string) int {
	switch {
	case r.typ == "*" && r.subtype == "*":
		return 0
	case r.typ != "application":
		return -1
	case r.subtype == "*":
		return 1
	case r.subtype == "*+"+suffix:
		return 2
	case r.subtype == suffix:
		return 3
	case r.subtype == "problem+"+suffix:
		return 4
	default:
		return -1
	}
}

// preference returns the q value of the most specific range matching the
// format along with that range's specificity.
func preference(ranges []mediaRange, suffix string) (float64, int) {
	q, best := 0.0, -1
	for _, r := range ranges {
		if s := r.specificity(suffix); s > best {
			q, best = r.q, s
		}
	}
	return q, best
}

// selectFormat reports whether CBOR should be used for a problem response.
// The q value decides first and specificity breaks ties; JSON wins
// everything else, including an absent or wildcard-only Accept header.
func selectFormat(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	ranges := parseAccept(accept)
	jsonQ, jsonSpec := preference(ranges, "json")
	cborQ, cborSpec := preference(ranges, "cbor")
	if cborQ <= 0 {
		return false
	}
	return cborQ > jsonQ || (cborQ == jsonQ && cborSpec > jsonSpec)
}
