package model

import (
	"cmp"
	"strconv"
	"strings"
)

// In-set numbers are strings: most are plain integers ("4"), but promo and
// subset numbers carry letters ("TG05", "SV12", "1a").

// leadingInt parses the run of ASCII digits at the start of s.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NumberValue returns the integer used as a card's default collection number:
// the leading integer of number, else its first digit run, else 0.
func NumberValue(number string) int {
	if n, ok := leadingInt(number); ok {
		return n
	}
	start := strings.IndexAny(number, "0123456789")
	if start < 0 {
		return 0
	}
	n, _ := leadingInt(number[start:])
	return n
}

// CompareNumbers is the total order for in-set numbers. Numbers that start
// with an integer come first, by that integer and then lexically; numbers
// without a leading integer follow in lexical order.
func CompareNumbers(a, b string) int {
	an, aok := leadingInt(a)
	bn, bok := leadingInt(b)

	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok:
		if c := cmp.Compare(an, bn); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}
