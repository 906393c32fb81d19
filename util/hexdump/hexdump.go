// Package hexdump renders byte slices for diagnostics: malformed record
// headers in parse errors, and expected-vs-actual diffs in tests.
package hexdump

import "fmt"

// Dump renders b in hex and ASCII, xxd-style, bytesPerRow bytes per line.
func Dump(b []byte, bytesPerRow int) string {
	var out, ascii string
	numRows := len(b) / bytesPerRow
	if len(b)%bytesPerRow != 0 {
		numRows++
	}
	for i := 0; i < numRows; i++ {
		first := i * bytesPerRow
		last := first + bytesPerRow
		row := fmt.Sprintf("%08x  ", first)
		ascii = ""
		for j := first; j < last; j++ {
			if j%8 == 0 {
				row += " "
			}
			if j < len(b) {
				row += fmt.Sprintf(" %02x", b[j])
				if b[j] < 32 || b[j] > 126 {
					ascii += "."
				} else {
					ascii += string(b[j])
				}
			} else {
				row += "   "
			}
		}
		row += "  " + ascii + "\n"
		out += row
	}
	return out
}

// Diff compares a and b byte by byte and renders both sides with a short
// summary of the first divergent offset. Returns "" if a and b are equal.
func Diff(label string, a, b []byte) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return fmt.Sprintf("%s: first difference at offset %d (%#02x != %#02x)\n%s\n%s",
				label, i, a[i], b[i], Dump(a, 16), Dump(b, 16))
		}
	}
	if len(a) != len(b) {
		return fmt.Sprintf("%s: length differs (%d != %d)", label, len(a), len(b))
	}
	return ""
}
