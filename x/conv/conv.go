// Package conv appends small decimal fields to caller buffers. It avoids fmt
// and strconv so it can run on the display path without allocating.
package conv

// Pad2 appends n mod 100 as two digits. Negative n is treated as 0.
func Pad2(dst []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	return append(dst, byte('0'+n/10%10), byte('0'+n%10))
}

// Clock appends "hh:mm:ss".
func Clock(dst []byte, h, m, s int) []byte {
	dst = Pad2(dst, h)
	dst = append(dst, ':')
	dst = Pad2(dst, m)
	dst = append(dst, ':')
	return Pad2(dst, s)
}

// Date appends "dd/mm/yy".
func Date(dst []byte, d, m, y int) []byte {
	dst = Pad2(dst, d)
	dst = append(dst, '/')
	dst = Pad2(dst, m)
	dst = append(dst, '/')
	return Pad2(dst, y)
}

