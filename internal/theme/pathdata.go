package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// pathArgs is the argument count of each path command, keyed by its lower
// case letter.
var pathArgs = map[byte]int{
	'm': 2, 'l': 2, 'h': 1, 'v': 1, 'c': 6, 's': 4, 'q': 4, 't': 2, 'a': 7, 'z': 0,
}

// checkPathData reports the first malformed command or argument run in the
// d attribute of a path element.
func checkPathData(d string) error {
	var cmd byte
	args := 0
	flush := func() error {
		n := pathArgs[cmd|0x20]
		switch {
		case n == 0 && args != 0:
			return fmt.Errorf("%c takes no arguments, got %d", cmd, args)
		case n > 0 && (args == 0 || args%n != 0):
			return fmt.Errorf("%c needs a multiple of %d arguments, got %d", cmd, n, args)
		}
		return nil
	}

	for i := 0; i < len(d); {
		ch := d[i]
		if strings.IndexByte(" \t\r\n,", ch) >= 0 {
			i++
			continue
		}
		if _, ok := pathArgs[ch|0x20]; ok && isLetter(ch) {
			if cmd == 0 && ch|0x20 != 'm' {
				return errors.New("path data must start with a moveto")
			}
			if cmd != 0 {
				if err := flush(); err != nil {
					return err
				}
			}
			cmd, args = ch, 0
			i++
			continue
		}
		if cmd == 0 {
			return errors.New("path data must start with a moveto")
		}
		if cmd|0x20 == 'a' && (args%7 == 3 || args%7 == 4) {
			if ch != '0' && ch != '1' {
				return fmt.Errorf("arc flag must be 0 or 1, got %q", ch)
			}
			i++
			args++
			continue
		}
		n := scanNumber(d[i:])
		if n == 0 {
			return fmt.Errorf("unexpected %q at offset %d", ch, i)
		}
		if _, err := strconv.ParseFloat(d[i:i+n], 64); err != nil {
			return fmt.Errorf("bad number %q", d[i:i+n])
		}
		i += n
		args++
	}
	if cmd == 0 {
		return errors.New("empty path data")
	}
	return flush()
}

// scanNumber returns the length of the number at the start of s, or 0.
// "1.5.5" is two numbers.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c|0x20 >= 'a' && c|0x20 <= 'z' }
