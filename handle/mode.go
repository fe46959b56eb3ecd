package handle

import (
	"fmt"
	"os"
)

// ParseMode translates an fopen-style mode ("r", "w+", "ab", "x+", "c", ...)
// into os.OpenFile flags. The binary, text and close-on-exec modifiers
// ("b", "t", "e") are accepted and ignored.
func ParseMode(mode string) (int, error) {
	if mode == "" {
		return 0, fmt.Errorf("empty mode")
	}

	var flag int
	switch mode[0] {
	case 'r':
		flag = os.O_RDONLY
	case 'w':
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case 'a':
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case 'x':
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	case 'c':
		flag = os.O_WRONLY | os.O_CREATE
	default:
		return 0, fmt.Errorf("invalid mode %q: must start with one of r, w, a, x, c", mode)
	}

	for _, m := range mode[1:] {
		switch m {
		case '+':
			flag &^= os.O_WRONLY
			flag |= os.O_RDWR
		case 'b', 't', 'e':
		default:
			return 0, fmt.Errorf("invalid mode %q: unknown modifier %q", mode, m)
		}
	}
	return flag, nil
}
