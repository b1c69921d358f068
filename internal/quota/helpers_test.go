package quota

import "strconv"

func itoa(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v int) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 64)
}
