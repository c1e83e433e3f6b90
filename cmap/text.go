package cmap

import "strconv"

// AppendText appends one line per entry to b, formatted as the index followed
// by the red, green, and blue values, separated by tabs.
func (m *Map) AppendText(b []byte) []byte {
	for i, n := 0, m.Len(); i < n; i++ {
		b = strconv.AppendInt(b, int64(m.Start+i), 10)
		b = append(b, '\t')
		b = strconv.AppendUint(b, uint64(m.Red[i]), 10)
		b = append(b, '\t')
		b = strconv.AppendUint(b, uint64(m.Green[i]), 10)
		b = append(b, '\t')
		b = strconv.AppendUint(b, uint64(m.Blue[i]), 10)
		b = append(b, '\n')
	}
	return b
}
