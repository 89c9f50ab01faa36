package bwav

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

func frameBytes(numChans, bitDepth int) int {
	return numChans * bitDepth / 8
}
