package source

import "unicode/utf8"

// ColumnIndex returns the 0-based column at byteIndex within a line: the
// number of Unicode code points in lineSource strictly before
// byteIndex - lineStart.
//
// If byteIndex is smaller than lineStart, 0 is returned. If byteIndex is past
// the end of the line, the full character count of the line is returned. A
// byteIndex landing strictly inside a multi-byte character is attributed to
// the character it interrupts, so the count stops at the preceding boundary.
//
//	lineStart, lineSource := 2, "🗻∈🌏"
//
//	ColumnIndex(lineSource, lineStart, 2)  == 0
//	ColumnIndex(lineSource, lineStart, 3)  == 0  // inside 🗻
//	ColumnIndex(lineSource, lineStart, 6)  == 1
//	ColumnIndex(lineSource, lineStart, 13) == 3
func ColumnIndex(lineSource string, lineStart, byteIndex int) int {
	if byteIndex < lineStart {
		return 0
	}
	relative := byteIndex - lineStart
	if relative >= len(lineSource) {
		return utf8.RuneCountInString(lineSource)
	}

	// Walk the rune boundaries; ranging over a string visits exactly those.
	count := 0
	onBoundary := false
	for i := range lineSource {
		if i == relative {
			onBoundary = true
			break
		}
		if i > relative {
			break
		}
		count++
	}
	if !onBoundary {
		count--
	}
	return count
}

// ColumnNumber is the 1-based form of ColumnIndex.
func ColumnNumber(lineSource string, lineStart, byteIndex int) int {
	return ColumnIndex(lineSource, lineStart, byteIndex) + 1
}
