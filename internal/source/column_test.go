package source

import "testing"

func TestColumnIndexUnicode(t *testing.T) {
	// "🗻∈🌏": rune boundaries at bytes 0, 4, 7; total 11 bytes.
	lineSource := "\U0001F5FB∈\U0001F30F"
	lineStart := 2

	tests := []struct {
		byteIndex int
		want      int
	}{
		{0, 0},  // before the line start
		{2, 0},  // exactly at the line start
		{3, 0},  // внутри 🗻: относим к прерванному символу
		{6, 1},  // boundary of ∈
		{9, 2},  // boundary of 🌏
		{10, 2}, // внутри 🌏
		{13, 3}, // exactly at the line end
		{99, 3}, // past the end clamps to the character count
	}
	for _, tt := range tests {
		got := ColumnIndex(lineSource, lineStart, tt.byteIndex)
		if got != tt.want {
			t.Errorf("ColumnIndex(%d): expected %d, got %d", tt.byteIndex, tt.want, got)
		}
	}
}

func TestColumnIndexASCII(t *testing.T) {
	line := "let x = 1;"
	for i := 0; i <= len(line); i++ {
		if got := ColumnIndex(line, 0, i); got != i {
			t.Errorf("ColumnIndex(%d) on ASCII: expected %d, got %d", i, i, got)
		}
	}
}

// TestColumnIndexMonotone: индекс колонки не убывает с ростом смещения.
func TestColumnIndexMonotone(t *testing.T) {
	lineSource := "aé\U0001F5FBz"
	prev := 0
	for b := 0; b <= len(lineSource)+2; b++ {
		got := ColumnIndex(lineSource, 0, b)
		if got < prev {
			t.Errorf("ColumnIndex(%d) = %d decreased below %d", b, got, prev)
		}
		prev = got
	}
}

func TestColumnNumber(t *testing.T) {
	if got := ColumnNumber("foo", 0, 0); got != 1 {
		t.Errorf("Expected column number 1 at line start, got %d", got)
	}
	if got := ColumnNumber("foo", 0, 3); got != 4 {
		t.Errorf("Expected column number 4 at line end, got %d", got)
	}
}
