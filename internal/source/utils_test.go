package source

import (
	"path/filepath"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"plain", "foo\nbar", "foo\nbar", false},
		{"crlf", "foo\r\nbar\r\n", "foo\nbar\n", true},
		{"lone cr kept", "foo\rbar", "foo\rbar", false},
		{"mixed", "a\r\nb\rc\n", "a\nb\rc\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, string(got))
			}
			if changed != tt.changed {
				t.Errorf("Expected changed=%v, got %v", tt.changed, changed)
			}
		})
	}
}

func TestNormalizeFlags(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content, flags := Normalize(append(bom, []byte("foo\r\nbar")...))
	if string(content) != "foo\nbar" {
		t.Errorf("Expected 'foo\\nbar', got %q", string(content))
	}
	if flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag")
	}
	if flags&FileNormalizedCRLF == 0 {
		t.Error("Expected FileNormalizedCRLF flag")
	}

	content, flags = Normalize([]byte("clean\n"))
	if string(content) != "clean\n" || flags != 0 {
		t.Errorf("Expected clean content and zero flags, got %q / %v", string(content), flags)
	}
}

func TestBuildLineStarts(t *testing.T) {
	tests := []struct {
		in   string
		want []uint32
	}{
		{"", []uint32{0}},
		{"foo", []uint32{0}},
		{"foo\n", []uint32{0, 4}},
		{"\n\n", []uint32{0, 1, 2}},
	}
	for _, tt := range tests {
		got := buildLineStarts([]byte(tt.in))
		if len(got) != len(tt.want) {
			t.Errorf("buildLineStarts(%q): expected %v, got %v", tt.in, tt.want, got)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("buildLineStarts(%q)[%d]: expected %d, got %d", tt.in, i, tt.want[i], got[i])
			}
		}
	}
}

func TestRelativePath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "work", "proj")
	inside := filepath.Join(base, "src", "main.rl")

	rel, err := RelativePath(inside, base)
	if err != nil {
		t.Fatalf("RelativePath error: %v", err)
	}
	if rel != filepath.Join("src", "main.rl") {
		t.Errorf("Expected 'src/main.rl', got %q", rel)
	}

	// Путь вне базовой директории: абсолютная форма вместо цепочек ../
	outside := filepath.Join(string(filepath.Separator), "other", "x.rl")
	rel, err = RelativePath(outside, base)
	if err != nil {
		t.Fatalf("RelativePath error: %v", err)
	}
	if !filepath.IsAbs(rel) {
		t.Errorf("Expected absolute fallback outside base, got %q", rel)
	}
}
