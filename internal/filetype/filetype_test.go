package filetype

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/fontcritic/internal/testable"
)

func TestApplies(t *testing.T) {
	ttf := MustNew("TTF", "*.[ot]tf")
	desc := MustNew("DESC", "DESCRIPTION.en_us.html")
	q := MustNew("Q", "Foo-?.ttf")

	tests := []struct {
		ft   FileType
		name string
		want bool
	}{
		{ttf, "fonts/Foo-Regular.ttf", true},
		{ttf, "Foo-Regular.otf", true},
		{ttf, "Foo-Regular.TTF", false},
		{ttf, "Foo-Regular.woff2", false},
		{ttf, "dir.ttf/readme.txt", false},
		{desc, "family/DESCRIPTION.en_us.html", true},
		{desc, "DESCRIPTION.html", false},
		{q, "Foo-A.ttf", true},
		{q, "Foo-AB.ttf", false},
	}
	for _, tt := range tests {
		t.Run(tt.ft.Tag+"/"+tt.name, func(t *testing.T) {
			if got := tt.ft.Applies(testable.New(tt.name, nil)); got != tt.want {
				t.Errorf("Applies(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAppliesIgnoresContents(t *testing.T) {
	ttf := MustNew("TTF", "*.ttf")
	a := testable.New("a.ttf", []byte("not a font"))
	b := testable.New("a.ttf", []byte{0, 1, 0, 0})
	if ttf.Applies(a) != ttf.Applies(b) {
		t.Error("Applies must depend on the base name only")
	}
}

func TestNewBadPattern(t *testing.T) {
	if _, err := New("BAD", "[unclosed"); err == nil {
		t.Error("expected error for malformed pattern")
	}
	if _, err := New("", "*.ttf"); err == nil {
		t.Error("expected error for empty tag")
	}
}

type upperConv struct{}

func (upperConv) FileType() FileType { return MustNew("TXT", "*.txt") }

func (upperConv) FromTestable(t *testable.Testable) (string, error) {
	if len(t.Contents) == 0 {
		return "", errors.New("empty")
	}
	return strings.ToUpper(string(t.Contents)), nil
}

func TestFromCollection(t *testing.T) {
	c := testable.NewCollection(
		testable.New("b.txt", []byte("bee")),
		testable.New("x.ttf", []byte("font")),
		testable.New("empty.txt", nil),
		testable.New("a.txt", []byte("ay")),
	)
	got := FromCollection[string](upperConv{}, c)
	want := []string{"BEE", "AY"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPresent(t *testing.T) {
	c := testable.NewCollection(testable.New("a.txt", nil))
	if !MustNew("TXT", "*.txt").Present(c) {
		t.Error("expected TXT present")
	}
	if MustNew("TTF", "*.ttf").Present(c) {
		t.Error("expected TTF absent")
	}
}
