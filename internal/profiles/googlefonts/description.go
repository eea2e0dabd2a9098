package googlefonts

import (
	"bytes"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/testable"
)

// minDescriptionLength is the size a description must exceed, in bytes.
const minDescriptionLength = 200

var MinLength = check.New("googlefonts/description/min_length", "DESCRIPTION.en_us.html must have more than 200 bytes.").
	Rationale("The DESCRIPTION.en_us.html file is intended to provide a brief overview of the font family. " +
		"It should be long enough to be useful to users, but not so long that it becomes overwhelming.\n\n" +
		"We chose 200 bytes as a minimum length because it suggests that someone has taken the time to write \"something sensible\" about the font.").
	Proposal("https://github.com/fonttools/fontbakery/issues/4829").
	AppliesTo(DESC.Tag).
	RunOne(minLength).
	MustBuild()

func minLength(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	if len(t.Contents) <= minDescriptionLength {
		return check.JustOneFail("too-short", "DESCRIPTION.en_us.html must have size larger than 200 bytes."), nil
	}
	return check.JustOnePass(), nil
}

var EOFLinebreak = check.New("googlefonts/description/eof_linebreak", "DESCRIPTION.en_us.html should end in a linebreak.").
	Rationale("Some older text-handling tools sometimes misbehave if the last line of data in a text file is not terminated with a newline character (also known as '\\n').\n\n" +
		"We know that this is a very small detail, but for the sake of keeping all DESCRIPTION.en_us.html files uniformly formatted throughout the GFonts collection, " +
		"we chose to adopt the practice of placing this final linebreak character on them.").
	Proposal("https://github.com/fonttools/fontbakery/issues/2879").
	AppliesTo(DESC.Tag).
	RunOne(eofLinebreak).
	Fix(addEOFLinebreak).
	MustBuild()

func eofLinebreak(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	if !bytes.HasSuffix(t.Contents, []byte("\n")) {
		return check.JustOneWarn("missing-eof-linebreak",
			"The last character on DESCRIPTION.en_us.html is not a line-break. Please add it."), nil
	}
	return check.JustOnePass(), nil
}

func addEOFLinebreak(t *testable.Testable, _ *check.Context) (bool, error) {
	if bytes.HasSuffix(t.Contents, []byte("\n")) {
		return false, nil
	}
	t.Contents = append(t.Contents, '\n')
	return true, nil
}
