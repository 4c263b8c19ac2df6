package errortypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/robfig/chtl/errortypes"
)

func TestIsErrFilePos(t *testing.T) {
	var tests = []struct {
		name string
		in   error
		out  bool
	}{
		{
			name: "nil",
			out:  false,
		},
		{
			name: "errors.New",
			in:   errors.New("an error"),
			out:  false,
		},
		{
			name: "new ErrFilePos",
			in:   errortypes.NewErrFilePosf("file.chtl", 1, 2, "message"),
			out:  true,
		},
		{
			name: "wrapped Error",
			in:   fmt.Errorf("compiling: %w", errortypes.Errorf(errortypes.SyntaxError, "a.chtl", 3, 4, "expected %q", "{")),
			out:  true,
		},
	}
	for _, test := range tests {
		got := errortypes.IsErrFilePos(test.in)
		if got != test.out {
			t.Errorf("%s: Expected %v, got %v", test.name, test.out, got)
		}
	}
}

func TestToErrFilePos(t *testing.T) {
	var tests = []struct {
		name             string
		in               error
		expectNil        bool
		expectedFilename string
		expectedLine     int
		expectedCol      int
	}{
		{
			name:      "nil",
			expectNil: true,
		},
		{
			name:      "errors.New",
			in:        errors.New("an error"),
			expectNil: true,
		},
		{
			name:             "new ErrFilePos",
			in:               errortypes.NewErrFilePosf("file.chtl", 1, 2, "message"),
			expectNil:        false,
			expectedFilename: "file.chtl",
			expectedLine:     1,
			expectedCol:      2,
		},
	}
	for _, test := range tests {
		got := errortypes.ToErrFilePos(test.in)
		if test.expectNil && got != nil {
			t.Errorf("%s: expected ErrFilePos to be nil", test.name)
		}
		if !test.expectNil {
			if got == nil {
				t.Errorf("%s: expected ErrFilePos to be non-nil", test.name)
				return
			}
			if got.File() != test.expectedFilename {
				t.Errorf("%s: expected file '%s', got '%s'", test.name, test.expectedFilename, got.File())
			}
			if got.Line() != test.expectedLine {
				t.Errorf("%s: expected line %d, got %d", test.name, test.expectedLine, got.Line())
			}
			if got.Col() != test.expectedCol {
				t.Errorf("%s: expected col %d, got %d", test.name, test.expectedCol, got.Col())
			}
		}
	}
}

func TestKindOf(t *testing.T) {
	var tests = []struct {
		in   error
		kind errortypes.Kind
		msg  string
	}{
		{nil, errortypes.Unknown, ""},
		{errors.New("plain"), errortypes.Unknown, "plain"},
		{errortypes.Errorf(errortypes.CyclicImportError, "a.chtl", 1, 1, "a.chtl -> b.chtl -> a.chtl"),
			errortypes.CyclicImportError, "a.chtl:1:1: CyclicImportError: a.chtl -> b.chtl -> a.chtl"},
		{fmt.Errorf("wrap: %w", errortypes.Errorf(errortypes.ImportNotFoundError, "a.chtl", 0, 0, "x.chtl")),
			errortypes.ImportNotFoundError, "wrap: a.chtl: ImportNotFoundError: x.chtl"},
		{errortypes.Errorf(errortypes.LexError, "", 0, 0, "bad"),
			errortypes.LexError, "LexError: bad"},
	}
	for _, test := range tests {
		if got := errortypes.KindOf(test.in); got != test.kind {
			t.Errorf("%v: expected kind %v, got %v", test.in, test.kind, got)
		}
		if test.in != nil && test.in.Error() != test.msg {
			t.Errorf("expected message %q, got %q", test.msg, test.in.Error())
		}
	}
}
