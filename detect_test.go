package tablebuilder

import (
	"strings"
	"testing"
)

func TestDetectShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		wantDelimiter rune
		wantFields    int
		wantHeader    bool
		wantLowConf   bool
	}{
		{
			name:          "comma separated with header",
			input:         "id,name,city\n1,Alice,Boston\n2,Bob,Denver\n",
			wantDelimiter: ',',
			wantFields:    3,
			wantHeader:    true,
		},
		{
			name:          "tab separated",
			input:         "id\tname\n1\tAlice\n2\tBob\n",
			wantDelimiter: '\t',
			wantFields:    2,
			wantHeader:    true,
		},
		{
			name:          "pipe separated no header",
			input:         "1|Alice\n2|Bob\n",
			wantDelimiter: '|',
			wantFields:    2,
			wantHeader:    false,
		},
		{
			name:          "comma wins ties by preference",
			input:         "a,b|c\n1,2|3\n",
			wantDelimiter: ',',
			wantFields:    2,
			wantHeader:    true,
		},
		{
			name:          "quoted delimiter does not split",
			input:         "name,qty\n\"Smith, John\",2\n\"Lee, Ann\",3\n",
			wantDelimiter: ',',
			wantFields:    2,
			wantHeader:    true,
		},
		{
			name:          "single column falls back low confidence",
			input:         "hello\nworld\n",
			wantDelimiter: ',',
			wantFields:    1,
			wantHeader:    false,
			wantLowConf:   true,
		},
		{
			name:          "inconsistent counts fall back low confidence",
			input:         "a,b,c\n1,2\n3,4,5,6\nx\n",
			wantDelimiter: ',',
			wantFields:    1,
			wantLowConf:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			det, err := DetectShape(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("DetectShape() error = %v", err)
			}
			if det.Delimiter != tt.wantDelimiter {
				t.Errorf("Delimiter = %q, want %q", det.Delimiter, tt.wantDelimiter)
			}
			if det.FieldCount != tt.wantFields {
				t.Errorf("FieldCount = %d, want %d", det.FieldCount, tt.wantFields)
			}
			if det.HeaderPresent != tt.wantHeader {
				t.Errorf("HeaderPresent = %v, want %v", det.HeaderPresent, tt.wantHeader)
			}
			if det.LowConfidence != tt.wantLowConf {
				t.Errorf("LowConfidence = %v, want %v", det.LowConfidence, tt.wantLowConf)
			}
		})
	}
}

func TestDetectShapeEmpty(t *testing.T) {
	t.Parallel()

	_, err := DetectShape(strings.NewReader(""))
	if err == nil {
		t.Fatal("DetectShape() on empty input expected an error")
	}
}

func TestDetectShapeExtraCandidate(t *testing.T) {
	t.Parallel()

	// '~' is not in the preference list; it only wins when passed explicitly
	input := "id~name\n1~Alice\n2~Bob\n"

	det, err := DetectShape(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DetectShape() error = %v", err)
	}
	if !det.LowConfidence {
		t.Errorf("expected low confidence without the extra candidate, got %+v", det)
	}

	det, err = DetectShape(strings.NewReader(input), '~')
	if err != nil {
		t.Fatalf("DetectShape() error = %v", err)
	}
	if det.Delimiter != '~' || det.FieldCount != 2 || det.LowConfidence {
		t.Errorf("DetectShape() with extra candidate = %+v, want delimiter '~' and 2 fields", det)
	}
}

func TestDetectHeaderSingleLine(t *testing.T) {
	t.Parallel()

	det, err := DetectShape(strings.NewReader("id,name\n"))
	if err != nil {
		t.Fatalf("DetectShape() error = %v", err)
	}
	if !det.HeaderPresent {
		t.Error("a lone non-scalar line should be treated as a header")
	}
}

func TestDetectShapeInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := DetectShape(strings.NewReader("id,name\n1,\xff\xfe\n"))
	if err == nil {
		t.Fatal("DetectShape() on invalid UTF-8 expected an error")
	}
}
