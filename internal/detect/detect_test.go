package detect

import "testing"

func TestSniff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{
			name:  "sarif",
			input: `{"version":"2.1.0","$schema":"https://sarif.dev","runs":[{"tool":{"driver":{"name":"eslint"}},"results":[]}]}`,
			want:  SARIF,
		},
		{
			name:  "eslint json",
			input: `[{"filePath":"/src/a.ts","messages":[{"ruleId":"no-unused-vars","severity":2,"message":"x","line":1,"column":1}]}]`,
			want:  ESLintJSON,
		},
		{
			name:  "eslint json clean run",
			input: `[]`,
			want:  ESLintJSON,
		},
		{
			name:  "json array of something else",
			input: `[{"name":"x"}]`,
			want:  Unknown,
		},
		{
			name:  "invalid json object",
			input: `{invalid`,
			want:  Unknown,
		},
		{
			name:  "stylish",
			input: "\n/src/a.ts\n  3:10  error  'foo' is defined but never used  no-unused-vars\n",
			want:  Stylish,
		},
		{
			name:  "report",
			input: "--- tool:lint format:text status:fail ---\n/src/a.ts\n",
			want:  Report,
		},
		{
			name:  "empty",
			input: "",
			want:  Unknown,
		},
		{
			name:  "whitespace only",
			input: " \n\t\n",
			want:  Unknown,
		},
		{
			name:  "leading whitespace before sarif",
			input: "  \n" + `{"version":"2.1.0","runs":[]}`,
			want:  SARIF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff([]byte(tt.input)); got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	if Stylish.String() != "stylish" {
		t.Errorf("Stylish.String() = %q", Stylish.String())
	}
	if Format(99).String() != "unknown" {
		t.Errorf("Format(99).String() = %q", Format(99).String())
	}
}
