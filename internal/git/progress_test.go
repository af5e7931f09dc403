package git

import "testing"

func TestClassifyLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want LineInfo
	}{
		{name: "plain", line: "Everything up-to-date", want: LineInfo{}},
		{
			name: "receiving",
			line: "Receiving objects:  42% (42/100), 1.00 MiB | 2.00 MiB/s",
			want: LineInfo{Stage: "Receiving objects", Percent: 42, HasPercent: true},
		},
		{
			name: "remote_prefix",
			line: "remote: Counting objects: 100% (5/5), done.",
			want: LineInfo{Stage: "Counting objects", Percent: 100, HasPercent: true},
		},
		{
			name: "resolving",
			line: "Resolving deltas:   7% (1/14)",
			want: LineInfo{Stage: "Resolving deltas", Percent: 7, HasPercent: true},
		},
		{name: "stage_without_percent", line: "Writing objects: done", want: LineInfo{}},
		{name: "unknown_stage", line: "Enumerating objects: 50%", want: LineInfo{}},
		{
			name: "username_prompt",
			line: "Username for 'https://github.com': ",
			want: LineInfo{Hint: HintCredentials},
		},
		{
			name: "password_prompt",
			line: "Password for 'https://user@github.com': ",
			want: LineInfo{Hint: HintCredentials},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ClassifyLine(tt.line); got != tt.want {
				t.Fatalf("ClassifyLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
