package httpx

import "testing"

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantMsg  string
		wantCode string
	}{
		{
			name:     "nested envelope",
			body:     `{"error":{"message":"session not found","code":"session_not_found"}}`,
			wantMsg:  "session not found",
			wantCode: "session_not_found",
		},
		{
			name:    "error as string",
			body:    `{"error":"token expired"}`,
			wantMsg: "token expired",
		},
		{
			name:     "flat message",
			body:     `{"message":"missing answers","code":"incomplete"}`,
			wantMsg:  "missing answers",
			wantCode: "incomplete",
		},
		{
			name:    "plain text body",
			body:    "  upstream unavailable \n",
			wantMsg: "upstream unavailable",
		},
		{
			name:    "empty body",
			body:    "",
			wantMsg: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, code := ErrorMessage([]byte(tc.body))
			if msg != tc.wantMsg {
				t.Fatalf("message: want=%q got=%q", tc.wantMsg, msg)
			}
			if code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, code)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abcd..." {
		t.Fatalf("Truncate: want=%q got=%q", "abcd...", got)
	}
	if got := Truncate("abc", 4); got != "abc" {
		t.Fatalf("Truncate short: want=%q got=%q", "abc", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate zero max: want=%q got=%q", "abc", got)
	}
}
