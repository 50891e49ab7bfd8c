package models

import "testing"

func TestResultEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{name: "nothing", r: Result{Title: "Generated Content"}, want: true},
		{name: "whitespace", r: Result{SocialPost: " \n", Newsletter: "\t"}, want: true},
		{name: "social only", r: Result{SocialPost: "post"}, want: false},
		{name: "newsletter only", r: Result{Newsletter: "letter"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
