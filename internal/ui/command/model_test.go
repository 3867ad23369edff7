package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		want   CommandMsg
		wantOK bool
	}{
		{line: "", wantOK: false},
		{line: "   ", wantOK: false},
		{line: "Projects", want: CommandMsg{Name: "projects", Args: []string{}}, wantOK: true},
		{line: " export  clients ", want: CommandMsg{Name: "export", Args: []string{"clients"}}, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Parse(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
