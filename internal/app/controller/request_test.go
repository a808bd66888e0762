package controller

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`4`, 4, false},
		{`"4"`, 4, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"four"`, 0, true},
		{`4.5`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var body struct {
				Counter FlexibleInt `json:"counter"`
			}
			err := json.Unmarshal([]byte(`{"counter":`+tt.in+`}`), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, int(body.Counter))
		})
	}
}

func TestFlexibleID_UnmarshalJSON(t *testing.T) {
	var body IDRequest
	assert.NoError(t, json.Unmarshal([]byte(`{"id":"12"}`), &body))
	assert.Equal(t, FlexibleID(12), body.ID)
	assert.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &body))
	assert.Zero(t, body.ID)
}
