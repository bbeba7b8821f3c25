package websocket

import "testing"

func TestParseClosePayload(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		wantStatus StatusCode
		wantReason string
	}{
		{
			name:       "empty",
			wantStatus: StatusNotReceived,
		},
		{
			name:       "single_byte",
			payload:    []byte{0x01},
			wantStatus: StatusProtocolError,
		},
		{
			name:       "normal_closure_no_reason",
			payload:    []byte{0x03, 0xe8},
			wantStatus: StatusNormalClosure,
		},
		{
			name:       "going_away_with_reason",
			payload:    append([]byte{0x03, 0xe9}, []byte("bye")...),
			wantStatus: StatusGoingAway,
			wantReason: "bye",
		},
		{
			name:       "invalid_utf8_reason",
			payload:    append([]byte{0x03, 0xe8}, 0xff),
			wantStatus: StatusInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := parseClosePayload(tt.payload)
			if status != tt.wantStatus {
				t.Errorf("parseClosePayload() status = %v, want %v", status, tt.wantStatus)
			}
			if reason != tt.wantReason {
				t.Errorf("parseClosePayload() reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}
