package wire

import "testing"

func TestDecodeSimpleMessagePipeSeparated(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	frame, err := Decode(raw, '|', false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(frame.BeginStringValue()) != "FIX.4.4" {
		t.Fatalf("BeginString = %q", frame.BeginStringValue())
	}
	wantPayload := "35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|"
	if string(frame.PayloadBytes()) != wantPayload {
		t.Fatalf("Payload = %q, want %q", frame.PayloadBytes(), wantPayload)
	}
}

func TestDecodeFramingRoundTrip(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	frame, err := Decode(raw, '|', false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(frame.Data) != string(raw) {
		t.Fatalf("frame bytes not preserved")
	}
}

func TestDecodeChecksumVerifiedOnlyForSOH(t *testing.T) {
	// Pipe-delimited: checksum verification must be skipped even if wrong.
	raw := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=999|")
	if _, err := Decode(raw, '|', true); err != nil {
		t.Fatalf("expected no checksum error for non-SOH separator, got %v", err)
	}

	sohRaw := []byte("8=FIX.4.4\x019=40\x0135=D\x0149=AFUNDMGR\x0156=ABROKER\x0115=USD\x0159=0\x0110=999\x01")
	if _, err := Decode(sohRaw, SOH, true); err != ErrChecksum {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}
}

func TestDecodeEdgeCasesDontPanic(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("garbage"),
		[]byte("8=FIX.4.4|9=999999|35=D|10=000|"),
		[]byte("8=FIX.4.4|9=abc|35=D|10=000|"),
		[]byte("8=FIX.4.4|9=4|35=D|10=000|extra bytes here"),
	}
	for i, c := range cases {
		if _, err := Decode(c, '|', false); err == nil {
			t.Fatalf("case %d: expected error for %q", i, c)
		}
	}
}

func TestDecodeBodyLengthMismatch(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=41|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	if _, err := Decode(raw, '|', false); err != ErrInvalidFrame {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}
