package wire

import "testing"

func feed(t *testing.T, d *StreamingDecoder, chunk []byte) {
	t.Helper()
	remaining := chunk
	for len(remaining) > 0 {
		dst := d.Fillable()
		n := copy(dst, remaining)
		d.Commit(n)
		remaining = remaining[n:]
	}
}

func TestStreamingDecoderSingleFrame(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	d := NewStreamingDecoder('|', false)
	feed(t, d, raw)

	complete, err := d.TryParse()
	if err != nil {
		t.Fatalf("TryParse: %v", err)
	}
	if !complete {
		t.Fatalf("expected complete frame")
	}
	frame, err := d.RawFrame()
	if err != nil {
		t.Fatalf("RawFrame: %v", err)
	}
	if string(frame.Data) != string(raw) {
		t.Fatalf("frame bytes mismatch")
	}
}

func TestStreamingDecoderByteAtATime(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	d := NewStreamingDecoder('|', false)

	for i := 0; i < len(raw); i++ {
		feed(t, d, raw[i:i+1])
		complete, err := d.TryParse()
		if err != nil {
			t.Fatalf("TryParse at byte %d: %v", i, err)
		}
		if complete && i != len(raw)-1 {
			t.Fatalf("reported complete too early at byte %d", i)
		}
	}
	complete, err := d.TryParse()
	if err != nil || !complete {
		t.Fatalf("expected complete after feeding all bytes, got complete=%v err=%v", complete, err)
	}
}

func TestStreamingDecoderPipelinedFrames(t *testing.T) {
	one := []byte("8=FIX.4.4|9=40|35=D|49=AFUNDMGR|56=ABROKER|15=USD|59=0|10=091|")
	d := NewStreamingDecoder('|', false)
	feed(t, d, one)
	feed(t, d, one)

	for i := 0; i < 2; i++ {
		complete, err := d.TryParse()
		if err != nil || !complete {
			t.Fatalf("frame %d: complete=%v err=%v", i, complete, err)
		}
		if _, err := d.RawFrame(); err != nil {
			t.Fatalf("frame %d RawFrame: %v", i, err)
		}
		d.Advance()
	}
}

func TestStreamingDecoderPoisonedAfterFailure(t *testing.T) {
	d := NewStreamingDecoder('|', false)
	feed(t, d, []byte("8=FIX.4.4|9=abcnotdigits|this is garbage that never frames properly"))

	_, err := d.TryParse()
	if err == nil {
		t.Fatalf("expected a decode error")
	}
	if !d.Poisoned() {
		t.Fatalf("expected decoder to be poisoned")
	}

	// Calling TryParse again must return a hard error, never panic.
	if _, err := d.TryParse(); err != ErrDecoderPoisoned {
		t.Fatalf("expected ErrDecoderPoisoned, got %v", err)
	}
}
